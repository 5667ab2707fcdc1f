package airdrop

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/claimEvents"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/metrics"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/persistence/memory"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/token"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/token/inMemoryToken"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/typedData"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

var (
	ledgerAddress = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	tokenAddress  = common.HexToAddress("0x00000000000000000000000000000000000000aA")
	anotherUser   = common.HexToAddress("0x00000000000000000000000000000000000A11CE")
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

// claimant is an eligible account that can sign for itself
type claimant struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func newClaimant(t *testing.T) *claimant {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &claimant{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}
}

func (c *claimant) sign(t *testing.T, digest common.Hash) *types.Signature {
	t.Helper()
	raw, err := crypto.Sign(digest.Bytes(), c.key)
	require.NoError(t, err)
	raw[64] += 27
	sig, err := types.SignatureFromBytes(raw)
	require.NoError(t, err)
	return sig
}

type testHarness struct {
	ledger  *ClaimLedger
	token   *inMemoryToken.InMemoryToken
	store   *memory.MemoryPersistence
	events  *claimEvents.ClaimEventHandler
	tree    *merkle.MerkleTree
	jacob   *claimant
	someone *claimant
}

// newHarness builds the two-leaf airdrop: Jacob and Someone are each allocated
// 25e18 and the reserve is funded with reserveFunds.
func newHarness(t *testing.T, reserveFunds *big.Int, tok token.IAirdropToken) *testHarness {
	t.Helper()

	jacob := newClaimant(t)
	someone := newClaimant(t)

	tree, err := merkle.BuildMerkleTree([]*types.Allocation{
		{Account: jacob.address, Amount: ether(25)},
		{Account: someone.address, Amount: ether(25)},
	})
	require.NoError(t, err)

	memToken := inMemoryToken.NewInMemoryToken(tokenAddress, ledgerAddress)
	if reserveFunds != nil && reserveFunds.Sign() > 0 {
		require.NoError(t, memToken.Mint(ledgerAddress, reserveFunds))
	}
	if tok == nil {
		tok = memToken
	}

	store := memory.NewMemoryPersistence()
	t.Cleanup(func() { _ = store.Close() })

	events := claimEvents.NewClaimEventHandler(zap.NewNop(), 10)

	ledger, err := NewClaimLedger(&ClaimLedgerConfig{
		MerkleRoot:   tree.Root,
		Domain:       typedData.NewDomain(big.NewInt(31337), ledgerAddress),
		Token:        tok,
		Persistence:  store,
		EventHandler: events,
		Logger:       zap.NewNop(),
	})
	require.NoError(t, err)

	return &testHarness{
		ledger:  ledger,
		token:   memToken,
		store:   store,
		events:  events,
		tree:    tree,
		jacob:   jacob,
		someone: someone,
	}
}

// request builds a correctly signed, correctly proven claim for c
func (h *testHarness) request(t *testing.T, c *claimant) *types.ClaimRequest {
	t.Helper()
	proof, err := h.tree.ProofForAccount(c.address)
	require.NoError(t, err)

	digest, err := h.ledger.GetMessageHash(c.address, proof.Amount)
	require.NoError(t, err)

	return &types.ClaimRequest{
		Account:   c.address,
		Amount:    proof.Amount,
		Proof:     proof.Proof,
		Signature: c.sign(t, digest),
	}
}

func (h *testHarness) balance(t *testing.T, account common.Address) *big.Int {
	t.Helper()
	b, err := h.token.BalanceOf(context.Background(), account)
	require.NoError(t, err)
	return b
}

func (h *testHarness) drainEvents() []*types.ClaimedEvent {
	var out []*types.ClaimedEvent
	for {
		select {
		case ev := <-h.events.EventChannel:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func Test_Claim(t *testing.T) {
	ctx := context.Background()

	t.Run("Jacob claims once", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)
		req := h.request(t, h.jacob)

		before := h.balance(t, h.jacob.address)
		record, err := h.ledger.Claim(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.NotEmpty(t, record.ClaimID)
		assert.Equal(t, h.jacob.address, record.Account)

		after := h.balance(t, h.jacob.address)
		assert.Equal(t, 0, new(big.Int).Sub(after, before).Cmp(ether(25)))
		assert.Equal(t, 0, h.balance(t, ledgerAddress).Cmp(ether(75)))

		events := h.drainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, h.jacob.address, events[0].Account)
		assert.Equal(t, 0, events[0].Amount.Cmp(ether(25)))
		assert.Equal(t, record.ClaimID, events[0].ClaimID)

		claimed, err := h.ledger.HasClaimed(h.jacob.address)
		require.NoError(t, err)
		assert.True(t, claimed)

		// second identical call
		_, err = h.ledger.Claim(ctx, req)
		require.ErrorIs(t, err, ErrAlreadyClaimed)
		assert.Equal(t, 0, h.balance(t, h.jacob.address).Cmp(ether(25)))
		assert.Empty(t, h.drainEvents())
	})

	t.Run("already claimed is checked before anything else", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)
		_, err := h.ledger.Claim(ctx, h.request(t, h.jacob))
		require.NoError(t, err)

		_, err = h.ledger.Claim(ctx, &types.ClaimRequest{
			Account:   h.jacob.address,
			Amount:    ether(1),
			Signature: &types.Signature{},
		})
		require.ErrorIs(t, err, ErrAlreadyClaimed)
	})

	t.Run("claimed account replayed with a malformed amount", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)
		valid := h.request(t, h.jacob)
		_, err := h.ledger.Claim(ctx, valid)
		require.NoError(t, err)
		h.drainEvents()

		for _, amount := range []*big.Int{nil, big.NewInt(0), big.NewInt(-1)} {
			req := *valid
			req.Amount = amount
			_, err = h.ledger.Claim(ctx, &req)
			require.ErrorIs(t, err, ErrAlreadyClaimed)
			assert.NotErrorIs(t, err, ErrInvalidAmount)
		}
		assert.Equal(t, 0, h.balance(t, h.jacob.address).Cmp(ether(25)))
		assert.Empty(t, h.drainEvents())
	})

	t.Run("Jacob's signature submitted for another user", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)
		req := h.request(t, h.jacob)
		req.Account = anotherUser

		_, err := h.ledger.Claim(ctx, req)
		require.ErrorIs(t, err, ErrInvalidSignature)
		assert.Zero(t, h.balance(t, anotherUser).Sign())
		assert.Empty(t, h.drainEvents())
	})

	t.Run("signature for A with valid proof for B", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)
		req := h.request(t, h.someone)
		req.Signature = h.request(t, h.jacob).Signature

		_, err := h.ledger.Claim(ctx, req)
		require.ErrorIs(t, err, ErrInvalidSignature)

		claimed, err := h.ledger.HasClaimed(h.someone.address)
		require.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("signature for a different amount", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)
		req := h.request(t, h.jacob)
		digest, err := h.ledger.GetMessageHash(h.jacob.address, ether(50))
		require.NoError(t, err)
		req.Signature = h.jacob.sign(t, digest)

		_, err = h.ledger.Claim(ctx, req)
		require.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("signature from another domain", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)
		req := h.request(t, h.jacob)
		otherDomain := typedData.NewDomain(big.NewInt(1), ledgerAddress)
		digest, err := otherDomain.ClaimDigest(h.jacob.address, ether(25))
		require.NoError(t, err)
		req.Signature = h.jacob.sign(t, digest)

		_, err = h.ledger.Claim(ctx, req)
		require.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("missing or malformed signature", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)

		req := h.request(t, h.jacob)
		req.Signature = nil
		_, err := h.ledger.Claim(ctx, req)
		require.ErrorIs(t, err, ErrInvalidSignature)

		req = h.request(t, h.jacob)
		req.Signature.V = 42
		_, err = h.ledger.Claim(ctx, req)
		require.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("every single bit flip of the proof", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)
		valid := h.request(t, h.jacob)
		require.Len(t, valid.Proof, 1)

		for elem := range valid.Proof {
			for bit := 0; bit < 256; bit++ {
				tampered := *valid
				tampered.Proof = make([][32]byte, len(valid.Proof))
				copy(tampered.Proof, valid.Proof)
				tampered.Proof[elem][bit/8] ^= 1 << (bit % 8)

				_, err := h.ledger.Claim(ctx, &tampered)
				require.ErrorIs(t, err, ErrInvalidProof, "element %d bit %d", elem, bit)
			}
		}

		// the untouched claim still succeeds afterwards
		_, err := h.ledger.Claim(ctx, valid)
		require.NoError(t, err)
	})

	t.Run("signed amount not in the tree", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)
		req := h.request(t, h.jacob)
		req.Amount = ether(30)
		digest, err := h.ledger.GetMessageHash(h.jacob.address, req.Amount)
		require.NoError(t, err)
		req.Signature = h.jacob.sign(t, digest)

		_, err = h.ledger.Claim(ctx, req)
		require.ErrorIs(t, err, ErrInvalidProof)
	})

	t.Run("ineligible account with a self-signed claim", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)
		outsider := newClaimant(t)
		digest, err := h.ledger.GetMessageHash(outsider.address, ether(25))
		require.NoError(t, err)

		_, err = h.ledger.Claim(ctx, &types.ClaimRequest{
			Account:   outsider.address,
			Amount:    ether(25),
			Proof:     h.request(t, h.jacob).Proof,
			Signature: outsider.sign(t, digest),
		})
		require.ErrorIs(t, err, ErrInvalidProof)
	})

	t.Run("relayer submits on Jacob's behalf", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)

		// the request travels through a third party unchanged
		signed := h.request(t, h.jacob)
		relayed := &types.ClaimRequest{
			Account:   signed.Account,
			Amount:    signed.Amount,
			Proof:     signed.Proof,
			Signature: signed.Signature,
		}

		_, err := h.ledger.Claim(ctx, relayed)
		require.NoError(t, err)
		assert.Equal(t, 0, h.balance(t, h.jacob.address).Cmp(ether(25)))
	})

	t.Run("both eligible accounts claim", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)
		_, err := h.ledger.Claim(ctx, h.request(t, h.jacob))
		require.NoError(t, err)
		_, err = h.ledger.Claim(ctx, h.request(t, h.someone))
		require.NoError(t, err)

		assert.Equal(t, 0, h.balance(t, ledgerAddress).Cmp(ether(50)))
		assert.Len(t, h.drainEvents(), 2)

		claims, err := h.store.ListClaims()
		require.NoError(t, err)
		assert.Len(t, claims, 2)
	})
}

func Test_ClaimInvalidAmount(t *testing.T) {
	h := newHarness(t, ether(100), nil)
	valid := h.request(t, h.jacob)

	amounts := map[string]*big.Int{
		"nil":      nil,
		"zero":     big.NewInt(0),
		"negative": big.NewInt(-1),
		"too wide": new(big.Int).Lsh(big.NewInt(1), 256),
	}

	for name, amount := range amounts {
		t.Run(name, func(t *testing.T) {
			req := *valid
			req.Amount = amount
			_, err := h.ledger.Claim(context.Background(), &req)
			require.ErrorIs(t, err, ErrInvalidAmount)

			_, err = h.ledger.GetMessageHash(h.jacob.address, amount)
			require.ErrorIs(t, err, ErrInvalidAmount)
		})
	}

	_, err := h.ledger.Claim(context.Background(), nil)
	require.Error(t, err)
}

func Test_ClaimAtomicity(t *testing.T) {
	ctx := context.Background()

	t.Run("underfunded reserve leaves the account unclaimed", func(t *testing.T) {
		h := newHarness(t, ether(10), nil)
		req := h.request(t, h.jacob)

		_, err := h.ledger.Claim(ctx, req)
		require.ErrorIs(t, err, ErrDisbursementFailure)
		require.ErrorIs(t, err, token.ErrInsufficientBalance)

		claimed, err := h.ledger.HasClaimed(h.jacob.address)
		require.NoError(t, err)
		assert.False(t, claimed)
		assert.Zero(t, h.balance(t, h.jacob.address).Sign())
		assert.Empty(t, h.drainEvents())

		// fund the reserve and retry the same request
		require.NoError(t, h.token.Mint(ledgerAddress, ether(90)))
		_, err = h.ledger.Claim(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 0, h.balance(t, h.jacob.address).Cmp(ether(25)))
		assert.Len(t, h.drainEvents(), 1)
	})

	t.Run("unknown outcome keeps the claim recorded", func(t *testing.T) {
		failing := &failingToken{err: token.ErrOutcomeUnknown}
		h := newHarness(t, ether(100), failing)
		failing.IAirdropToken = h.token
		req := h.request(t, h.jacob)

		_, err := h.ledger.Claim(ctx, req)
		require.ErrorIs(t, err, ErrDisbursementFailure)
		require.ErrorIs(t, err, token.ErrOutcomeUnknown)

		claimed, err := h.ledger.HasClaimed(h.jacob.address)
		require.NoError(t, err)
		assert.True(t, claimed)
		assert.Empty(t, h.drainEvents())

		// a retry can never pay twice
		failing.err = nil
		_, err = h.ledger.Claim(ctx, req)
		require.ErrorIs(t, err, ErrAlreadyClaimed)
	})

	t.Run("failed revert is reported", func(t *testing.T) {
		failing := &failingToken{err: errors.New("rpc down")}
		h := newHarness(t, ether(100), failing)
		failing.IAirdropToken = h.token
		failing.beforeFail = func() { _ = h.store.Close() }

		_, err := h.ledger.Claim(ctx, h.request(t, h.jacob))
		require.ErrorIs(t, err, ErrDisbursementFailure)
		assert.Contains(t, err.Error(), "revert failed")
	})

	t.Run("store failure is not a taxonomy error", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)
		require.NoError(t, h.store.Close())

		_, err := h.ledger.Claim(ctx, h.request(t, h.jacob))
		require.Error(t, err)
		require.ErrorIs(t, err, persistence.ErrClosed)
		assert.Equal(t, "error", ResultLabel(err))
	})
}

func Test_ClaimConcurrency(t *testing.T) {
	ctx := context.Background()

	t.Run("same account races", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)
		req := h.request(t, h.jacob)

		const attempts = 20
		var successes atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := h.ledger.Claim(ctx, req)
				if err == nil {
					successes.Add(1)
					return
				}
				assert.ErrorIs(t, err, ErrAlreadyClaimed)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), successes.Load())
		assert.Equal(t, 0, h.balance(t, h.jacob.address).Cmp(ether(25)))
		assert.Len(t, h.drainEvents(), 1)
	})

	t.Run("different accounts in parallel", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)
		reqs := []*types.ClaimRequest{h.request(t, h.jacob), h.request(t, h.someone)}

		var wg sync.WaitGroup
		for _, req := range reqs {
			wg.Add(1)
			go func(req *types.ClaimRequest) {
				defer wg.Done()
				_, err := h.ledger.Claim(ctx, req)
				assert.NoError(t, err)
			}(req)
		}
		wg.Wait()

		assert.Equal(t, 0, h.balance(t, ledgerAddress).Cmp(ether(50)))
	})
}

func Test_ClaimCancelledContext(t *testing.T) {
	h := newHarness(t, ether(100), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// the disbursement runs to completion even though the caller is gone
	_, err := h.ledger.Claim(ctx, h.request(t, h.jacob))
	require.NoError(t, err)
	assert.Equal(t, 0, h.balance(t, h.jacob.address).Cmp(ether(25)))
	assert.Len(t, h.drainEvents(), 1)
}

func Test_ClaimEvents(t *testing.T) {
	ctx := context.Background()

	// newBlockedLedger returns a ledger whose event channel is already full
	newBlockedLedger := func(t *testing.T, h *testHarness, timeout time.Duration) (*ClaimLedger, *claimEvents.ClaimEventHandler) {
		t.Helper()
		events := claimEvents.NewClaimEventHandler(zap.NewNop(), 1)
		events.EventChannel <- &types.ClaimedEvent{ClaimID: "filler"}

		ledger, err := NewClaimLedger(&ClaimLedgerConfig{
			MerkleRoot:   h.tree.Root,
			Domain:       typedData.NewDomain(big.NewInt(31337), ledgerAddress),
			Token:        h.token,
			Persistence:  memory.NewMemoryPersistence(),
			EventHandler: events,
			EventTimeout: timeout,
			Logger:       zap.NewNop(),
		})
		require.NoError(t, err)
		return ledger, events
	}

	t.Run("full event channel does not block other claims", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)
		ledger, events := newBlockedLedger(t, h, time.Minute)

		var wg sync.WaitGroup
		errs := make(chan error, 2)
		for _, c := range []*claimant{h.jacob, h.someone} {
			req := h.request(t, c)
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := ledger.Claim(ctx, req)
				errs <- err
			}()
		}

		// both claims commit while their events are still waiting for room
		require.Eventually(t, func() bool {
			a, _ := ledger.HasClaimed(h.jacob.address)
			b, _ := ledger.HasClaimed(h.someone.address)
			return a && b
		}, 5*time.Second, 10*time.Millisecond)

		received := 0
		for received < 3 {
			<-events.EventChannel
			received++
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}
	})

	t.Run("event that cannot be queued is counted", func(t *testing.T) {
		h := newHarness(t, ether(100), nil)
		ledger, events := newBlockedLedger(t, h, 20*time.Millisecond)

		before := testutil.ToFloat64(metrics.EventsDropped)
		_, err := ledger.Claim(ctx, h.request(t, h.jacob))
		require.NoError(t, err)
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.EventsDropped))

		claimed, err := ledger.HasClaimed(h.jacob.address)
		require.NoError(t, err)
		assert.True(t, claimed)
		assert.Len(t, events.EventChannel, 1)
	})
}

func Test_Accessors(t *testing.T) {
	h := newHarness(t, ether(100), nil)

	assert.Equal(t, h.tree.Root, h.ledger.GetMerkleRoot())
	assert.Equal(t, tokenAddress, h.ledger.GetAirdropToken().Address())
	assert.Equal(t, ledgerAddress, h.ledger.GetDomain().VerifyingContract)
	assert.NoError(t, h.ledger.HealthCheck())

	digest, err := h.ledger.GetMessageHash(h.jacob.address, ether(25))
	require.NoError(t, err)
	expected, err := typedData.NewDomain(big.NewInt(31337), ledgerAddress).ClaimDigest(h.jacob.address, ether(25))
	require.NoError(t, err)
	assert.Equal(t, expected, digest)

	record, err := h.ledger.GetClaim(h.jacob.address)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func Test_NewClaimLedger(t *testing.T) {
	tree, err := merkle.BuildMerkleTree([]*types.Allocation{{Account: anotherUser, Amount: ether(1)}})
	require.NoError(t, err)
	tok := inMemoryToken.NewInMemoryToken(tokenAddress, ledgerAddress)
	domain := typedData.NewDomain(big.NewInt(31337), ledgerAddress)

	t.Run("invalid config", func(t *testing.T) {
		store := memory.NewMemoryPersistence()
		defer func() { _ = store.Close() }()

		_, err := NewClaimLedger(nil)
		require.Error(t, err)
		_, err = NewClaimLedger(&ClaimLedgerConfig{Domain: domain, Token: tok, Persistence: store})
		require.Error(t, err, "empty root")
		_, err = NewClaimLedger(&ClaimLedgerConfig{MerkleRoot: tree.Root, Token: tok, Persistence: store})
		require.Error(t, err, "missing domain")
		_, err = NewClaimLedger(&ClaimLedgerConfig{MerkleRoot: tree.Root, Domain: domain, Persistence: store})
		require.Error(t, err, "missing token")
		_, err = NewClaimLedger(&ClaimLedgerConfig{MerkleRoot: tree.Root, Domain: domain, Token: tok})
		require.Error(t, err, "missing persistence")
	})

	t.Run("store pinned to another root", func(t *testing.T) {
		store := memory.NewMemoryPersistence()
		defer func() { _ = store.Close() }()

		_, err := NewClaimLedger(&ClaimLedgerConfig{MerkleRoot: tree.Root, Domain: domain, Token: tok, Persistence: store})
		require.NoError(t, err)

		// reopening with the same airdrop is fine
		_, err = NewClaimLedger(&ClaimLedgerConfig{MerkleRoot: tree.Root, Domain: domain, Token: tok, Persistence: store})
		require.NoError(t, err)

		otherRoot := tree.Root
		otherRoot[0] ^= 0xff
		_, err = NewClaimLedger(&ClaimLedgerConfig{MerkleRoot: otherRoot, Domain: domain, Token: tok, Persistence: store})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "merkle root mismatch")

		otherDomain := typedData.NewDomain(big.NewInt(1), ledgerAddress)
		_, err = NewClaimLedger(&ClaimLedgerConfig{MerkleRoot: tree.Root, Domain: otherDomain, Token: tok, Persistence: store})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "chain id mismatch")
	})
}

func Test_ResultLabel(t *testing.T) {
	assert.Equal(t, "success", ResultLabel(nil))
	assert.Equal(t, "already_claimed", ResultLabel(ErrAlreadyClaimed))
	assert.Equal(t, "invalid_signature", ResultLabel(ErrInvalidSignature))
	assert.Equal(t, "invalid_proof", ResultLabel(ErrInvalidProof))
	assert.Equal(t, "invalid_amount", ResultLabel(ErrInvalidAmount))
	assert.Equal(t, "disbursement_failure", ResultLabel(ErrDisbursementFailure))
}

// failingToken fails every transfer with err while err is set
type failingToken struct {
	token.IAirdropToken
	err        error
	beforeFail func()
}

func (f *failingToken) Address() common.Address {
	return tokenAddress
}

func (f *failingToken) Transfer(ctx context.Context, to common.Address, amount *big.Int) error {
	if f.err == nil {
		return f.IAirdropToken.Transfer(ctx, to, amount)
	}
	if f.beforeFail != nil {
		f.beforeFail()
	}
	return f.err
}
