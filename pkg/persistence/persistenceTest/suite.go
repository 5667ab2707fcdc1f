// Package persistenceTest holds the behaviour every IClaimPersistence
// implementation must share. Backends run it from their own tests.
package persistenceTest

import (
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

// Factory returns a fresh, empty persistence layer for a single subtest.
type Factory func(t *testing.T) persistence.IClaimPersistence

// NewRecord builds a claim record for account n.
func NewRecord(n int64, claimedAt int64) *types.ClaimRecord {
	return &types.ClaimRecord{
		ClaimID:   uuid.New().String(),
		Account:   common.BigToAddress(big.NewInt(n)),
		Amount:    new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18)),
		ClaimedAt: claimedAt,
	}
}

// RunSuite exercises the IClaimPersistence contract.
func RunSuite(t *testing.T, newPersistence Factory) {
	t.Run("MarkAndLoadClaim", func(t *testing.T) {
		p := newPersistence(t)
		record := NewRecord(1, 1000)

		require.NoError(t, p.MarkClaimed(record))

		claimed, err := p.HasClaimed(record.Account)
		require.NoError(t, err)
		assert.True(t, claimed)

		loaded, err := p.LoadClaim(record.Account)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, record.ClaimID, loaded.ClaimID)
		assert.Equal(t, record.Account, loaded.Account)
		assert.Equal(t, 0, record.Amount.Cmp(loaded.Amount))
		assert.Equal(t, record.ClaimedAt, loaded.ClaimedAt)
	})

	t.Run("LoadClaim_NotFound", func(t *testing.T) {
		p := newPersistence(t)
		account := common.HexToAddress("0x00000000000000000000000000000000deadbeef")

		loaded, err := p.LoadClaim(account)
		require.NoError(t, err)
		assert.Nil(t, loaded)

		claimed, err := p.HasClaimed(account)
		require.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("MarkClaimed_Twice", func(t *testing.T) {
		p := newPersistence(t)
		first := NewRecord(2, 1000)
		require.NoError(t, p.MarkClaimed(first))

		second := NewRecord(2, 2000)
		err := p.MarkClaimed(second)
		require.ErrorIs(t, err, persistence.ErrAlreadyClaimed)

		// first record is untouched
		loaded, err := p.LoadClaim(first.Account)
		require.NoError(t, err)
		assert.Equal(t, first.ClaimID, loaded.ClaimID)
	})

	t.Run("MarkClaimed_Invalid", func(t *testing.T) {
		p := newPersistence(t)
		require.Error(t, p.MarkClaimed(nil))
		require.Error(t, p.MarkClaimed(&types.ClaimRecord{Account: common.HexToAddress("0x01"), Amount: big.NewInt(1)}))
	})

	t.Run("MarkClaimed_Concurrent", func(t *testing.T) {
		p := newPersistence(t)
		const attempts = 16

		var successes atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := p.MarkClaimed(NewRecord(3, int64(i)))
				if err == nil {
					successes.Add(1)
					return
				}
				assert.ErrorIs(t, err, persistence.ErrAlreadyClaimed)
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(1), successes.Load())
	})

	t.Run("RevertClaim", func(t *testing.T) {
		p := newPersistence(t)
		record := NewRecord(4, 1000)
		require.NoError(t, p.MarkClaimed(record))
		require.NoError(t, p.RevertClaim(record.Account))

		claimed, err := p.HasClaimed(record.Account)
		require.NoError(t, err)
		assert.False(t, claimed)

		// the account can be claimed again after a revert
		require.NoError(t, p.MarkClaimed(NewRecord(4, 2000)))
	})

	t.Run("RevertClaim_Idempotent", func(t *testing.T) {
		p := newPersistence(t)
		require.NoError(t, p.RevertClaim(common.HexToAddress("0x00000000000000000000000000000000000009a1")))
	})

	t.Run("ListClaims", func(t *testing.T) {
		p := newPersistence(t)

		empty, err := p.ListClaims()
		require.NoError(t, err)
		assert.Empty(t, empty)

		// insert out of order
		for _, n := range []int64{5, 3, 4, 1, 2} {
			require.NoError(t, p.MarkClaimed(NewRecord(n, n*100)))
		}

		claims, err := p.ListClaims()
		require.NoError(t, err)
		require.Len(t, claims, 5)
		for i, claim := range claims {
			assert.Equal(t, int64((i+1)*100), claim.ClaimedAt, fmt.Sprintf("claim %d out of order", i))
		}
	})

	t.Run("AirdropState", func(t *testing.T) {
		p := newPersistence(t)

		loaded, err := p.LoadAirdropState()
		require.NoError(t, err)
		assert.Nil(t, loaded)

		state := &persistence.AirdropState{
			MerkleRoot:        "0xbebd81410bae32365fa70771591b2b096b5724e617e7b454dd7c811b14a4de62",
			TokenAddress:      "0x00000000000000000000000000000000000000aA",
			ChainID:           "31337",
			VerifyingContract: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
			CreatedAt:         1700000000,
		}
		require.NoError(t, p.SaveAirdropState(state))

		loaded, err = p.LoadAirdropState()
		require.NoError(t, err)
		assert.Equal(t, state, loaded)

		require.Error(t, p.SaveAirdropState(nil))
	})

	t.Run("Closed", func(t *testing.T) {
		p := newPersistence(t)
		require.NoError(t, p.HealthCheck())

		require.NoError(t, p.Close())
		require.NoError(t, p.Close(), "Close should be idempotent")

		account := common.HexToAddress("0x01")
		assert.ErrorIs(t, p.MarkClaimed(NewRecord(1, 1)), persistence.ErrClosed)
		assert.ErrorIs(t, p.RevertClaim(account), persistence.ErrClosed)
		_, err := p.HasClaimed(account)
		assert.ErrorIs(t, err, persistence.ErrClosed)
		_, err = p.LoadClaim(account)
		assert.ErrorIs(t, err, persistence.ErrClosed)
		_, err = p.ListClaims()
		assert.ErrorIs(t, err, persistence.ErrClosed)
		_, err = p.LoadAirdropState()
		assert.ErrorIs(t, err, persistence.ErrClosed)
		assert.ErrorIs(t, p.HealthCheck(), persistence.ErrClosed)
	})
}
