package airdrop

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/claimEvents"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/metrics"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/signatureValidator"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/token"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/typedData"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

// DefaultEventTimeout bounds how long a committed claim waits to queue its Claimed event
const DefaultEventTimeout = 5 * time.Second

// ClaimLedgerConfig holds everything fixed for the lifetime of a ledger
type ClaimLedgerConfig struct {
	MerkleRoot   [32]byte
	Domain       *typedData.Domain
	Token        token.IAirdropToken
	Persistence  persistence.IClaimPersistence
	EventHandler claimEvents.IClaimEventHandler // Optional
	EventTimeout time.Duration                  // Optional, defaults to DefaultEventTimeout
	Logger       *zap.Logger                    // Optional, a no-op logger is used if nil
}

// ClaimLedger pays each account in the eligibility set its allocation exactly once.
//
// Claims are serialized: every Claim runs to completion, including disbursement,
// before the next is admitted.
type ClaimLedger struct {
	merkleRoot   [32]byte
	domain       *typedData.Domain
	token        token.IAirdropToken
	store        persistence.IClaimPersistence
	eventHandler claimEvents.IClaimEventHandler
	eventTimeout time.Duration
	logger       *zap.Logger

	now func() time.Time
	mu  sync.Mutex
}

// NewClaimLedger creates a ledger and pins the store to this root, token and domain.
// A store previously used with a different airdrop is refused.
func NewClaimLedger(cfg *ClaimLedgerConfig) (*ClaimLedger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("claim ledger config is required")
	}
	if cfg.MerkleRoot == ([32]byte{}) {
		return nil, fmt.Errorf("merkle root cannot be empty")
	}
	if err := cfg.Domain.Validate(); err != nil {
		return nil, fmt.Errorf("invalid domain: %w", err)
	}
	if cfg.Token == nil {
		return nil, fmt.Errorf("airdrop token is required")
	}
	if cfg.Persistence == nil {
		return nil, fmt.Errorf("persistence is required")
	}

	l := &ClaimLedger{
		merkleRoot:   cfg.MerkleRoot,
		domain:       cfg.Domain,
		token:        cfg.Token,
		store:        cfg.Persistence,
		eventHandler: cfg.EventHandler,
		eventTimeout: cfg.EventTimeout,
		logger:       cfg.Logger,
		now:          time.Now,
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	if l.eventTimeout <= 0 {
		l.eventTimeout = DefaultEventTimeout
	}

	if err := l.pinAirdropState(); err != nil {
		return nil, err
	}

	if claims, err := l.store.ListClaims(); err == nil {
		metrics.ClaimedAccounts.Set(float64(len(claims)))
	}

	l.logger.Sugar().Infow("Claim ledger initialized",
		"merkleRoot", common.Hash(l.merkleRoot).Hex(),
		"token", l.token.Address().Hex(),
		"chainId", l.domain.ChainID.String(),
		"verifyingContract", l.domain.VerifyingContract.Hex(),
	)

	return l, nil
}

func (l *ClaimLedger) airdropState() *persistence.AirdropState {
	return &persistence.AirdropState{
		MerkleRoot:        common.Hash(l.merkleRoot).Hex(),
		TokenAddress:      l.token.Address().Hex(),
		ChainID:           l.domain.ChainID.String(),
		VerifyingContract: l.domain.VerifyingContract.Hex(),
	}
}

func (l *ClaimLedger) pinAirdropState() error {
	current := l.airdropState()

	stored, err := l.store.LoadAirdropState()
	if err != nil {
		return fmt.Errorf("failed to load airdrop state: %w", err)
	}

	if stored == nil {
		current.CreatedAt = time.Now().Unix()
		if err := l.store.SaveAirdropState(current); err != nil {
			return fmt.Errorf("failed to save airdrop state: %w", err)
		}
		return nil
	}

	if err := stored.Matches(current); err != nil {
		return fmt.Errorf("claim store belongs to a different airdrop: %w", err)
	}
	return nil
}

// Claim pays amount to account if account signed (account, amount) under this
// ledger's domain, the pair is proven under the merkle root, and account has
// not claimed before. Once an account has claimed, every later Claim for it
// fails with ErrAlreadyClaimed whatever the other inputs are.
//
// Any failure leaves the account unclaimed, with one exception: when the token
// reports token.ErrOutcomeUnknown the claim stays recorded and
// ErrDisbursementFailure is returned, since the transfer may have landed.
//
// The Claimed event is queued after the ledger lock is released.
func (l *ClaimLedger) Claim(ctx context.Context, req *types.ClaimRequest) (*types.ClaimRecord, error) {
	start := time.Now()

	record, err := l.claim(ctx, req)

	result := ResultLabel(err)
	metrics.ClaimsTotal.WithLabelValues(result).Inc()
	metrics.ClaimDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, err
	}

	l.emitClaimed(ctx, record)

	return persistence.CopyClaimRecord(record), nil
}

func (l *ClaimLedger) claim(ctx context.Context, req *types.ClaimRequest) (*types.ClaimRecord, error) {
	if req == nil {
		return nil, fmt.Errorf("claim request is nil")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	claimed, err := l.store.HasClaimed(req.Account)
	if err != nil {
		return nil, fmt.Errorf("failed to check claim status: %w", err)
	}
	if claimed {
		l.logger.Sugar().Debugw("Rejected claim", "account", req.Account.Hex(), "reason", "already claimed")
		return nil, ErrAlreadyClaimed
	}

	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	digest, err := l.domain.ClaimDigest(req.Account, req.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to build claim digest: %w", err)
	}
	if !signatureValidator.IsValidSignature(req.Account, digest, req.Signature) {
		l.logger.Sugar().Debugw("Rejected claim", "account", req.Account.Hex(), "reason", "invalid signature")
		return nil, ErrInvalidSignature
	}

	leaf, err := merkle.HashLeaf(req.Account, req.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to derive leaf: %w", err)
	}
	if !merkle.VerifyProof(req.Proof, l.merkleRoot, leaf) {
		l.logger.Sugar().Debugw("Rejected claim", "account", req.Account.Hex(), "reason", "invalid proof")
		return nil, ErrInvalidProof
	}

	record := &types.ClaimRecord{
		ClaimID:   uuid.New().String(),
		Account:   req.Account,
		Amount:    new(big.Int).Set(req.Amount),
		ClaimedAt: l.now().Unix(),
	}

	// the claim is durable before any value moves
	if err := l.store.MarkClaimed(record); err != nil {
		if errors.Is(err, persistence.ErrAlreadyClaimed) {
			return nil, ErrAlreadyClaimed
		}
		return nil, fmt.Errorf("failed to record claim: %w", err)
	}

	// a started disbursement is not abandoned because the caller went away
	if err := l.token.Transfer(context.WithoutCancel(ctx), req.Account, req.Amount); err != nil {
		return nil, l.rollback(record, err)
	}

	metrics.ClaimedAccounts.Inc()
	if f, _ := new(big.Float).SetInt(req.Amount).Float64(); f > 0 {
		metrics.ClaimedAmount.Add(f)
	}

	l.logger.Sugar().Infow("Claim disbursed",
		"claimId", record.ClaimID,
		"account", record.Account.Hex(),
		"amount", record.Amount.String(),
	)

	return record, nil
}

// rollback undoes MarkClaimed after a failed transfer. When the transfer outcome
// is unknown the record is kept, since the tokens may already have moved.
func (l *ClaimLedger) rollback(record *types.ClaimRecord, transferErr error) error {
	if errors.Is(transferErr, token.ErrOutcomeUnknown) {
		metrics.ClaimRollbacks.WithLabelValues("outcome_unknown").Inc()
		l.logger.Sugar().Errorw("Disbursement outcome unknown, claim left recorded",
			"claimId", record.ClaimID,
			"account", record.Account.Hex(),
			"amount", record.Amount.String(),
			"error", transferErr,
		)
		return fmt.Errorf("%w: %w", ErrDisbursementFailure, transferErr)
	}

	if err := l.store.RevertClaim(record.Account); err != nil {
		metrics.ClaimRollbacks.WithLabelValues("revert_failed").Inc()
		l.logger.Sugar().Errorw("Failed to revert claim after disbursement failure",
			"claimId", record.ClaimID,
			"account", record.Account.Hex(),
			"transferError", transferErr,
			"error", err,
		)
		return fmt.Errorf("%w: %w (revert failed: %v)", ErrDisbursementFailure, transferErr, err)
	}

	metrics.ClaimRollbacks.WithLabelValues("reverted").Inc()
	l.logger.Sugar().Errorw("Disbursement failed, claim reverted",
		"claimId", record.ClaimID,
		"account", record.Account.Hex(),
		"error", transferErr,
	)
	return fmt.Errorf("%w: %w", ErrDisbursementFailure, transferErr)
}

func (l *ClaimLedger) emitClaimed(ctx context.Context, record *types.ClaimRecord) {
	if l.eventHandler == nil {
		return
	}

	eventCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.eventTimeout)
	defer cancel()

	if err := l.eventHandler.HandleClaimed(eventCtx, types.NewClaimedEvent(record)); err != nil {
		metrics.EventsDropped.Inc()
		l.logger.Sugar().Errorw("Failed to emit Claimed event",
			"claimId", record.ClaimID,
			"account", record.Account.Hex(),
			"error", err,
		)
	}
}

// GetMessageHash returns the digest account must sign to claim amount.
func (l *ClaimLedger) GetMessageHash(account common.Address, amount *big.Int) (common.Hash, error) {
	if err := validateAmount(amount); err != nil {
		return common.Hash{}, err
	}
	return l.domain.ClaimDigest(account, amount)
}

func (l *ClaimLedger) GetMerkleRoot() [32]byte {
	return l.merkleRoot
}

func (l *ClaimLedger) GetAirdropToken() token.IAirdropToken {
	return l.token
}

func (l *ClaimLedger) GetDomain() *typedData.Domain {
	return l.domain
}

// HasClaimed reports whether account has a recorded claim.
func (l *ClaimLedger) HasClaimed(account common.Address) (bool, error) {
	return l.store.HasClaimed(account)
}

// GetClaim returns the claim record for account, or nil if it has not claimed.
func (l *ClaimLedger) GetClaim(account common.Address) (*types.ClaimRecord, error) {
	return l.store.LoadClaim(account)
}

// HealthCheck reports whether the claim store is usable.
func (l *ClaimLedger) HealthCheck() error {
	return l.store.HealthCheck()
}

func validateAmount(amount *big.Int) error {
	if amount == nil {
		return fmt.Errorf("%w: amount is required", ErrInvalidAmount)
	}
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidAmount, amount.String())
	}
	if amount.BitLen() > 256 {
		return fmt.Errorf("%w: amount exceeds uint256", ErrInvalidAmount)
	}
	return nil
}
