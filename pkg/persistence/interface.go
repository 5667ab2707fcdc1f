package persistence

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

var (
	// ErrAlreadyClaimed is returned by MarkClaimed when a record already exists for the account
	ErrAlreadyClaimed = errors.New("claim already recorded for account")

	// ErrClosed is returned by every operation after Close
	ErrClosed = errors.New("persistence layer is closed")
)

// IClaimPersistence defines the interface for persisting claim state across restarts.
// All implementations must be thread-safe as claims are submitted concurrently.
//
// The interface supports:
// - Claim records (atomic mark, compensating revert, lookup, listing)
// - Airdrop state pinning (root, token and domain a data directory belongs to)
// - Lifecycle management (close, health check)
type IClaimPersistence interface {
	// Claim Records

	// MarkClaimed atomically records a claim if and only if none exists for
	// record.Account. Returns ErrAlreadyClaimed if one does.
	MarkClaimed(record *types.ClaimRecord) error

	// RevertClaim removes the claim record for account. It exists solely to
	// undo a MarkClaimed whose disbursement failed.
	// Idempotent - returns nil if no record exists.
	RevertClaim(account common.Address) error

	// HasClaimed reports whether a claim record exists for account.
	HasClaimed(account common.Address) (bool, error)

	// LoadClaim retrieves the claim record for account.
	// Returns nil if none exists, error only on storage failure.
	LoadClaim(account common.Address) (*types.ClaimRecord, error)

	// ListClaims returns all claim records sorted by ClaimedAt (ascending).
	// Returns empty slice if none exist, error only on storage failure.
	ListClaims() ([]*types.ClaimRecord, error)

	// Airdrop State

	// SaveAirdropState persists the airdrop this store belongs to.
	// Overwrites any existing state.
	SaveAirdropState(state *AirdropState) error

	// LoadAirdropState retrieves the airdrop state.
	// Returns nil state if none exists (first run), error only on storage failure.
	LoadAirdropState() (*AirdropState, error)

	// Lifecycle Management

	// Close cleanly shuts down the persistence layer.
	// Idempotent - safe to call multiple times.
	// After Close(), all other operations should return ErrClosed.
	Close() error

	// HealthCheck verifies the persistence layer is operational.
	// Returns nil if healthy, error describing the problem if not.
	HealthCheck() error
}
