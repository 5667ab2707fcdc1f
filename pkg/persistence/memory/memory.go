package memory

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

// MemoryPersistence is an in-memory implementation of IClaimPersistence.
// This implementation is intended for TESTING ONLY.
//
// All data is stored in memory and will be lost when the process exits.
// Thread-safe using sync.RWMutex for concurrent access.
// Deep copies data to prevent external mutation.
type MemoryPersistence struct {
	mu sync.RWMutex

	// Claim storage: account -> ClaimRecord
	claims map[common.Address]*types.ClaimRecord

	// Airdrop state
	airdropState *persistence.AirdropState

	// Closed flag
	closed bool
}

// NewMemoryPersistence creates a new in-memory persistence layer.
// Prints a loud warning since this should only be used for testing.
func NewMemoryPersistence() *MemoryPersistence {
	fmt.Println("⚠️  WARNING: Using in-memory persistence - ALL CLAIMS WILL BE FORGOTTEN ON RESTART")
	fmt.Println("⚠️  A restarted server would pay every account again. Set AIRDROP_PERSISTENCE_TYPE=badger for production")

	return &MemoryPersistence{
		claims: make(map[common.Address]*types.ClaimRecord),
	}
}

// MarkClaimed records a claim unless one already exists for the account.
func (m *MemoryPersistence) MarkClaimed(record *types.ClaimRecord) error {
	if err := persistence.ValidateClaimRecord(record); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	if _, exists := m.claims[record.Account]; exists {
		return persistence.ErrAlreadyClaimed
	}

	m.claims[record.Account] = persistence.CopyClaimRecord(record)
	return nil
}

// RevertClaim removes the claim record for account.
func (m *MemoryPersistence) RevertClaim(account common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	delete(m.claims, account)
	return nil
}

// HasClaimed reports whether account has a claim record.
func (m *MemoryPersistence) HasClaimed(account common.Address) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false, persistence.ErrClosed
	}

	_, exists := m.claims[account]
	return exists, nil
}

// LoadClaim retrieves the claim record for account.
func (m *MemoryPersistence) LoadClaim(account common.Address) (*types.ClaimRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	record, exists := m.claims[account]
	if !exists {
		return nil, nil // Not found is not an error
	}

	return persistence.CopyClaimRecord(record), nil
}

// ListClaims returns all claim records sorted by claim time.
func (m *MemoryPersistence) ListClaims() ([]*types.ClaimRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	result := make([]*types.ClaimRecord, 0, len(m.claims))
	for _, record := range m.claims {
		result = append(result, persistence.CopyClaimRecord(record))
	}
	persistence.SortClaims(result)

	return result, nil
}

// SaveAirdropState persists the airdrop state.
func (m *MemoryPersistence) SaveAirdropState(state *persistence.AirdropState) error {
	if state == nil {
		return fmt.Errorf("cannot save nil AirdropState")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	stateCopy := *state
	m.airdropState = &stateCopy
	return nil
}

// LoadAirdropState retrieves the airdrop state.
func (m *MemoryPersistence) LoadAirdropState() (*persistence.AirdropState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	if m.airdropState == nil {
		return nil, nil
	}

	stateCopy := *m.airdropState
	return &stateCopy, nil
}

// Close shuts down the persistence layer.
func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// HealthCheck verifies the persistence layer is operational.
func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return persistence.ErrClosed
	}

	return nil
}
