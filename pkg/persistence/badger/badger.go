package badger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

// Key prefixes for namespacing
const (
	keyPrefixClaim       = "claim:"
	keyAirdropState      = "airdrop:state"
	keySchemaVersion     = "metadata:schema_version"
	currentSchemaVersion = "v1"

	// conflicting transactions on the same claim key are retried this many times
	maxConflictRetries = 5
)

// BadgerPersistence is a production-ready persistence implementation using Badger.
// Provides durable, disk-based storage with ACID guarantees.
type BadgerPersistence struct {
	db       *badgerdb.DB
	logger   *zap.Logger
	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

// NewBadgerPersistence creates a new Badger-backed persistence layer.
// The database is opened at the specified path with SyncWrites enabled for durability.
// A background goroutine is started for garbage collection.
func NewBadgerPersistence(dataPath string, logger *zap.Logger) (*BadgerPersistence, error) {
	// Convert to absolute path
	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	opts := badgerdb.DefaultOptions(absPath)
	opts.Logger = newClaimStoreLogger(logger)
	opts.SyncWrites = true // a claim is only acknowledged once it is on disk
	opts.CompactL0OnClose = true
	opts.NumVersionsToKeep = 1

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", absPath, err)
	}

	bp := &BadgerPersistence{
		db:     db,
		logger: logger,
	}

	if err := bp.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// Start background GC
	ctx, cancel := context.WithCancel(context.Background())
	bp.gcCancel = cancel
	bp.gcWg.Add(1)
	go bp.runGC(ctx)

	logger.Sugar().Infow("Badger persistence initialized", "path", absPath)

	return bp, nil
}

// initSchema initializes or validates the schema version
func (b *BadgerPersistence) initSchema() error {
	return b.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keySchemaVersion))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return txn.Set([]byte(keySchemaVersion), []byte(currentSchemaVersion))
		}
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		var existingVersion string
		err = item.Value(func(val []byte) error {
			existingVersion = string(val)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to read schema version value: %w", err)
		}

		if existingVersion != currentSchemaVersion {
			return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
		}

		return nil
	})
}

// runGC runs periodic garbage collection in the background
func (b *BadgerPersistence) runGC(ctx context.Context) {
	defer b.gcWg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := b.db.RunValueLogGC(0.5)
			if err != nil && !errors.Is(err, badgerdb.ErrNoRewrite) {
				b.logger.Sugar().Warnw("Badger GC error", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func claimKey(account common.Address) []byte {
	return []byte(keyPrefixClaim + strings.ToLower(account.Hex()))
}

// MarkClaimed records a claim inside a single transaction that first checks
// the key is absent. Concurrent writers to the same key conflict and are retried,
// at which point they observe the committed record.
func (b *BadgerPersistence) MarkClaimed(record *types.ClaimRecord) error {
	if err := persistence.ValidateClaimRecord(record); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return persistence.ErrClosed
	}

	data, err := persistence.MarshalClaimRecord(record)
	if err != nil {
		return fmt.Errorf("failed to marshal ClaimRecord: %w", err)
	}

	key := claimKey(record.Account)
	for attempt := 0; ; attempt++ {
		err = b.db.Update(func(txn *badgerdb.Txn) error {
			_, err := txn.Get(key)
			if err == nil {
				return persistence.ErrAlreadyClaimed
			}
			if !errors.Is(err, badgerdb.ErrKeyNotFound) {
				return err
			}
			return txn.Set(key, data)
		})
		if errors.Is(err, badgerdb.ErrConflict) && attempt < maxConflictRetries {
			continue
		}
		break
	}

	if errors.Is(err, persistence.ErrAlreadyClaimed) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to mark claim: %w", err)
	}
	return nil
}

// RevertClaim removes the claim record for account
func (b *BadgerPersistence) RevertClaim(account common.Address) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return persistence.ErrClosed
	}

	return b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(claimKey(account))
	})
}

// HasClaimed reports whether a claim record exists for account
func (b *BadgerPersistence) HasClaimed(account common.Address) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return false, persistence.ErrClosed
	}

	var exists bool
	err := b.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(claimKey(account))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to check claim: %w", err)
	}

	return exists, nil
}

// LoadClaim retrieves the claim record for account
func (b *BadgerPersistence) LoadClaim(account common.Address) (*types.ClaimRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, persistence.ErrClosed
	}

	data, err := b.get(claimKey(account))
	if err != nil {
		return nil, fmt.Errorf("failed to load ClaimRecord: %w", err)
	}
	if data == nil {
		return nil, nil // Not found
	}

	record, err := persistence.UnmarshalClaimRecord(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal ClaimRecord: %w", err)
	}

	return record, nil
}

// ListClaims returns all claim records sorted by claim time
func (b *BadgerPersistence) ListClaims() ([]*types.ClaimRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, persistence.ErrClosed
	}

	records := make([]*types.ClaimRecord, 0)

	err := b.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefixClaim)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			var data []byte
			err := item.Value(func(val []byte) error {
				data = append([]byte{}, val...) // Copy value
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to read value: %w", err)
			}

			record, err := persistence.UnmarshalClaimRecord(data)
			if err != nil {
				b.logger.Sugar().Warnw("Failed to unmarshal ClaimRecord, skipping",
					"key", string(item.Key()), "error", err)
				continue
			}

			records = append(records, record)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list ClaimRecords: %w", err)
	}

	persistence.SortClaims(records)

	return records, nil
}

// SaveAirdropState persists the airdrop state
func (b *BadgerPersistence) SaveAirdropState(state *persistence.AirdropState) error {
	if state == nil {
		return fmt.Errorf("cannot save nil AirdropState")
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return persistence.ErrClosed
	}

	data, err := persistence.MarshalAirdropState(state)
	if err != nil {
		return fmt.Errorf("failed to marshal AirdropState: %w", err)
	}

	return b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(keyAirdropState), data)
	})
}

// LoadAirdropState retrieves the airdrop state
func (b *BadgerPersistence) LoadAirdropState() (*persistence.AirdropState, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, persistence.ErrClosed
	}

	data, err := b.get([]byte(keyAirdropState))
	if err != nil {
		return nil, fmt.Errorf("failed to load AirdropState: %w", err)
	}
	if data == nil {
		return nil, nil // First run
	}

	state, err := persistence.UnmarshalAirdropState(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal AirdropState: %w", err)
	}

	return state, nil
}

// get returns a copy of the value at key, or nil when absent
func (b *BadgerPersistence) get(key []byte) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...) // Copy value
			return nil
		})
	})
	return data, err
}

// Close shuts down the persistence layer
func (b *BadgerPersistence) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil // Already closed, idempotent
	}
	b.closed = true

	// Stop GC goroutine
	if b.gcCancel != nil {
		b.gcCancel()
	}
	b.gcWg.Wait()

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger database: %w", err)
	}

	b.logger.Sugar().Info("Badger persistence closed")
	return nil
}

// HealthCheck verifies the persistence layer is operational
func (b *BadgerPersistence) HealthCheck() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return persistence.ErrClosed
	}

	// Try a simple read operation to verify database is accessible
	return b.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte(keySchemaVersion))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return fmt.Errorf("schema version not found - database may be corrupted")
		}
		return err
	})
}
