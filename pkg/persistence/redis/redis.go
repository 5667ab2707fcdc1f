package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

// Key prefixes for namespacing in Redis
const (
	keyPrefixClaim       = "airdrop:claim:"
	keyAirdropState      = "airdrop:state"
	keySchemaVersion     = "airdrop:metadata:schema_version"
	currentSchemaVersion = "v1"

	// Key set for listing operations (Redis doesn't support prefix iteration natively)
	keySetClaims = "airdrop:claims:index"

	operationTimeout = 5 * time.Second
)

// markClaimedScript sets the claim key only if absent and indexes it in the
// same server-side step, so a record is never visible without its index entry.
//
// KEYS[1] claim key, KEYS[2] index set, ARGV[1] record, ARGV[2] index member
var markClaimedScript = redis.NewScript(`
if redis.call("SETNX", KEYS[1], ARGV[1]) == 1 then
	redis.call("SADD", KEYS[2], ARGV[2])
	return 1
end
return 0
`)

// RedisPersistence is a production-ready persistence implementation using Redis.
// Provides durable, distributed storage suitable for cloud-native deployments.
type RedisPersistence struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string // Custom prefix for all keys
	mu        sync.RWMutex
	closed    bool
}

// RedisConfig holds the configuration for connecting to Redis
type RedisConfig struct {
	// Address is the Redis server address (host:port)
	Address string
	// Password is the optional Redis password
	Password string
	// DB is the Redis database number (0-15)
	DB int
	// KeyPrefix is an optional custom prefix for all keys (for multi-tenant setups).
	// If set, this prefix is prepended to all keys, e.g., "drop1:" would result in
	// keys like "drop1:airdrop:claim:0x...". If empty, keys use the default "airdrop:" prefix.
	KeyPrefix string
}

// NewRedisPersistence creates a new Redis-backed persistence layer.
func NewRedisPersistence(cfg *RedisConfig, logger *zap.Logger) (*RedisPersistence, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}

	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	rp := &RedisPersistence{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	if err := rp.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if cfg.KeyPrefix != "" {
		logger.Sugar().Infow("Redis persistence initialized", "address", cfg.Address, "db", cfg.DB, "key_prefix", cfg.KeyPrefix)
	} else {
		logger.Sugar().Infow("Redis persistence initialized", "address", cfg.Address, "db", cfg.DB)
	}

	return rp, nil
}

// prefixKey adds the custom key prefix (if configured) to a key
func (r *RedisPersistence) prefixKey(key string) string {
	if r.keyPrefix == "" {
		return key
	}
	return r.keyPrefix + key
}

func (r *RedisPersistence) claimKey(member string) string {
	return r.prefixKey(keyPrefixClaim + member)
}

func indexMember(account common.Address) string {
	return strings.ToLower(account.Hex())
}

// initSchema initializes or validates the schema version
func (r *RedisPersistence) initSchema(ctx context.Context) error {
	schemaKey := r.prefixKey(keySchemaVersion)

	// SETNX so two servers starting together agree on the version
	if err := r.client.SetNX(ctx, schemaKey, currentSchemaVersion, 0).Err(); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}

	existingVersion, err := r.client.Get(ctx, schemaKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if existingVersion != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
	}

	return nil
}

// MarkClaimed records a claim unless one already exists for the account
func (r *RedisPersistence) MarkClaimed(record *types.ClaimRecord) error {
	if err := persistence.ValidateClaimRecord(record); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	data, err := persistence.MarshalClaimRecord(record)
	if err != nil {
		return fmt.Errorf("failed to marshal ClaimRecord: %w", err)
	}

	member := indexMember(record.Account)
	keys := []string{r.claimKey(member), r.prefixKey(keySetClaims)}

	set, err := markClaimedScript.Run(ctx, r.client, keys, data, member).Int()
	if err != nil {
		return fmt.Errorf("failed to mark claim: %w", err)
	}
	if set == 0 {
		return persistence.ErrAlreadyClaimed
	}

	return nil
}

// RevertClaim removes the claim record for account
func (r *RedisPersistence) RevertClaim(account common.Address) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	member := indexMember(account)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.claimKey(member))
		pipe.SRem(ctx, r.prefixKey(keySetClaims), member)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to revert claim: %w", err)
	}

	return nil
}

// HasClaimed reports whether a claim record exists for account
func (r *RedisPersistence) HasClaimed(account common.Address) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return false, persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	n, err := r.client.Exists(ctx, r.claimKey(indexMember(account))).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check claim: %w", err)
	}

	return n > 0, nil
}

// LoadClaim retrieves the claim record for account
func (r *RedisPersistence) LoadClaim(account common.Address) (*types.ClaimRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, r.claimKey(indexMember(account))).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ClaimRecord: %w", err)
	}

	record, err := persistence.UnmarshalClaimRecord(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal ClaimRecord: %w", err)
	}

	return record, nil
}

// ListClaims returns all claim records sorted by claim time
func (r *RedisPersistence) ListClaims() ([]*types.ClaimRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	indexKey := r.prefixKey(keySetClaims)

	members, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list claim accounts: %w", err)
	}

	if len(members) == 0 {
		return []*types.ClaimRecord{}, nil
	}

	keys := make([]string, len(members))
	for i, member := range members {
		keys[i] = r.claimKey(member)
	}

	// Fetch all values using MGET
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ClaimRecords: %w", err)
	}

	records := make([]*types.ClaimRecord, 0, len(values))
	for i, val := range values {
		if val == nil {
			// Key was in index but doesn't exist - clean up index
			r.client.SRem(ctx, indexKey, members[i])
			continue
		}

		data, ok := val.(string)
		if !ok {
			r.logger.Sugar().Warnw("Unexpected value type for ClaimRecord", "key", keys[i])
			continue
		}

		record, err := persistence.UnmarshalClaimRecord([]byte(data))
		if err != nil {
			r.logger.Sugar().Warnw("Failed to unmarshal ClaimRecord, skipping",
				"key", keys[i], "error", err)
			continue
		}

		records = append(records, record)
	}

	persistence.SortClaims(records)

	return records, nil
}

// SaveAirdropState persists the airdrop state
func (r *RedisPersistence) SaveAirdropState(state *persistence.AirdropState) error {
	if state == nil {
		return fmt.Errorf("cannot save nil AirdropState")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	data, err := persistence.MarshalAirdropState(state)
	if err != nil {
		return fmt.Errorf("failed to marshal AirdropState: %w", err)
	}

	if err := r.client.Set(ctx, r.prefixKey(keyAirdropState), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save AirdropState: %w", err)
	}

	return nil
}

// LoadAirdropState retrieves the airdrop state
func (r *RedisPersistence) LoadAirdropState() (*persistence.AirdropState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, r.prefixKey(keyAirdropState)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // First run
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AirdropState: %w", err)
	}

	state, err := persistence.UnmarshalAirdropState(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal AirdropState: %w", err)
	}

	return state, nil
}

// Close shuts down the persistence layer
func (r *RedisPersistence) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil // Already closed, idempotent
	}
	r.closed = true

	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	r.logger.Sugar().Info("Redis persistence closed")
	return nil
}

// HealthCheck verifies the persistence layer is operational
func (r *RedisPersistence) HealthCheck() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	// Ping Redis to check connectivity
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	// Verify schema version exists
	_, err := r.client.Get(ctx, r.prefixKey(keySchemaVersion)).Result()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("schema version not found - database may not be properly initialized")
	}
	if err != nil {
		return fmt.Errorf("failed to verify schema version: %w", err)
	}

	return nil
}
