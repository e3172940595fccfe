package verification

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

// outcomeKeyPrefix namespaces outcome keys in shared stores.
const outcomeKeyPrefix = "verify_outcome:"

// Outcome is the remembered result of a finished attempt.
type Outcome struct {
	Status Status `json:"status"`
}

// OutcomeStore remembers outcomes by token key for a limited time.
type OutcomeStore interface {
	Load(ctx context.Context, key string) (Outcome, bool, error)
	Save(ctx context.Context, key string, outcome Outcome, ttl time.Duration) error
}

// TokenKey derives the store key for a token. Raw tokens are never used as
// keys so a store dump does not leak usable links.
func TokenKey(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return outcomeKeyPrefix + hex.EncodeToString(sum[:])
}

// --- In-memory store ---

type memoryItem struct {
	outcome Outcome
	expires time.Time
}

// MemoryStore is an in-process OutcomeStore. It is only correct for
// single-instance deployments.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem), now: time.Now}
}

// Load returns the outcome for key if present and unexpired.
func (m *MemoryStore) Load(_ context.Context, key string) (Outcome, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok {
		return Outcome{}, false, nil
	}
	if !it.expires.IsZero() && m.now().After(it.expires) {
		delete(m.items, key)
		return Outcome{}, false, nil
	}
	return it.outcome, true, nil
}

// Save stores outcome under key. A non-positive ttl never expires.
// Expired entries are swept on the way through, so keys that are never
// loaded again do not accumulate.
func (m *MemoryStore) Save(_ context.Context, key string, outcome Outcome, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, it := range m.items {
		if !it.expires.IsZero() && now.After(it.expires) {
			delete(m.items, k)
		}
	}

	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	m.items[key] = memoryItem{outcome: outcome, expires: exp}
	return nil
}

// --- Redis store ---

// RedisStore keeps outcomes in Redis so every instance behind a load
// balancer replays the same result.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a RedisStore on rdb.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Load returns the outcome for key if present.
func (r *RedisStore) Load(ctx context.Context, key string) (Outcome, bool, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return Outcome{}, false, nil
	}
	if err != nil {
		return Outcome{}, false, fmt.Errorf("reading outcome: %w", err)
	}
	var out Outcome
	if err := json.Unmarshal(b, &out); err != nil {
		return Outcome{}, false, fmt.Errorf("decoding outcome: %w", err)
	}
	return out, true, nil
}

// Save stores outcome under key with ttl.
func (r *RedisStore) Save(ctx context.Context, key string, outcome Outcome, ttl time.Duration) error {
	b, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("encoding outcome: %w", err)
	}
	if err := r.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("writing outcome: %w", err)
	}
	return nil
}
