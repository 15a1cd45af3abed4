package events

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduplicator remembers which events were already handled, so a redelivered
// DocumentCreatedEvent is not translated twice.
type Deduplicator interface {
	// Claim returns false when key was claimed within the TTL.
	Claim(ctx context.Context, key string) (bool, error)
	// Forget releases a claim so the event can be processed again.
	Forget(ctx context.Context, key string) error
}

// DedupKey identifies the work of translating one title of one document.
func DedupKey(documentID int64, title string) string {
	sum := sha256.Sum256([]byte(title))
	return strconv.FormatInt(documentID, 10) + ":" + hex.EncodeToString(sum[:8])
}

// MemoryDeduplicator keeps claims in a map with expiry.
type MemoryDeduplicator struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	claims map[string]time.Time
}

func NewMemoryDeduplicator(ttl time.Duration) *MemoryDeduplicator {
	return &MemoryDeduplicator{ttl: ttl, now: time.Now, claims: make(map[string]time.Time)}
}

func (d *MemoryDeduplicator) Claim(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	for k, exp := range d.claims {
		if now.After(exp) {
			delete(d.claims, k)
		}
	}
	if _, ok := d.claims[key]; ok {
		return false, nil
	}
	d.claims[key] = now.Add(d.ttl)
	return true, nil
}

func (d *MemoryDeduplicator) Forget(_ context.Context, key string) error {
	d.mu.Lock()
	delete(d.claims, key)
	d.mu.Unlock()
	return nil
}

// RedisDeduplicator shares claims between worker replicas through SET NX.
type RedisDeduplicator struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisDeduplicator(client redis.UniversalClient, ttl time.Duration) *RedisDeduplicator {
	return &RedisDeduplicator{client: client, prefix: "docflow:translated:", ttl: ttl}
}

func (d *RedisDeduplicator) Claim(ctx context.Context, key string) (bool, error) {
	return d.client.SetNX(ctx, d.prefix+key, 1, d.ttl).Result()
}

func (d *RedisDeduplicator) Forget(ctx context.Context, key string) error {
	return d.client.Del(ctx, d.prefix+key).Err()
}
