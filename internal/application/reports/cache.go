package reports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const capTableKey = "reports:captable"

// Cache is a read-through Redis cache for report payloads. A nil client
// disables caching entirely; callers never need to check.
type Cache struct {
	Rdb *redis.Client
	TTL time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{Rdb: rdb, TTL: ttl}
}

func (c *Cache) get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.Rdb == nil {
		return false
	}
	b, err := c.Rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	return json.Unmarshal(b, dest) == nil
}

func (c *Cache) set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.Rdb == nil {
		return
	}
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	// Best effort: a failed cache write must not fail the request.
	_ = c.Rdb.Set(ctx, key, b, c.TTL).Err()
}

// InvalidateCapTable drops the cached cap table. Mutation handlers call
// this after any write that changes ownership.
func (c *Cache) InvalidateCapTable(ctx context.Context) {
	if c == nil || c.Rdb == nil {
		return
	}
	_ = c.Rdb.Del(ctx, capTableKey).Err()
}
