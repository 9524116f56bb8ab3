// Package cache keeps solved plans keyed by a digest of the request,
// so identical seeded requests skip the search entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var ErrMiss = errors.New("cache miss")

// DefaultTTL bounds staleness of cached solutions.
const DefaultTTL = 10 * time.Minute

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis by URL. TTL <= 0 selects the default.
func New(url string, ttl time.Duration) (*Cache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{rdb: redis.NewClient(opt), ttl: ttl}, nil
}

// Digest derives the cache key from the canonical JSON of the request.
// Unseeded requests are nondeterministic and must not be cached; the
// caller checks that before calling.
func Digest(prefix string, req any) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return prefix + ":" + hex.EncodeToString(sum[:]), nil
}

func (c *Cache) Get(ctx context.Context, key string, dst any) error {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func (c *Cache) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

func (c *Cache) Close() error { return c.rdb.Close() }
