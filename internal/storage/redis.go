package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResultCache keeps recent parse responses so an identical request within the
// TTL is answered without fetching the sites again.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultCache(addr, password string, db int, ttl time.Duration) *ResultCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &ResultCache{client: rdb, ttl: ttl}
}

func (c *ResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Key derives the cache key for a normalized request payload.
func Key(payload []byte) string {
	sum := sha256.Sum256(payload)
	return "parse:" + hex.EncodeToString(sum[:])
}

func (c *ResultCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *ResultCache) Set(ctx context.Context, key string, body []byte) error {
	return c.client.Set(ctx, key, body, c.ttl).Err()
}

func (c *ResultCache) Close() error {
	return c.client.Close()
}
