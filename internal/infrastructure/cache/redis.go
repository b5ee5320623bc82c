// Package cache keeps decoded feed links in Redis so repeated runs skip the
// throttled decoding service.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"EnterpriseRiskNews/internal/ports"
)

const (
	keyPrefix  = "risknews:link:"
	defaultTTL = 7 * 24 * time.Hour
)

// LinkCache implements ports.LinkCache on a Redis client.
type LinkCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.LinkCache = (*LinkCache)(nil)

// NewLinkCache wraps an existing client; ttl <= 0 uses seven days.
func NewLinkCache(client *redis.Client, ttl time.Duration) *LinkCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &LinkCache{client: client, ttl: ttl}
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr string, ttl time.Duration) (*LinkCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewLinkCache(client, ttl), nil
}

// Get returns the decoded URL stored for an obfuscated link.
func (c *LinkCache) Get(ctx context.Context, obfuscated string) (string, bool, error) {
	val, err := c.client.Get(ctx, key(obfuscated)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get cached link: %w", err)
	}
	return val, true, nil
}

// Set stores a decoded URL.
func (c *LinkCache) Set(ctx context.Context, obfuscated, decoded string) error {
	if err := c.client.Set(ctx, key(obfuscated), decoded, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached link: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *LinkCache) Close() error {
	return c.client.Close()
}

func key(obfuscated string) string {
	sum := sha256.Sum256([]byte(obfuscated))
	return keyPrefix + hex.EncodeToString(sum[:])
}
