package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultDedupTTL = 10 * time.Minute

// Deduplicator claims event keys. Claim reports false when the key was
// already claimed within the TTL.
type Deduplicator interface {
	Claim(ctx context.Context, key string) (bool, error)
}

// MemoryDeduplicator is a process-local Deduplicator.
type MemoryDeduplicator struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

func NewMemoryDeduplicator(ttl time.Duration) *MemoryDeduplicator {
	return &MemoryDeduplicator{ttl: ttl, now: time.Now, seen: make(map[string]time.Time)}
}

func (d *MemoryDeduplicator) Claim(_ context.Context, key string) (bool, error) {
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()

	for k, exp := range d.seen {
		if !now.Before(exp) {
			delete(d.seen, k)
		}
	}
	if _, ok := d.seen[key]; ok {
		return false, nil
	}
	d.seen[key] = now.Add(d.ttl)
	return true, nil
}

// RedisDeduplicator shares claims between instances through SETNX.
type RedisDeduplicator struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisDeduplicator(client *redis.Client, ttl time.Duration) *RedisDeduplicator {
	return &RedisDeduplicator{client: client, ttl: ttl, prefix: "hikvision:event:"}
}

func (d *RedisDeduplicator) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+key, 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim event key: %w", err)
	}
	return ok, nil
}
