// Package cache keeps package balance snapshots in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/trainer-billing/internal/domain"
)

// DefaultInvalidationHold is how long an invalidated key refuses new snapshots.
const DefaultInvalidationHold = 30 * time.Second

// invalidatedMarker replaces a snapshot on invalidation. Set never overwrites
// it, so a reader that loaded the row before a commit cannot cache the old
// balance after the commit invalidated it. The window left is a reader slower
// than the hold.
const invalidatedMarker = "invalidated"

// BalanceCache is a read-through cache of package balances. A nil client
// disables caching: reads always miss and writes are no-ops.
type BalanceCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	hold   time.Duration
}

func NewBalanceCache(client *redis.Client, prefix string, ttl time.Duration) *BalanceCache {
	return &BalanceCache{client: client, prefix: prefix, ttl: ttl, hold: DefaultInvalidationHold}
}

// Key returns the Redis key holding the balance of packageID.
func (c *BalanceCache) Key(packageID uuid.UUID) string {
	return fmt.Sprintf("%spackage:%s:balance", c.prefix, packageID)
}

// Get returns the cached balance. The bool is false on a miss.
func (c *BalanceCache) Get(ctx context.Context, packageID uuid.UUID) (*domain.PackageBalance, bool, error) {
	if c.client == nil {
		return nil, false, nil
	}

	raw, err := c.client.Get(ctx, c.Key(packageID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get balance %s: %w", packageID, err)
	}
	if string(raw) == invalidatedMarker {
		return nil, false, nil
	}

	var balance domain.PackageBalance
	if err := json.Unmarshal(raw, &balance); err != nil {
		return nil, false, fmt.Errorf("decode balance %s: %w", packageID, err)
	}

	return &balance, true, nil
}

// Set stores balance unless the key already holds a snapshot or an
// invalidation marker.
func (c *BalanceCache) Set(ctx context.Context, balance domain.PackageBalance) error {
	if c.client == nil {
		return nil
	}

	raw, err := json.Marshal(balance)
	if err != nil {
		return fmt.Errorf("encode balance %s: %w", balance.PackageID, err)
	}

	if err := c.client.SetNX(ctx, c.Key(balance.PackageID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set balance %s: %w", balance.PackageID, err)
	}

	return nil
}

// Invalidate replaces the cached balance of every given package with an
// invalidation marker held for c.hold.
func (c *BalanceCache) Invalidate(ctx context.Context, packageIDs ...uuid.UUID) error {
	if c.client == nil || len(packageIDs) == 0 {
		return nil
	}

	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range packageIDs {
			pipe.Set(ctx, c.Key(id), invalidatedMarker, c.hold)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate balances: %w", err)
	}

	return nil
}
