package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatusResult is the cached outcome of a pipeline status evaluation.
type StatusResult struct {
	Label       string `json:"label"`
	Priority    int    `json:"priority"`
	Description string `json:"description"`
}

// StatusCache stores evaluated pipeline statuses in redis so list views do
// not re-run the rule set for every buyer on every request. Entries expire
// on their own; writes after a sync run simply overwrite.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatusCache creates a redis-backed status cache.
func NewStatusCache(client *redis.Client, ttl time.Duration) *StatusCache {
	return &StatusCache{client: client, ttl: ttl}
}

func (c *StatusCache) key(buyerCode string) string {
	return fmt.Sprintf("status:buyer:%s", buyerCode)
}

// Get returns the cached status for a buyer, or ok=false on a miss.
func (c *StatusCache) Get(ctx context.Context, buyerCode string) (StatusResult, bool, error) {
	var result StatusResult
	data, err := c.client.Get(ctx, c.key(buyerCode)).Bytes()
	if err == redis.Nil {
		return result, false, nil
	}
	if err != nil {
		return result, false, fmt.Errorf("status cache get: %w", err)
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, false, fmt.Errorf("status cache decode: %w", err)
	}
	return result, true, nil
}

// Set stores the status for a buyer with the configured TTL.
func (c *StatusCache) Set(ctx context.Context, buyerCode string, result StatusResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("status cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key(buyerCode), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("status cache set: %w", err)
	}
	return nil
}

// Delete removes the cached status for a buyer.
func (c *StatusCache) Delete(ctx context.Context, buyerCode string) error {
	if err := c.client.Del(ctx, c.key(buyerCode)).Err(); err != nil {
		return fmt.Errorf("status cache delete: %w", err)
	}
	return nil
}
