package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds normalized profiles and batch progress in Redis with a TTL.
// Batch progress is the best-N-so-far list the batch matcher emits after
// each completed candidate.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func profileKey(kind, id string) string {
	return fmt.Sprintf("profile:%s:%s", kind, id)
}

func batchProgressKey(batchID string) string {
	return fmt.Sprintf("batch:%s:progress", batchID)
}

// SetProfile stores a normalized profile document under its kind and ID.
func (c *Cache) SetProfile(ctx context.Context, kind, id string, doc map[string]interface{}) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return c.client.Set(ctx, profileKey(kind, id), payload, c.ttl).Err()
}

// GetProfile loads a cached profile. Returns (nil, nil) on a cache miss.
func (c *Cache) GetProfile(ctx context.Context, kind, id string) (map[string]interface{}, error) {
	payload, err := c.client.Get(ctx, profileKey(kind, id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal cached profile: %w", err)
	}
	return doc, nil
}

// SetBatchProgress stores the interim best-N list for a running batch.
func (c *Cache) SetBatchProgress(ctx context.Context, batchID string, best interface{}) error {
	payload, err := json.Marshal(best)
	if err != nil {
		return fmt.Errorf("marshal batch progress: %w", err)
	}
	return c.client.Set(ctx, batchProgressKey(batchID), payload, c.ttl).Err()
}

// GetBatchProgress loads the interim best-N list. Returns (nil, nil) when
// the batch is unknown or expired.
func (c *Cache) GetBatchProgress(ctx context.Context, batchID string) ([]map[string]interface{}, error) {
	payload, err := c.client.Get(ctx, batchProgressKey(batchID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var best []map[string]interface{}
	if err := json.Unmarshal(payload, &best); err != nil {
		return nil, fmt.Errorf("unmarshal batch progress: %w", err)
	}
	return best, nil
}
