package analyzefeedback

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"desk-feedback-workers/internal/analytics"
)

const cacheKeyPrefix = "feedback:analysis:"

// Cache stores batch results under a hash of the lexicon, the analyzer config
// and the records, so any change to one of them produces a new key.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache returns nil when caching is disabled.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

func CacheKey(lexicon string, engine analytics.Config, records []analytics.FeedbackRecord) (string, error) {
	payload, err := json.Marshal(struct {
		Lexicon string                     `json:"lexicon"`
		Engine  analytics.Config           `json:"engine"`
		Records []analytics.FeedbackRecord `json:"records"`
	}{lexicon, engine, records})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return cacheKeyPrefix + hex.EncodeToString(sum[:]), nil
}

// Get returns the cached result, or false on a miss.
func (c *Cache) Get(ctx context.Context, key string) (*analytics.BatchResult, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var result analytics.BatchResult
	if err := json.Unmarshal(val, &result); err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, result *analytics.BatchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
