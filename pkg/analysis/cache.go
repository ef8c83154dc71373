package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mediaid/platform/pkg/symptoms"
)

const cacheKeyPrefix = "symptoms:analysis:"

// ResultCache stores detector output keyed by text hash.
type ResultCache interface {
	Get(ctx context.Context, hash string) ([]symptoms.Symptom, bool, error)
	Set(ctx context.Context, hash string, result []symptoms.Symptom) error
}

// TextHash is the hex SHA-256 of the normalized text. It keys both the cache
// and stored analysis records.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(symptoms.Normalize(text)))
	return hex.EncodeToString(sum[:])
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, hash string) ([]symptoms.Symptom, bool, error) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+hash).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached analysis: %w", err)
	}

	var result []symptoms.Symptom
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("decoding cached analysis: %w", err)
	}
	if result == nil {
		result = []symptoms.Symptom{}
	}
	return result, true, nil
}

func (c *RedisCache) Set(ctx context.Context, hash string, result []symptoms.Symptom) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding analysis for cache: %w", err)
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+hash, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing cached analysis: %w", err)
	}
	return nil
}
