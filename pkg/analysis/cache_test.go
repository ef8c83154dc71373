package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHashUsesNormalizedText(t *testing.T) {
	assert.Equal(t, TextHash("Severe Headache"), TextHash("severe headache"))
	assert.NotEqual(t, TextHash("severe headache"), TextHash("mild headache"))
	assert.Len(t, TextHash(""), 64)
}

func TestRedisCacheReportsConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	cache := NewRedisCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, TextHash("fever"))
	require.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, cache.Set(ctx, TextHash("fever"), nil))
}
