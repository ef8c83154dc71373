package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))

	cfg := Load()
	assert.Equal(t, "8085", cfg.ServerPort)
	assert.Equal(t, 10000, cfg.MaxTextLength)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "symptom-text", cfg.KafkaInputTopic)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.HistoryEnabled)
	assert.Equal(t, 30*24*time.Hour, cfg.HistoryRetention)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("MAX_TEXT_LENGTH", "not-a-number")
	t.Setenv("NEGATION_SCOPE", "direct")
	t.Setenv("HISTORY_RETENTION", "48h")
	t.Setenv("KAFKA_ENABLED", "true")

	cfg := Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 10000, cfg.MaxTextLength)
	assert.Equal(t, "direct", cfg.NegationScope)
	assert.Equal(t, 48*time.Hour, cfg.HistoryRetention)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SERVER_PORT=9999\nHISTORY_ENABLED=1\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Cleanup(func() {
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("HISTORY_ENABLED")
	})

	cfg := Load()
	assert.Equal(t, "9999", cfg.ServerPort)
	assert.True(t, cfg.HistoryEnabled)
}
