package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"REGSYNC_ADDR", "SOURCES_BASE_URL", "STATUS_BASE_URL", "KAFKA_BROKERS", "RATELIMIT_REQUESTS", "DISABLE_RATE_LIMITING"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "http://localhost:4000", cfg.Sources.BaseURL)
	assert.Equal(t, cfg.Sources.BaseURL, cfg.Status.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Sources.FetchTimeout)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 60, cfg.RateLimit.Requests)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("REGSYNC_ADDR", ":9090")
	t.Setenv("SOURCES_FETCH_TIMEOUT", "250ms")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("RATELIMIT_REQUESTS", "5")
	t.Setenv("DISABLE_RATE_LIMITING", "true")
	t.Setenv("REDIS_POOL_SIZE", "not a number")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.Sources.FetchTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5, cfg.RateLimit.Requests)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func TestLoadSourcesFile(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		table, err := LoadSourcesFile("")
		require.NoError(t, err)
		assert.Empty(t, table.Sources)
	})

	t.Run("overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sources.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
sources:
  gst:
    base_url: https://gst.internal
    timeout: 3s
  startup_india:
    disabled: true
`), 0o600))

		table, err := LoadSourcesFile(path)
		require.NoError(t, err)

		gst, ok := table.Entry("gst")
		require.True(t, ok)
		assert.Equal(t, "https://gst.internal", gst.BaseURL)
		assert.Equal(t, 3*time.Second, gst.Timeout)

		si, ok := table.Entry("startup_india")
		require.True(t, ok)
		assert.True(t, si.Disabled)

		_, ok = table.Entry("services")
		assert.False(t, ok)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSourcesFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := ParseSources([]byte("sources: [unterminated"))
		assert.Error(t, err)
	})
}
