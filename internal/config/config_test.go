package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{
		"SERVER_PORT", "CACHE_SIZE", "STATS_INTERVAL", "RATE_LIMIT_RPS",
		"RATE_LIMIT_BURST", "LOG_LEVEL", "OTEL_INSECURE", "API_KEY",
	} {
		t.Setenv(k, "")
	}

	assert.Equal(t, 8080, ServerPort())
	assert.Equal(t, ":8080", ServerAddr())
	assert.Equal(t, 256, CacheSize())
	assert.Equal(t, 5*time.Minute, StatsInterval())
	assert.Equal(t, 100.0, RateLimitRPS())
	assert.Equal(t, 20, RateLimitBurst())
	assert.Equal(t, "info", LogLevel())
	assert.True(t, OTLPInsecure())
	assert.Empty(t, APIKey())
}

func TestOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CACHE_SIZE", "32")
	t.Setenv("STATS_INTERVAL", "30s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("OTEL_INSECURE", "false")

	assert.Equal(t, ":9090", ServerAddr())
	assert.Equal(t, 32, CacheSize())
	assert.Equal(t, 30*time.Second, StatsInterval())
	assert.Equal(t, 2.5, RateLimitRPS())
	assert.False(t, OTLPInsecure())
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("CACHE_SIZE", "-4")
	t.Setenv("STATS_INTERVAL", "soon")
	t.Setenv("RATE_LIMIT_BURST", "0")

	assert.Equal(t, 256, CacheSize())
	assert.Equal(t, 5*time.Minute, StatsInterval())
	assert.Equal(t, 20, RateLimitBurst())
}

func TestLoadReadsEnvAndSecretFiles(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("SEED_GRAPH_PATH=graphs/release.yaml\n"), 0o600))
	require.NoError(t, os.WriteFile(envFile+".secret", []byte("API_KEY=s3cret\n"), 0o600))

	t.Setenv("CAUSAL_ENV", envFile)
	t.Setenv("SEED_GRAPH_PATH", "")
	t.Setenv("API_KEY", "")
	os.Unsetenv("SEED_GRAPH_PATH")
	os.Unsetenv("API_KEY")

	require.NoError(t, Load())
	assert.Equal(t, "graphs/release.yaml", SeedGraphPath())
	assert.Equal(t, "s3cret", APIKey())
}
