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
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "valhalla", cfg.RoutingProvider)
	assert.Equal(t, "http://[::1]:9000/valhalla", cfg.ValhallaURL)
	assert.Equal(t, "sqlite", cfg.CacheBackend)
	assert.Equal(t, 2*time.Second, cfg.CacheTimeout)
	assert.Equal(t, 30*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, time.Duration(0), cfg.CacheTTL)
	assert.Equal(t, 4, cfg.ScoringConcurrency)
	assert.Equal(t, 1.0, cfg.NominatimRatePerSec)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	content := "ROUTING_PROVIDER=offline\nCACHE_TIMEOUT=500ms\nREDIS_PASSWORD=\"secret\"\nALLOWED_ORIGINS=http://a.test, http://b.test\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o644))

	t.Setenv("SCORING_CONCURRENCY", "8")
	t.Setenv("PROVIDER_TIMEOUT", "5s")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "offline", cfg.RoutingProvider)
	assert.Equal(t, 500*time.Millisecond, cfg.CacheTimeout)
	assert.Equal(t, "secret", cfg.RedisPassword)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 8, cfg.ScoringConcurrency)
	assert.Equal(t, 5*time.Second, cfg.ProviderTimeout)
}

func TestGet(t *testing.T) {
	t.Setenv("HOMERANK_TEST_KEY", "value")
	assert.Equal(t, "value", Get("HOMERANK_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", Get("HOMERANK_TEST_MISSING", "fallback"))
}

func TestLocation(t *testing.T) {
	loc, err := Config{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = Config{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	_, err = Config{Timezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}
