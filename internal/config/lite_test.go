package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 1024, cfg.CacheMaxItems)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.False(t, cfg.SimilarityEnabled)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 1024, cfg.CacheMaxItems)
	assert.False(t, cfg.SimilarityEnabled)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("RAREDX_DATA_DIR", "/tmp/test-raredx")
	os.Setenv("RAREDX_CACHE_MAX_ITEMS", "500")
	os.Setenv("RAREDX_CACHE_TTL", "12h")
	os.Setenv("RAREDX_SIMILARITY_ENABLED", "true")
	os.Setenv("RAREDX_EMBED_BASE_URL", "http://embed:9000")
	os.Setenv("RAREDX_HTTP_PORT", "9090")
	os.Setenv("RAREDX_LOG_LEVEL", "debug")
	os.Setenv("RAREDX_MODEL_API_KEY", "test-key")

	defer clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, "/tmp/test-raredx", cfg.DataDir)
	assert.Equal(t, 500, cfg.CacheMaxItems)
	assert.Equal(t, 12*time.Hour, cfg.CacheTTL)
	assert.True(t, cfg.SimilarityEnabled)
	assert.Equal(t, "http://embed:9000", cfg.EmbedBaseURL)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "test-key", cfg.ModelAPIKey)
}

func TestLoadLiteConfig_InvalidValuesIgnored(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("RAREDX_CACHE_MAX_ITEMS", "not-a-number")
	os.Setenv("RAREDX_HTTP_PORT", "-1")
	defer clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, 1024, cfg.CacheMaxItems)
	assert.Equal(t, 8080, cfg.HTTPPort)
}

func TestLiteConfig_FeedbackDBPath(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.raredx"}

	path := cfg.FeedbackDBPath()

	assert.Equal(t, "/home/user/.raredx/feedback.db", path)
}

func TestLiteConfig_ExportDir(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.raredx"}

	path := cfg.ExportDir()

	assert.Equal(t, "/home/user/.raredx/exports", path)
}

func TestLiteConfig_EnsureDataDir(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	cfg := &LiteConfig{DataDir: filepath.Join(tmpDir, "raredx")}

	err = cfg.EnsureDataDir()
	require.NoError(t, err)

	_, err = os.Stat(cfg.DataDir)
	assert.NoError(t, err)

	_, err = os.Stat(cfg.ExportDir())
	assert.NoError(t, err)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"RAREDX_DATA_DIR",
		"RAREDX_CACHE_MAX_ITEMS",
		"RAREDX_CACHE_TTL",
		"RAREDX_SIMILARITY_ENABLED",
		"RAREDX_EMBED_BASE_URL",
		"RAREDX_HTTP_PORT",
		"RAREDX_LOG_LEVEL",
		"RAREDX_LOG_FORMAT",
		"RAREDX_MODEL_API_KEY",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
