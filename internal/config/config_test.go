package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/campushq/concierge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 20, cfg.HistoryCap)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concierge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: ":9090"
log_level: debug
history_cap: 10
redis:
  addr: "localhost:6379"
  ttl: 1h
llm:
  model: local-model
  base_url: "http://localhost:11434/v1"
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 10, cfg.HistoryCap)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "local-model", cfg.LLM.Model)
	// Untouched fields keep their defaults.
	assert.Equal(t, "concierge:", cfg.Redis.Prefix)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concierge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":9090\"\n"), 0o644))

	t.Setenv("CONCIERGE_LISTEN_ADDR", ":7070")
	t.Setenv("CONCIERGE_LLM_API_KEY", "sk-test")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := config.Load("/nonexistent/concierge.yaml")
	assert.Error(t, err)
}

func TestLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "debug"
	assert.Equal(t, "DEBUG", cfg.Level().String())

	cfg.LogLevel = "bogus"
	assert.Equal(t, "INFO", cfg.Level().String())
}
