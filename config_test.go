package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(4), cfg.Workers)
	assert.Equal(t, backendFile, cfg.Storage.Backend)
	assert.NotEmpty(t, cfg.Storage.Dir)
	assert.Equal(t, time.Hour, cfg.Rates.MaxAge)
	assert.Zero(t, cfg.Rates.RefreshInterval)
	require.NotNil(t, cfg.Exchange.Retries)
	assert.Equal(t, defaultRetries, *cfg.Exchange.Retries)
}

func TestLoadConfigRetriesCanBeDisabled(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, "exchange:\n  retries: 0\n"))
	require.NoError(t, err)

	require.NotNil(t, cfg.Exchange.Retries)
	assert.Zero(t, *cfg.Exchange.Retries)

	cfg, err = loadConfig(writeConfig(t, "exchange:\n  retries: 5\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, *cfg.Exchange.Retries)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
httpPort: ":8080"
logLevel: debug
pretty: true
storage:
  backend: redis
  redisAddr: cache:6379
  redisDB: 2
exchange:
  apiKey: secret
  requestsPerSecond: 0.5
  timeout: 3s
rates:
  maxAge: 30m
  refreshInterval: 10m
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Pretty)
	assert.Equal(t, backendRedis, cfg.Storage.Backend)
	assert.Equal(t, "cache:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, 2, cfg.Storage.RedisDB)
	assert.Equal(t, "fxpad:", cfg.Storage.RedisPrefix)
	assert.Equal(t, "secret", cfg.Exchange.APIKey)
	assert.Equal(t, 0.5, cfg.Exchange.RequestsPerSecond)
	assert.Equal(t, 3*time.Second, cfg.Exchange.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Rates.MaxAge)
	assert.Equal(t, 10*time.Minute, cfg.Rates.RefreshInterval)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = loadConfig(writeConfig(t, "storage: ["))
	assert.Error(t, err)

	_, err = loadConfig(writeConfig(t, "storage:\n  backend: mongo\n"))
	assert.ErrorContains(t, err, "unknown storage backend")

	_, err = loadConfig(writeConfig(t, "rates:\n  refreshInterval: -1m\n"))
	assert.Error(t, err)
}

func TestSetupLogger(t *testing.T) {
	assert.NoError(t, setupLogger(Config{LogLevel: "warn"}))
	assert.Error(t, setupLogger(Config{LogLevel: "loud"}))
}

func TestOpenFileBackend(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	cfg.Storage.Dir = t.TempDir()

	a, err := open(context.Background(), cfg)
	require.NoError(t, err)
	defer a.close()

	assert.Equal(t, "EUR", a.rates.Rates().Pivot())
	assert.Equal(t, []string{"EUR", "USD", "GBP", "CHF"}, a.prefs.Load(context.Background()).SelectedCodes)
}
