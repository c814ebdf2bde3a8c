package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PANEL_HTTP_PORT", "PANEL_SOURCE_URL", "PANEL_POLL_INTERVAL_MS",
		"PANEL_REDIS_ADDR", "PANEL_CORS_ORIGINS", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	// Keep a stray .env in the working directory out of the test.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:13000/mediciones", cfg.Source.URL)
	assert.Equal(t, time.Second, cfg.PollInterval())
	assert.Equal(t, 5*time.Second, cfg.SourceTimeout())
	assert.Equal(t, ":8090", cfg.HTTPAddress())
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, time.Duration(0), cfg.RedisTTL())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "panel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: "9000"
source:
  url: http://sensors.lab:13000/mediciones
poll:
  intervalMillis: 2500
redis:
  addr: localhost:6379
  ttlSeconds: 30
`), 0o600))
	t.Setenv("PANEL_POLL_INTERVAL_MS", "500")
	t.Setenv("PANEL_CORS_ORIGINS", "http://panel.lab,http://kiosk.lab")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddress())
	assert.Equal(t, "http://sensors.lab:13000/mediciones", cfg.Source.URL)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, []string{"http://panel.lab", "http://kiosk.lab"}, cfg.HTTP.AllowedOrigins)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, 30*time.Second, cfg.RedisTTL())
	assert.Equal(t, "panel:slot", cfg.Redis.KeyPrefix)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Source.URL = " "
	assert.EqualError(t, cfg.Validate(), "config: source url required")

	cfg.Source.URL = "ftp://sensors.lab/mediciones"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Poll.IntervalMillis = -1
	assert.Error(t, cfg.Validate())
}

func TestDurationFallbacks(t *testing.T) {
	cfg := Default()
	cfg.Poll.IntervalMillis = 0
	cfg.Source.TimeoutMillis = 0
	cfg.WebSocket.PingIntervalSeconds = 0
	cfg.WebSocket.WriteTimeoutSeconds = 0
	cfg.HTTP.Port = ":7000"

	assert.Equal(t, time.Second, cfg.PollInterval())
	assert.Equal(t, 5*time.Second, cfg.SourceTimeout())
	assert.Equal(t, 30*time.Second, cfg.PingInterval())
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout())
	assert.Equal(t, ":7000", cfg.HTTPAddress())
}
