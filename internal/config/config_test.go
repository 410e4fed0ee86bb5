package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load(writeConfig(t, "storage_path: \"postgres://localhost/practice\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "localhost:8080", cfg.Address)
	assert.Equal(t, 4*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, 5000, cfg.Recurrence.MaxSteps)
	assert.Equal(t, 7, cfg.Recurrence.SyncTrailingDays)
	assert.Equal(t, 7, cfg.Recurrence.SyncLeadingDays)
	assert.Equal(t, "@every 15m", cfg.Recurrence.SyncCron)
	assert.Equal(t, 10*time.Second, cfg.Recurrence.LockTTL)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("STORAGE_PATH", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "env: \"prod\"\n"))
	assert.Error(t, err, "storage_path is required")

	_, err = Load(writeConfig(t, "storage_path: \"x\"\ntimezone: \"Mars/Olympus\"\n"))
	assert.Error(t, err)
}
