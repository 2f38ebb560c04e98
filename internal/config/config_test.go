package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: dev
database:
  driver: memory
tracking:
  ip_hash_secret: s3cret
webhook:
  skip_orphan_transitions: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "s3cret", cfg.Tracking.IPHashSecret)
	assert.True(t, cfg.Webhook.SkipOrphanTransitions)

	// defaults
	assert.Equal(t, ":8080", cfg.HTTPServer.Address)
	assert.Equal(t, 3, cfg.ClickLogger.Workers)
	assert.Equal(t, 5*time.Second, cfg.ClickLogger.WriteTimeout)
	assert.Equal(t, "0 3 * * *", cfg.Webhook.RetentionSchedule)
	assert.Equal(t, 90, cfg.Webhook.LogRetentionDays)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("IP_HASH_SECRET", "from-env")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "from-env", cfg.Tracking.IPHashSecret)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Redis.LinkCacheTTL)
}

func TestLoad_RequiresIPHashSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("env: dev\n"), 0o600))
	os.Unsetenv("IP_HASH_SECRET")

	_, err := Load(path)
	assert.Error(t, err)
}
