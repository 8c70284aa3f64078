package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"TEMPORAL_HOST", "RECORD_BACKEND", "TICK_BUDGET", "POLL_INTERVAL", "ARTIFACT_PREFIX"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "localhost:7233", cfg.TemporalHost)
	assert.Equal(t, BackendRedis, cfg.RecordBackend)
	assert.Equal(t, 55*time.Second, cfg.TickBudget)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, 15*time.Minute, cfg.KickoffLead)
	assert.Equal(t, 5*time.Second, cfg.FeedTimeout)
	assert.Equal(t, "data/", cfg.ArtifactPrefix)
	assert.True(t, cfg.IsLocalTemporal())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("TEMPORAL_HOST", "")
	t.Setenv("TEMPORAL_NAMESPACE", "")
	t.Setenv("RECORD_BACKEND", "SQLite")
	t.Setenv("DATABASE_DSN", "file:games.db")
	t.Setenv("TICK_BUDGET", "40s")
	t.Setenv("PUBLISH_UPDATES", "true")
	t.Setenv("POLL_INTERVAL", "not-a-duration")

	cfg := FromEnv()

	assert.Equal(t, BackendSQLite, cfg.RecordBackend)
	assert.Equal(t, 40*time.Second, cfg.TickBudget)
	assert.True(t, cfg.PublishUpdates)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"remote without key", func(c *Config) { c.TemporalHost = "ns.tmprl.cloud:7233" }, "TEMPORAL_API_KEY"},
		{"postgres without dsn", func(c *Config) { c.RecordBackend = BackendPostgres }, "DATABASE_DSN"},
		{"unknown backend", func(c *Config) { c.RecordBackend = "dynamo" }, "unknown RECORD_BACKEND"},
		{"zero budget", func(c *Config) { c.TickBudget = 0 }, "TICK_BUDGET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				TemporalHost:      "localhost:7233",
				TemporalNamespace: "default",
				RecordBackend:     BackendRedis,
				RedisURL:          "redis://localhost:6379/0",
				TickBudget:        55 * time.Second,
				PollInterval:      time.Minute,
			}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NBA_POLLER_TEST_VALUE=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("NBA_POLLER_TEST_VALUE") })

	require.NoError(t, Load(path))
	assert.Equal(t, "from-dotenv", GetEnv("NBA_POLLER_TEST_VALUE", "fallback"))
	assert.Error(t, Load(filepath.Join(t.TempDir(), "missing.env")))
}
