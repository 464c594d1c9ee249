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
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 8080

[database]
driver = "sqlite"

[database.sqlite]
path = "test.db"

[redis]
enabled = true
cache_ttl = "30m"

[jwt]
secret = "s3cret"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "test.db", cfg.Database.SQLite.Path)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)

	// defaults
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "serializable", cfg.Database.Isolation)
	assert.Equal(t, 24, cfg.JWT.ExpireHours)
	assert.Equal(t, 2, cfg.JWT.RefreshHours)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.EqualValues(t, 1, cfg.Snowflake.WorkerID)
	assert.Equal(t, 64, cfg.WorkerPool.Size)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CHAT_JWT_SECRET", "from-env")
	t.Setenv("CHAT_DATABASE_DRIVER", "sqlite")
	t.Setenv("CHAT_SERVER_PORT", "9100")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err, "a missing file falls back to defaults")
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 9100, cfg.Server.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "[server]\nport = 1\n"))
		assert.ErrorContains(t, err, "jwt.secret")
	})
	t.Run("unknown driver", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "[database]\ndriver = \"mysql\"\n[jwt]\nsecret = \"x\"\n"))
		assert.ErrorContains(t, err, "mysql")
	})
	t.Run("malformed toml", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "[server\n"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Database:  DatabaseConfig{Driver: "postgres"},
		JWT:       JWTConfig{Secret: "x"},
		Snowflake: SnowflakeConfig{WorkerID: -1},
	}
	assert.Error(t, cfg.Validate())
	cfg.Snowflake.WorkerID = 0
	assert.NoError(t, cfg.Validate())
	cfg.WorkerPool.QueueSize = -1
	assert.Error(t, cfg.Validate())
}
