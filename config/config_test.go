package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefaults = Defaults{
	DBName:        "testapp",
	Port:          "3000",
	StaticDir:     "./web/testapp",
	MigrationsDir: "./migrations/testapp",
	CookieName:    "testapp_session",
}

// clearEnv unsets every variable Load reads, with t.Setenv registering the
// restore, so ambient environment cannot leak into the tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DB_USER", "DB_PASSWORD", "DB_NAME", "DB_HOST", "DB_PORT", "DB_POOL_SIZE",
		"PORT", "STATIC_DIR", "SESSION_COOKIE", "SESSION_TTL", "MIGRATIONS_DIR",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	clearEnv(t)
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoad_DefaultsFillUnsetValues(t *testing.T) {
	setRequired(t)

	cfg, err := Load(testDefaults)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.User)
	assert.Equal(t, "testapp", cfg.DB.DBName)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 10, cfg.DB.MaxSize)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "./web/testapp", cfg.Server.StaticDir)
	assert.Equal(t, "testapp_session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "./migrations/testapp", cfg.MigrationsDir)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_NAME", "other")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("PORT", "8080")
	t.Setenv("SESSION_COOKIE", "sid")
	t.Setenv("SESSION_TTL", "30m")

	cfg, err := Load(testDefaults)
	require.NoError(t, err)

	assert.Equal(t, "other", cfg.DB.DBName)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 5433, cfg.DB.Port)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sid", cfg.Session.CookieName)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
}

func TestLoad_CollectsAllErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("SESSION_TTL", "eventually")

	_, err := Load(testDefaults)
	require.Error(t, err)
	assert.ErrorContains(t, err, "DB_USER")
	assert.ErrorContains(t, err, "DB_PASSWORD")
	assert.ErrorContains(t, err, "DB_PORT")
	assert.ErrorContains(t, err, "SESSION_TTL")
}

func TestLoad_PoolSizeOutOfRangeFails(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_POOL_SIZE", "0")

	_, err := Load(testDefaults)
	require.Error(t, err)
	assert.ErrorContains(t, err, "DB_POOL_SIZE")
}
