package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.SheetsCacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.PasswordResetTTL)
	assert.Equal(t, "5-M", cfg.LoginRateLimit)
	assert.Equal(t, "file://migrations", cfg.MigrationsPath)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SHEETS_CACHE_TTL", "30s")
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("IS_PRODUCTION", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.SheetsCacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL, "invalid durations fall back")
	assert.True(t, cfg.IsProduction)
}
