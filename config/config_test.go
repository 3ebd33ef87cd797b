package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Hour, cfg.CSRFTTL)
	assert.False(t, cfg.SecureCookies)
	assert.Equal(t, 1024, cfg.AuditBufferSize)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "release")
	t.Setenv("API_PORT", "9000")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("SECURE_COOKIES", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvRelease, cfg.Environment)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.SecureCookies)
	assert.False(t, cfg.IsDevelopment())
}

func TestValidate(t *testing.T) {
	t.Setenv("SESSION_TTL", "0s")
	_, err := Load()
	assert.ErrorContains(t, err, "SESSION_TTL")

	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("ENVIRONMENT", "staging")
	_, err = Load()
	assert.ErrorContains(t, err, "ENVIRONMENT")
}
