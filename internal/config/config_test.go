package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, 200, cfg.MessageLimit)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.NotEmpty(t, cfg.LogFile)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("COURIER_BASE_URL", "https://portal.example.org")
	t.Setenv("COURIER_POLL_INTERVAL", "30s")
	t.Setenv("COURIER_MESSAGE_LIMIT", "500")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example.org", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 500, cfg.MessageLimit)
}

func TestValidate(t *testing.T) {
	base := Config{
		PollInterval: 10 * time.Second,
		MessageLimit: 200,
		HTTPTimeout:  15 * time.Second,
	}
	require.NoError(t, base.Validate())

	tooFast := base
	tooFast.PollInterval = 200 * time.Millisecond
	assert.Error(t, tooFast.Validate())

	noLimit := base
	noLimit.MessageLimit = 0
	assert.Error(t, noLimit.Validate())

	noTimeout := base
	noTimeout.HTTPTimeout = 0
	assert.Error(t, noTimeout.Validate())
}
