package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppConfigUsesDefaultTickRate(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())

	conf, err := NewAppConfig("wasmsplit-test", "version", "commit", "date", false)
	require.NoError(t, err)

	assert.Equal(t, 60.0, conf.UserConfig.TickRate)
}

func TestNewAppConfigHonorsDebugFlag(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())

	conf, err := NewAppConfig("wasmsplit-test", "version", "commit", "date", true)
	require.NoError(t, err)

	assert.True(t, conf.Debug)
}

func TestValidateRejectsNonPositiveTickRate(t *testing.T) {
	cfg := UserConfig{TickRate: 0}
	assert.Error(t, cfg.Validate())

	cfg.TickRate = -5
	assert.Error(t, cfg.Validate())

	cfg.TickRate = 60
	assert.NoError(t, cfg.Validate())
}
