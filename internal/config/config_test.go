package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 85, cfg.Verify.VerifiedThreshold)
	assert.Equal(t, 65, cfg.Verify.LikelyThreshold)
	assert.Equal(t, 30, cfg.Verify.SuspiciousThreshold)
	assert.Equal(t, 3, cfg.Verify.SuspiciousMinSources)
	assert.Equal(t, 95, cfg.Verify.ConfidenceCap)
	assert.InDelta(t, 0.6, cfg.Verify.NameMatchThreshold, 0.001)
	assert.InDelta(t, 0.2, cfg.Verify.LocationMatchBoost, 0.001)
	assert.Equal(t, 3, cfg.Verify.SearchConcurrency)
	assert.Equal(t, 5, cfg.Batch.MaxConcurrent)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.Registry.BaseURL)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PRACTICE_LOG_LEVEL", "debug")
	t.Setenv("PRACTICE_VERIFY_VERIFIED_THRESHOLD", "90")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 90, cfg.Verify.VerifiedThreshold)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "chatty", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger_Console(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)
}
