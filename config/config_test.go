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

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Contains(t, cfg.Server.AllowedOrigins, "http://localhost:5173")
	assert.Equal(t, int64(5), cfg.Chain.RewardAmount)
	assert.Equal(t, 90*time.Second, cfg.Chain.ConfirmTimeout)
	assert.Equal(t, "python", cfg.Scraper.PythonBin)
	assert.Equal(t, 6, cfg.Scraper.RatePerMin)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://eco.example.org, https://staging.eco.example.org")
	t.Setenv("REWARD_AMOUNT", "10")
	t.Setenv("CHAIN_CONFIRM_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://eco.example.org", "https://staging.eco.example.org"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, int64(10), cfg.Chain.RewardAmount)
	assert.Equal(t, 30*time.Second, cfg.Chain.ConfirmTimeout)
}

func TestValidate(t *testing.T) {
	t.Run("rejects non-positive reward amount", func(t *testing.T) {
		t.Setenv("REWARD_AMOUNT", "-1")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad integers fall back to defaults", func(t *testing.T) {
		t.Setenv("REWARD_AMOUNT", "five")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, int64(5), cfg.Chain.RewardAmount)
	})
}

func TestDSN(t *testing.T) {
	dsn := (&DatabaseConfig{
		Host: "db", Port: 5433, User: "eco", Password: "pw", Name: "ecosphere", SSLMode: "disable",
	}).DSN()
	assert.Equal(t, "host=db port=5433 user=eco password=pw dbname=ecosphere sslmode=disable", dsn)
}
