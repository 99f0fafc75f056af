package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FillsDefaults(t *testing.T) {
	c, err := Parse([]byte("fred:\n  api_key: k\n"))
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "SPY", c.Market.IndexTicker)
	assert.Equal(t, 365, c.Analysis.LookbackDays)
	assert.Equal(t, 252, c.Analysis.BetaWindow)
	assert.Equal(t, 30, c.Analysis.MinBetaPoints)
	assert.Equal(t, 24*time.Hour, c.Cache.SeriesTTL)
	assert.Equal(t, 7*24*time.Hour, c.Cache.BetaTTL)
	assert.Equal(t, "memory", c.Cache.Backend)
	assert.False(t, c.Kafka.Enabled)
	assert.False(t, c.NeedsClickHouse())
	assert.False(t, c.Server.CORS.Disabled)
	assert.Equal(t, []string{"*"}, c.Server.CORS.AllowOrigins)
	assert.Equal(t, []string{"GET", "POST", "DELETE", "OPTIONS"}, c.Server.CORS.AllowMethods)
	assert.Equal(t, 600, c.Server.CORS.MaxAge)
}

func TestParse_CORSOverride(t *testing.T) {
	c, err := Parse([]byte("fred:\n  api_key: k\nserver:\n  cors:\n    allow_origins: [\"https://dash.example.com\"]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://dash.example.com"}, c.Server.CORS.AllowOrigins)
	assert.Equal(t, []string{"Origin", "Content-Type", "Accept"}, c.Server.CORS.AllowHeaders)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing fred key", "macro:\n  source: fred\n"},
		{"unknown cache backend", "fred:\n  api_key: k\ncache:\n  backend: disk\n"},
		{"kafka without brokers", "fred:\n  api_key: k\nkafka:\n  enabled: true\n"},
		{"min points above window", "fred:\n  api_key: k\nanalysis:\n  beta_window: 40\n  min_beta_points: 50\n"},
		{"lookback too short", "fred:\n  api_key: k\nanalysis:\n  lookback_days: 30\n"},
		{"bad yaml", "fred: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_ClickHouseSourceNeedsNoFredKey(t *testing.T) {
	c, err := Parse([]byte("macro:\n  source: clickhouse\nmarket:\n  source: clickhouse\n"))
	require.NoError(t, err)
	assert.True(t, c.NeedsClickHouse())
}

func TestLoadWithEnv_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("market:\n  index_ticker: SPY\n"), 0o644))

	t.Setenv("FRED_API_KEY", "secret")
	t.Setenv("MARKET_INDEX", "qqq")
	t.Setenv("REDIS_ADDR", "cache.internal:6380")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "b1:9092,b2:9092")
	t.Setenv("LOG_LEVEL", "DEBUG")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", c.Fred.APIKey)
	assert.Equal(t, "QQQ", c.Market.IndexTicker)
	assert.Equal(t, "cache.internal", c.Redis.Host)
	assert.Equal(t, 6380, c.Redis.Port)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoadWithEnv_ShippedConfigTakesKeyFromEnv(t *testing.T) {
	t.Setenv("FRED_API_KEY", "secret")

	c, err := LoadWithEnv("../../config/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "secret", c.Fred.APIKey)
	assert.Equal(t, "fred", c.Macro.Source)
	assert.Equal(t, 10*time.Second, c.Server.ReadTimeout)
}

func TestLoadWithEnv_StillValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("macro:\n  source: fred\n"), 0o644))
	t.Setenv("FRED_API_KEY", "")

	_, err := LoadWithEnv(path)
	assert.ErrorContains(t, err, "fred.api_key is required")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
