package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "STORE_DRIVER", "MONGODB_URI", "STARTING_BALANCE",
		"ALLOW_AVERAGING_UP", "ALLOW_DELISTED_SELL", "BIRTH_PRICE", "ALERT_SCHEDULE", "YEAR_INTERVAL_UNIT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, "stock_exchange_game", cfg.MongoDatabase)
	assert.Equal(t, 1000.0, cfg.StartingBalance)
	assert.True(t, cfg.AllowAveragingUp)
	assert.True(t, cfg.AllowDelistedSell)
	assert.Equal(t, 8.0, cfg.BirthPrice)
	assert.Equal(t, "@every 3s", cfg.AlertSchedule)
	assert.Equal(t, time.Second, cfg.YearIntervalUnit)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("ALLOW_AVERAGING_UP", "false")
	t.Setenv("BIRTH_PRICE", "10")
	t.Setenv("YEAR_INTERVAL_UNIT", "100ms")
	t.Setenv("STARTING_BALANCE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, 1000.0, cfg.StartingBalance)
	assert.Equal(t, 100*time.Millisecond, cfg.YearIntervalUnit)

	p := cfg.Policy()
	assert.False(t, p.AllowAveragingUp)
	assert.True(t, p.AllowDelistedSell)
	assert.Equal(t, 10.0, p.BirthPrice)
	assert.Equal(t, 75, p.PerStockCap)
	assert.Equal(t, 600, p.PortfolioCap)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StoreDriver:      "memory",
			StartingBalance:  1000,
			BirthPrice:       8,
			YearIntervalUnit: time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"mongo without uri", func(c *Config) { c.StoreDriver = "mongo" }, true},
		{"mongo with uri", func(c *Config) { c.StoreDriver = "mongo"; c.MongoURI = "mongodb://localhost" }, false},
		{"unknown driver", func(c *Config) { c.StoreDriver = "redis" }, true},
		{"sqlite without path", func(c *Config) { c.StoreDriver = "sqlite" }, true},
		{"zero balance", func(c *Config) { c.StartingBalance = 0 }, true},
		{"zero birth price", func(c *Config) { c.BirthPrice = 0 }, true},
		{"zero interval", func(c *Config) { c.YearIntervalUnit = 0 }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			err := c.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
