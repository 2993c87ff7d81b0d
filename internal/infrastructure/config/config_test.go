package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "estatedesk-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 1000, cfg.Sync.PageSize)
	assert.Equal(t, 30*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 50, cfg.Sheets.RequestsPerMinute)
	assert.Equal(t, 5*time.Minute, cfg.Sheets.CacheTTL)
	assert.Equal(t, "媒介", cfg.Sheets.SellerSheet)
	assert.NotEmpty(t, cfg.Sync.SellerCompareFields)
	assert.NotEmpty(t, cfg.Sync.BuyerCompareFields)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("defaults are valid in development", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("rejects idle conns exceeding open conns", func(t *testing.T) {
		cfg := base()
		cfg.Database.MaxIdleConns = 100
		assert.Error(t, cfg.validate())
	})

	t.Run("rejects non-positive page size", func(t *testing.T) {
		cfg := base()
		cfg.Sync.PageSize = -1
		assert.Error(t, cfg.validate())
	})

	t.Run("production requires crypto key", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"
		cfg.Sheets.SpreadsheetID = "sheet-id"
		cfg.Sheets.CredentialsFile = "/etc/sa.json"

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "crypto.key")
	})
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "p@ss:word",
		DBName:   "estatedesk",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5433")
	assert.Contains(t, dsn, "sslmode=require")
	// special characters must be escaped
	assert.NotContains(t, dsn, "p@ss:word")
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}
