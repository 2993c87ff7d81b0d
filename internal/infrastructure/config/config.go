package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Sheets   SheetsConfig
	Sync     SyncConfig
	Crypto   CryptoConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings (derived-status display cache)
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	// StatusCacheTTL bounds how stale a displayed status label may be
	StatusCacheTTL time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SheetsConfig holds the external spreadsheet connection settings
type SheetsConfig struct {
	SpreadsheetID   string
	SellerSheet     string
	BuyerSheet      string
	CredentialsFile string
	// RequestsPerMinute bounds outbound call volume; the limiter queues
	// rather than failing when exceeded
	RequestsPerMinute int
	RequestTimeout    time.Duration
	RetryCount        int
	RetryBackoff      time.Duration
	CacheTTL          time.Duration
}

// SyncConfig holds reconciliation settings
type SyncConfig struct {
	Enabled             bool
	Interval            time.Duration
	PageSize            int
	DeletionSyncEnabled bool
	// Compared-field lists are configurable because the hand-picked
	// defaults are a known coverage gap: edits to fields outside the
	// list go undetected
	SellerCompareFields []string
	BuyerCompareFields  []string
}

// CryptoConfig holds field-encryption settings
type CryptoConfig struct {
	// Key is the hex-encoded 32-byte AES key for sensitive columns
	Key string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ESTATE_ prefix (e.g. ESTATE_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("ESTATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:           v.GetString("redis.host"),
			Port:           v.GetInt("redis.port"),
			Password:       v.GetString("redis.password"),
			DB:             v.GetInt("redis.db"),
			StatusCacheTTL: v.GetDuration("redis.status_cache_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:     v.GetString("sheets.spreadsheet_id"),
			SellerSheet:       v.GetString("sheets.seller_sheet"),
			BuyerSheet:        v.GetString("sheets.buyer_sheet"),
			CredentialsFile:   v.GetString("sheets.credentials_file"),
			RequestsPerMinute: v.GetInt("sheets.requests_per_minute"),
			RequestTimeout:    v.GetDuration("sheets.request_timeout"),
			RetryCount:        v.GetInt("sheets.retry_count"),
			RetryBackoff:      v.GetDuration("sheets.retry_backoff"),
			CacheTTL:          v.GetDuration("sheets.cache_ttl"),
		},
		Sync: SyncConfig{
			Enabled:             v.GetBool("sync.enabled"),
			Interval:            v.GetDuration("sync.interval"),
			PageSize:            v.GetInt("sync.page_size"),
			DeletionSyncEnabled: v.GetBool("sync.deletion_sync_enabled"),
			SellerCompareFields: v.GetStringSlice("sync.seller_compare_fields"),
			BuyerCompareFields:  v.GetStringSlice("sync.buyer_compare_fields"),
		},
		Crypto: CryptoConfig{
			Key: v.GetString("crypto.key"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "estatedesk-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "estatedesk"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.StatusCacheTTL == 0 {
		cfg.Redis.StatusCacheTTL = 10 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.Sheets.SellerSheet == "" {
		cfg.Sheets.SellerSheet = "媒介"
	}
	if cfg.Sheets.BuyerSheet == "" {
		cfg.Sheets.BuyerSheet = "買主"
	}
	if cfg.Sheets.RequestsPerMinute == 0 {
		cfg.Sheets.RequestsPerMinute = 50
	}
	if cfg.Sheets.RequestTimeout == 0 {
		cfg.Sheets.RequestTimeout = 30 * time.Second
	}
	if cfg.Sheets.RetryCount == 0 {
		cfg.Sheets.RetryCount = 1
	}
	if cfg.Sheets.RetryBackoff == 0 {
		cfg.Sheets.RetryBackoff = 2 * time.Second
	}
	if cfg.Sheets.CacheTTL == 0 {
		cfg.Sheets.CacheTTL = 5 * time.Minute
	}
	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = 30 * time.Minute
	}
	if cfg.Sync.PageSize == 0 {
		cfg.Sync.PageSize = 1000
	}
	if len(cfg.Sync.SellerCompareFields) == 0 {
		cfg.Sync.SellerCompareFields = []string{
			"name", "address", "phone", "property_type",
			"inquired_on", "assessment_amount", "mediation_status",
		}
	}
	if len(cfg.Sync.BuyerCompareFields) == 0 {
		cfg.Sync.BuyerCompareFields = []string{
			"name", "phone", "email", "budget", "inquired_on",
			"survey_result", "survey_confirmed", "viewing_date",
			"contract_date", "settlement_date",
		}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Sync.PageSize <= 0 {
		return fmt.Errorf("sync.page_size must be positive")
	}
	if c.Sheets.RequestsPerMinute <= 0 {
		return fmt.Errorf("sheets.requests_per_minute must be positive")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("sheets.spreadsheet_id is required in production")
		}
		if c.Sheets.CredentialsFile == "" {
			return fmt.Errorf("sheets.credentials_file is required in production")
		}
		if len(c.Crypto.Key) != 64 {
			return fmt.Errorf("crypto.key must be a hex-encoded 32-byte key in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the host:port address for Redis
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
