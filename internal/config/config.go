package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Holdings dataset sources
const (
	SourceEmbedded = "embedded"
	SourcePostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// Harvest calculation configuration
	Harvest HarvestConfig

	// Session lifecycle configuration
	Session SessionConfig

	// Logging configuration
	Log LogConfig
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"harvester"`
	Password        string        `envconfig:"DB_PASSWORD" default:"harvester"`
	Name            string        `envconfig:"DB_NAME" default:"tax_harvester"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
	CacheTTL        time.Duration `envconfig:"API_CACHE_TTL" default:"10m"`
}

// HarvestConfig holds the pre-harvesting baseline and grid settings
type HarvestConfig struct {
	// Source selects where holdings are loaded from: embedded or postgres
	Source string `envconfig:"HOLDINGS_SOURCE" default:"embedded"`

	BaselineSTCGProfits decimal.Decimal `envconfig:"HARVEST_BASELINE_STCG_PROFITS" default:"600"`
	BaselineSTCGLosses  decimal.Decimal `envconfig:"HARVEST_BASELINE_STCG_LOSSES" default:"500"`
	BaselineLTCGProfits decimal.Decimal `envconfig:"HARVEST_BASELINE_LTCG_PROFITS" default:"1200"`
	BaselineLTCGLosses  decimal.Decimal `envconfig:"HARVEST_BASELINE_LTCG_LOSSES" default:"1100"`

	PageSize int `envconfig:"HARVEST_PAGE_SIZE" default:"10"`
}

// SessionConfig holds session lifecycle settings
type SessionConfig struct {
	IdleTimeout   time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`
	SweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"1m"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express as types
func (c *Config) Validate() error {
	switch c.Harvest.Source {
	case SourceEmbedded, SourcePostgres:
	default:
		return fmt.Errorf("invalid HOLDINGS_SOURCE %q: want %s or %s", c.Harvest.Source, SourceEmbedded, SourcePostgres)
	}

	for name, v := range map[string]decimal.Decimal{
		"HARVEST_BASELINE_STCG_PROFITS": c.Harvest.BaselineSTCGProfits,
		"HARVEST_BASELINE_STCG_LOSSES":  c.Harvest.BaselineSTCGLosses,
		"HARVEST_BASELINE_LTCG_PROFITS": c.Harvest.BaselineLTCGProfits,
		"HARVEST_BASELINE_LTCG_LOSSES":  c.Harvest.BaselineLTCGLosses,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%s must not be negative, got %s", name, v)
		}
	}

	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive, got %s", c.Session.SweepInterval)
	}

	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Addr returns the Redis address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
