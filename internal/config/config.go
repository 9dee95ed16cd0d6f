package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/techstore/pkg/config"
	"github.com/utafrali/techstore/pkg/database"
)

// Cart storage backends.
const (
	CartBackendMemory = "memory"
	CartBackendRedis  = "redis"
)

// Catalog sources.
const (
	CatalogSourceStatic   = "static"
	CatalogSourcePostgres = "postgres"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// Cart storage
	CartBackend string `env:"CART_BACKEND" envDefault:"memory"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass   string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB     int    `env:"REDIS_DB" envDefault:"0"`

	// Session (and cart) lifetime in hours
	SessionTTLHours int `env:"SESSION_TTL_HOURS" envDefault:"24"`

	// Catalog
	CatalogSource      string `env:"CATALOG_SOURCE" envDefault:"static"`
	CatalogCacheMaxAge int    `env:"CATALOG_CACHE_MAX_AGE" envDefault:"60"`

	// PostgreSQL, only used when CATALOG_SOURCE=postgres
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"techstore"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"techstore_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"techstore"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	SlowQueryThresholdMS int `env:"SLOW_QUERY_THRESHOLD_MS" envDefault:"200"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// Per-session rate limit on cart routes; 0 disables it
	CartRateLimitRPS   float64 `env:"CART_RATE_LIMIT_RPS" envDefault:"20"`
	CartRateLimitBurst int     `env:"CART_RATE_LIMIT_BURST" envDefault:"40"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.SessionTTLHours < 1 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive, got %d", c.SessionTTLHours)
	}

	switch c.CartBackend {
	case CartBackendMemory:
	case CartBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CART_BACKEND=redis")
		}
	default:
		return fmt.Errorf("CART_BACKEND must be %q or %q, got %q", CartBackendMemory, CartBackendRedis, c.CartBackend)
	}

	switch c.CatalogSource {
	case CatalogSourceStatic:
	case CatalogSourcePostgres:
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required when CATALOG_SOURCE=postgres")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required when CATALOG_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("CATALOG_SOURCE must be %q or %q, got %q", CatalogSourceStatic, CatalogSourcePostgres, c.CatalogSource)
	}

	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.CartRateLimitRPS > 0 && c.CartRateLimitBurst < 1 {
		return fmt.Errorf("CART_RATE_LIMIT_BURST must be positive when rate limiting is on, got %d", c.CartRateLimitBurst)
	}
	if c.SlowQueryThresholdMS < 0 {
		return fmt.Errorf("SLOW_QUERY_THRESHOLD_MS must not be negative, got %d", c.SlowQueryThresholdMS)
	}
	if c.CatalogCacheMaxAge < 0 {
		return fmt.Errorf("CATALOG_CACHE_MAX_AGE must not be negative, got %d", c.CatalogCacheMaxAge)
	}
	return nil
}

// SessionTTL returns the cart lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Postgres returns the connection settings for the catalog database.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:     c.PostgresHost,
		Port:     c.PostgresPort,
		User:     c.PostgresUser,
		Password: c.PostgresPass,
		DBName:   c.PostgresDB,
		SSLMode:  c.PostgresSSL,
		MaxConns: 5,
	}
}

// Redis returns the connection settings for the cart store.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{Addr: c.RedisAddr, Password: c.RedisPass, DB: c.RedisDB}
}
