package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/bookshelf/pkg/config"
	"github.com/utafrali/bookshelf/pkg/database"
)

// Config holds all configuration for the bookshelf service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort            int           `env:"HTTP_PORT" envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"15s"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"bookshelf"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"bookshelf_secret"`
	PostgresDB   string `env:"DB_NAME" envDefault:"bookshelf"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32         `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int           `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int           `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`
	DBStatementTimeout    time.Duration `env:"DB_STATEMENT_TIMEOUT" envDefault:"5s"`

	// Session tokens are issued by the account service; only validated here.
	SessionSecret string `env:"SESSION_SECRET,required"`
	SessionIssuer string `env:"SESSION_ISSUER" envDefault:""`

	// External rating source
	RatingAPIURL     string        `env:"RATING_API_URL" envDefault:"https://www.goodreads.com/book/review_counts.json"`
	RatingAPIKey     string        `env:"RATING_API_KEY" envDefault:""`
	RatingAPITimeout time.Duration `env:"RATING_API_TIMEOUT" envDefault:"3s"`

	// Kafka. Events are disabled when empty.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// CORS for the /api surface
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load bookshelf config: %w", err)
	}
	return cfg, nil
}

// Validate checks the parsed configuration.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 bytes")
	}
	if u, err := url.Parse(c.RatingAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("RATING_API_URL must be an absolute URL, got %q", c.RatingAPIURL)
	}
	if c.RatingAPITimeout <= 0 {
		return fmt.Errorf("RATING_API_TIMEOUT must be positive, got %s", c.RatingAPITimeout)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// Postgres returns the connection and pool settings for database.NewPostgresPool.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:             c.PostgresHost,
		Port:             c.PostgresPort,
		User:             c.PostgresUser,
		Password:         c.PostgresPass,
		DBName:           c.PostgresDB,
		SSLMode:          c.PostgresSSL,
		MaxConns:         c.DBMaxConns,
		MinConns:         c.DBMinConns,
		MaxConnLifetime:  time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime:  time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
		StatementTimeout: c.DBStatementTimeout,
	}
}

// SlowQueryThreshold returns LOG_SLOW_QUERY_MS as a duration.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryThresholdMs) * time.Millisecond
}

// EventsEnabled reports whether Kafka brokers are configured.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
