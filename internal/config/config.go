package config

import (
	"fmt"
	"strings"

	pkgconfig "github.com/utafrali/reviewhub/pkg/config"
)

// Config holds all configuration for the review service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"reviewhub"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"reviewhub_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"reviewhub"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Redis (optional; enables the ingest rate limiter when reachable)
	RedisEnabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Ingestion
	// Sources maps to provider endpoints as "name=baseURL" pairs.
	IngestSources        []string `env:"INGEST_SOURCES" envDefault:"amazon=http://localhost:8091/amazon,bestbuy=http://localhost:8091/bestbuy,walmart=http://localhost:8091/walmart" envSeparator:","`
	IngestTimeoutSeconds int      `env:"INGEST_TIMEOUT_SECONDS" envDefault:"15"`
	IngestDefaultRating  int      `env:"INGEST_DEFAULT_RATING" envDefault:"1"`
	IngestRateLimit      int      `env:"INGEST_RATE_LIMIT_PER_MINUTE" envDefault:"10"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Profiling (pprof endpoints behind an IP allowlist)
	PprofEnabled      bool     `env:"PPROF_ENABLED" envDefault:"false"`
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load reviewhub config: %w", err)
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
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if len(c.IngestSources) == 0 {
		return fmt.Errorf("INGEST_SOURCES is required")
	}
	if _, err := c.SourceEndpoints(); err != nil {
		return err
	}
	if c.IngestDefaultRating < 1 || c.IngestDefaultRating > 5 {
		return fmt.Errorf("INGEST_DEFAULT_RATING must be between 1 and 5, got %d", c.IngestDefaultRating)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// SourceEndpoints parses INGEST_SOURCES into a name → base URL map.
func (c *Config) SourceEndpoints() (map[string]string, error) {
	endpoints := make(map[string]string, len(c.IngestSources))
	for _, entry := range c.IngestSources {
		name, url, ok := strings.Cut(entry, "=")
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("invalid INGEST_SOURCES entry %q, want name=url", entry)
		}
		endpoints[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(url)
	}
	return endpoints, nil
}
