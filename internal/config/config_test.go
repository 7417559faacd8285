package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "localhost", cfg.PostgresHost)
	assert.Equal(t, "reviewhub", cfg.PostgresDB)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.RedisEnabled)
	assert.Equal(t, 15, cfg.IngestTimeoutSeconds)
	assert.Equal(t, 1, cfg.IngestDefaultRating)
	assert.Equal(t, 10, cfg.IngestRateLimit)
	assert.Len(t, cfg.IngestSources, 3)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("INGEST_DEFAULT_RATING", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "db.internal", cfg.PostgresHost)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3, cfg.IngestDefaultRating)
}

func TestSourceEndpoints(t *testing.T) {
	t.Setenv("INGEST_SOURCES", "Amazon=http://scraper:8081/amazon, bestbuy=http://scraper:8081/bestbuy")

	cfg, err := Load()
	require.NoError(t, err)

	endpoints, err := cfg.SourceEndpoints()
	require.NoError(t, err)

	// Names are lowercased and trimmed; URLs are kept as-is.
	assert.Equal(t, map[string]string{
		"amazon":  "http://scraper:8081/amazon",
		"bestbuy": "http://scraper:8081/bestbuy",
	}, endpoints)
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoadRejectsBadSources(t *testing.T) {
	t.Setenv("INGEST_SOURCES", "amazon-no-url")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INGEST_SOURCES")
}

func TestLoadRejectsBadDefaultRating(t *testing.T) {
	t.Setenv("INGEST_DEFAULT_RATING", "9")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INGEST_DEFAULT_RATING")
}

func TestLoadRejectsBadSampleRate(t *testing.T) {
	t.Setenv("OTEL_SAMPLE_RATE", "2.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE")
}
