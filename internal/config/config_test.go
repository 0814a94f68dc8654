package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "data/ghcnd-inventory.txt", cfg.InventoryPath)
	assert.Equal(t, "data/ghcnd-stations.txt", cfg.StationsPath)
	assert.Equal(t, 60*time.Second, cfg.FetchTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, SinkSQLite, cfg.Sink)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "ghcn-daily-observations", cfg.KafkaTopic)
	assert.Equal(t, "data/ghcnd.db", cfg.SQLitePath)
	assert.Equal(t, 256, cfg.SeriesCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("GHCN_BASE_URL", "http://mirror.example.org/ghcn")
	t.Setenv("GHCN_DATA_DIR", "/var/lib/ghcn")
	t.Setenv("FETCH_TIMEOUT", "5m")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("SINK", "Kafka")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "obs")
	t.Setenv("SERIES_CACHE_SIZE", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://mirror.example.org/ghcn/", cfg.BaseURL)
	assert.Equal(t, "/var/lib/ghcn", cfg.DataDir)
	assert.Equal(t, "/var/lib/ghcn/ghcnd-inventory.txt", cfg.InventoryPath)
	assert.Equal(t, "/var/lib/ghcn/ghcnd-stations.txt", cfg.StationsPath)
	assert.Equal(t, "/var/lib/ghcn/ghcnd.db", cfg.SQLitePath)
	assert.Equal(t, 5*time.Minute, cfg.FetchTimeout)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, SinkKafka, cfg.Sink)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "obs", cfg.KafkaTopic)
	assert.Equal(t, 10, cfg.SeriesCacheSize)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GHCN_DATA_DIR=from-dotenv\nHTTP_ADDR=:7070\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("HTTP_ADDR", ":6060")
	t.Cleanup(func() { os.Unsetenv("GHCN_DATA_DIR") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.DataDir)
	assert.Equal(t, ":6060", cfg.HTTPAddr, "environment wins over .env")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidFetchTimeout(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidSink(t *testing.T) {
	t.Setenv("SINK", "postgres")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SINK")
}

func TestLoad_InvalidSeriesCacheSizeFallsBack(t *testing.T) {
	t.Setenv("SERIES_CACHE_SIZE", "-3")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.SeriesCacheSize)
}
