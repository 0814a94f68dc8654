package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// DefaultBaseURL is NOAA's public GHCN-Daily directory.
const DefaultBaseURL = "https://www.ncei.noaa.gov/pub/data/ghcn/daily/"

// Sink names accepted by SINK.
const (
	SinkSQLite = "sqlite"
	SinkKafka  = "kafka"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	BaseURL       string
	DataDir       string
	InventoryPath string
	StationsPath  string
	FetchTimeout  time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	BatchSize int
	Sink      string

	KafkaBrokers []string
	KafkaTopic   string

	SQLitePath string

	SeriesCacheSize int
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is read first when
// present; variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FETCH_TIMEOUT", "60s"))
	if err != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	dataDir := sharedcfg.EnvOrDefault("GHCN_DATA_DIR", "data")

	cfg := &Config{
		BaseURL:       ensureTrailingSlash(sharedcfg.EnvOrDefault("GHCN_BASE_URL", DefaultBaseURL)),
		DataDir:       dataDir,
		InventoryPath: sharedcfg.EnvOrDefault("GHCN_INVENTORY_PATH", dataDir+"/ghcnd-inventory.txt"),
		StationsPath:  sharedcfg.EnvOrDefault("GHCN_STATIONS_PATH", dataDir+"/ghcnd-stations.txt"),
		FetchTimeout:  fetchTimeout,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		BatchSize: batchSize,
		Sink:      strings.ToLower(sharedcfg.EnvOrDefault("SINK", SinkSQLite)),

		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "ghcn-daily-observations"),

		SQLitePath: sharedcfg.EnvOrDefault("SQLITE_PATH", dataDir+"/ghcnd.db"),

		SeriesCacheSize: parseSeriesCacheSize(),
	}

	switch cfg.Sink {
	case SinkSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLITE_PATH is required when SINK=sqlite")
		}
	case SinkKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when SINK=kafka")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when SINK=kafka")
		}
	default:
		return nil, fmt.Errorf("invalid SINK %q (allowed: sqlite, kafka)", cfg.Sink)
	}

	return cfg, nil
}

func ensureTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

func parseSeriesCacheSize() int {
	if s := os.Getenv("SERIES_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 256
}
