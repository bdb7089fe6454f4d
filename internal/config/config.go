package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Input files, resolved against DataDir unless absolute.
	DataDir           string
	IncidentsFile     string
	IncidentsEncoding string
	StateCodesFile    string
	BoundariesFile    string

	// Year slider range and initial position.
	FirstYear   int
	LastYear    int
	DefaultYear int

	ChartCacheSize int
	RateLimit      float64
	RateBurst      int

	// Map tiles.
	MapboxStyle string
	MapboxToken string

	// Optional publication of aggregate records.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	firstYear, err := parseInt("FIRST_YEAR", 1998)
	if err != nil {
		return nil, err
	}
	lastYear, err := parseInt("LAST_YEAR", 2017)
	if err != nil {
		return nil, err
	}
	defaultYear, err := parseInt("DEFAULT_YEAR", 2000)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("CHART_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}
	rateBurst, err := parseInt("RATE_BURST", 100)
	if err != nil {
		return nil, err
	}
	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("RATE_LIMIT", "50"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid RATE_LIMIT")
	}

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8050"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataDir:           sharedcfg.EnvOrDefault("DATA_DIR", filepath.Join(".", "data")),
		IncidentsFile:     sharedcfg.EnvOrDefault("INCIDENTS_FILE", "amazon.csv"),
		IncidentsEncoding: sharedcfg.EnvOrDefault("INCIDENTS_ENCODING", "latin1"),
		StateCodesFile:    sharedcfg.EnvOrDefault("STATE_CODES_FILE", "brazil-state-codes.csv"),
		BoundariesFile:    sharedcfg.EnvOrDefault("BOUNDARIES_FILE", "brazil-states.geojson"),

		FirstYear:   firstYear,
		LastYear:    lastYear,
		DefaultYear: defaultYear,

		ChartCacheSize: cacheSize,
		RateLimit:      rateLimit,
		RateBurst:      rateBurst,

		MapboxStyle: sharedcfg.EnvOrDefault("MAPBOX_STYLE", "carto-positron"),
		MapboxToken: os.Getenv("MAPBOX_TOKEN"),

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "brazil-fire-aggregates"),
	}

	if cfg.LastYear < cfg.FirstYear {
		return nil, errors.New("LAST_YEAR must not be before FIRST_YEAR")
	}
	if cfg.DefaultYear < cfg.FirstYear || cfg.DefaultYear > cfg.LastYear {
		return nil, fmt.Errorf("DEFAULT_YEAR must be within %d-%d", cfg.FirstYear, cfg.LastYear)
	}
	if cfg.IncidentsEncoding != "latin1" && cfg.IncidentsEncoding != "utf8" {
		return nil, errors.New("INCIDENTS_ENCODING must be latin1 or utf8")
	}
	if cfg.ChartCacheSize <= 0 {
		return nil, errors.New("CHART_CACHE_SIZE must be positive")
	}
	if cfg.RateBurst <= 0 {
		return nil, errors.New("RATE_BURST must be positive")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

// DataPath resolves name against DataDir. Absolute paths are returned unchanged.
func (c *Config) DataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
