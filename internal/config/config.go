// Package config loads pipeline configuration from the environment.
// A .env file in the working directory is honored first (the usual way the
// service is configured in development), then real environment variables
// override typed defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/scrubworks/piimap/internal/chunk"
)

// DatabaseConfig holds the optional Postgres audit store settings.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

// Config holds everything a single pipeline run needs.
type Config struct {
	// Chunking parameters (bytes of canonical text).
	ChunkSize    int
	ChunkOverlap int

	// Reprompt loop bounds.
	RepromptingEnabled bool
	MaxRounds          int

	// Fan-out concurrency cap for in-flight classify calls.
	MaxConcurrentDetections int

	// Oracle endpoint.
	OracleBaseURL   string
	OracleModel     string
	OracleAPIKey    string
	OracleTimeout   time.Duration
	OracleRateLimit float64 // requests per second, 0 = unlimited
	CachePath       string  // bbolt file for the classify cache, "" = in-memory
	CacheEnabled    bool

	Database DatabaseConfig

	LogLevel string
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		ChunkSize:               1024,
		ChunkOverlap:            128,
		RepromptingEnabled:      true,
		MaxRounds:               2,
		MaxConcurrentDetections: 25,
		OracleBaseURL:           "http://localhost:11434/v1",
		OracleModel:             "gpt-4o-mini",
		OracleTimeout:           30 * time.Second,
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		LogLevel: "info",
	}
}

// Load returns defaults overridden by .env and environment variables.
func Load() *Config {
	// A missing .env is fine; explicit environment still applies.
	_ = godotenv.Load()

	cfg := Default()
	loadEnv(cfg)
	return cfg
}

func loadEnv(cfg *Config) {
	intVar(&cfg.ChunkSize, "CHUNK_SIZE")
	intVar(&cfg.ChunkOverlap, "CHUNK_OVERLAP")
	boolVar(&cfg.RepromptingEnabled, "REPROMPTING")
	intVar(&cfg.MaxRounds, "MAX_ROUNDS")
	intVar(&cfg.MaxConcurrentDetections, "MAX_CONCURRENT_DETECTIONS")

	strVar(&cfg.OracleBaseURL, "ORACLE_BASE_URL")
	strVar(&cfg.OracleModel, "ORACLE_MODEL")
	strVar(&cfg.OracleAPIKey, "ORACLE_API_KEY")
	if v := os.Getenv("ORACLE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.OracleTimeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("ORACLE_REQUESTS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.OracleRateLimit = f
		}
	}
	strVar(&cfg.CachePath, "CACHE_PATH")
	boolVar(&cfg.CacheEnabled, "CACHE_ENABLED")

	boolVar(&cfg.Database.Enabled, "DATABASE_ENABLED")
	strVar(&cfg.Database.Host, "DATABASE_HOST")
	intVar(&cfg.Database.Port, "DATABASE_PORT")
	strVar(&cfg.Database.Database, "DATABASE_NAME")
	strVar(&cfg.Database.Username, "DATABASE_USER")
	strVar(&cfg.Database.Password, "DATABASE_PASSWORD")
	strVar(&cfg.Database.SSLMode, "DATABASE_SSLMODE")

	strVar(&cfg.LogLevel, "LOG_LEVEL")
}

// Validate rejects structurally invalid configuration before any document is
// processed. Chunk parameter violations surface as *chunk.ConfigError.
func (c *Config) Validate() error {
	if _, err := chunk.NewSplitter(c.ChunkSize, c.ChunkOverlap); err != nil {
		return err
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("config: MAX_ROUNDS must be at least 1, got %d", c.MaxRounds)
	}
	if c.MaxConcurrentDetections < 1 {
		return fmt.Errorf("config: MAX_CONCURRENT_DETECTIONS must be positive, got %d", c.MaxConcurrentDetections)
	}
	return nil
}

func strVar(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func intVar(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func boolVar(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
