package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Retention RetentionConfig
	Stream    StreamConfig
	Ingest    IngestConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// RetentionConfig controls how long events survive before the background
// sweep deletes them.
type RetentionConfig struct {
	TTLDays       int
	PruneInterval time.Duration
}

// StreamConfig holds live-stream fan-out settings.
type StreamConfig struct {
	// Buffer is the per-subscriber send buffer; a subscriber whose buffer
	// overflows misses messages rather than blocking the publisher.
	Buffer int
}

// IngestConfig holds producer-side rate limiting settings.
type IngestConfig struct {
	RatePerSecond float64
	Burst         int
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production, the DB
// password and a real SSL mode must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("PULSE_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("PULSE_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("PULSE_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("PULSE_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	ttlDays, err := getEnvInt("PULSE_RETENTION_TTL_DAYS", 7)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	pruneInterval, err := getEnvDuration("PULSE_PRUNE_INTERVAL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	streamBuffer, err := getEnvInt("PULSE_STREAM_BUFFER", 64)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	ingestRate, err := getEnvFloat("PULSE_INGEST_RATE", 100)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	ingestBurst, err := getEnvInt("PULSE_INGEST_BURST", 200)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("PULSE_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("PULSE_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("PULSE_DB_USER", "pulse"),
			Password: getEnv("PULSE_DB_PASSWORD", ""),
			DBName:   getEnv("PULSE_DB_NAME", "pulse_dev"),
			SSLMode:  getEnv("PULSE_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Server: ServerConfig{
			Addr:         getEnv("PULSE_SERVER_ADDR", ":4000"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
		},
		Retention: RetentionConfig{
			TTLDays:       ttlDays,
			PruneInterval: pruneInterval,
		},
		Stream: StreamConfig{
			Buffer: streamBuffer,
		},
		Ingest: IngestConfig{
			RatePerSecond: ingestRate,
			Burst:         ingestBurst,
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if c.Database.SSLMode == "disable" {
		log.Warn().Msg("PULSE_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("PULSE_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("PULSE_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("PULSE_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("PULSE_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Retention.TTLDays < 1 {
		return fmt.Errorf("PULSE_RETENTION_TTL_DAYS must be >= 1, got %d", c.Retention.TTLDays)
	}
	if c.Retention.PruneInterval <= 0 {
		return fmt.Errorf("PULSE_PRUNE_INTERVAL must be positive, got %s", c.Retention.PruneInterval)
	}
	if c.Stream.Buffer < 1 {
		return fmt.Errorf("PULSE_STREAM_BUFFER must be >= 1, got %d", c.Stream.Buffer)
	}
	if c.Ingest.RatePerSecond <= 0 {
		return fmt.Errorf("PULSE_INGEST_RATE must be positive, got %g", c.Ingest.RatePerSecond)
	}
	if c.Ingest.Burst < 1 {
		return fmt.Errorf("PULSE_INGEST_BURST must be >= 1, got %d", c.Ingest.Burst)
	}

	return nil
}

// TTL returns the retention window as a duration.
func (c *RetentionConfig) TTL() time.Duration {
	return time.Duration(c.TTLDays) * 24 * time.Hour
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
