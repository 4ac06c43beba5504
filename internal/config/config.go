package config

import (
	"os"
	"strconv"

	"gridstat/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Data     DataConfig
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds result-store connection settings
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// DataConfig holds data ingestion settings
type DataConfig struct {
	// FilePath points at the default CSV/XLSX table for the CLI and API
	FilePath string
	// MaxRows caps ingestion; 0 means unlimited
	MaxRows int
}

// Load builds the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			Enabled: os.Getenv("DATABASE_URL") != "",
		},
		Data: DataConfig{
			FilePath: os.Getenv("DATA_FILE"),
			MaxRows:  getEnvInt("DATA_MAX_ROWS", 0),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return errors.ConfigInvalid("PORT must not be empty")
	}
	if c.Data.MaxRows < 0 {
		return errors.ConfigInvalid("DATA_MAX_ROWS must be >= 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
