package config

import (
	"os"
	"strconv"

	"saleslens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Data   DataConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// StoreConfig holds the embedded database settings
type StoreConfig struct {
	Path string
}

// DataConfig holds data ingestion settings
type DataConfig struct {
	Dir       string // directory containing the nine star-schema CSV files
	Separator string
	Decimal   string
	Encoding  string
	HasHeader bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Store: StoreConfig{
			Path: getEnvOrDefault("STORE_PATH", "sales.db"),
		},
		Data: DataConfig{
			Dir:       getEnvOrDefault("DATA_DIR", "data"),
			Separator: getEnvOrDefault("CSV_SEPARATOR", ";"),
			Decimal:   getEnvOrDefault("CSV_DECIMAL", ","),
			Encoding:  getEnvOrDefault("CSV_ENCODING", "utf-8"),
			HasHeader: getEnvBoolOrDefault("CSV_HEADER", true),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Store.Path == "" {
		return errors.ConfigInvalid("store path is required")
	}
	if config.Data.Dir == "" {
		return errors.ConfigInvalid("data directory is required")
	}
	switch config.Data.Separator {
	case ",", ";", "\t", "|":
	default:
		return errors.ConfigInvalid("CSV_SEPARATOR must be one of , ; tab |")
	}
	switch config.Data.Decimal {
	case ".", ",":
	default:
		return errors.ConfigInvalid("CSV_DECIMAL must be . or ,")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
