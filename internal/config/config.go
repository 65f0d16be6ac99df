package config

import (
	"os"
	"strconv"

	"statlab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Logging LoggingConfig
	PCA     PCAConfig
	Batch   BatchConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	UIPort  string
	GinMode string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string
}

// PCAConfig holds the power-iteration defaults.
// A zero Seed means the generator is seeded from system entropy per call.
type PCAConfig struct {
	Seed          int64
	Components    int
	MaxIterations int
	Tolerance     float64
}

// BatchConfig holds batch runner settings
type BatchConfig struct {
	Concurrency int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:  *loadServerConfig(),
		Logging: LoggingConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
		PCA:     *loadPCAConfig(),
		Batch:   BatchConfig{Concurrency: getEnvIntOrDefault("BATCH_CONCURRENCY", 4)},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: "8080", UIPort: "8081", GinMode: "release"},
		Logging: LoggingConfig{Level: "INFO"},
		PCA:     PCAConfig{Components: 2, MaxIterations: 1000, Tolerance: 1e-6},
		Batch:   BatchConfig{Concurrency: 4},
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		UIPort:  getEnvOrDefault("UI_PORT", "8081"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadPCAConfig() *PCAConfig {
	return &PCAConfig{
		Seed:          getEnvInt64OrDefault("PCA_SEED", 0),
		Components:    getEnvIntOrDefault("PCA_COMPONENTS", 2),
		MaxIterations: getEnvIntOrDefault("PCA_MAX_ITER", 1000),
		Tolerance:     getEnvFloatOrDefault("PCA_TOLERANCE", 1e-6),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.PCA.Components < 1 {
		return errors.ConfigInvalid("PCA_COMPONENTS must be at least 1")
	}
	if config.PCA.MaxIterations < 1 {
		return errors.ConfigInvalid("PCA_MAX_ITER must be at least 1")
	}
	if !(config.PCA.Tolerance > 0) {
		return errors.ConfigInvalid("PCA_TOLERANCE must be positive")
	}
	if config.Batch.Concurrency < 1 {
		return errors.ConfigInvalid("BATCH_CONCURRENCY must be at least 1")
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

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
