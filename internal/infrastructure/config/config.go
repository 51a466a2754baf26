package config

import (
	"os"
	"strconv"
	"time"

	"multinic-controller/internal/domain/errors"
)

// Config is a struct that holds application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Retry    RetryConfig    `yaml:"retry"`
	Health   HealthConfig   `yaml:"health"`
}

// DatabaseConfig is a struct that holds database configuration
type DatabaseConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	Database     string        `yaml:"database"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxLifetime  time.Duration `yaml:"max_lifetime"`
}

// APIConfig is a struct that holds the REST API configuration
type APIConfig struct {
	Port string `yaml:"port"`
}

// SweepConfig is a struct that holds cleanup sweep configuration
type SweepConfig struct {
	Interval time.Duration `yaml:"interval"`
	Backoff  BackoffConfig `yaml:"backoff"`
}

// BackoffConfig is a struct that holds sweep backoff configuration
type BackoffConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxInterval time.Duration `yaml:"max_interval"`
	Multiplier  float64       `yaml:"multiplier"`
}

// RetryConfig is a struct that holds transaction retry configuration
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// HealthConfig is a struct that holds health check configuration
type HealthConfig struct {
	Port string `yaml:"port"`
}

// ConfigLoader is an interface for loading configuration
type ConfigLoader interface {
	Load() (*Config, error)
}

// EnvironmentConfigLoader is an implementation that loads configuration from environment variables
type EnvironmentConfigLoader struct{}

// NewEnvironmentConfigLoader creates a new EnvironmentConfigLoader
func NewEnvironmentConfigLoader() ConfigLoader {
	return &EnvironmentConfigLoader{}
}

// Load loads configuration from environment variables
func (l *EnvironmentConfigLoader) Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			Host:         getEnvOrDefault("DB_HOST", "127.0.0.1"),
			Port:         getEnvOrDefault("DB_PORT", "3306"),
			User:         getEnvOrDefault("DB_USER", "root"),
			Password:     getEnvOrDefault("DB_PASSWORD", ""),
			Database:     getEnvOrDefault("DB_NAME", "multinic"),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvDurationOrDefault("DB_MAX_LIFETIME", 5*time.Minute),
		},
		API: APIConfig{
			Port: getEnvOrDefault("API_PORT", "8090"),
		},
		Sweep: SweepConfig{
			Interval: getEnvDurationOrDefault("SWEEP_INTERVAL", 60*time.Second),
			Backoff: BackoffConfig{
				Enabled:     getEnvBoolOrDefault("SWEEP_BACKOFF_ENABLED", true),
				MaxInterval: getEnvDurationOrDefault("SWEEP_BACKOFF_MAX_INTERVAL", 10*time.Minute),
				Multiplier:  getEnvFloatOrDefault("SWEEP_BACKOFF_MULTIPLIER", 2.0),
			},
		},
		Retry: RetryConfig{
			MaxAttempts:  getEnvIntOrDefault("TX_RETRY_MAX_ATTEMPTS", 3),
			InitialDelay: getEnvDurationOrDefault("TX_RETRY_INITIAL_DELAY", 100*time.Millisecond),
			MaxDelay:     getEnvDurationOrDefault("TX_RETRY_MAX_DELAY", 2*time.Second),
		},
		Health: HealthConfig{
			Port: getEnvOrDefault("HEALTH_PORT", "8080"),
		},
	}

	// Validate configuration
	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validate validates the configuration
func validate(config *Config) error {
	// Validate database configuration
	if config.Database.Host == "" {
		return errors.NewValidationError("database host not configured", nil)
	}
	if config.Database.Port == "" {
		return errors.NewValidationError("database port not configured", nil)
	}
	if config.Database.User == "" {
		return errors.NewValidationError("database user not configured", nil)
	}
	if config.Database.Database == "" {
		return errors.NewValidationError("database name not configured", nil)
	}

	// Validate API configuration
	if config.API.Port == "" {
		return errors.NewValidationError("API port not configured", nil)
	}

	// Validate sweep configuration
	if config.Sweep.Interval <= 0 {
		return errors.NewValidationError("invalid sweep interval", nil)
	}

	// Validate retry configuration
	if config.Retry.MaxAttempts < 1 {
		return errors.NewValidationError("invalid max retry count", nil)
	}

	// Validate health check configuration
	if config.Health.Port == "" {
		return errors.NewValidationError("health check port not configured", nil)
	}

	return nil
}

// Environment variable helper functions

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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
