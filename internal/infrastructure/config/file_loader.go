package config

import (
	"os"
	"time"

	"multinic-controller/internal/domain/errors"

	"gopkg.in/yaml.v3"
)

// FileConfigLoader is an implementation that loads configuration from a YAML file.
// Values missing from the file fall back to the environment defaults.
type FileConfigLoader struct {
	path string
}

// NewFileConfigLoader creates a new FileConfigLoader
func NewFileConfigLoader(path string) ConfigLoader {
	return &FileConfigLoader{path: path}
}

// fileConfig mirrors Config with optional fields so that absent keys can be
// told apart from zero values. Durations are strings ("30s", "2m").
type fileConfig struct {
	Database struct {
		Host         *string `yaml:"host"`
		Port         *string `yaml:"port"`
		User         *string `yaml:"user"`
		Password     *string `yaml:"password"`
		Database     *string `yaml:"database"`
		MaxOpenConns *int    `yaml:"max_open_conns"`
		MaxIdleConns *int    `yaml:"max_idle_conns"`
		MaxLifetime  *string `yaml:"max_lifetime"`
	} `yaml:"database"`
	API struct {
		Port *string `yaml:"port"`
	} `yaml:"api"`
	Sweep struct {
		Interval *string `yaml:"interval"`
		Backoff  struct {
			Enabled     *bool    `yaml:"enabled"`
			MaxInterval *string  `yaml:"max_interval"`
			Multiplier  *float64 `yaml:"multiplier"`
		} `yaml:"backoff"`
	} `yaml:"sweep"`
	Retry struct {
		MaxAttempts  *int    `yaml:"max_attempts"`
		InitialDelay *string `yaml:"initial_delay"`
		MaxDelay     *string `yaml:"max_delay"`
	} `yaml:"retry"`
	Health struct {
		Port *string `yaml:"port"`
	} `yaml:"health"`
}

// Load loads configuration from the YAML file
func (l *FileConfigLoader) Load() (*Config, error) {
	base, err := NewEnvironmentConfigLoader().Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, errors.NewSystemError("failed to read config file", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.NewValidationError("failed to parse config file", err)
	}

	if err := applyFileConfig(base, &file); err != nil {
		return nil, err
	}

	if err := validate(base); err != nil {
		return nil, err
	}
	return base, nil
}

// applyFileConfig overlays the values present in the file onto the base config
func applyFileConfig(base *Config, file *fileConfig) error {
	applyString(&base.Database.Host, file.Database.Host)
	applyString(&base.Database.Port, file.Database.Port)
	applyString(&base.Database.User, file.Database.User)
	applyString(&base.Database.Password, file.Database.Password)
	applyString(&base.Database.Database, file.Database.Database)
	applyInt(&base.Database.MaxOpenConns, file.Database.MaxOpenConns)
	applyInt(&base.Database.MaxIdleConns, file.Database.MaxIdleConns)
	if err := applyDuration(&base.Database.MaxLifetime, file.Database.MaxLifetime); err != nil {
		return err
	}

	applyString(&base.API.Port, file.API.Port)

	if err := applyDuration(&base.Sweep.Interval, file.Sweep.Interval); err != nil {
		return err
	}
	if file.Sweep.Backoff.Enabled != nil {
		base.Sweep.Backoff.Enabled = *file.Sweep.Backoff.Enabled
	}
	if err := applyDuration(&base.Sweep.Backoff.MaxInterval, file.Sweep.Backoff.MaxInterval); err != nil {
		return err
	}
	if file.Sweep.Backoff.Multiplier != nil {
		base.Sweep.Backoff.Multiplier = *file.Sweep.Backoff.Multiplier
	}

	applyInt(&base.Retry.MaxAttempts, file.Retry.MaxAttempts)
	if err := applyDuration(&base.Retry.InitialDelay, file.Retry.InitialDelay); err != nil {
		return err
	}
	if err := applyDuration(&base.Retry.MaxDelay, file.Retry.MaxDelay); err != nil {
		return err
	}

	applyString(&base.Health.Port, file.Health.Port)
	return nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func applyInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func applyDuration(dst *time.Duration, src *string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return errors.NewValidationError("invalid duration in config file", err)
	}
	*dst = d
	return nil
}
