// Package config provides YAML configuration loading with environment
// variable overrides for the maildrop binary.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Driver string   `yaml:"driver"`
	DSN    []string `yaml:"dsn"`
	Debug  bool     `yaml:"debug"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load returns the default configuration with environment overrides applied.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer, then
// overrides with environment variables.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvVars()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Database.Driver = "sqlite3"
	c.Database.DSN = []string{"maildrop.db"}
	c.Logging.Level = "info"
}

func (c *Config) applyEnvVars() {
	if v := os.Getenv("MAILDROP_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("MAILDROP_DB_DSN"); v != "" {
		c.Database.DSN = strings.Split(v, " ")
	}
	if v := os.Getenv("MAILDROP_DB_DEBUG"); v != "" {
		c.Database.Debug = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("MAILDROP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}
