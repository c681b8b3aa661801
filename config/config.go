package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/devanik21/lessonbox/policy"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Sandbox SandboxConfig `mapstructure:"sandbox"`
	Limits  LimitsConfig  `mapstructure:"limits"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// SandboxConfig holds execution backend configuration
type SandboxConfig struct {
	Backend      string `mapstructure:"backend"`
	PythonBin    string `mapstructure:"python_bin"`
	ContextsFile string `mapstructure:"contexts_file"`
}

// LimitsConfig holds the base limits applied to every lesson context unless
// a context override raises or lowers them
type LimitsConfig struct {
	MaxSourceChars int `mapstructure:"max_source_chars"`
	TimeoutSec     int `mapstructure:"timeout_sec"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// New loads and validates the application configuration
func New() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	viper.SetDefault("server.transport", "stdio")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("sandbox.backend", "process")
	viper.SetDefault("sandbox.python_bin", "python3")
	viper.SetDefault("sandbox.contexts_file", "")
	viper.SetDefault("limits.max_source_chars", policy.DefaultMaxSourceChars)
	viper.SetDefault("limits.timeout_sec", int(policy.DefaultMaxDuration/time.Second))
	viper.SetDefault("logging.mode", "production")
	viper.SetDefault("logging.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio' or 'http'", c.Server.Transport)
	}

	if c.Sandbox.Backend != "process" && c.Sandbox.Backend != "goja" {
		return fmt.Errorf("unsupported sandbox.backend: %s, must be 'process' or 'goja'", c.Sandbox.Backend)
	}

	if c.Sandbox.Backend == "process" && c.Sandbox.PythonBin == "" {
		return fmt.Errorf("sandbox.python_bin must be set for the process backend")
	}

	if c.Limits.MaxSourceChars <= 0 {
		return fmt.Errorf("limits.max_source_chars must be positive, got: %d", c.Limits.MaxSourceChars)
	}

	if c.Limits.TimeoutSec <= 0 {
		return fmt.Errorf("limits.timeout_sec must be positive, got: %d", c.Limits.TimeoutSec)
	}

	return nil
}

// GetTimeout returns the execution timeout as a duration
func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.Limits.TimeoutSec) * time.Second
}

// BasePolicy returns the default policy with the configured limits applied.
// Context overrides are layered on top by the policy registry.
func (c *Config) BasePolicy() policy.Policy {
	base := policy.Default()
	base.MaxSourceChars = c.Limits.MaxSourceChars
	base.MaxDuration = c.GetTimeout()
	return base
}
