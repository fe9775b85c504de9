// Package config loads the shapeql CLI configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds CLI settings. Command-line flags override the values read
// from the file.
type Config struct {
	// Endpoint is the GraphQL HTTP address used by exec.
	Endpoint string `yaml:"endpoint"`

	Auth AuthConfig `yaml:"auth"`

	// Timeout bounds a single execution, e.g. "10s".
	Timeout string `yaml:"timeout"`

	// Strict rejects response keys the shape does not declare.
	Strict bool `yaml:"strict"`

	// Schema optionally points at an SDL file used to validate documents
	// before they are sent.
	Schema string `yaml:"schema"`

	Logging LoggingConfig `yaml:"logging"`
	Otel    OtelConfig    `yaml:"otel"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// AuthConfig sets the Authorization header. Header wins over Scheme/Token.
type AuthConfig struct {
	Header string `yaml:"header"`
	Scheme string `yaml:"scheme"`
	Token  string `yaml:"token"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// OtelConfig configures trace export. An empty endpoint disables tracing.
type OtelConfig struct {
	Endpoint string `yaml:"endpoint"`
	Service  string `yaml:"service"`
}

// MetricsConfig configures the Prometheus textfile written on exit.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Timeout: "10s",
		Auth:    AuthConfig{Scheme: "Bearer"},
		Logging: LoggingConfig{Level: "warn"},
		Otel:    OtelConfig{Service: "shapeql"},
	}
}

// Load reads path over the defaults. A missing file is an error; callers
// that treat the file as optional check for os.ErrNotExist.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that cannot be verified by decoding alone.
func (c *Config) Validate() error {
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if c.Auth.Token != "" && c.Auth.Scheme == "" {
		return errors.New("auth.token requires auth.scheme")
	}
	return nil
}

// TimeoutDuration parses Timeout. An empty value means no timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: negative", c.Timeout)
	}
	return d, nil
}

// Authorization returns the Authorization header value, or "" when none is
// configured.
func (c *Config) Authorization() string {
	if c.Auth.Header != "" {
		return c.Auth.Header
	}
	if c.Auth.Token != "" {
		return c.Auth.Scheme + " " + c.Auth.Token
	}
	return ""
}
