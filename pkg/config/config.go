// Package config provides configuration structures and loading logic for the elucidation client.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/polisai/elucidation-go/pkg/domain"
)

// Config holds the global configuration for an application reporting to elucidation.
type Config struct {
	Elucidation ElucidationConfig `yaml:"elucidation"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ElucidationConfig controls the client and how it finds the server.
// At most one of BaseURI, BaseURIEnv and BaseURIFile may be set.
type ElucidationConfig struct {
	Enabled     bool          `yaml:"enabled"`
	BaseURI     string        `yaml:"base_uri"`
	BaseURIEnv  string        `yaml:"base_uri_env"`
	BaseURIFile string        `yaml:"base_uri_file"`
	Timeout     time.Duration `yaml:"timeout"`
}

// TelemetryConfig holds configuration for OpenTelemetry.
type TelemetryConfig struct {
	ServiceName  string `yaml:"service_name"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
}

// LoggingConfig holds configuration for logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Telemetry: TelemetryConfig{
			ServiceName: "elucidation-client",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from a file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		//nolint:gosec // Config file path is controlled by admin/operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if val := os.Getenv("ELUCIDATION_ENABLED"); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%w: ELUCIDATION_ENABLED=%q", domain.ErrConfigInvalid, val)
		}
		cfg.Elucidation.Enabled = enabled
	}
	if val := os.Getenv("ELUCIDATION_BASE_URI"); val != "" {
		cfg.Elucidation.BaseURI = val
	}
	if val := os.Getenv("ELUCIDATION_BASE_URI_ENV"); val != "" {
		cfg.Elucidation.BaseURIEnv = val
	}
	if val := os.Getenv("ELUCIDATION_BASE_URI_FILE"); val != "" {
		cfg.Elucidation.BaseURIFile = val
	}
	if val := os.Getenv("ELUCIDATION_TIMEOUT"); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("%w: ELUCIDATION_TIMEOUT=%q", domain.ErrConfigInvalid, val)
		}
		cfg.Elucidation.Timeout = timeout
	}

	if val := os.Getenv("ELUCIDATION_SERVICE_NAME"); val != "" {
		cfg.Telemetry.ServiceName = val
	}
	if val := os.Getenv("ELUCIDATION_OTLP_ENDPOINT"); val != "" {
		cfg.Telemetry.OTLPEndpoint = val
	}
	if val := os.Getenv("ELUCIDATION_OTLP_INSECURE"); val == "true" {
		cfg.Telemetry.Insecure = true
	}

	if val := os.Getenv("ELUCIDATION_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("ELUCIDATION_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	return nil
}

// Validate performs validation of the entire configuration.
func (c *Config) Validate() error {
	if err := c.Elucidation.Validate(); err != nil {
		return fmt.Errorf("elucidation configuration: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging configuration: %w", err)
	}

	return nil
}

// Validate performs validation of elucidation configuration. A missing URI
// source is not an error: the client then runs disabled.
func (c *ElucidationConfig) Validate() error {
	var errs []error

	sources := 0
	for _, v := range []string{c.BaseURI, c.BaseURIEnv, c.BaseURIFile} {
		if strings.TrimSpace(v) != "" {
			sources++
		}
	}
	if sources > 1 {
		errs = append(errs, fmt.Errorf("%w: only one of base_uri, base_uri_env, base_uri_file may be set", domain.ErrConfigInvalid))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%w: timeout must not be negative, got %s", domain.ErrConfigInvalid, c.Timeout))
	}

	return errors.Join(errs...)
}

// HasBaseURISource reports whether any way of locating the server is configured.
func (c *ElucidationConfig) HasBaseURISource() bool {
	return strings.TrimSpace(c.BaseURI) != "" ||
		strings.TrimSpace(c.BaseURIEnv) != "" ||
		strings.TrimSpace(c.BaseURIFile) != ""
}

// Validate performs validation of logging configuration
func (c *LoggingConfig) Validate() error {
	if strings.TrimSpace(c.Level) == "" {
		c.Level = "info"
	}
	if strings.TrimSpace(c.Format) == "" {
		c.Format = "json"
	}

	level := strings.TrimSpace(strings.ToLower(c.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Level = level
	default:
		return fmt.Errorf("%w: invalid log level %q, supported levels: debug, info, warn, error", domain.ErrConfigInvalid, c.Level)
	}

	format := strings.TrimSpace(strings.ToLower(c.Format))
	switch format {
	case "json", "text":
		c.Format = format
	default:
		return fmt.Errorf("%w: invalid log format %q, supported formats: json, text", domain.ErrConfigInvalid, c.Format)
	}

	return nil
}
