package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Time sources for the epoch sent to the device
const (
	TimeSourceSystem = "system"
	TimeSourceNTP    = "ntp"
)

// Configuration validation constants
const (
	MinBaud = 300     // Slowest baud rate any real device uses
	MaxBaud = 4000000 // Fastest baud rate common USB-serial bridges support

	// Default values
	DefaultBaud          = 115200
	DefaultTimeSource    = TimeSourceSystem
	DefaultNTPServer     = "pool.ntp.org"
	DefaultBootDelay     = 3 * time.Second        // Device reboot after flashing
	DefaultSettleDelay   = 1 * time.Second        // Port settle after opening
	DefaultResponseDelay = 500 * time.Millisecond // Device reply window
	DefaultReadTimeout   = 2 * time.Second
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// Duration is a time.Duration that unmarshals from YAML strings like "3s"
// or "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the application configuration
type Config struct {
	Port          string    `yaml:"port"` // Serial port; empty means skip unless flag/env supplies one
	Baud          int       `yaml:"baud"`
	TimeSource    string    `yaml:"time_source"`
	NTPServer     string    `yaml:"ntp_server"`
	BootDelay     *Duration `yaml:"boot_delay"` // Pointer to distinguish between 0 and unset
	SettleDelay   *Duration `yaml:"settle_delay"`
	ResponseDelay *Duration `yaml:"response_delay"`
	ReadTimeout   *Duration `yaml:"read_timeout"`
	LogLevel      string    `yaml:"log_level"`
	LogFormat     string    `yaml:"log_format"`
}

// Load loads configuration from a YAML file and applies environment variable overrides
func Load(path string) (*Config, error) {
	// Read YAML file
	// #nosec G304 -- Config file path is provided by the operator via CLI flag, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return finish(&cfg)
}

// LoadOrDefault loads the file at path if it exists and falls back to the
// built-in defaults when it does not. The hook usually runs with no config
// file at all, driven entirely by UPLOAD_PORT, so a missing file is normal.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return finish(&Config{})
	}
	return Load(path)
}

// finish applies defaults and env overrides, then validates
func finish(cfg *Config) (*Config, error) {
	applyDefaults(cfg)

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("environment variable error: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyDefaults sets default values for configuration
func applyDefaults(cfg *Config) {
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	if cfg.TimeSource == "" {
		cfg.TimeSource = DefaultTimeSource
	}
	if cfg.NTPServer == "" {
		cfg.NTPServer = DefaultNTPServer
	}
	// Only apply delay defaults when the field is nil (not set), not when it's
	// explicitly zero
	if cfg.BootDelay == nil {
		cfg.BootDelay = defaultDuration(DefaultBootDelay)
	}
	if cfg.SettleDelay == nil {
		cfg.SettleDelay = defaultDuration(DefaultSettleDelay)
	}
	if cfg.ResponseDelay == nil {
		cfg.ResponseDelay = defaultDuration(DefaultResponseDelay)
	}
	if cfg.ReadTimeout == nil {
		cfg.ReadTimeout = defaultDuration(DefaultReadTimeout)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
}

func defaultDuration(d time.Duration) *Duration {
	v := Duration(d)
	return &v
}

// applyEnvOverrides applies environment variable overrides to configuration
func applyEnvOverrides(cfg *Config) error {
	// Override serial port
	if val := os.Getenv("RTCSYNC_PORT"); val != "" {
		cfg.Port = val
	}

	// Override baud rate
	if val := os.Getenv("RTCSYNC_BAUD"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid RTCSYNC_BAUD: must be an integer, got %q", val)
		}
		cfg.Baud = i
	}

	// Override time source
	if val := os.Getenv("RTCSYNC_TIME_SOURCE"); val != "" {
		cfg.TimeSource = val
	}

	// Override NTP server
	if val := os.Getenv("RTCSYNC_NTP_SERVER"); val != "" {
		cfg.NTPServer = val
	}

	// Override log level
	if val := os.Getenv("RTCSYNC_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}

	// Override log format
	if val := os.Getenv("RTCSYNC_LOG_FORMAT"); val != "" {
		cfg.LogFormat = val
	}

	return nil
}

// validate validates the configuration
func validate(cfg *Config) error {
	// Port may be empty: an empty port means the sync is skipped

	if cfg.Baud < MinBaud || cfg.Baud > MaxBaud {
		return fmt.Errorf("baud must be between %d and %d, got %d", MinBaud, MaxBaud, cfg.Baud)
	}

	if cfg.TimeSource != TimeSourceSystem && cfg.TimeSource != TimeSourceNTP {
		return fmt.Errorf("time_source must be %q or %q, got %q", TimeSourceSystem, TimeSourceNTP, cfg.TimeSource)
	}

	if cfg.TimeSource == TimeSourceNTP && cfg.NTPServer == "" {
		return fmt.Errorf("ntp_server must be set when time_source is %q", TimeSourceNTP)
	}

	for _, d := range []struct {
		name  string
		value *Duration
	}{
		{"boot_delay", cfg.BootDelay},
		{"settle_delay", cfg.SettleDelay},
		{"response_delay", cfg.ResponseDelay},
		{"read_timeout", cfg.ReadTimeout},
	} {
		if d.value.Std() < 0 {
			return fmt.Errorf("%s cannot be negative, got %s", d.name, d.value.Std())
		}
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("log_format must be \"text\" or \"json\", got %q", cfg.LogFormat)
	}

	return nil
}
