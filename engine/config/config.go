package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/shaderbind/engine/core"
)

const (
	DEFAULT_LOG_LEVEL                = "info"
	DEFAULT_LOG_PREFIX               = "shaderbind"
	DEFAULT_PENDING_BARRIER_CAPACITY = 32
)

type LoggingConfig struct {
	Level        string `toml:"level"`
	Prefix       string `toml:"prefix"`
	ReportCaller bool   `toml:"report_caller"`
}

type BindingConfig struct {
	// StrictValidation turns a failed state verification into a commit error
	// instead of a logged diagnostic.
	StrictValidation bool `toml:"strict_validation"`
	// PendingBarrierCapacity is the initial size of each context's barrier queue.
	PendingBarrierCapacity int `toml:"pending_barrier_capacity"`
}

type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Binding BindingConfig `toml:"binding"`
}

func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  DEFAULT_LOG_LEVEL,
			Prefix: DEFAULT_LOG_PREFIX,
		},
		Binding: BindingConfig{
			PendingBarrierCapacity: DEFAULT_PENDING_BARRIER_CAPACITY,
		},
	}
}

// Parse decodes a TOML document on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	if c.Binding.PendingBarrierCapacity < 1 {
		return fmt.Errorf("pending_barrier_capacity must be positive, got %d", c.Binding.PendingBarrierCapacity)
	}
	return nil
}

// Apply pushes the logging section into the engine logger.
func (c *Config) Apply() error {
	return core.ConfigureLogger(core.LoggerOptions{
		Level:        c.Logging.Level,
		Prefix:       c.Logging.Prefix,
		ReportCaller: c.Logging.ReportCaller,
	})
}
