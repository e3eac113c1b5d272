// Package config provides configuration structures and defaults for SiltDB.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/MikhailWahib/siltdb/internal/record"
	"github.com/goccy/go-yaml"
	"go.uber.org/zap"
)

const (
	defaultMaxMemtableSize = 128 * 1024
	defaultMaxEntrySize    = record.MaxEntrySize
)

// ErrInvalidConfig is returned when a Config fails validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds the tunable parameters of the engine.
type Config struct {
	// MaxMemtableSize is the memtable footprint in bytes (sum of key and
	// value lengths) above which a put triggers a flush.
	MaxMemtableSize int `yaml:"max_memtable_size"`

	// MaxEntrySize bounds the length of a single key or value.
	// It cannot exceed the on-disk format limit of 64 KiB.
	MaxEntrySize int `yaml:"max_entry_size"`

	// Logger receives engine events. Nil means no logging.
	Logger *zap.Logger `yaml:"-"`
}

// DefaultConfig returns a Config struct populated with default values.
func DefaultConfig() *Config {
	return &Config{
		MaxMemtableSize: defaultMaxMemtableSize,
		MaxEntrySize:    defaultMaxEntrySize,
		Logger:          zap.NewNop(),
	}
}

// FillDefaults sets any zero-value fields in the Config to their default values.
func (c *Config) FillDefaults() {
	def := DefaultConfig()
	if c.MaxMemtableSize == 0 {
		c.MaxMemtableSize = def.MaxMemtableSize
	}
	if c.MaxEntrySize == 0 {
		c.MaxEntrySize = def.MaxEntrySize
	}
	if c.Logger == nil {
		c.Logger = def.Logger
	}
}

// Validate reports whether the sizes are usable.
func (c *Config) Validate() error {
	if c.MaxMemtableSize <= 0 {
		return fmt.Errorf("%w: max_memtable_size must be positive, got %d", ErrInvalidConfig, c.MaxMemtableSize)
	}
	if c.MaxEntrySize <= 0 || c.MaxEntrySize > record.MaxEntrySize {
		return fmt.Errorf("%w: max_entry_size must be in (0, %d], got %d",
			ErrInvalidConfig, record.MaxEntrySize, c.MaxEntrySize)
	}
	return nil
}

// Load reads a YAML config file. A missing file yields the defaults.
// Unknown keys are rejected so that typos do not silently fall back to defaults.
// The returned Config carries logger, which may be nil.
func Load(path string, logger *zap.Logger) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config file not found, using default config", zap.String("path", path))
			cfg := DefaultConfig()
			cfg.Logger = logger
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &Config{Logger: logger}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
