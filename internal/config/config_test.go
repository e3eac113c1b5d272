package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MikhailWahib/siltdb/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "siltdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, 128*1024, cfg.MaxMemtableSize)
	assert.Equal(t, 64*1024, cfg.MaxEntrySize)
	assert.NotNil(t, cfg.Logger)
	assert.NoError(t, cfg.Validate())
}

func TestFillDefaults(t *testing.T) {
	cfg := &config.Config{MaxMemtableSize: 1024}
	cfg.FillDefaults()

	assert.Equal(t, 1024, cfg.MaxMemtableSize, "explicit values are kept")
	assert.Equal(t, 64*1024, cfg.MaxEntrySize)
	assert.NotNil(t, cfg.Logger)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{"minimal", config.Config{MaxMemtableSize: 1, MaxEntrySize: 1}, false},
		{"format limit", config.Config{MaxMemtableSize: 1, MaxEntrySize: 65536}, false},
		{"negative memtable", config.Config{MaxMemtableSize: -1, MaxEntrySize: 1}, true},
		{"zero memtable", config.Config{MaxMemtableSize: 0, MaxEntrySize: 1}, true},
		{"zero entry", config.Config{MaxMemtableSize: 1, MaxEntrySize: 0}, true},
		{"entry above format limit", config.Config{MaxMemtableSize: 1, MaxEntrySize: 65537}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, config.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "max_memtable_size: 4096\n")

	cfg, err := config.Load(path, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, 4096, cfg.MaxMemtableSize)
	assert.Equal(t, 64*1024, cfg.MaxEntrySize, "omitted keys fall back to defaults")
	assert.NotNil(t, cfg.Logger)
}

func TestLoad_MissingFile(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), logger)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().MaxMemtableSize, cfg.MaxMemtableSize)
	assert.Same(t, logger, cfg.Logger)

	require.Equal(t, 1, logs.FilterMessage("config file not found, using default config").Len(),
		"fallback to defaults is reported on the caller's logger")
}

func TestLoad_NilLogger(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "max_entry_size: 512\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.MaxEntrySize)
	assert.NotNil(t, cfg.Logger)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", "max_memtable_size: [1, 2\n"},
		{"unknown key", "max_memtable_sise: 10\n"},
		{"wrong type", "max_memtable_size: lots\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content), nil)
			assert.Error(t, err)
		})
	}
}

func TestLoad_FailsValidation(t *testing.T) {
	_, err := config.Load(writeConfig(t, "max_entry_size: 100000\n"), nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
