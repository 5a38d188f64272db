package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DEFAULT_LOG_LEVEL, cfg.Logging.Level)
	assert.Equal(t, DEFAULT_LOG_PREFIX, cfg.Logging.Prefix)
	assert.False(t, cfg.Binding.StrictValidation)
	assert.Equal(t, DEFAULT_PENDING_BARRIER_CAPACITY, cfg.Binding.PendingBarrierCapacity)
}

func TestParseKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := Parse([]byte(`
[binding]
strict_validation = true
`))
	require.NoError(t, err)
	assert.True(t, cfg.Binding.StrictValidation)
	assert.Equal(t, DEFAULT_PENDING_BARRIER_CAPACITY, cfg.Binding.PendingBarrierCapacity)
	assert.Equal(t, DEFAULT_LOG_LEVEL, cfg.Logging.Level)
}

func TestParseFull(t *testing.T) {
	cfg, err := Parse([]byte(`
[logging]
level = "debug"
prefix = "bind"
report_caller = true

[binding]
strict_validation = false
pending_barrier_capacity = 8
`))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "bind", cfg.Logging.Prefix)
	assert.True(t, cfg.Logging.ReportCaller)
	assert.Equal(t, 8, cfg.Binding.PendingBarrierCapacity)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "[binding]\nstrict = true\n"},
		{"bad level", "[logging]\nlevel = \"loud\"\n"},
		{"zero capacity", "[binding]\npending_barrier_capacity = 0\n"},
		{"not toml", "[binding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shaderbind.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"warn\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "error"
	require.NoError(t, cfg.Apply())
	t.Cleanup(func() { _ = Default().Apply() })
}
