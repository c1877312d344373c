package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tick_rate_hz: 10\nrecruit_cost: 500\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.TickRateHz)
	assert.Equal(t, 500.0, cfg.RecruitCost)

	// Everything unset keeps its default.
	assert.Equal(t, Default().GridWidth, cfg.GridWidth)
	assert.Equal(t, Default().EnergyDecay, cfg.EnergyDecay)
}

func TestLoadMalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tick_rate_hz: [not a number"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
