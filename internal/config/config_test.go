package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
# lego scene, quick run
data_dir: /data/nerf/lego
out_dir: "/tmp/out"
steps: 5000
batch_size: 512
num_fine: 0
perturb: false
learning_rate: 1e-3
`))
	require.NoError(t, err)

	assert.Equal(t, "/data/nerf/lego", cfg.DataDir)
	assert.Equal(t, "/tmp/out", cfg.OutDir)
	assert.Equal(t, 5000, cfg.Steps)
	assert.Equal(t, 512, cfg.BatchSize)
	assert.Equal(t, 0, cfg.NumFine)
	assert.False(t, cfg.Perturb)
	assert.InDelta(t, 1e-3, cfg.LearningRate, 1e-12)

	// Unset keys keep their defaults.
	assert.Equal(t, 8, cfg.NetDepth)
	assert.Equal(t, 64, cfg.NumCoarse)
	assert.True(t, cfg.UseViewdirs)
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, "data_dir: /data\nwat: 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key")
}

func TestLoadRejectsBadValue(t *testing.T) {
	_, err := Load(writeConfig(t, "data_dir: /data\nsteps: lots\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate(), "data_dir is required")

	cfg.DataDir = "/data"
	assert.NoError(t, cfg.Validate())

	cfg.NumCoarse = 0
	assert.Error(t, cfg.Validate())
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/data"

	cfg.ApplyOverrides(Overrides{Steps: 10, Seed: 7, LearningRate: 2e-4})
	assert.Equal(t, 10, cfg.Steps)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.InDelta(t, 2e-4, cfg.LearningRate, 1e-12)

	// Zero overrides leave values alone.
	cfg.ApplyOverrides(Overrides{})
	assert.Equal(t, 10, cfg.Steps)
	assert.Equal(t, "/data", cfg.DataDir)
}
