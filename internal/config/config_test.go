package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fluxcal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4, cfg.Calibration.Order)
	assert.Equal(t, 0.05, cfg.Calibration.GridStep)
	assert.Equal(t, 200, cfg.Calibration.Oversampling)
	assert.True(t, cfg.Calibration.Extinction)
	assert.Equal(t, 3.68e-20, cfg.Calibration.ZeroPoint)
	assert.Equal(t, "sensitivity_params.txt", cfg.Paths.Ledger)
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := writeFile(t, `
paths:
  catalog_dir: /data/standards
calibration:
  order: 6
  extinction: false
logging:
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/standards", cfg.Paths.CatalogDir)
	assert.Equal(t, 6, cfg.Calibration.Order)
	assert.False(t, cfg.Calibration.Extinction)
	assert.Equal(t, 200, cfg.Calibration.Oversampling)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "calibration:\n  order: 6\n")
	t.Setenv("FLUXCAL_CALIBRATION_ORDER", "3")
	t.Setenv("FLUXCAL_PATHS_MASK_DIR", "/masks")
	t.Setenv("FLUXCAL_MASTER_ENABLED", "true")
	t.Setenv("FLUXCAL_MASTER_DIR", "/master")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Calibration.Order)
	assert.Equal(t, "/masks", cfg.Paths.MaskDir)
	assert.True(t, cfg.Master.Enabled)
	assert.Equal(t, "/master", cfg.Master.Dir)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "order too high", body: "calibration:\n  order: 16\n"},
		{name: "zero step", body: "calibration:\n  grid_step: 0\n"},
		{name: "master without dir", body: "master:\n  enabled: true\n"},
		{name: "bad log format", body: "logging:\n  format: xml\n"},
		{name: "no ledger", body: "paths:\n  ledger: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeFile(t, "calibration: [\n"))
	assert.Error(t, err)
}

func TestLoadAppliesOverridesBeforeValidation(t *testing.T) {
	t.Setenv("FLUXCAL_MASTER_ENABLED", "true")
	path := writeFile(t, "calibration:\n  order: 6\n")

	_, err := Load(path)
	require.Error(t, err, "master mode without a directory")

	cfg, err := Load(path, nil, func(c *Config) {
		assert.Equal(t, 6, c.Calibration.Order, "overrides see the merged values")
		if c.Master.Enabled && c.Master.Dir == "" {
			c.Master.Dir = "."
		}
	})
	require.NoError(t, err)
	assert.True(t, cfg.Master.Enabled)
	assert.Equal(t, ".", cfg.Master.Dir)
}

func TestLoadValidatesOverriddenValues(t *testing.T) {
	_, err := Load(writeFile(t, "calibration:\n  order: 6\n"), func(c *Config) {
		c.Calibration.Order = 0
	})
	assert.Error(t, err)
}
