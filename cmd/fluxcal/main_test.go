package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/pipeline"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/polyfit"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/provenance"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/sensfunc"
	"github.com/corbettht/ZZCeti-pipeline/internal/config"
)

func TestPrintSummary(t *testing.T) {
	curve := &sensfunc.Curve{
		Poly:     polyfit.Polynomial{Coeffs: []float64{30, 1, 0, 0, 0}},
		Standard: "gd50_blue.ms.fits",
		Arm:      fluxcal.ArmBlue,
		Airmass:  1.2,
	}
	sum := &pipeline.Summary{
		Standards: []pipeline.StandardResult{{Curve: curve}},
		Outputs: []pipeline.Output{
			{Source: "wd_blue.ms.fits", Path: "wd_blue_flux_gd50.ms.fits", Standard: curve.Standard},
			{Source: "wd_red.ms.fits", Path: "wd_red_flux_gd50.ms.fits", Skipped: true, Disposition: provenance.Skip},
		},
		Diagnostics: "sens_fits_2026-10-18T21:30.txt",
	}

	var buf bytes.Buffer
	require.NoError(t, printSummary(&buf, "run-1", sum))
	out := buf.String()
	assert.Contains(t, out, "Run run-1")
	assert.Contains(t, out, "gd50_blue.ms.fits")
	assert.Contains(t, out, "1.200")
	assert.Contains(t, out, "(skipped)")
	assert.Contains(t, out, "skip")
	assert.Contains(t, out, "Diagnostics: sens_fits_2026-10-18T21:30.txt")
}

func TestOverridesWithoutFlags(t *testing.T) {
	cfg := config.Default()
	overrides(flags{order: 9, extinct: false}, cfg)
	assert.Equal(t, 4, cfg.Calibration.Order)
	assert.True(t, cfg.Calibration.Extinction)
}
