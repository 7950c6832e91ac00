package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRamp(t *testing.T) {
	assert.Equal(t, []float64{4000, 4000.5, 4001, 4001.5}, Ramp(4000, 0.5, 4))
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(7, 0.1, 100)
	b := DeterministicNoise(7, 0.1, 100)
	assert.Equal(t, a, b)
	for _, v := range a {
		assert.True(t, v >= -0.1 && v < 0.1)
	}
}

func TestBlackbodyPeaksAtScale(t *testing.T) {
	wave := Ramp(3000, 10, 500)
	flux := Blackbody(wave, 14000, 2e4)
	RequireFinite(t, flux)

	peak := 0.0
	for _, v := range flux {
		require.Greater(t, v, 0.0)
		peak = math.Max(peak, v)
	}
	assert.InDelta(t, 2e4, peak, 1e-9)
}

func TestAbsorptionLineDepth(t *testing.T) {
	wave := Ramp(4800, 1, 121)
	flux := Ones(len(wave))
	AbsorptionLine(wave, flux, 4860, 5, 0.4)
	assert.InDelta(t, 0.6, flux[60], 1e-12)
	assert.InDelta(t, 1, flux[0], 1e-6)
}

func TestLinear(t *testing.T) {
	assert.InDeltaSlice(t, []float64{29, 30, 31}, Linear([]float64{4000, 4500, 5000}, 30, 2e-3, 4500), 1e-12)
}
