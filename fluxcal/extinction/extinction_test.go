package extinction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableShape(t *testing.T) {
	require.Equal(t, len(ctioWavelength), len(ctioCoefficient))
	for i := 1; i < len(ctioWavelength); i++ {
		require.Greater(t, ctioWavelength[i], ctioWavelength[i-1], "index %d", i)
	}
}

func TestCoefficientPassesThroughTable(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	for i, lambda := range ctioWavelength {
		assert.InDelta(t, ctioCoefficient[i], c.Coefficient(lambda), 1e-9, "lambda %v", lambda)
	}
}

func TestCoefficientClampsOutsideDomain(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	lo, hi := c.Domain()
	assert.Equal(t, c.Coefficient(lo), c.Coefficient(lo-500))
	assert.Equal(t, c.Coefficient(hi), c.Coefficient(hi+2000))
	assert.InDelta(t, 1.395, c.Coefficient(2000), 1e-9)
}

func TestCorrectZeroAirmass(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	wave := []float64{3500, 4200.5, 5000, 6563, 8000}
	flux := []float64{10, 20, 30, 40, 50}

	got, err := c.Correct(wave, flux, 0)
	require.NoError(t, err)

	for i := range wave {
		want := flux[i] * math.Pow(10, 0.4*c.Coefficient(wave[i]))
		assert.InDelta(t, want, got[i], 1e-12*want)
	}
}

func TestCorrectScalesWithAirmass(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	wave := []float64{4000, 6000}
	flux := []float64{1, 1}

	got, err := c.Correct(wave, flux, 1.5)
	require.NoError(t, err)

	for i, lambda := range wave {
		want := math.Pow(10, 0.4*c.Coefficient(lambda)*2.5)
		assert.InDelta(t, want, got[i], 1e-12*want)
	}
	assert.Greater(t, got[0], got[1], "blue extinction exceeds red")
	assert.Equal(t, []float64{1, 1}, flux, "input must not be modified")
}

func TestCorrectLengthMismatch(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	_, err = c.Correct([]float64{4000}, []float64{1, 2}, 1)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}
