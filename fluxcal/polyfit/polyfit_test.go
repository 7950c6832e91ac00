package polyfit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
	"github.com/corbettht/ZZCeti-pipeline/internal/testutil"
)

func TestFitRecoversPolynomial(t *testing.T) {
	xs := testutil.Ramp(3800, 7.5, 120)
	truth := func(x float64) float64 {
		d := (x - 4200) / 1000
		return 12.5 - 0.8*d + 0.3*d*d - 0.05*d*d*d
	}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = truth(x)
	}

	for _, order := range []int{3, 4, 6} {
		p, err := Fit(xs, ys, order)
		require.NoError(t, err)
		assert.Equal(t, order, p.Order())
		for _, x := range []float64{3800, 4012.5, 4444.4, 4692.5} {
			assert.InDelta(t, truth(x), p.Eval(x), 1e-9, "order %d x %v", order, x)
		}
	}
}

func TestFitLinearExact(t *testing.T) {
	xs := testutil.Ramp(6000, 20, 40)
	ys := testutil.Linear(xs, -17.2, 4e-4, 6000)

	p, err := Fit(xs, ys, 4)
	require.NoError(t, err)

	testutil.RequireSliceNearlyEqual(t, p.EvalSlice(nil, xs), ys, 1e-10)
	assert.InDelta(t, 0, RMS(Residuals(p, xs, ys)), 1e-10)
}

func TestFitLeastSquares(t *testing.T) {
	// Symmetric scatter around a constant: the order-0 fit is the mean.
	xs := []float64{1, 2, 3, 4}
	ys := []float64{1, 3, 1, 3}

	p, err := Fit(xs, ys, 0)
	require.NoError(t, err)
	assert.InDelta(t, 2, p.Eval(100), 1e-12)
	assert.InDelta(t, 1, RMS(Residuals(p, xs, ys)), 1e-12)
}

func TestFitDegenerate(t *testing.T) {
	tests := []struct {
		name  string
		xs    []float64
		ys    []float64
		order int
	}{
		{name: "empty", xs: nil, ys: nil, order: 4},
		{name: "too few points", xs: []float64{1, 2, 3}, ys: []float64{1, 2, 3}, order: 4},
		{name: "equal x", xs: []float64{5, 5, 5}, ys: []float64{1, 2, 3}, order: 1},
		{name: "nan", xs: []float64{1, 2, 3}, ys: []float64{1, math.NaN(), 3}, order: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.xs, tt.ys, tt.order)
			assert.ErrorIs(t, err, fluxcal.ErrFitDegeneracy)
		})
	}
}

func TestFitValidation(t *testing.T) {
	_, err := Fit([]float64{1, 2}, []float64{1, 2}, -1)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = Fit([]float64{1, 2}, []float64{1, 2}, MaxOrder+1)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = Fit([]float64{1, 2}, []float64{1}, 0)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestFromDescending(t *testing.T) {
	// 2x² - 3x + 1
	p := FromDescending([]float64{2, -3, 1})
	assert.Equal(t, 2, p.Order())
	assert.Equal(t, 1.0, p.Eval(0))
	assert.Equal(t, 0.0, p.Eval(1))
	assert.Equal(t, 15.0, p.Eval(-2))
}
