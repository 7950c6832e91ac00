// Package polyfit fits and evaluates least-squares polynomials.
//
// Fits are computed on a normalized abscissa t = (x - Center) / Scale that
// maps the data range to [-1, 1], which keeps the design matrix well
// conditioned for wavelengths in the thousands of Å.
package polyfit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
)

// MaxOrder is the highest supported polynomial order.
const MaxOrder = 15

var (
	// ErrInvalidOrder indicates an order outside [0, MaxOrder].
	ErrInvalidOrder = fmt.Errorf("polyfit: invalid order: %w", fluxcal.ErrInputFormat)
	// ErrLengthMismatch indicates x and y of different lengths.
	ErrLengthMismatch = fmt.Errorf("polyfit: x and y must have same length: %w", fluxcal.ErrInputFormat)
)

// Polynomial is Σ Coeffs[k]·t^k with t = (x - Center) / Scale.
type Polynomial struct {
	Coeffs []float64
	Center float64
	Scale  float64
}

// FromDescending builds a polynomial in raw x from coefficients ordered
// highest power first.
func FromDescending(coeffs []float64) Polynomial {
	asc := make([]float64, len(coeffs))
	for i, c := range coeffs {
		asc[len(coeffs)-1-i] = c
	}
	return Polynomial{Coeffs: asc, Scale: 1}
}

// Order returns the polynomial order.
func (p Polynomial) Order() int {
	return len(p.Coeffs) - 1
}

// Eval evaluates the polynomial at x using Horner's scheme.
func (p Polynomial) Eval(x float64) float64 {
	scale := p.Scale
	if scale == 0 {
		scale = 1
	}
	t := (x - p.Center) / scale
	y := 0.0
	for k := len(p.Coeffs) - 1; k >= 0; k-- {
		y = y*t + p.Coeffs[k]
	}
	return y
}

// EvalSlice evaluates the polynomial at every x, reusing dst if it has
// sufficient capacity.
func (p Polynomial) EvalSlice(dst, xs []float64) []float64 {
	if cap(dst) >= len(xs) {
		dst = dst[:len(xs)]
	} else {
		dst = make([]float64, len(xs))
	}
	for i, x := range xs {
		dst[i] = p.Eval(x)
	}
	return dst
}

// Fit returns the least-squares polynomial of the given order through
// (xs, ys). It needs at least order+1 points with distinct x values and
// wraps fluxcal.ErrFitDegeneracy when the system is underdetermined or
// ill-conditioned.
func Fit(xs, ys []float64, order int) (Polynomial, error) {
	if order < 0 || order > MaxOrder {
		return Polynomial{}, fmt.Errorf("%w: %d", ErrInvalidOrder, order)
	}
	if len(xs) != len(ys) {
		return Polynomial{}, ErrLengthMismatch
	}
	n := len(xs)
	if n < order+1 {
		return Polynomial{}, fmt.Errorf("%w: %d points for order %d",
			fluxcal.ErrFitDegeneracy, n, order)
	}
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			return Polynomial{}, fmt.Errorf("%w: non-finite point at index %d",
				fluxcal.ErrFitDegeneracy, i)
		}
	}

	lo, hi := floats.Min(xs), floats.Max(xs)
	center := 0.5 * (lo + hi)
	scale := 0.5 * (hi - lo)
	if scale == 0 {
		if order > 0 {
			return Polynomial{}, fmt.Errorf("%w: all x equal", fluxcal.ErrFitDegeneracy)
		}
		scale = 1
	}

	a := mat.NewDense(n, order+1, nil)
	for i, x := range xs {
		t := (x - center) / scale
		v := 1.0
		for k := 0; k <= order; k++ {
			a.Set(i, k, v)
			v *= t
		}
	}
	b := mat.NewVecDense(n, append([]float64(nil), ys...))

	var coef mat.VecDense
	if err := coef.SolveVec(a, b); err != nil {
		return Polynomial{}, fmt.Errorf("%w: %w", fluxcal.ErrFitDegeneracy, err)
	}

	out := Polynomial{
		Coeffs: make([]float64, order+1),
		Center: center,
		Scale:  scale,
	}
	for k := range out.Coeffs {
		out.Coeffs[k] = coef.AtVec(k)
	}
	return out, nil
}

// Residuals returns ys - p(xs).
func Residuals(p Polynomial, xs, ys []float64) []float64 {
	res := p.EvalSlice(nil, xs)
	for i := range res {
		res[i] = ys[i] - res[i]
	}
	return res
}

// RMS returns the root mean square of values, or 0 for an empty slice.
func RMS(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Norm(values, 2) / math.Sqrt(float64(len(values)))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
