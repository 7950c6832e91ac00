package extinction

import (
	"fmt"
	"math"
	"sync"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/interp"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
)

// ErrLengthMismatch is returned when wavelength and flux differ in length.
var ErrLengthMismatch = fmt.Errorf("extinction: wavelength and flux must have same length: %w", fluxcal.ErrInputFormat)

// Corrector applies the CTIO extinction curve. It is immutable after
// construction and safe for concurrent use.
type Corrector struct {
	spline interp.NaturalCubic
	lo, hi float64
}

// New fits the extinction spline over the CTIO table. The spline is
// interpolating, not smoothing: Coefficient reproduces every table entry.
func New() (*Corrector, error) {
	c := &Corrector{
		lo: ctioWavelength[0],
		hi: ctioWavelength[len(ctioWavelength)-1],
	}
	if err := c.spline.Fit(ctioWavelength, ctioCoefficient); err != nil {
		return nil, fmt.Errorf("extinction: fit coefficient table: %w", err)
	}
	return c, nil
}

var defaultCorrector = sync.OnceValues(New)

// Default returns a process-wide Corrector, fitting the spline on first use.
func Default() (*Corrector, error) {
	return defaultCorrector()
}

// Domain returns the tabulated wavelength range in Å.
func (c *Corrector) Domain() (lo, hi float64) {
	return c.lo, c.hi
}

// Coefficient returns a(λ) in mag/airmass. Wavelengths outside the table
// are clamped to the boundary.
func (c *Corrector) Coefficient(lambda float64) float64 {
	if lambda < c.lo {
		lambda = c.lo
	}
	if lambda > c.hi {
		lambda = c.hi
	}
	return c.spline.Predict(lambda)
}

// Factor returns the multiplicative correction 10^(0.4·a(λ)·(1+airmass)).
func (c *Corrector) Factor(lambda, airmass float64) float64 {
	return math.Pow(10, 0.4*c.Coefficient(lambda)*(1+airmass))
}

// Correct returns a new slice holding the extinction-corrected flux.
func (c *Corrector) Correct(wavelength, flux []float64, airmass float64) ([]float64, error) {
	if len(wavelength) != len(flux) {
		return nil, ErrLengthMismatch
	}
	factors := make([]float64, len(wavelength))
	for i, lambda := range wavelength {
		factors[i] = c.Factor(lambda, airmass)
	}
	out := make([]float64, len(flux))
	vecmath.MulBlock(out, flux, factors)
	return out, nil
}
