package sensfunc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/mask"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/polyfit"
)

// ErrLengthMismatch indicates co-indexed inputs of different lengths.
var ErrLengthMismatch = fmt.Errorf("sensfunc: inputs must have same length: %w", fluxcal.ErrInputFormat)

// Curve is a fitted sensitivity function. It is read-only once built and
// may be shared by every program spectrum that selects it.
type Curve struct {
	Poly polyfit.Polynomial
	// Offset is added to the polynomial in the log-sensitivity domain.
	Offset float64

	Standard string
	Catalog  string
	Arm      fluxcal.Arm
	Airmass  float64
	Device   fluxcal.DeviceState
	Excluded mask.Spec
	// BinSize is the resampling grid step in Å, 0 for master curves.
	BinSize float64
}

// Order returns the polynomial order.
func (c *Curve) Order() int {
	return c.Poly.Order()
}

// At returns the sensitivity at lambda.
func (c *Curve) At(lambda float64) float64 {
	return c.Poly.Eval(lambda) + c.Offset
}

// Evaluate returns the sensitivity at every wavelength.
func (c *Curve) Evaluate(wavelength []float64) []float64 {
	out := c.Poly.EvalSlice(nil, wavelength)
	if c.Offset != 0 {
		floats.AddConst(c.Offset, out)
	}
	return out
}

// WithOffset returns a copy of c shifted by offset.
func (c *Curve) WithOffset(offset float64) *Curve {
	out := *c
	out.Offset = offset
	return &out
}

// Sensitivity returns 2.5·log10[(counts/exptime/width)/(flux/width)] per
// catalog bin. Bins with non-positive counts or flux yield NaN or ±Inf.
func Sensitivity(counts, flux, widths []float64, exptime float64) ([]float64, error) {
	if len(counts) != len(flux) || len(counts) != len(widths) {
		return nil, ErrLengthMismatch
	}
	out := make([]float64, len(counts))
	for i := range counts {
		observed := counts[i] / exptime / widths[i]
		catalog := flux[i] / widths[i]
		out[i] = 2.5 * math.Log10(observed/catalog)
	}
	return out, nil
}

// Columns are the per-standard diagnostics: the fit set and the accepted
// fit evaluated on it.
type Columns struct {
	Wavelength []float64
	Observed   []float64
	Fit        []float64
	Residual   []float64
}

// Len returns the number of rows.
func (c Columns) Len() int {
	return len(c.Wavelength)
}
