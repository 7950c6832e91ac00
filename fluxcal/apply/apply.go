// Package apply converts instrumental counts to physical flux with a
// sensitivity curve.
package apply

import (
	"fmt"
	"log/slog"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/extinction"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/sensfunc"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/spectrum"
)

// ErrNoCurve indicates a nil sensitivity curve.
var ErrNoCurve = fmt.Errorf("apply: sensitivity curve is required: %w", fluxcal.ErrInputFormat)

type config struct {
	extinction *extinction.Corrector
	logger     *slog.Logger
}

// Option configures an Applier.
type Option func(*config)

// WithExtinction extinction-corrects the optimal and non-optimal channels
// before calibration. nil disables correction.
func WithExtinction(c *extinction.Corrector) Option {
	return func(cfg *config) {
		cfg.extinction = c
	}
}

// WithLogger sets the logger. nil means slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// Applier calibrates program spectra. It holds no per-spectrum state.
type Applier struct {
	ext *extinction.Corrector
	log *slog.Logger
}

// New returns an Applier.
func New(opts ...Option) *Applier {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Applier{ext: cfg.extinction, log: cfg.logger}
}

// Scale returns 1 / (exptime · dispersion · 10^(sens/2.5)) per sample.
func Scale(sens []float64, exptime, dispersion float64) []float64 {
	out := make([]float64, len(sens))
	for i, v := range sens {
		out[i] = math.Pow(10, -v/2.5)
	}
	vecmath.ScaleBlock(out, out, 1/(exptime*dispersion))
	return out
}

// Apply returns a calibrated copy of s. The curve is evaluated on s's
// wavelength grid and the same per-sample scale is applied to all four
// channels. s is not modified.
func (a *Applier) Apply(s *spectrum.Spectrum, curve *sensfunc.Curve) (*spectrum.Spectrum, error) {
	if curve == nil {
		return nil, ErrNoCurve
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	out := s.Clone()

	if a.ext != nil && !s.ExtinctionCorrected {
		for _, b := range []spectrum.Band{spectrum.BandOptimal, spectrum.BandFlux} {
			corrected, err := a.ext.Correct(out.Wavelength, out.Channel(b), out.Airmass)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", s.Name, err)
			}
			out.SetChannel(b, corrected)
		}
		out.ExtinctionCorrected = true
	}

	scale := Scale(curve.Evaluate(out.Wavelength), out.ExposureTime, out.Dispersion)
	for b := range spectrum.NumBands {
		vecmath.MulBlockInPlace(out.Channel(b), scale)
	}
	out.FluxCalibrated = true
	out.Standard = curve.Standard

	a.log.Debug("spectrum calibrated",
		"spectrum", s.Name, "standard", curve.Standard, "offset", curve.Offset,
		"extinction", out.ExtinctionCorrected)
	return out, nil
}
