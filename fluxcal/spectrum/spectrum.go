// Package spectrum holds the extracted-spectrum data model and its FITS
// reader and writer.
package spectrum

import (
	"fmt"
	"math"
	"slices"

	"github.com/astrogo/fitsio"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
)

// Band indexes the four co-indexed channels in file order.
type Band int

const (
	BandOptimal Band = iota
	BandFlux
	BandSky
	BandSigma
	NumBands
)

func (b Band) String() string {
	switch b {
	case BandOptimal:
		return "optimal"
	case BandFlux:
		return "flux"
	case BandSky:
		return "sky"
	case BandSigma:
		return "sigma"
	default:
		return fmt.Sprintf("band(%d)", int(b))
	}
}

// Spectrum is one extracted arm. All channel slices are co-indexed with
// Wavelength.
type Spectrum struct {
	Name string
	Arm  fluxcal.Arm

	Wavelength  []float64
	OptimalFlux []float64
	Flux        []float64
	Sky         []float64
	Sigma       []float64

	Airmass      float64
	ExposureTime float64
	// Dispersion is Å per pixel.
	Dispersion float64
	Device     fluxcal.DeviceState

	// Cards are the non-structural header cards carried through to output.
	Cards []fitsio.Card

	ExtinctionCorrected bool
	FluxCalibrated      bool
	// Standard is the standard-star identifier used for calibration.
	Standard string
}

// Len returns the number of samples.
func (s *Spectrum) Len() int {
	return len(s.Wavelength)
}

// Channel returns the slice holding band b.
func (s *Spectrum) Channel(b Band) []float64 {
	switch b {
	case BandOptimal:
		return s.OptimalFlux
	case BandFlux:
		return s.Flux
	case BandSky:
		return s.Sky
	case BandSigma:
		return s.Sigma
	default:
		return nil
	}
}

// SetChannel replaces band b.
func (s *Spectrum) SetChannel(b Band, data []float64) {
	switch b {
	case BandOptimal:
		s.OptimalFlux = data
	case BandFlux:
		s.Flux = data
	case BandSky:
		s.Sky = data
	case BandSigma:
		s.Sigma = data
	}
}

// Validate checks the data-model invariants: a strictly ascending finite
// wavelength axis with every channel co-indexed, and usable scalars.
func (s *Spectrum) Validate() error {
	n := s.Len()
	if n < 2 {
		return fmt.Errorf("%w: %s: need at least 2 samples, got %d", fluxcal.ErrInputFormat, s.Name, n)
	}
	for b := range NumBands {
		if got := len(s.Channel(b)); got != n {
			return fmt.Errorf("%w: %s: %s has %d samples, wavelength has %d",
				fluxcal.ErrInputFormat, s.Name, b, got, n)
		}
	}
	for i, lambda := range s.Wavelength {
		if math.IsNaN(lambda) || math.IsInf(lambda, 0) {
			return fmt.Errorf("%w: %s: non-finite wavelength at %d", fluxcal.ErrInputFormat, s.Name, i)
		}
		if i > 0 && lambda <= s.Wavelength[i-1] {
			return fmt.Errorf("%w: %s: wavelength not strictly ascending at %d",
				fluxcal.ErrInputFormat, s.Name, i)
		}
	}
	if !(s.ExposureTime > 0) {
		return fmt.Errorf("%w: %s: exposure time %v", fluxcal.ErrInputFormat, s.Name, s.ExposureTime)
	}
	if !(s.Airmass > 0) {
		return fmt.Errorf("%w: %s: airmass %v", fluxcal.ErrInputFormat, s.Name, s.Airmass)
	}
	if s.Dispersion == 0 || math.IsNaN(s.Dispersion) {
		return fmt.Errorf("%w: %s: dispersion %v", fluxcal.ErrInputFormat, s.Name, s.Dispersion)
	}
	return nil
}

// Clone returns a deep copy.
func (s *Spectrum) Clone() *Spectrum {
	out := *s
	out.Wavelength = slices.Clone(s.Wavelength)
	out.OptimalFlux = slices.Clone(s.OptimalFlux)
	out.Flux = slices.Clone(s.Flux)
	out.Sky = slices.Clone(s.Sky)
	out.Sigma = slices.Clone(s.Sigma)
	out.Cards = slices.Clone(s.Cards)
	return &out
}

// Range returns the first and last wavelength.
func (s *Spectrum) Range() (lo, hi float64) {
	if s.Len() == 0 {
		return math.NaN(), math.NaN()
	}
	return s.Wavelength[0], s.Wavelength[s.Len()-1]
}
