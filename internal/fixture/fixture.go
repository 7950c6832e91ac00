// Package fixture builds synthetic standard-star observations whose
// sensitivity curve is known exactly, for tests across packages.
package fixture

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/catalog"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/rebin"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/spectrum"
	"github.com/corbettht/ZZCeti-pipeline/internal/testutil"
)

// Standard describes one synthetic standard observation.
type Standard struct {
	Name         string
	Arm          fluxcal.Arm
	Lo, Hi       float64
	Dispersion   float64
	Airmass      float64
	ExposureTime float64
	Device       fluxcal.DeviceState

	// Truth is the log-sensitivity the catalog is constructed to reproduce.
	Truth func(lambda float64) float64

	CatalogStep  float64
	CatalogWidth float64

	// Step and Oversampling must match the builder under test.
	Step         float64
	Oversampling int
}

// Blue returns a blue-arm standard from 3900 to 5100 Å whose sensitivity
// is linear in wavelength.
func Blue(name string, airmass float64) Standard {
	return Standard{
		Name:         name,
		Arm:          fluxcal.ArmBlue,
		Lo:           3900,
		Hi:           5100,
		Dispersion:   1,
		Airmass:      airmass,
		ExposureTime: 120,
		Truth:        func(l float64) float64 { return 30.5 + 0.8e-3*(l-4500) },
		CatalogStep:  50,
		CatalogWidth: 40,
		Step:         rebin.DefaultStep,
		Oversampling: 20,
	}
}

// Red returns a red-arm counterpart of Blue from 5900 to 7100 Å.
func Red(name string, airmass float64) Standard {
	st := Blue(name, airmass)
	st.Arm = fluxcal.ArmRed
	st.Lo, st.Hi = 5900, 7100
	st.Truth = func(l float64) float64 { return 31.2 - 0.5e-3*(l-6500) }
	return st
}

// Counts returns the pixel wavelengths and raw counts of the observation.
func (st Standard) Counts() (wave, counts []float64) {
	n := int(math.Round((st.Hi-st.Lo)/st.Dispersion)) + 1
	wave = testutil.Ramp(st.Lo, st.Dispersion, n)
	counts = testutil.Blackbody(wave, 14000, 2e4)
	testutil.AbsorptionLine(wave, counts, st.Lo+0.3*(st.Hi-st.Lo), 8, 0.4)
	return wave, counts
}

// Spectrum returns the observation. Channels other than the optimal flux
// are scaled copies so tests can tell them apart.
func (st Standard) Spectrum() *spectrum.Spectrum {
	wave, counts := st.Counts()
	s := &spectrum.Spectrum{
		Name:         st.Name,
		Arm:          st.Arm,
		Wavelength:   wave,
		OptimalFlux:  counts,
		Flux:         scaled(counts, 0.95),
		Sky:          testutil.DC(40, len(wave)),
		Sigma:        testutil.DC(3, len(wave)),
		Airmass:      st.Airmass,
		ExposureTime: st.ExposureTime,
		Dispersion:   st.Dispersion,
		Device:       st.Device,
	}
	return s
}

// CatalogText returns the contents of a three-column catalog whose
// magnitudes reproduce Truth exactly at every catalog wavelength, given the
// counts in corrected (nil means the raw optimal counts).
func (st Standard) CatalogText(corrected []float64) (string, error) {
	wave, counts := st.Counts()
	if corrected != nil {
		counts = corrected
	}
	grid, err := rebin.UniformGrid(wave[0], wave[len(wave)-1], st.Step)
	if err != nil {
		return "", err
	}
	binned, err := rebin.Resample(grid, wave, counts, rebin.WithOversampling(st.Oversampling))
	if err != nil {
		return "", err
	}

	var centers, widths []float64
	for c := st.Lo + st.CatalogStep; c <= st.Hi-st.CatalogStep; c += st.CatalogStep {
		centers = append(centers, c)
		widths = append(widths, st.CatalogWidth)
	}
	summed, err := rebin.Integrate(centers, widths, grid, binned)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, c := range centers {
		flambda := summed[i] / st.ExposureTime * math.Pow(10, -st.Truth(c)/2.5)
		mag := catalog.FluxToMag(catalog.FlambdaToFnu(c, flambda), catalog.ABZeroPoint)
		fmt.Fprintf(&b, "%s %s %s\n",
			strconv.FormatFloat(c, 'g', -1, 64),
			strconv.FormatFloat(mag, 'g', -1, 64),
			strconv.FormatFloat(widths[i], 'g', -1, 64))
	}
	return b.String(), nil
}

// CatalogWavelengths returns the catalog bin centers CatalogText emits.
func (st Standard) CatalogWavelengths() []float64 {
	var centers []float64
	for c := st.Lo + st.CatalogStep; c <= st.Hi-st.CatalogStep; c += st.CatalogStep {
		centers = append(centers, c)
	}
	return centers
}

func scaled(v []float64, k float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] * k
	}
	return out
}
