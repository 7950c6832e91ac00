package selector

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/polyfit"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/sensfunc"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/spectrum"
)

// MasterCatalog is the catalog identifier recorded for master-response
// calibrations.
const MasterCatalog = "mmaster.dat"

// Band is a diagnostic wavelength band, lo < λ <= hi.
type Band struct {
	Lo, Hi float64
}

// Contains reports whether lo < lambda <= hi.
func (b Band) Contains(lambda float64) bool {
	return lambda > b.Lo && lambda <= b.Hi
}

// DiagnosticBand returns the throughput reference band for arm.
func DiagnosticBand(arm fluxcal.Arm) (Band, bool) {
	switch arm {
	case fluxcal.ArmBlue:
		return Band{Lo: 4530, Hi: 4590}, true
	case fluxcal.ArmRed:
		return Band{Lo: 6090, Hi: 6190}, true
	default:
		return Band{}, false
	}
}

// BandMean returns the mean of values whose wavelength lies in band. It
// wraps fluxcal.ErrCoverage when no sample does.
func BandMean(wave, values []float64, band Band) (float64, error) {
	var in []float64
	for i, lambda := range wave {
		if band.Contains(lambda) {
			in = append(in, values[i])
		}
	}
	if len(in) == 0 {
		return 0, fmt.Errorf("%w: no samples in band (%g, %g]", fluxcal.ErrCoverage, band.Lo, band.Hi)
	}
	return stat.Mean(in, nil), nil
}

type masterKey struct {
	arm    fluxcal.Arm
	device fluxcal.DeviceState
}

// MasterSet holds the four precomputed master curves and the optional
// nightly band means that shift them.
type MasterSet struct {
	curves  map[masterKey]*sensfunc.Curve
	tonight map[fluxcal.Arm]float64
	log     *slog.Logger
}

// MasterFileName returns master_resp_<arm>_<in|out>.txt.
func MasterFileName(arm fluxcal.Arm, device fluxcal.DeviceState) string {
	return fmt.Sprintf("master_resp_%s_%s.txt", arm, strings.ToLower(device.String()))
}

// LoadMaster reads the four master coefficient files from dir. Each holds
// one coefficient per line, highest power first, in raw wavelength.
func LoadMaster(dir string, log *slog.Logger) (*MasterSet, error) {
	if log == nil {
		log = slog.Default()
	}
	m := &MasterSet{
		curves:  make(map[masterKey]*sensfunc.Curve, 4),
		tonight: make(map[fluxcal.Arm]float64, 2),
		log:     log,
	}
	for _, arm := range []fluxcal.Arm{fluxcal.ArmBlue, fluxcal.ArmRed} {
		for _, dev := range []fluxcal.DeviceState{fluxcal.DeviceIn, fluxcal.DeviceOut} {
			name := MasterFileName(arm, dev)
			coeffs, err := readCoefficients(filepath.Join(dir, name))
			if err != nil {
				return nil, err
			}
			m.curves[masterKey{arm, dev}] = &sensfunc.Curve{
				Poly:     polyfit.FromDescending(coeffs),
				Standard: name,
				Catalog:  MasterCatalog,
				Arm:      arm,
				Airmass:  1,
				Device:   dev,
			}
		}
	}
	log.Info("master response curves loaded", "dir", dir)
	return m, nil
}

func readCoefficients(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fluxcal.ErrInputFormat, err)
	}
	defer f.Close()

	var coeffs []float64
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		v, err := strconv.ParseFloat(strings.Fields(text)[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %v", fluxcal.ErrInputFormat, path, line, err)
		}
		coeffs = append(coeffs, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fluxcal.ErrInputFormat, path, err)
	}
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("%w: %s: no coefficients", fluxcal.ErrInputFormat, path)
	}
	return coeffs, nil
}

// Curve returns the master curve for (arm, device).
func (m *MasterSet) Curve(arm fluxcal.Arm, device fluxcal.DeviceState) (*sensfunc.Curve, bool) {
	c, ok := m.curves[masterKey{arm, device}]
	return c, ok
}

// LoadNightly reads the list of tonight's response curves and records the
// diagnostic-band mean per arm. A missing list leaves the curves unshifted.
// Relative entries resolve against the list's directory.
func (m *MasterSet) LoadNightly(listPath string) error {
	f, err := os.Open(listPath)
	if errors.Is(err, fs.ErrNotExist) {
		m.log.Info("no nightly response list, master curves used unshifted", "path", listPath)
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	base := filepath.Dir(listPath)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		entry := strings.TrimSpace(sc.Text())
		if entry == "" || strings.HasPrefix(entry, "#") {
			continue
		}
		if !filepath.IsAbs(entry) {
			entry = filepath.Join(base, entry)
		}
		arm := fluxcal.ArmFromName(entry)
		band, ok := DiagnosticBand(arm)
		if !ok {
			m.log.Warn("response curve without arm in name, ignored", "path", entry)
			continue
		}
		mean, err := m.bandMeanOfFile(entry, band)
		if err != nil {
			return err
		}
		m.tonight[arm] = mean
		m.log.Info("nightly throughput reference", "arm", arm.String(), "band_mean", mean, "path", entry)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", fluxcal.ErrInputFormat, listPath, err)
	}
	return nil
}

func (m *MasterSet) bandMeanOfFile(path string, band Band) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", fluxcal.ErrInputFormat, err)
	}
	defer f.Close()

	wave, sens, err := sensfunc.ReadResponseCurve(f, path)
	if err != nil {
		return 0, err
	}
	mean, err := BandMean(wave, sens, band)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return mean, nil
}

// SetNightlyMean records tonight's band mean for arm directly.
func (m *MasterSet) SetNightlyMean(arm fluxcal.Arm, mean float64) {
	m.tonight[arm] = mean
}

// Resolve picks the master curve for the program spectrum's arm and device
// state. When a nightly reference exists for the arm, the curve is shifted
// by tonight's band mean minus the master's band mean on the program grid.
func (m *MasterSet) Resolve(s *spectrum.Spectrum) (*sensfunc.Curve, error) {
	if s.Device == fluxcal.DeviceUnknown {
		return nil, fmt.Errorf("%w: %s: ADCSTAT", fluxcal.ErrMetadataMissing, s.Name)
	}
	curve, ok := m.Curve(s.Arm, s.Device)
	if !ok {
		return nil, fmt.Errorf("%w: %s: arm", fluxcal.ErrMetadataMissing, s.Name)
	}
	tonight, ok := m.tonight[s.Arm]
	if !ok {
		return curve, nil
	}
	band, _ := DiagnosticBand(s.Arm)
	masterMean, err := BandMean(s.Wavelength, curve.Evaluate(s.Wavelength), band)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	offset := tonight - masterMean
	m.log.Debug("master curve shifted", "spectrum", s.Name, "offset", offset)
	return curve.WithOffset(offset), nil
}
