package sensfunc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/catalog"
)

// ResponseCurveName returns senscurve_<star>_<airmass>_<adc>_<arm>.txt with
// the airmass at three decimals and "none" for an unknown device state.
func ResponseCurveName(c *Curve, catalogName string) string {
	adc := c.Device.String()
	if adc == "" {
		adc = "none"
	}
	return fmt.Sprintf("senscurve_%s_%.3f_%s_%s.txt",
		catalog.StarID(catalogName), c.Airmass, adc, c.Arm)
}

// ExportResponseCurve writes the fit set (wavelength, observed sensitivity)
// of c into dir and returns the file path.
func ExportResponseCurve(dir string, c *Curve, catalogName string, wave, sens []float64) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, ResponseCurveName(c, catalogName))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteResponseCurve(f, wave, sens); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}

// WriteResponseCurve writes two whitespace-separated columns.
func WriteResponseCurve(w io.Writer, wave, sens []float64) error {
	if len(wave) != len(sens) {
		return ErrLengthMismatch
	}
	bw := bufio.NewWriter(w)
	for i := range wave {
		if _, err := fmt.Fprintf(bw, "%.18e %.18e\n", wave[i], sens[i]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadResponseCurve parses a two-column response curve.
func ReadResponseCurve(r io.Reader, name string) (wave, sens []float64, err error) {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, nil, fmt.Errorf("%w: %s:%d: want 2 columns", fluxcal.ErrInputFormat, name, line)
		}
		l, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s:%d: %v", fluxcal.ErrInputFormat, name, line, err)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s:%d: %v", fluxcal.ErrInputFormat, name, line, err)
		}
		wave = append(wave, l)
		sens = append(sens, v)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", fluxcal.ErrInputFormat, name, err)
	}
	return wave, sens, nil
}
