package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
)

// Entry is a standard-star catalog. Wavelength, Magnitude, BinWidth and
// (after ToFlux) Flux are co-indexed.
type Entry struct {
	Name       string
	Wavelength []float64
	Magnitude  []float64
	BinWidth   []float64
	// Flux is f_λ in erg/s/cm²/Å, nil until ToFlux is called.
	Flux []float64
}

// Len returns the number of catalog points.
func (e *Entry) Len() int {
	return len(e.Wavelength)
}

// Parse reads a catalog from r. name is used in error messages and kept as
// the entry name.
func Parse(r io.Reader, name string) (*Entry, error) {
	e := &Entry{Name: name}
	explicitWidth := -1

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
			return nil, fmt.Errorf("%w: %s:%d: want at least 2 columns, got %d",
				fluxcal.ErrInputFormat, name, line, len(fields))
		}
		hasWidth := len(fields) >= 3
		switch {
		case explicitWidth < 0 && hasWidth:
			explicitWidth = 1
		case explicitWidth < 0:
			explicitWidth = 0
		case (explicitWidth == 1) != hasWidth:
			return nil, fmt.Errorf("%w: %s:%d: inconsistent column count",
				fluxcal.ErrInputFormat, name, line)
		}

		vals := make([]float64, 0, 3)
		for _, f := range fields[:min(3, len(fields))] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s:%d: %v", fluxcal.ErrInputFormat, name, line, err)
			}
			vals = append(vals, v)
		}

		if n := len(e.Wavelength); n > 0 && vals[0] <= e.Wavelength[n-1] {
			return nil, fmt.Errorf("%w: %s:%d: wavelengths must be strictly ascending",
				fluxcal.ErrInputFormat, name, line)
		}
		e.Wavelength = append(e.Wavelength, vals[0])
		e.Magnitude = append(e.Magnitude, vals[1])
		if hasWidth {
			if vals[2] <= 0 {
				return nil, fmt.Errorf("%w: %s:%d: bin width must be > 0",
					fluxcal.ErrInputFormat, name, line)
			}
			e.BinWidth = append(e.BinWidth, vals[2])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fluxcal.ErrInputFormat, name, err)
	}
	if e.Len() == 0 {
		return nil, fmt.Errorf("%w: %s: empty catalog", fluxcal.ErrInputFormat, name)
	}
	if explicitWidth == 0 {
		if e.Len() < 2 {
			return nil, fmt.Errorf("%w: %s: need a width column or at least 2 points",
				fluxcal.ErrInputFormat, name)
		}
		e.BinWidth = spacingWidths(e.Wavelength)
	}
	return e, nil
}

// spacingWidths derives bin widths from neighbor spacing: centered
// differences inside, one-sided at the ends.
func spacingWidths(wave []float64) []float64 {
	n := len(wave)
	w := make([]float64, n)
	w[0] = wave[1] - wave[0]
	w[n-1] = wave[n-1] - wave[n-2]
	for i := 1; i < n-1; i++ {
		w[i] = (wave[i+1] - wave[i-1]) / 2
	}
	return w
}

// Restrict returns a copy holding only the points with lo <= λ <= hi.
// It fails with fluxcal.ErrCoverage when no point survives.
func (e *Entry) Restrict(lo, hi float64) (*Entry, error) {
	out := &Entry{Name: e.Name}
	for i, lambda := range e.Wavelength {
		if lambda < lo || lambda > hi {
			continue
		}
		out.Wavelength = append(out.Wavelength, lambda)
		out.Magnitude = append(out.Magnitude, e.Magnitude[i])
		out.BinWidth = append(out.BinWidth, e.BinWidth[i])
		if e.Flux != nil {
			out.Flux = append(out.Flux, e.Flux[i])
		}
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("%w: catalog %s (%.2f-%.2f Å) vs observation (%.2f-%.2f Å)",
			fluxcal.ErrCoverage, e.Name, e.Wavelength[0], e.Wavelength[e.Len()-1], lo, hi)
	}
	return out, nil
}

// ToFlux fills Flux from Magnitude: AB magnitude to f_ν with the given zero
// point, then f_ν to f_λ.
func (e *Entry) ToFlux(zeroPoint float64) {
	e.Flux = make([]float64, e.Len())
	for i, mag := range e.Magnitude {
		e.Flux[i] = FnuToFlambda(e.Wavelength[i], MagToFlux(mag, zeroPoint))
	}
}

// StarID returns the star identifier of a catalog file name: the base name
// without extension and without the leading "m" of IRAF catalog names
// ("mgd50.dat" -> "gd50").
func StarID(catalogName string) string {
	base := filepath.Base(catalogName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimPrefix(base, "m")
}

// Resolver maps a catalog name from the flux list to a readable path.
type Resolver interface {
	Resolve(name string) (string, error)
}

// DirResolver resolves relative catalog names against Dir. Absolute names
// are returned unchanged.
type DirResolver struct {
	Dir string
}

// Resolve implements Resolver.
func (d DirResolver) Resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty catalog name", fluxcal.ErrInputFormat)
	}
	if filepath.IsAbs(name) || d.Dir == "" {
		return name, nil
	}
	return filepath.Join(d.Dir, name), nil
}

// Load resolves name and parses the catalog it points to.
func Load(res Resolver, name string) (*Entry, error) {
	path, err := res.Resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fluxcal.ErrInputFormat, err)
	}
	defer f.Close()

	e, err := Parse(f, name)
	if err != nil {
		return nil, err
	}
	return e, nil
}
