package mask

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
)

// Read parses a mask file: one wavelength per line, read pairwise as
// interval endpoints. Blank lines and '#' comments are skipped.
func Read(r io.Reader) (Spec, error) {
	var endpoints []float64
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		v, err := strconv.ParseFloat(strings.Fields(text)[0], 64)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: mask line %d: %v", fluxcal.ErrInputFormat, line, err)
		}
		endpoints = append(endpoints, v)
	}
	if err := sc.Err(); err != nil {
		return Spec{}, fmt.Errorf("%w: %w", fluxcal.ErrInputFormat, err)
	}
	return FromEndpoints(endpoints)
}

// Write emits s in the format Read accepts.
func Write(w io.Writer, s Spec) error {
	bw := bufio.NewWriter(w)
	for _, v := range s.Endpoints() {
		if _, err := bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Store persists one mask per (catalog, arm) in Dir.
type Store struct {
	Dir string
}

// Path returns the mask file for a catalog and arm:
// <catalog base without extension>_<arm>_mask.dat.
func (st Store) Path(catalogName string, arm fluxcal.Arm) string {
	base := filepath.Base(catalogName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(st.Dir, base+"_"+arm.String()+"_mask.dat")
}

// Load returns the saved mask for (catalogName, arm). found is false when
// no mask file exists.
func (st Store) Load(catalogName string, arm fluxcal.Arm) (s Spec, found bool, err error) {
	f, err := os.Open(st.Path(catalogName, arm))
	if errors.Is(err, fs.ErrNotExist) {
		return Spec{}, false, nil
	}
	if err != nil {
		return Spec{}, false, err
	}
	defer f.Close()

	s, err = Read(f)
	if err != nil {
		return Spec{}, false, fmt.Errorf("mask %s: %w", f.Name(), err)
	}
	return s, true, nil
}

// Save writes s for (catalogName, arm), replacing any previous mask.
func (st Store) Save(catalogName string, arm fluxcal.Arm, s Spec) (string, error) {
	path := st.Path(catalogName, arm)
	if st.Dir != "" {
		if err := os.MkdirAll(st.Dir, 0o755); err != nil {
			return "", err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := Write(f, s); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
