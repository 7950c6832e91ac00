package spectrum

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/astrogo/fitsio"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
)

// Header keywords written on calibrated output.
const (
	KeyExtinctionFlag  = "EX-FLAG"
	KeyCalibrationFlag = "CA-FLAG"
	KeyUnits           = "BUNIT"
	KeyStandard        = "STANDARD"

	// FluxUnits is the BUNIT value of calibrated spectra.
	FluxUnits = "erg/cm2/s/A"
)

// structural cards are regenerated by the writer and never copied.
var structural = map[string]bool{
	"":         true,
	"SIMPLE":   true,
	"XTENSION": true,
	"BITPIX":   true,
	"NAXIS":    true,
	"NAXIS1":   true,
	"NAXIS2":   true,
	"NAXIS3":   true,
	"EXTEND":   true,
	"PCOUNT":   true,
	"GCOUNT":   true,
	"BZERO":    true,
	"BSCALE":   true,
	"END":      true,
	"COMMENT":  true,
	"HISTORY":  true,
}

// managed cards are always rewritten from Spectrum fields.
var managed = map[string]bool{
	"CRVAL1":           true,
	"CRPIX1":           true,
	"CD1_1":            true,
	"CDELT1":           true,
	"AIRMASS":          true,
	"EXPTIME":          true,
	KeyExtinctionFlag:  true,
	KeyCalibrationFlag: true,
	KeyUnits:           true,
	KeyStandard:        true,
}

// Read opens and decodes the spectrum at path. The arm is inferred from
// the file name.
func Read(path string) (*Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fluxcal.ErrInputFormat, err)
	}
	defer f.Close()

	s, err := ReadFrom(f, path)
	if err != nil {
		return nil, err
	}
	s.Arm = fluxcal.ArmFromName(path)
	return s, nil
}

// ReadFrom decodes a spectrum from r. name is used in errors and kept as
// Spectrum.Name.
func ReadFrom(r io.Reader, name string) (*Spectrum, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fluxcal.ErrInputFormat, name, err)
	}
	defer f.Close()

	img, ok := f.HDU(0).(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("%w: %s: primary HDU is not an image", fluxcal.ErrInputFormat, name)
	}
	hdr := img.Header()

	axes := hdr.Axes()
	if len(axes) < 1 || len(axes) > 3 || axes[0] < 2 {
		return nil, fmt.Errorf("%w: %s: unsupported axes %v", fluxcal.ErrInputFormat, name, axes)
	}
	n := axes[0]
	total := 1
	for _, a := range axes {
		total *= a
	}

	var data []float64
	switch hdr.Bitpix() {
	case -64:
		data = make([]float64, total)
		if err := img.Read(&data); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", fluxcal.ErrInputFormat, name, err)
		}
	case -32:
		raw := make([]float32, total)
		if err := img.Read(&raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", fluxcal.ErrInputFormat, name, err)
		}
		data = make([]float64, total)
		for i, v := range raw {
			data[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("%w: %s: unsupported BITPIX %d", fluxcal.ErrInputFormat, name, hdr.Bitpix())
	}

	s := &Spectrum{Name: name}
	planes := total / n
	for b := range NumBands {
		ch := make([]float64, n)
		if int(b) < planes {
			copy(ch, data[int(b)*n:(int(b)+1)*n])
		}
		s.SetChannel(b, ch)
	}

	if err := readWCS(hdr, s, n); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fluxcal.ErrInputFormat, name, err)
	}
	if s.Airmass, err = requireFloat(hdr, "AIRMASS"); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fluxcal.ErrInputFormat, name, err)
	}
	if s.ExposureTime, err = requireFloat(hdr, "EXPTIME"); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fluxcal.ErrInputFormat, name, err)
	}
	if card := hdr.Get("ADCSTAT"); card != nil {
		state, err := fluxcal.ParseDeviceState(fmt.Sprint(card.Value))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", fluxcal.ErrInputFormat, name, err)
		}
		s.Device = state
	}
	if v, ok := optionalFloat(hdr, KeyExtinctionFlag); ok {
		s.ExtinctionCorrected = v == 0
	}
	if v, ok := optionalFloat(hdr, KeyCalibrationFlag); ok {
		s.FluxCalibrated = v == 0
	}
	if card := hdr.Get(KeyStandard); card != nil {
		s.Standard = strings.TrimSpace(fmt.Sprint(card.Value))
	}

	for _, key := range hdr.Keys() {
		if structural[key] || managed[key] {
			continue
		}
		if card := hdr.Get(key); card != nil {
			s.Cards = append(s.Cards, *card)
		}
	}
	return s, nil
}

func readWCS(hdr *fitsio.Header, s *Spectrum, n int) error {
	crval, err := requireFloat(hdr, "CRVAL1")
	if err != nil {
		return err
	}
	crpix, ok := optionalFloat(hdr, "CRPIX1")
	if !ok {
		crpix = 1
	}
	delta, ok := optionalFloat(hdr, "CD1_1")
	if !ok {
		if delta, ok = optionalFloat(hdr, "CDELT1"); !ok {
			return errors.New("missing CD1_1 and CDELT1")
		}
	}
	s.Dispersion = delta
	s.Wavelength = make([]float64, n)
	for i := range n {
		s.Wavelength[i] = crval + (float64(i)+1-crpix)*delta
	}
	return nil
}

func requireFloat(hdr *fitsio.Header, key string) (float64, error) {
	v, ok := optionalFloat(hdr, key)
	if !ok {
		return 0, fmt.Errorf("missing or non-numeric %s", key)
	}
	return v, nil
}

func optionalFloat(hdr *fitsio.Header, key string) (float64, bool) {
	card := hdr.Get(key)
	if card == nil {
		return 0, false
	}
	switch v := card.Value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Write encodes s to path. Unless clobber is set an existing file is left
// untouched and ErrOutputConflict is returned.
func Write(path string, s *Spectrum, clobber bool) error {
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !clobber {
		flag = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", fluxcal.ErrOutputConflict, path)
	}
	if err != nil {
		return err
	}
	if err := WriteTo(f, s); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteTo encodes s as a BITPIX -64 (N, 1, 4) cube in band order.
func WriteTo(w io.Writer, s *Spectrum) error {
	n := s.Len()
	if n < 2 {
		return fmt.Errorf("%w: %s: need at least 2 samples", fluxcal.ErrInputFormat, s.Name)
	}
	data := make([]float64, 0, n*int(NumBands))
	for b := range NumBands {
		ch := s.Channel(b)
		if len(ch) != n {
			return fmt.Errorf("%w: %s: %s has %d samples, want %d", fluxcal.ErrInputFormat, s.Name, b, len(ch), n)
		}
		data = append(data, ch...)
	}

	f, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer f.Close()

	img := fitsio.NewImage(-64, []int{n, 1, int(NumBands)})
	defer img.Close()

	if err := img.Header().Append(headerCards(s)...); err != nil {
		return err
	}
	if err := img.Write(&data); err != nil {
		return err
	}
	return f.Write(img)
}

func headerCards(s *Spectrum) []fitsio.Card {
	cards := make([]fitsio.Card, 0, len(s.Cards)+12)
	for _, c := range s.Cards {
		if structural[c.Name] || managed[c.Name] {
			continue
		}
		cards = append(cards, c)
	}
	exFlag := -1
	if s.ExtinctionCorrected {
		exFlag = 0
	}
	cards = append(cards,
		fitsio.Card{Name: "CRVAL1", Value: s.Wavelength[0], Comment: "wavelength at reference pixel"},
		fitsio.Card{Name: "CRPIX1", Value: 1.0, Comment: "reference pixel"},
		fitsio.Card{Name: "CD1_1", Value: s.Dispersion, Comment: "dispersion (A/pixel)"},
		fitsio.Card{Name: "AIRMASS", Value: s.Airmass},
		fitsio.Card{Name: "EXPTIME", Value: s.ExposureTime},
		fitsio.Card{Name: KeyExtinctionFlag, Value: exFlag, Comment: "0 if extinction corrected"},
	)
	if s.Device != fluxcal.DeviceUnknown && !hasCard(cards, "ADCSTAT") {
		cards = append(cards, fitsio.Card{Name: "ADCSTAT", Value: s.Device.String()})
	}
	if s.FluxCalibrated {
		cards = append(cards,
			fitsio.Card{Name: KeyCalibrationFlag, Value: 0, Comment: "0 if flux calibrated"},
			fitsio.Card{Name: KeyUnits, Value: FluxUnits},
		)
	}
	if s.Standard != "" {
		cards = append(cards, fitsio.Card{Name: KeyStandard, Value: s.Standard, Comment: "flux standard"})
	}
	return cards
}

func hasCard(cards []fitsio.Card, name string) bool {
	for _, c := range cards {
		if c.Name == name {
			return true
		}
	}
	return false
}

// FITSStore reads and writes spectra on the local filesystem.
type FITSStore struct{}

// Read implements the pipeline store.
func (FITSStore) Read(path string) (*Spectrum, error) {
	return Read(path)
}

// Write implements the pipeline store.
func (FITSStore) Write(path string, s *Spectrum, clobber bool) error {
	return Write(path, s, clobber)
}

// Exists reports whether path exists.
func (FITSStore) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
