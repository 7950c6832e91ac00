package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal/catalog"
)

// SpectrumSuffix is the extension of extracted spectra.
const SpectrumSuffix = ".ms.fits"

// OutputName returns <program base>_flux_<star id>.ms.fits inside dir.
func OutputName(dir, program, catalogName string) string {
	base := filepath.Base(program)
	if stem, ok := strings.CutSuffix(base, SpectrumSuffix); ok {
		base = stem
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return filepath.Join(dir, base+"_flux_"+catalog.StarID(catalogName)+SpectrumSuffix)
}
