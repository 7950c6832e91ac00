package fluxcal

import "errors"

var (
	// ErrInputFormat reports a malformed list, catalog or spectrum file.
	ErrInputFormat = errors.New("fluxcal: malformed input")
	// ErrCoverage reports that two wavelength ranges do not overlap.
	ErrCoverage = errors.New("fluxcal: no wavelength overlap")
	// ErrFitDegeneracy reports an empty or ill-conditioned fit set.
	ErrFitDegeneracy = errors.New("fluxcal: degenerate fit")
	// ErrOutputConflict reports an output destination that already exists
	// and could not be resolved.
	ErrOutputConflict = errors.New("fluxcal: output already exists")
	// ErrMetadataMissing reports a required header field that is absent.
	ErrMetadataMissing = errors.New("fluxcal: required metadata missing")
)
