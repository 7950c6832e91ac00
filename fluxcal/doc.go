// Package fluxcal turns instrumental spectra (counts vs. wavelength) into
// physically calibrated flux spectra using standard-star observations with
// known catalog fluxes.
//
// The work is split across sub-packages, leaves first:
//
//   - [extinction]: atmospheric extinction correction
//   - [catalog]: standard-star catalog parsing and AB magnitude conversion
//   - [rebin]: flux-conserving resampling and catalog-bin integration
//   - [polyfit]: least-squares polynomial fitting
//   - [mask]: wavelength-valued exclusion intervals
//   - [sensfunc]: sensitivity-function derivation per standard star
//   - [selector]: airmass and device-state based curve selection
//   - [apply]: counts to flux conversion
//   - [provenance]: run ledger, diagnostics table, output conflict guard
//   - [pipeline]: run orchestration
//
// This package holds the shared arm and device-state enums and the error
// taxonomy. Input, fitting and selection failures returned by the
// sub-packages wrap one of the sentinel errors below and can be tested with
// [errors.Is]. Context cancellation and I/O errors from writing outputs are
// returned as is.
package fluxcal
