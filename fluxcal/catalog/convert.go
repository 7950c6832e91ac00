package catalog

import "math"

const (
	// ABZeroPoint is the flux density per unit frequency at AB magnitude
	// zero, in erg/s/cm²/Hz.
	ABZeroPoint = 3.68e-20

	// speedOfLight in Å/s.
	speedOfLight = 2.99792458e18
)

// MagToFlux converts an AB magnitude to flux density per unit frequency.
func MagToFlux(mag, zeroPoint float64) float64 {
	return zeroPoint * math.Pow(10, -0.4*mag)
}

// FluxToMag converts flux density per unit frequency to an AB magnitude.
// Returns NaN for non-positive flux.
func FluxToMag(fnu, zeroPoint float64) float64 {
	if fnu <= 0 {
		return math.NaN()
	}
	return -2.5 * math.Log10(fnu/zeroPoint)
}

// FnuToFlambda converts f_ν (erg/s/cm²/Hz) at wavelength λ (Å) to
// f_λ (erg/s/cm²/Å).
func FnuToFlambda(lambda, fnu float64) float64 {
	return fnu * speedOfLight / (lambda * lambda)
}

// FlambdaToFnu is the inverse of FnuToFlambda.
func FlambdaToFnu(lambda, flambda float64) float64 {
	return flambda * lambda * lambda / speedOfLight
}
