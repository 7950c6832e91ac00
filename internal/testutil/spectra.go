package testutil

import (
	"math"
	"math/rand"
)

// Ramp returns n evenly spaced values starting at start.
func Ramp(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// DC returns n copies of value.
func DC(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float64 {
	return DC(1, n)
}

// DeterministicNoise returns uniform noise in [-amplitude, amplitude) with a
// fixed seed.
func DeterministicNoise(seed int64, amplitude float64, n int) []float64 {
	out := make([]float64, n)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Blackbody returns a smooth positive continuum in counts per pixel: a
// Planck curve at temperature kelvin, normalized to peak at scale.
func Blackbody(wave []float64, kelvin, scale float64) []float64 {
	const hcOverK = 1.438776877e8 // Å·K
	out := make([]float64, len(wave))
	peak := 0.0
	for i, lambda := range wave {
		v := 1 / (math.Pow(lambda, 5) * (math.Exp(hcOverK/(lambda*kelvin)) - 1))
		out[i] = v
		peak = math.Max(peak, v)
	}
	for i := range out {
		out[i] *= scale / peak
	}
	return out
}

// AbsorptionLine multiplies flux in place by a Gaussian absorption profile
// of the given fractional depth and sigma (Å) centered at center.
func AbsorptionLine(wave, flux []float64, center, sigma, depth float64) {
	for i, lambda := range wave {
		d := (lambda - center) / sigma
		flux[i] *= 1 - depth*math.Exp(-0.5*d*d)
	}
}

// Linear returns a + b·(λ - pivot) for every wavelength.
func Linear(wave []float64, a, b, pivot float64) []float64 {
	out := make([]float64, len(wave))
	for i, lambda := range wave {
		out[i] = a + b*(lambda-pivot)
	}
	return out
}
