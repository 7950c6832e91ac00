package rebin

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
)

const (
	// DefaultStep is the default grid spacing in Å.
	DefaultStep = 0.05
	// DefaultOversampling is the default number of sub-pixels per source pixel.
	DefaultOversampling = 200
)

var (
	// ErrInvalidStep indicates a non-positive or non-finite grid step.
	ErrInvalidStep = fmt.Errorf("rebin: invalid grid step: %w", fluxcal.ErrInputFormat)
	// ErrInvalidRange indicates an empty or inverted wavelength range.
	ErrInvalidRange = fmt.Errorf("rebin: invalid wavelength range: %w", fluxcal.ErrCoverage)
	// ErrTooShort indicates fewer than two samples.
	ErrTooShort = fmt.Errorf("rebin: need at least two samples: %w", fluxcal.ErrInputFormat)
	// ErrLengthMismatch indicates co-indexed slices of different lengths.
	ErrLengthMismatch = fmt.Errorf("rebin: slices must have same length: %w", fluxcal.ErrInputFormat)
	// ErrNotAscending indicates wavelengths that are not strictly ascending.
	ErrNotAscending = fmt.Errorf("rebin: wavelengths must be strictly ascending: %w", fluxcal.ErrInputFormat)
)

type config struct {
	oversampling int
}

// Option configures Resample.
type Option func(*config)

// WithOversampling sets the number of sub-pixels per source pixel.
// Values < 1 are ignored.
func WithOversampling(n int) Option {
	return func(cfg *config) {
		if n >= 1 {
			cfg.oversampling = n
		}
	}
}

func defaultConfig() config {
	return config{oversampling: DefaultOversampling}
}

// UniformGrid returns an evenly spaced grid from round(lo) to round(hi)
// (half to even) with the given step. The number of points is
// (high-low)/step + 1.
func UniformGrid(lo, hi, step float64) ([]float64, error) {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStep, step)
	}
	low := math.RoundToEven(lo)
	high := math.RoundToEven(hi)
	if !(high > low) {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrInvalidRange, lo, hi)
	}
	num := int(math.Round((high-low)/step)) + 1
	grid := make([]float64, num)
	floats.Span(grid, low, high)
	return grid, nil
}

// Resample redistributes counts sampled at wave onto grid, conserving the
// total counts that fall inside the grid span. Each grid point owns the bin
// between the midpoints to its neighbors; the outer bins extend by half the
// adjacent spacing. Grid bins that receive no sub-pixel hold zero.
func Resample(grid, wave, counts []float64, opts ...Option) ([]float64, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if len(wave) != len(counts) {
		return nil, ErrLengthMismatch
	}
	if len(wave) < 2 || len(grid) < 2 {
		return nil, ErrTooShort
	}
	if !strictlyAscending(wave) || !strictlyAscending(grid) {
		return nil, ErrNotAscending
	}

	srcEdges := Edges(wave)
	dstEdges := Edges(grid)
	out := make([]float64, len(grid))

	n := cfg.oversampling
	inv := 1 / float64(n)
	j := 0
	for i, v := range counts {
		sub := (srcEdges[i+1] - srcEdges[i]) * inv
		share := v * inv
		for k := range n {
			center := srcEdges[i] + (float64(k)+0.5)*sub
			if center < dstEdges[0] {
				continue
			}
			for j < len(grid) && center >= dstEdges[j+1] {
				j++
			}
			if j == len(grid) {
				break
			}
			out[j] += share
		}
		if j == len(grid) {
			break
		}
	}
	return out, nil
}

// Edges returns the len(centers)+1 bin edges of a strictly ascending set of
// bin centers: midpoints inside, half the adjacent spacing outside.
func Edges(centers []float64) []float64 {
	n := len(centers)
	edges := make([]float64, n+1)
	for i := 1; i < n; i++ {
		edges[i] = 0.5 * (centers[i-1] + centers[i])
	}
	edges[0] = centers[0] - 0.5*(centers[1]-centers[0])
	edges[n] = centers[n-1] + 0.5*(centers[n-1]-centers[n-2])
	return edges
}

// Integrate sums the values of grid points lying strictly inside each bin
// (center ± width/2), producing one value per bin center.
func Integrate(centers, widths, grid, values []float64) ([]float64, error) {
	if len(centers) != len(widths) || len(grid) != len(values) {
		return nil, ErrLengthMismatch
	}
	if !strictlyAscending(grid) {
		return nil, ErrNotAscending
	}

	out := make([]float64, len(centers))
	for i, c := range centers {
		lo := c - 0.5*widths[i]
		hi := c + 0.5*widths[i]
		start := sort.Search(len(grid), func(k int) bool { return grid[k] > lo })
		end := sort.Search(len(grid), func(k int) bool { return grid[k] >= hi })
		if end > start {
			out[i] = floats.Sum(values[start:end])
		}
	}
	return out, nil
}

func strictlyAscending(x []float64) bool {
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return false
		}
	}
	return true
}
