// Package mask holds wavelength-valued exclusion intervals for sensitivity
// fits and their on-disk persistence.
//
// Intervals are always stored as wavelength bounds. They are resolved to
// indices only when applied to a concrete set of sample wavelengths, so a
// saved mask stays valid if the grid it was drawn on changes.
package mask

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
)

// Interval is a closed wavelength range [Lo, Hi] in Å.
type Interval struct {
	Lo, Hi float64
}

// Contains reports whether Lo <= lambda <= Hi.
func (iv Interval) Contains(lambda float64) bool {
	return lambda >= iv.Lo && lambda <= iv.Hi
}

// Spec is an ordered list of exclusion intervals. The zero value excludes
// nothing.
type Spec struct {
	Intervals []Interval
}

// FromEndpoints pairs consecutive endpoints into intervals. Each pair may be
// given in either order. An odd number of endpoints is ErrInputFormat.
func FromEndpoints(endpoints []float64) (Spec, error) {
	if len(endpoints)%2 != 0 {
		return Spec{}, fmt.Errorf("%w: odd number of mask endpoints (%d)",
			fluxcal.ErrInputFormat, len(endpoints))
	}
	s := Spec{Intervals: make([]Interval, 0, len(endpoints)/2)}
	for i := 0; i < len(endpoints); i += 2 {
		a, b := endpoints[i], endpoints[i+1]
		if math.IsNaN(a) || math.IsNaN(b) {
			return Spec{}, fmt.Errorf("%w: NaN mask endpoint", fluxcal.ErrInputFormat)
		}
		s.Intervals = append(s.Intervals, Interval{Lo: min(a, b), Hi: max(a, b)})
	}
	return s, nil
}

// FromClicks snaps each click to the nearest value in samples and pairs the
// results into intervals. A trailing unpaired click is dropped; dropped
// reports whether that happened. samples must be non-empty when clicks is.
func FromClicks(clicks, samples []float64) (s Spec, dropped bool) {
	n := len(clicks)
	if n%2 != 0 {
		n--
		dropped = true
	}
	if n <= 0 || len(samples) == 0 {
		return Spec{}, dropped
	}
	snapped := make([]float64, n)
	for i, c := range clicks[:n] {
		snapped[i] = samples[Nearest(samples, c)]
	}
	s, _ = FromEndpoints(snapped)
	return s, dropped
}

// Nearest returns the index of the value in samples closest to x. Ties
// resolve to the lowest index. It returns -1 for empty samples.
func Nearest(samples []float64, x float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i, v := range samples {
		if d := math.Abs(v - x); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Len returns the number of intervals.
func (s Spec) Len() int {
	return len(s.Intervals)
}

// Excludes reports whether lambda falls inside any interval.
func (s Spec) Excludes(lambda float64) bool {
	for _, iv := range s.Intervals {
		if iv.Contains(lambda) {
			return true
		}
	}
	return false
}

// Keep returns the indices of the wavelengths not excluded by s, in order.
func (s Spec) Keep(wavelengths []float64) []int {
	idx := make([]int, 0, len(wavelengths))
	for i, lambda := range wavelengths {
		if !s.Excludes(lambda) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Endpoints flattens the intervals back into Lo, Hi pairs.
func (s Spec) Endpoints() []float64 {
	out := make([]float64, 0, 2*len(s.Intervals))
	for _, iv := range s.Intervals {
		out = append(out, iv.Lo, iv.Hi)
	}
	return out
}

// Sorted returns a copy with intervals ordered by Lo.
func (s Spec) Sorted() Spec {
	out := Spec{Intervals: append([]Interval(nil), s.Intervals...)}
	sort.SliceStable(out.Intervals, func(i, j int) bool {
		return out.Intervals[i].Lo < out.Intervals[j].Lo
	})
	return out
}

// String renders the intervals for the provenance ledger, e.g.
// "[4320.5,4380] [6540,6590]". An empty spec renders as "[]".
func (s Spec) String() string {
	if len(s.Intervals) == 0 {
		return "[]"
	}
	parts := make([]string, len(s.Intervals))
	for i, iv := range s.Intervals {
		parts[i] = fmt.Sprintf("[%g,%g]", iv.Lo, iv.Hi)
	}
	return strings.Join(parts, " ")
}
