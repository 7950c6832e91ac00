// Package selector picks the sensitivity curve applied to each program
// spectrum: the standard closest in airmass, or a master response chosen
// by device state.
package selector

import (
	"fmt"
	"math"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/sensfunc"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/spectrum"
)

var (
	// ErrNoStandards indicates selection over an empty standard list.
	ErrNoStandards = fmt.Errorf("selector: no standards: %w", fluxcal.ErrCoverage)
	// ErrNoCandidate indicates that no standard covers every requested arm.
	ErrNoCandidate = fmt.Errorf("selector: no standard covers the requested arms: %w", fluxcal.ErrCoverage)
)

// Pair is one standard star with its per-arm curves. Either member may be
// nil for single-arm data.
type Pair struct {
	Catalog string
	Blue    *sensfunc.Curve
	Red     *sensfunc.Curve
}

// Member returns the curve for arm, or nil.
func (p Pair) Member(arm fluxcal.Arm) *sensfunc.Curve {
	switch arm {
	case fluxcal.ArmBlue:
		return p.Blue
	case fluxcal.ArmRed:
		return p.Red
	default:
		if p.Blue != nil && p.Red == nil {
			return p.Blue
		}
		if p.Red != nil && p.Blue == nil {
			return p.Red
		}
		return nil
	}
}

// Members returns the non-nil curves, blue first.
func (p Pair) Members() []*sensfunc.Curve {
	out := make([]*sensfunc.Curve, 0, 2)
	if p.Blue != nil {
		out = append(out, p.Blue)
	}
	if p.Red != nil {
		out = append(out, p.Red)
	}
	return out
}

// MeanAirmass returns the mean airmass of the members for arms.
func (p Pair) MeanAirmass(arms ...fluxcal.Arm) (float64, bool) {
	sum := 0.0
	for _, arm := range arms {
		c := p.Member(arm)
		if c == nil {
			return 0, false
		}
		sum += c.Airmass
	}
	if len(arms) == 0 {
		return 0, false
	}
	return sum / float64(len(arms)), true
}

// Choice is the result of a selection.
type Choice struct {
	Index    int
	Pair     Pair
	Distance float64
}

// CurveFor returns the chosen pair's curve for arm.
func (c Choice) CurveFor(arm fluxcal.Arm) (*sensfunc.Curve, error) {
	curve := c.Pair.Member(arm)
	if curve == nil {
		return nil, fmt.Errorf("%w: %s arm of %s", ErrNoCandidate, arm, c.Pair.Catalog)
	}
	return curve, nil
}

// Selector matches program spectra to standards by airmass.
type Selector struct {
	pairs []Pair
}

// New returns a Selector over pairs in list order.
func New(pairs []Pair) (*Selector, error) {
	if len(pairs) == 0 {
		return nil, ErrNoStandards
	}
	return &Selector{pairs: pairs}, nil
}

// Pairs returns the standards in list order.
func (s *Selector) Pairs() []Pair {
	return s.pairs
}

// Select returns the standard minimizing |mean program airmass - mean
// standard airmass|, comparing the standard members of the same arms as the
// programs. Only standards with a member for every program arm compete.
// Ties resolve to the first standard in list order.
func (s *Selector) Select(programs ...*spectrum.Spectrum) (Choice, error) {
	if len(programs) == 0 {
		return Choice{}, fmt.Errorf("%w: no program spectra", ErrNoCandidate)
	}
	arms := make([]fluxcal.Arm, len(programs))
	target := 0.0
	for i, p := range programs {
		arms[i] = p.Arm
		target += p.Airmass
	}
	target /= float64(len(programs))

	best := Choice{Index: -1, Distance: math.Inf(1)}
	for i, pair := range s.pairs {
		mean, ok := pair.MeanAirmass(arms...)
		if !ok {
			continue
		}
		if d := math.Abs(target - mean); d < best.Distance {
			best = Choice{Index: i, Pair: pair, Distance: d}
		}
	}
	if best.Index < 0 {
		return Choice{}, fmt.Errorf("%w: arms %v", ErrNoCandidate, arms)
	}
	return best, nil
}
