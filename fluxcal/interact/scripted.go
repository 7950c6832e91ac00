package interact

import (
	"context"
	"fmt"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/provenance"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/sensfunc"
)

// ErrScriptExhausted is returned when a Scripted has no conflict answer
// left.
var ErrScriptExhausted = fmt.Errorf("interact: no scripted answer left: %w", fluxcal.ErrOutputConflict)

// Scripted answers every protocol from fixed queues and records what it
// was asked. An exhausted mask queue selects nothing and an exhausted
// decision queue accepts; an exhausted resolution queue fails.
type Scripted struct {
	Masks       [][]float64
	Decisions   []sensfunc.Decision
	Resolutions []provenance.Resolution

	MaskRequests []sensfunc.MaskRequest
	Reviews      []sensfunc.Review
	Conflicts    []string
}

// SelectMask implements sensfunc.MaskSelector.
func (s *Scripted) SelectMask(ctx context.Context, req sensfunc.MaskRequest) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.MaskRequests = append(s.MaskRequests, req)
	if len(s.Masks) == 0 {
		return nil, nil
	}
	clicks := s.Masks[0]
	s.Masks = s.Masks[1:]
	return clicks, nil
}

// ReviewFit implements sensfunc.Reviewer.
func (s *Scripted) ReviewFit(ctx context.Context, r sensfunc.Review) (sensfunc.Decision, error) {
	if err := ctx.Err(); err != nil {
		return sensfunc.Decision{}, err
	}
	s.Reviews = append(s.Reviews, r)
	if len(s.Decisions) == 0 {
		return sensfunc.Accept, nil
	}
	d := s.Decisions[0]
	s.Decisions = s.Decisions[1:]
	return d, nil
}

// ResolveConflict implements provenance.ConflictResolver.
func (s *Scripted) ResolveConflict(ctx context.Context, path string) (provenance.Resolution, error) {
	if err := ctx.Err(); err != nil {
		return provenance.Resolution{}, err
	}
	s.Conflicts = append(s.Conflicts, path)
	if len(s.Resolutions) == 0 {
		return provenance.Resolution{}, ErrScriptExhausted
	}
	r := s.Resolutions[0]
	s.Resolutions = s.Resolutions[1:]
	return r, nil
}
