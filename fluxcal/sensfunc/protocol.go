package sensfunc

import (
	"context"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/mask"
)

// MaskRequest is shown to a MaskSelector when no mask is saved for a
// standard.
type MaskRequest struct {
	Standard    string
	Catalog     string
	Arm         fluxcal.Arm
	Wavelength  []float64
	Sensitivity []float64
}

// MaskSelector collects exclusion clicks. It returns click wavelengths in
// order; consecutive pairs bound one excluded interval in either order.
type MaskSelector interface {
	SelectMask(ctx context.Context, req MaskRequest) ([]float64, error)
}

// MaskStore persists masks per (catalog, arm).
type MaskStore interface {
	Load(catalogName string, arm fluxcal.Arm) (mask.Spec, bool, error)
	Save(catalogName string, arm fluxcal.Arm, s mask.Spec) (string, error)
}

// Review is one fit presented to a Reviewer.
type Review struct {
	Standard string
	Arm      fluxcal.Arm
	Order    int
	// Iteration counts fits of this standard, starting at 1.
	Iteration int
	Columns   Columns
	RMS       float64
	// Err is set when the previous refit request was rejected; the fit
	// shown is the last one that succeeded.
	Err error
}

// Decision is a Reviewer's answer: accept the fit or refit at Order.
type Decision struct {
	Accept bool
	Order  int
}

// Accept is the accepting Decision.
var Accept = Decision{Accept: true}

// Refit returns a Decision requesting a new order.
func Refit(order int) Decision {
	return Decision{Order: order}
}

// Reviewer inspects a fit and its residuals.
type Reviewer interface {
	ReviewFit(ctx context.Context, r Review) (Decision, error)
}

// ReviewerFunc adapts a function to Reviewer.
type ReviewerFunc func(ctx context.Context, r Review) (Decision, error)

// ReviewFit implements Reviewer.
func (f ReviewerFunc) ReviewFit(ctx context.Context, r Review) (Decision, error) {
	return f(ctx, r)
}

// AcceptAll accepts every fit.
var AcceptAll Reviewer = ReviewerFunc(func(context.Context, Review) (Decision, error) {
	return Accept, nil
})

// FitState is a state of the fit review loop.
type FitState int

const (
	StateAwaitingFit FitState = iota
	StateReview
	StateAccepted
)

func (s FitState) String() string {
	switch s {
	case StateAwaitingFit:
		return "awaiting-fit"
	case StateReview:
		return "review"
	case StateAccepted:
		return "accepted"
	default:
		return "unknown"
	}
}
