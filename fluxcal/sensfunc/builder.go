package sensfunc

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/catalog"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/extinction"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/mask"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/polyfit"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/rebin"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/spectrum"
)

// DefaultOrder is the initial polynomial order of the review loop.
const DefaultOrder = 4

// MinOrder is the lowest order accepted from options and reviewers.
const MinOrder = 1

var (
	// ErrInvalidStep indicates a non-positive grid step.
	ErrInvalidStep = fmt.Errorf("sensfunc: grid step must be > 0: %w", fluxcal.ErrInputFormat)
	// ErrNoResolver indicates a Builder without a catalog resolver.
	ErrNoResolver = fmt.Errorf("sensfunc: catalog resolver is required: %w", fluxcal.ErrInputFormat)
)

type config struct {
	order        int
	step         float64
	oversampling int
	zeroPoint    float64
	extinction   *extinction.Corrector
	masks        MaskStore
	selector     MaskSelector
	reviewer     Reviewer
	exportDir    string
	logger       *slog.Logger
}

func defaultConfig() config {
	return config{
		order:        DefaultOrder,
		step:         rebin.DefaultStep,
		oversampling: rebin.DefaultOversampling,
		zeroPoint:    catalog.ABZeroPoint,
		reviewer:     AcceptAll,
	}
}

// Option configures a Builder.
type Option func(*config)

// WithOrder sets the initial polynomial order.
func WithOrder(order int) Option {
	return func(cfg *config) {
		cfg.order = order
	}
}

// WithStep sets the resampling grid step in Å.
func WithStep(step float64) Option {
	return func(cfg *config) {
		cfg.step = step
	}
}

// WithOversampling sets the resampling sub-pixel factor.
func WithOversampling(n int) Option {
	return func(cfg *config) {
		cfg.oversampling = n
	}
}

// WithZeroPoint sets the AB zero point in erg/s/cm²/Hz.
func WithZeroPoint(zp float64) Option {
	return func(cfg *config) {
		cfg.zeroPoint = zp
	}
}

// WithExtinction enables extinction correction of the standard's optimal
// counts. A nil corrector disables it.
func WithExtinction(c *extinction.Corrector) Option {
	return func(cfg *config) {
		cfg.extinction = c
	}
}

// WithMaskStore sets where masks are loaded from and saved to.
func WithMaskStore(s MaskStore) Option {
	return func(cfg *config) {
		cfg.masks = s
	}
}

// WithMaskSelector sets the interactive mask protocol. Without one, a
// standard with no saved mask is fitted unmasked.
func WithMaskSelector(s MaskSelector) Option {
	return func(cfg *config) {
		cfg.selector = s
	}
}

// WithReviewer sets the fit reviewer. The default accepts the first fit.
func WithReviewer(r Reviewer) Option {
	return func(cfg *config) {
		if r != nil {
			cfg.reviewer = r
		}
	}
}

// WithCurveExport writes a response-curve file into dir for every accepted
// standard. An empty dir disables export.
func WithCurveExport(dir string) Option {
	return func(cfg *config) {
		cfg.exportDir = dir
	}
}

// WithLogger sets the logger. nil means slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// Builder fits sensitivity curves one standard at a time.
type Builder struct {
	catalogs catalog.Resolver
	cfg      config
	log      *slog.Logger
}

// Result is a built curve with its diagnostics.
type Result struct {
	Curve       *Curve
	Diagnostics Columns
	// MaskPath is the mask file used or written, empty if none.
	MaskPath string
	// ExportPath is the response-curve file written, empty if none.
	ExportPath string
}

// New returns a Builder resolving catalog names through res.
func New(res catalog.Resolver, opts ...Option) (*Builder, error) {
	if res == nil {
		return nil, ErrNoResolver
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := checkOrder(cfg.order); err != nil {
		return nil, err
	}
	if !(cfg.step > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStep, cfg.step)
	}
	log := cfg.logger
	if log == nil {
		log = slog.Default()
	}
	return &Builder{catalogs: res, cfg: cfg, log: log}, nil
}

// Step returns the grid step used for resampling.
func (b *Builder) Step() float64 {
	return b.cfg.step
}

// Build derives the sensitivity curve of the standard observation s against
// the catalog named catalogName.
func (b *Builder) Build(ctx context.Context, s *spectrum.Spectrum, catalogName string) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	log := b.log.With("standard", s.Name, "arm", s.Arm.String(), "catalog", catalogName)
	log.Info("building sensitivity function", "airmass", s.Airmass)

	counts := s.OptimalFlux
	if b.cfg.extinction != nil {
		corrected, err := b.cfg.extinction.Correct(s.Wavelength, counts, s.Airmass)
		if err != nil {
			return nil, err
		}
		counts = corrected
	}

	entry, err := catalog.Load(b.catalogs, catalogName)
	if err != nil {
		return nil, err
	}
	lo, hi := s.Range()
	if entry, err = entry.Restrict(lo, hi); err != nil {
		return nil, err
	}
	entry.ToFlux(b.cfg.zeroPoint)

	grid, err := rebin.UniformGrid(lo, hi, b.cfg.step)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fluxcal.ErrCoverage, s.Name, err)
	}
	binned, err := rebin.Resample(grid, s.Wavelength, counts, rebin.WithOversampling(b.cfg.oversampling))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fluxcal.ErrInputFormat, s.Name, err)
	}
	summed, err := rebin.Integrate(entry.Wavelength, entry.BinWidth, grid, binned)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: catalog bins: %w", fluxcal.ErrInputFormat, s.Name, err)
	}
	sens, err := Sensitivity(summed, entry.Flux, entry.BinWidth, s.ExposureTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fluxcal.ErrInputFormat, s.Name, err)
	}

	excluded, maskPath, err := b.resolveMask(ctx, log, s, catalogName, entry.Wavelength, sens)
	if err != nil {
		return nil, err
	}

	var xs, ys []float64
	for _, i := range excluded.Keep(entry.Wavelength) {
		if isFinite(entry.Wavelength[i]) && isFinite(sens[i]) {
			xs = append(xs, entry.Wavelength[i])
			ys = append(ys, sens[i])
		}
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: %s: no points left after masking", fluxcal.ErrFitDegeneracy, s.Name)
	}

	poly, cols, err := b.review(ctx, log, s, xs, ys)
	if err != nil {
		return nil, err
	}

	curve := &Curve{
		Poly:     poly,
		Standard: s.Name,
		Catalog:  catalogName,
		Arm:      s.Arm,
		Airmass:  s.Airmass,
		Device:   s.Device,
		Excluded: excluded,
		BinSize:  b.cfg.step,
	}
	res := &Result{Curve: curve, Diagnostics: cols, MaskPath: maskPath}

	if b.cfg.exportDir != "" {
		path, err := ExportResponseCurve(b.cfg.exportDir, curve, catalogName, xs, ys)
		if err != nil {
			return nil, err
		}
		res.ExportPath = path
		log.Info("response curve exported", "path", path)
	}

	log.Info("sensitivity function accepted",
		"order", curve.Order(), "points", len(xs), "excluded", excluded.String())
	return res, nil
}

func (b *Builder) resolveMask(ctx context.Context, log *slog.Logger, s *spectrum.Spectrum,
	catalogName string, wave, sens []float64,
) (mask.Spec, string, error) {
	if b.cfg.masks != nil {
		saved, found, err := b.cfg.masks.Load(catalogName, s.Arm)
		if err != nil {
			return mask.Spec{}, "", fmt.Errorf("%w: load mask: %w", fluxcal.ErrInputFormat, err)
		}
		if found {
			log.Info("mask loaded from file", "intervals", saved.Len())
			return saved, "", nil
		}
	}
	if b.cfg.selector == nil {
		log.Debug("no mask saved and no selector, fitting unmasked")
		return mask.Spec{}, "", nil
	}

	clicks, err := b.cfg.selector.SelectMask(ctx, MaskRequest{
		Standard:    s.Name,
		Catalog:     catalogName,
		Arm:         s.Arm,
		Wavelength:  wave,
		Sensitivity: sens,
	})
	if err != nil {
		return mask.Spec{}, "", fmt.Errorf("mask selection for %s: %w", s.Name, err)
	}
	selected, dropped := mask.FromClicks(clicks, wave)
	if dropped {
		log.Warn("odd number of mask clicks, dropping the last one", "clicks", len(clicks))
	}
	log.Info("mask selected interactively", "intervals", selected.Len())

	if b.cfg.masks == nil {
		return selected, "", nil
	}
	path, err := b.cfg.masks.Save(catalogName, s.Arm, selected)
	if err != nil {
		return mask.Spec{}, "", fmt.Errorf("%w: save mask: %w", fluxcal.ErrInputFormat, err)
	}
	return selected, path, nil
}

// review runs the fit state machine until the reviewer accepts.
func (b *Builder) review(ctx context.Context, log *slog.Logger, s *spectrum.Spectrum,
	xs, ys []float64,
) (polyfit.Polynomial, Columns, error) {
	var (
		poly      polyfit.Polynomial
		current   Review
		order     = b.cfg.order
		iteration = 0
		state     = StateAwaitingFit
	)
	for state != StateAccepted {
		if err := ctx.Err(); err != nil {
			return polyfit.Polynomial{}, Columns{}, err
		}
		switch state {
		case StateAwaitingFit:
			p, err := polyfit.Fit(xs, ys, order)
			if err != nil {
				if iteration == 0 {
					return polyfit.Polynomial{}, Columns{}, fmt.Errorf("%s: %w", s.Name, err)
				}
				log.Warn("refit rejected, keeping previous fit", "order", order, "error", err)
				order = current.Order
				current.Err = err
				state = StateReview
				continue
			}
			iteration++
			poly = p
			fit := p.EvalSlice(nil, xs)
			resid := polyfit.Residuals(p, xs, ys)
			current = Review{
				Standard:  s.Name,
				Arm:       s.Arm,
				Order:     order,
				Iteration: iteration,
				Columns:   Columns{Wavelength: xs, Observed: ys, Fit: fit, Residual: resid},
				RMS:       polyfit.RMS(resid),
			}
			log.Debug("fit computed", "order", order, "iteration", iteration, "rms", current.RMS)
			state = StateReview
		case StateReview:
			d, err := b.cfg.reviewer.ReviewFit(ctx, current)
			if err != nil {
				return polyfit.Polynomial{}, Columns{}, fmt.Errorf("fit review for %s: %w", s.Name, err)
			}
			if d.Accept {
				state = StateAccepted
				continue
			}
			if err := checkOrder(d.Order); err != nil {
				log.Warn("refit rejected, keeping previous fit", "order", d.Order, "error", err)
				current.Err = err
				continue
			}
			log.Info("refitting", "order", d.Order)
			order = d.Order
			state = StateAwaitingFit
		}
	}
	return poly, current.Columns, nil
}

func checkOrder(order int) error {
	if order < MinOrder || order > polyfit.MaxOrder {
		return fmt.Errorf("sensfunc: %w: %d not in [%d, %d]", polyfit.ErrInvalidOrder, order, MinOrder, polyfit.MaxOrder)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
