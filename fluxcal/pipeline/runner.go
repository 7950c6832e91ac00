package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/apply"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/provenance"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/selector"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/sensfunc"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/spectrum"
)

var (
	// ErrNoBuilder is returned when standards must be fit but no builder was given.
	ErrNoBuilder = fmt.Errorf("pipeline: sensitivity builder is required without master curves: %w", fluxcal.ErrInputFormat)
	// ErrNoStore is returned by New without a spectrum store.
	ErrNoStore = fmt.Errorf("pipeline: spectrum store is required: %w", fluxcal.ErrInputFormat)
)

// Store reads and writes spectra.
type Store interface {
	Read(path string) (*spectrum.Spectrum, error)
	Write(path string, s *spectrum.Spectrum, clobber bool) error
	Exists(path string) (bool, error)
}

type config struct {
	builder        *sensfunc.Builder
	applier        *apply.Applier
	master         *selector.MasterSet
	resolver       provenance.ConflictResolver
	ledger         string
	outputDir      string
	diagnosticsDir string
	workbook       string
	now            func() time.Time
	logger         *slog.Logger
}

func defaultConfig() config {
	return config{
		ledger: provenance.DefaultLedger,
		now:    time.Now,
	}
}

// Option configures a Runner.
type Option func(*config)

// WithBuilder sets the sensitivity builder used for standards.
func WithBuilder(b *sensfunc.Builder) Option {
	return func(cfg *config) {
		cfg.builder = b
	}
}

// WithApplier sets the applier. The default applies no extinction.
func WithApplier(a *apply.Applier) Option {
	return func(cfg *config) {
		cfg.applier = a
	}
}

// WithMaster switches to master-response mode: no standards are fit and
// every program spectrum uses the master curve for its arm and device state.
func WithMaster(m *selector.MasterSet) Option {
	return func(cfg *config) {
		cfg.master = m
	}
}

// WithConflictResolver sets who decides about existing output files.
// Without one, an existing output aborts the run.
func WithConflictResolver(r provenance.ConflictResolver) Option {
	return func(cfg *config) {
		cfg.resolver = r
	}
}

// WithLedger sets the ledger path.
func WithLedger(path string) Option {
	return func(cfg *config) {
		cfg.ledger = path
	}
}

// WithOutputDir sets where calibrated spectra are written.
func WithOutputDir(dir string) Option {
	return func(cfg *config) {
		cfg.outputDir = dir
	}
}

// WithDiagnosticsDir sets where the per-run diagnostics table is written.
func WithDiagnosticsDir(dir string) Option {
	return func(cfg *config) {
		cfg.diagnosticsDir = dir
	}
}

// WithWorkbook also writes the diagnostics as a spreadsheet at path.
func WithWorkbook(path string) Option {
	return func(cfg *config) {
		cfg.workbook = path
	}
}

// WithClock overrides the run timestamp source.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// Lists are the three inputs of a run. Catalogs are matched to standard
// groups by position. Standards and Catalogs are ignored in master mode.
type Lists struct {
	Standards []Entry
	Catalogs  []Entry
	Programs  []Entry
}

// StandardResult describes one fitted standard arm.
type StandardResult struct {
	Curve      *sensfunc.Curve
	MaskPath   string
	ExportPath string
}

// Output describes one calibrated program arm.
type Output struct {
	Source      string
	Path        string
	Standard    string
	Catalog     string
	Disposition provenance.Disposition
	Skipped     bool
	// Distance is the airmass distance to the chosen standard, 0 in master mode.
	Distance float64
}

// Summary reports what a run did.
type Summary struct {
	Started     time.Time
	Standards   []StandardResult
	Outputs     []Output
	Diagnostics string
	Workbook    string
}

// Runner executes calibration runs.
type Runner struct {
	store Store
	cfg   config
	guard *provenance.Guard
	log   *slog.Logger
}

// New returns a Runner reading and writing spectra through store.
func New(store Store, opts ...Option) (*Runner, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.builder == nil && cfg.master == nil {
		return nil, ErrNoBuilder
	}
	log := cfg.logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.applier == nil {
		cfg.applier = apply.New(apply.WithLogger(log))
	}
	return &Runner{
		store: store,
		cfg:   cfg,
		guard: provenance.NewGuard(store, cfg.resolver, log),
		log:   log,
	}, nil
}

// Run fits the standards (unless in master mode) and calibrates every
// program group. Any failure halts the run.
func (r *Runner) Run(ctx context.Context, lists Lists) (*Summary, error) {
	sum := &Summary{Started: r.cfg.now()}

	programs, err := GroupPrograms(lists.Programs)
	if err != nil {
		return nil, err
	}

	var sel *selector.Selector
	if r.cfg.master == nil {
		if sel, err = r.fitStandards(ctx, lists, sum); err != nil {
			return nil, err
		}
	}

	for _, group := range programs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.calibrate(ctx, group, sel, sum); err != nil {
			return nil, err
		}
	}

	r.log.Info("run finished", "standards", len(sum.Standards), "outputs", len(sum.Outputs))
	return sum, nil
}

func (r *Runner) read(e Entry) (*spectrum.Spectrum, error) {
	s, err := r.store.Read(e.Path)
	if err != nil {
		return nil, err
	}
	if e.Arm != fluxcal.ArmUnknown {
		s.Arm = e.Arm
	}
	return s, nil
}

func (r *Runner) fitStandards(ctx context.Context, lists Lists, sum *Summary) (*selector.Selector, error) {
	groups, err := GroupStandards(lists.Standards)
	if err != nil {
		return nil, err
	}
	if len(lists.Catalogs) != len(groups) {
		return nil, fmt.Errorf("%w: %d catalogs for %d standards",
			fluxcal.ErrInputFormat, len(lists.Catalogs), len(groups))
	}

	pairs := make([]selector.Pair, 0, len(groups))
	var diags []provenance.Diagnostic
	for i, group := range groups {
		catalogName := lists.Catalogs[i].Path
		pair := selector.Pair{Catalog: catalogName}
		for _, e := range group {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			s, err := r.read(e)
			if err != nil {
				return nil, err
			}
			res, err := r.cfg.builder.Build(ctx, s, catalogName)
			if err != nil {
				return nil, err
			}
			if s.Arm == fluxcal.ArmRed {
				pair.Red = res.Curve
			} else {
				pair.Blue = res.Curve
			}
			sum.Standards = append(sum.Standards, StandardResult{
				Curve:      res.Curve,
				MaskPath:   res.MaskPath,
				ExportPath: res.ExportPath,
			})
			diags = append(diags, provenance.Diagnostic{
				Standard:   s.Name,
				Wavelength: res.Diagnostics.Wavelength,
				Observed:   res.Diagnostics.Observed,
				Fit:        res.Diagnostics.Fit,
				Residual:   res.Diagnostics.Residual,
			})
		}
		pairs = append(pairs, pair)
	}

	path, err := provenance.WriteDiagnosticsFile(r.cfg.diagnosticsDir, sum.Started, diags)
	if err != nil {
		return nil, err
	}
	sum.Diagnostics = path
	r.log.Info("diagnostics written", "path", path)

	if r.cfg.workbook != "" {
		if err := provenance.WriteDiagnosticsWorkbook(r.cfg.workbook, diags); err != nil {
			return nil, err
		}
		sum.Workbook = r.cfg.workbook
		r.log.Info("diagnostics workbook written", "path", r.cfg.workbook)
	}

	return selector.New(pairs)
}

func (r *Runner) calibrate(ctx context.Context, group Group, sel *selector.Selector, sum *Summary) error {
	specs := make([]*spectrum.Spectrum, len(group))
	for i, e := range group {
		s, err := r.read(e)
		if err != nil {
			return err
		}
		specs[i] = s
	}

	var choice selector.Choice
	if sel != nil {
		var err error
		if choice, err = sel.Select(specs...); err != nil {
			return err
		}
		r.log.Info("standard selected",
			"program", group[0].Path, "catalog", choice.Pair.Catalog, "distance", choice.Distance)
	}

	for i, s := range specs {
		curve, err := r.curveFor(s, sel, choice)
		if err != nil {
			return err
		}
		out, err := r.cfg.applier.Apply(s, curve)
		if err != nil {
			return err
		}
		o, err := r.write(ctx, group[i].Path, out, curve)
		if err != nil {
			return err
		}
		o.Distance = choice.Distance
		sum.Outputs = append(sum.Outputs, o)
	}
	return nil
}

func (r *Runner) curveFor(s *spectrum.Spectrum, sel *selector.Selector, choice selector.Choice) (*sensfunc.Curve, error) {
	if sel == nil {
		return r.cfg.master.Resolve(s)
	}
	return choice.CurveFor(s.Arm)
}

func (r *Runner) write(ctx context.Context, source string, out *spectrum.Spectrum, curve *sensfunc.Curve) (Output, error) {
	o := Output{Source: source, Standard: curve.Standard, Catalog: curve.Catalog}

	target, err := r.guard.Check(ctx, OutputName(r.cfg.outputDir, source, curve.Catalog))
	if err != nil {
		return o, err
	}
	o.Path = target.Path
	o.Disposition = target.Disposition
	if target.Skip {
		o.Skipped = true
		r.log.Info("output skipped", "path", target.Path)
		return o, nil
	}

	if err := r.store.Write(target.Path, out, target.Clobber); err != nil {
		return o, err
	}
	r.log.Info("calibrated spectrum written",
		"path", target.Path, "standard", curve.Standard, "disposition", target.Disposition.String())

	rec := provenance.Record{
		Source:   source,
		Time:     r.cfg.now(),
		Standard: curve.Standard,
		Catalog:  curve.Catalog,
		Excluded: curve.Excluded.String(),
		Order:    curve.Order(),
		BinSize:  curve.BinSize,
		Output:   filepath.Base(target.Path),
	}
	if err := (provenance.Ledger{Path: r.cfg.ledger}).Append(rec); err != nil {
		return o, err
	}
	r.log.Debug("ledger appended", "ledger", r.cfg.ledger, "output", rec.Output)
	return o, nil
}
