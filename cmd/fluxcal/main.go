// Command fluxcal flux-calibrates extracted spectra.
//
// Usage:
//
//	fluxcal [flags] program-list
//
// Standards listed with -stan-list are fit against the catalogs listed with
// -flux-list, then every spectrum in program-list is calibrated against the
// standard closest in airmass. With -usemaster the precomputed master
// response curves are used instead and no standards are needed.
//
// Examples:
//
//	fluxcal -stan-list liststandard -flux-list listflux listspec
//	fluxcal -usemaster -extinct=false listspec
//	fluxcal -config night.yaml -order 5 -plots plots listspec
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal/apply"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/catalog"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/extinction"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/interact"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/mask"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/pipeline"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/provenance"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/selector"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/sensfunc"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/spectrum"
	"github.com/corbettht/ZZCeti-pipeline/internal/config"
	"github.com/corbettht/ZZCeti-pipeline/internal/logging"
)

type flags struct {
	config    string
	stanList  string
	fluxList  string
	useMaster bool
	extinct   bool
	order     int
	plots     string
	outputDir string
	logLevel  string
}

func main() {
	var f flags
	flag.StringVar(&f.config, "config", "", "YAML configuration file (default fluxcal.yaml if present)")
	flag.StringVar(&f.stanList, "stan-list", "", "list of standard star spectra, blue before red")
	flag.StringVar(&f.fluxList, "flux-list", "", "list of standard flux catalogs, one per standard")
	flag.BoolVar(&f.useMaster, "usemaster", false, "use master response curves instead of standards")
	flag.BoolVar(&f.extinct, "extinct", true, "apply atmospheric extinction correction")
	flag.IntVar(&f.order, "order", 0, "initial polynomial order (1-15)")
	flag.StringVar(&f.plots, "plots", "", "directory for mask and fit plots")
	flag.StringVar(&f.outputDir, "out", "", "directory for calibrated spectra")
	flag.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fluxcal [flags] program-list\n\n")
		fmt.Fprintf(os.Stderr, "Flux-calibrates the spectra in program-list.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  fluxcal -stan-list liststandard -flux-list listflux listspec\n")
		fmt.Fprintf(os.Stderr, "  fluxcal -usemaster listspec\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(f, flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// overrides copies explicitly set flags over the loaded configuration.
func overrides(f flags, cfg *config.Config) {
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "usemaster":
			cfg.Master.Enabled = f.useMaster
		case "extinct":
			cfg.Calibration.Extinction = f.extinct
		case "order":
			cfg.Calibration.Order = f.order
		case "plots":
			cfg.Paths.PlotDir = f.plots
		case "out":
			cfg.Paths.OutputDir = f.outputDir
		case "log-level":
			cfg.Logging.Level = f.logLevel
		}
	})
}

func run(f flags, programList string) error {
	cfg, err := config.Load(f.config, func(cfg *config.Config) {
		overrides(f, cfg)
		if cfg.Master.Enabled && cfg.Master.Dir == "" {
			cfg.Master.Dir = "."
		}
	})
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger, runID := logging.WithRunID(logger)
	slog.SetDefault(logger)
	logger.Info("fluxcal starting", "program_list", programList, "master", cfg.Master.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	lists := pipeline.Lists{}
	if lists.Programs, err = pipeline.LoadList(programList); err != nil {
		return err
	}

	var ext *extinction.Corrector
	if cfg.Calibration.Extinction {
		if ext, err = extinction.Default(); err != nil {
			return err
		}
	}

	var plots *interact.PlotRenderer
	if cfg.Paths.PlotDir != "" {
		plots = interact.NewPlotRenderer(cfg.Paths.PlotDir)
	}
	prompter := interact.NewPrompter(os.Stdin, os.Stdout, plots, logger)

	opts := []pipeline.Option{
		pipeline.WithApplier(apply.New(apply.WithExtinction(ext), apply.WithLogger(logger))),
		pipeline.WithConflictResolver(prompter),
		pipeline.WithLedger(cfg.Paths.Ledger),
		pipeline.WithOutputDir(cfg.Paths.OutputDir),
		pipeline.WithDiagnosticsDir(cfg.Paths.DiagnosticsDir),
		pipeline.WithLogger(logger),
	}

	if cfg.Master.Enabled {
		m, err := selector.LoadMaster(cfg.Master.Dir, logger)
		if err != nil {
			return err
		}
		if err := m.LoadNightly(cfg.Master.NightlyList); err != nil {
			return err
		}
		opts = append(opts, pipeline.WithMaster(m))
	} else {
		if f.stanList == "" || f.fluxList == "" {
			return fmt.Errorf("-stan-list and -flux-list are required unless -usemaster is set")
		}
		if lists.Standards, err = pipeline.LoadList(f.stanList); err != nil {
			return err
		}
		if lists.Catalogs, err = pipeline.LoadList(f.fluxList); err != nil {
			return err
		}
		b, err := newBuilder(cfg, ext, prompter, logger)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithBuilder(b))
		if cfg.Outputs.Workbook {
			name := strings.TrimSuffix(provenance.DiagnosticsName(time.Now()), ".txt") + ".xlsx"
			opts = append(opts, pipeline.WithWorkbook(filepath.Join(cfg.Paths.DiagnosticsDir, name)))
		}
	}

	r, err := pipeline.New(spectrum.FITSStore{}, opts...)
	if err != nil {
		return err
	}
	sum, err := r.Run(ctx, lists)
	if err != nil {
		return err
	}
	return printSummary(os.Stdout, runID, sum)
}

func newBuilder(cfg *config.Config, ext *extinction.Corrector, prompter *interact.Prompter, logger *slog.Logger) (*sensfunc.Builder, error) {
	c := cfg.Calibration
	opts := []sensfunc.Option{
		sensfunc.WithOrder(c.Order),
		sensfunc.WithStep(c.GridStep),
		sensfunc.WithOversampling(c.Oversampling),
		sensfunc.WithZeroPoint(c.ZeroPoint),
		sensfunc.WithExtinction(ext),
		sensfunc.WithMaskStore(mask.Store{Dir: cfg.Paths.MaskDir}),
		sensfunc.WithMaskSelector(prompter),
		sensfunc.WithReviewer(prompter),
		sensfunc.WithLogger(logger),
	}
	if cfg.Outputs.ExportCurves {
		dir := cfg.Outputs.CurveDir
		if dir == "" {
			dir = "."
		}
		opts = append(opts, sensfunc.WithCurveExport(dir))
	}
	return sensfunc.New(catalog.DirResolver{Dir: cfg.Paths.CatalogDir}, opts...)
}

func printSummary(w io.Writer, runID string, sum *pipeline.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run %s\n\n", runID)
	if len(sum.Standards) > 0 {
		fmt.Fprintf(tw, "Standard\tArm\tAirmass\tOrder\tExcluded\n")
		fmt.Fprintf(tw, "--------\t---\t-------\t-----\t--------\n")
		for _, s := range sum.Standards {
			c := s.Curve
			fmt.Fprintf(tw, "%s\t%s\t%.3f\t%d\t%s\n", c.Standard, c.Arm, c.Airmass, c.Order(), c.Excluded)
		}
		fmt.Fprintf(tw, "\n")
	}
	fmt.Fprintf(tw, "Spectrum\tOutput\tStandard\tDisposition\n")
	fmt.Fprintf(tw, "--------\t------\t--------\t-----------\n")
	for _, o := range sum.Outputs {
		out := o.Path
		if o.Skipped {
			out = "(skipped)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", o.Source, out, o.Standard, o.Disposition)
	}
	if sum.Diagnostics != "" {
		fmt.Fprintf(tw, "\nDiagnostics: %s\n", sum.Diagnostics)
	}
	return tw.Flush()
}
