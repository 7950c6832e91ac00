package interact

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal/polyfit"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/provenance"
	"github.com/corbettht/ZZCeti-pipeline/fluxcal/sensfunc"
)

// Prompter runs the protocols on a line-oriented terminal. Plots are
// written by an optional PlotRenderer and their paths printed.
type Prompter struct {
	in    *bufio.Reader
	out   io.Writer
	plots *PlotRenderer
	log   *slog.Logger
}

// NewPrompter reads answers from in and writes prompts to out. plots may be
// nil to skip rendering; a nil logger means slog.Default().
func NewPrompter(in io.Reader, out io.Writer, plots *PlotRenderer, log *slog.Logger) *Prompter {
	if log == nil {
		log = slog.Default()
	}
	return &Prompter{in: bufio.NewReader(in), out: out, plots: plots, log: log}
}

func (p *Prompter) readLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		err = nil
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// SelectMask implements sensfunc.MaskSelector. Wavelengths are typed one
// or more per line; a blank line finishes.
func (p *Prompter) SelectMask(ctx context.Context, req sensfunc.MaskRequest) ([]float64, error) {
	fmt.Fprintf(p.out, "No mask found for %s (%s). User interaction required.\n", req.Catalog, req.Arm)
	if p.plots != nil {
		path, err := p.plots.Mask(req)
		if err != nil {
			p.log.Warn("mask plot failed", "error", err)
		} else {
			fmt.Fprintf(p.out, "Sensitivity plot: %s\n", path)
		}
	}
	fmt.Fprintln(p.out, "Enter both sides of each region to exclude, in either order. Blank line when done.")

	var clicks []float64
	for {
		line, err := p.readLine(ctx, "> ")
		if err != nil {
			return nil, err
		}
		if line == "" {
			return clicks, nil
		}
		for _, field := range strings.Fields(line) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				fmt.Fprintf(p.out, "Not a wavelength: %q\n", field)
				continue
			}
			clicks = append(clicks, v)
		}
	}
}

// ReviewFit implements sensfunc.Reviewer.
func (p *Prompter) ReviewFit(ctx context.Context, r sensfunc.Review) (sensfunc.Decision, error) {
	if r.Err != nil {
		fmt.Fprintf(p.out, "Refit failed: %v\n", r.Err)
	}
	fmt.Fprintf(p.out, "%s: order %d fit to %d points, rms %.4f\n",
		r.Standard, r.Order, r.Columns.Len(), r.RMS)
	if p.plots != nil {
		path, err := p.plots.Fit(r)
		if err != nil {
			p.log.Warn("fit plot failed", "error", err)
		} else {
			fmt.Fprintf(p.out, "Fit plot: %s\n", path)
		}
	}

	for {
		answer, err := p.readLine(ctx, "Do you want to try again (yes/no)? ")
		if err != nil {
			return sensfunc.Decision{}, err
		}
		switch strings.ToLower(answer) {
		case "no", "n":
			return sensfunc.Accept, nil
		case "yes", "y":
			for {
				text, err := p.readLine(ctx, "New order for polynomial: ")
				if err != nil {
					return sensfunc.Decision{}, err
				}
				order, err := strconv.Atoi(text)
				if err != nil || order < sensfunc.MinOrder || order > polyfit.MaxOrder {
					fmt.Fprintf(p.out, "Order must be an integer from %d to %d.\n", sensfunc.MinOrder, polyfit.MaxOrder)
					continue
				}
				return sensfunc.Refit(order), nil
			}
		}
	}
}

// ResolveConflict implements provenance.ConflictResolver.
func (p *Prompter) ResolveConflict(ctx context.Context, path string) (provenance.Resolution, error) {
	fmt.Fprintf(p.out, "File %s already exists.\n", path)
	for {
		answer, err := p.readLine(ctx, "Do you want to overwrite, designate a new name or skip (overwrite/new/skip)? ")
		if err != nil {
			return provenance.Resolution{}, err
		}
		switch strings.ToLower(answer) {
		case "overwrite":
			return provenance.Resolution{Disposition: provenance.Overwrite}, nil
		case "skip":
			return provenance.Resolution{Disposition: provenance.Skip}, nil
		case "new":
			name, err := p.readLine(ctx, "New file name: ")
			if err != nil {
				return provenance.Resolution{}, err
			}
			if name == "" {
				continue
			}
			return provenance.Resolution{Disposition: provenance.Rename, Name: name}, nil
		}
	}
}
