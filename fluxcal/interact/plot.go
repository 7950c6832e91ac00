package interact

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal/sensfunc"
)

var (
	fitColor      = color.RGBA{R: 220, G: 30, B: 30, A: 255}
	observedColor = color.RGBA{R: 30, G: 60, B: 200, A: 255}
)

// PlotRenderer draws mask and review plots as PNG files in Dir.
type PlotRenderer struct {
	Dir           string
	Width, Height vg.Length
}

// NewPlotRenderer returns a renderer with an 8x6 inch page.
func NewPlotRenderer(dir string) *PlotRenderer {
	return &PlotRenderer{Dir: dir, Width: 8 * vg.Inch, Height: 6 * vg.Inch}
}

func points(x, y []float64) plotter.XYs {
	n := min(len(x), len(y))
	pts := make(plotter.XYs, 0, n)
	for i := range n {
		if !finite(x[i]) || !finite(y[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: x[i], Y: y[i]})
	}
	return pts
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func plotName(standard, suffix string) string {
	base := filepath.Base(standard)
	if trimmed, ok := strings.CutSuffix(base, ".ms.fits"); ok {
		base = trimmed
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base + "_" + suffix + ".png"
}

// Mask renders the sensitivity of a standard for mask selection.
func (r *PlotRenderer) Mask(req sensfunc.MaskRequest) (string, error) {
	p := plot.New()
	p.Title.Text = "Pick both sides of each region to exclude: " + filepath.Base(req.Standard)
	p.X.Label.Text = "Wavelength (Å)"
	p.Y.Label.Text = "Sensitivity"

	pts := points(req.Wavelength, req.Sensitivity)
	line, err := plotter.NewLine(pts)
	if err != nil {
		return "", err
	}
	line.LineStyle.Color = observedColor
	marks, err := plotter.NewScatter(pts)
	if err != nil {
		return "", err
	}
	marks.GlyphStyle.Shape = draw.PlusGlyph{}
	p.Add(line, marks, plotter.NewGrid())

	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(r.Dir, plotName(req.Standard, req.Arm.String()+"_mask"))
	if err := p.Save(r.Width, r.Height, path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

// Fit renders the fit over the observed sensitivity with the residuals in
// a second panel.
func (r *PlotRenderer) Fit(rev sensfunc.Review) (string, error) {
	cols := rev.Columns

	top := plot.New()
	top.Title.Text = fmt.Sprintf("Current polynomial order: %d", rev.Order)
	top.Y.Label.Text = "Sensitivity Function"
	observed, err := plotter.NewScatter(points(cols.Wavelength, cols.Observed))
	if err != nil {
		return "", err
	}
	observed.GlyphStyle.Shape = draw.PlusGlyph{}
	observed.GlyphStyle.Color = observedColor
	fit, err := plotter.NewLine(points(cols.Wavelength, cols.Fit))
	if err != nil {
		return "", err
	}
	fit.LineStyle.Color = fitColor
	fit.LineStyle.Width = vg.Points(2)
	top.Add(observed, fit)

	bottom := plot.New()
	bottom.X.Label.Text = "Wavelength (Å)"
	bottom.Y.Label.Text = "Residuals"
	resid, err := plotter.NewScatter(points(cols.Wavelength, cols.Residual))
	if err != nil {
		return "", err
	}
	resid.GlyphStyle.Shape = draw.PlusGlyph{}
	bottom.Add(resid, plotter.NewGrid())

	img := vgimg.New(r.Width, r.Height)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 2, Cols: 1, PadY: vg.Millimeter}
	canvases := plot.Align([][]*plot.Plot{{top}, {bottom}}, tiles, dc)
	top.Draw(canvases[0][0])
	bottom.Draw(canvases[1][0])

	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(r.Dir, plotName(rev.Standard, fmt.Sprintf("%s_fit%d", rev.Arm, rev.Iteration)))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, f.Close()
}
