// Package plotting renders eigenfunctions and residual scans with
// gonum/plot. The output format follows the file extension (png, svg,
// pdf, eps, jpg, tif).
package plotting

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/katalvlaran/sturm/eigen"
)

// ErrNothingToPlot indicates an empty result or scan.
var ErrNothingToPlot = errors.New("plotting: nothing to plot")

// Default figure size.
const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

// Options controls the figure.
type Options struct {
	Title         string
	Width, Height vg.Length // zero takes the defaults
}

func (o *Options) normalize() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
}

// Modes draws every normalized eigenfunction of res on one set of axes,
// one line per mode labelled with its eigenvalue, and saves it to path.
func Modes(res eigen.Result, path string, opts Options) error {
	if len(res.Modes) == 0 || len(res.X) == 0 {
		return ErrNothingToPlot
	}
	opts.normalize()

	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = "Normalized eigenfunctions"
	}
	p.X.Label.Text = "x"
	p.Y.Label.Text = "u(x)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	lines := make([]any, 0, 2*len(res.Modes))
	for _, m := range res.Modes {
		if len(m.U) != len(res.X) {
			return fmt.Errorf("plotting: mode %d has %d samples, grid has %d", m.Index, len(m.U), len(res.X))
		}
		lines = append(lines, fmt.Sprintf("λ%d = %.6g", m.Index, m.Lambda), xys(res.X, m.U))
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return fmt.Errorf("plotting: %w", err)
	}

	return save(p, path, opts)
}

// Residuals draws a residual scan r(λ) with the zero line, skipping
// points where the residual is undefined (NaN).
func Residuals(lambdas, residuals []float64, path string, opts Options) error {
	if len(lambdas) != len(residuals) {
		return fmt.Errorf("plotting: %d λ values vs %d residuals", len(lambdas), len(residuals))
	}
	pts := make(plotter.XYs, 0, len(lambdas))
	for i, l := range lambdas {
		if math.IsNaN(residuals[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: l, Y: residuals[i]})
	}
	if len(pts) < 2 {
		return ErrNothingToPlot
	}
	opts.normalize()

	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = "Shooting residual"
	}
	p.X.Label.Text = "λ"
	p.Y.Label.Text = "u(b−ε)"
	p.Add(plotter.NewGrid())

	zero := plotter.XYs{{X: pts[0].X, Y: 0}, {X: pts[len(pts)-1].X, Y: 0}}
	if err := plotutil.AddLines(p, "residual", pts, "zero", zero); err != nil {
		return fmt.Errorf("plotting: %w", err)
	}

	return save(p, path, opts)
}

func xys(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X, pts[i].Y = xs[i], ys[i]
	}

	return pts
}

func save(p *plot.Plot, path string, opts Options) error {
	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("plotting: save %s: %w", path, err)
	}

	return nil
}
