// Package plot renders convergence plots for spacing sweeps: estimated
// volume as a function of grid spacing, optionally against an analytic
// reference value.
package plot

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SweepPoint is one sweep sample: the grid spacing used and the volume the
// estimator reported for it.
type SweepPoint struct {
	Spacing float64
	Volume  float64
}

// WriteConvergencePNG saves a volume-vs-spacing line plot to path. A
// positive analytic value adds a horizontal reference line so the
// convergence toward it is visible.
func WriteConvergencePNG(path string, points []SweepPoint, analytic float64) error {
	if len(points) == 0 {
		return fmt.Errorf("no sweep points to plot")
	}

	p := plot.New()
	p.Title.Text = "Union volume vs. grid spacing"
	p.X.Label.Text = "grid spacing"
	p.Y.Label.Text = "estimated volume"

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = pt.Spacing
		xys[i].Y = pt.Volume
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("build volume line: %w", err)
	}
	p.Add(line)
	p.Legend.Add("estimated", line)

	if analytic > 0 {
		ref := plotter.XYs{
			{X: points[0].Spacing, Y: analytic},
			{X: points[len(points)-1].Spacing, Y: analytic},
		}
		refLine, err := plotter.NewLine(ref)
		if err != nil {
			return fmt.Errorf("build reference line: %w", err)
		}
		refLine.Color = color.RGBA{R: 200, A: 255}
		refLine.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(refLine)
		p.Legend.Add("analytic", refLine)
	}

	p.Legend.Top = true
	p.Legend.Left = false

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}
