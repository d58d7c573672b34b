// Package preview renders quick-look images next to the exported text files:
// a PNG line plot of a potential profile and an HTML scatter of where
// particles crossed a z plane.
package preview

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ProfileWidth and ProfileHeight size the PNG profile plots.
var (
	ProfileWidth  = 8 * vg.Inch
	ProfileHeight = 4 * vg.Inch
)

// FieldProfile writes a PNG plot of phi against coords.
func FieldProfile(w io.Writer, title, axisLabel string, coords, phi []float64) error {
	if len(coords) != len(phi) {
		return fmt.Errorf("profile has %d coordinates and %d potentials", len(coords), len(phi))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = axisLabel
	p.Y.Label.Text = "phi(V)"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(coords))
	for i := range coords {
		pts[i].X = coords[i]
		pts[i].Y = phi[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("profile line: %w", err)
	}
	line.Color = color.RGBA{R: 31, G: 104, B: 142, A: 255}
	line.Width = vg.Points(1.5)
	p.Add(line)

	wt, err := p.WriterTo(ProfileWidth, ProfileHeight, "png")
	if err != nil {
		return fmt.Errorf("render profile: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
