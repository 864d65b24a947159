package pipeline

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/weldfab/dotweld/internal/weld"
)

// previewColors maps weld types onto plot glyph colors.
var previewColors = map[weld.Type]color.Color{
	weld.Normal:    color.Black,
	weld.Frangible: color.RGBA{B: 255, A: 255},
	weld.Stop:      color.RGBA{R: 255, A: 255},
	weld.Pipette:   color.RGBA{R: 255, B: 255, A: 255},
}

// PreviewGenerator renders a static raster preview of all weld points,
// one scatter per weld type, with the canvas aspect taken from the
// Phase 1 bounds.
type PreviewGenerator struct {
	outputPath string
	bounds     weld.Bounds

	series map[weld.Type]plotter.XYs
	points int
}

// NewPreviewGenerator returns a raster preview renderer for the given
// output path and frame bounds.
func NewPreviewGenerator(outputPath string, bounds weld.Bounds) *PreviewGenerator {
	return &PreviewGenerator{
		outputPath: outputPath,
		bounds:     bounds,
		series:     make(map[weld.Type]plotter.XYs),
	}
}

// Name identifies the generator in results and logs.
func (g *PreviewGenerator) Name() string { return "preview" }

// AddPoint buffers one record into its weld type series.
func (g *PreviewGenerator) AddPoint(rec weld.Record) {
	g.series[rec.Type] = append(g.series[rec.Type], plotter.XY{X: rec.X, Y: rec.Y})
	g.points++
}

// Finalize draws and saves the preview image.
func (g *PreviewGenerator) Finalize() weld.Result {
	res := weld.Result{Generator: g.Name(), OutputPath: g.outputPath}
	if g.points == 0 {
		res.Err = fmt.Errorf("no points received, preview not written")
		return res
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Weld preview (%d points)", g.points)
	p.X.Label.Text = "X (mm)"
	p.Y.Label.Text = "Y (mm)"

	pad := 2.0
	p.X.Min = g.bounds.MinX - pad
	p.X.Max = g.bounds.MaxX + pad
	p.Y.Min = g.bounds.MinY - pad
	p.Y.Max = g.bounds.MaxY + pad

	for _, t := range weld.Types {
		xys := g.series[t]
		if len(xys) == 0 {
			continue
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			res.Err = fmt.Errorf("build %s scatter: %w", t, err)
			return res
		}
		scatter.GlyphStyle.Color = previewColors[t]
		scatter.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(scatter)
		p.Legend.Add(string(t), scatter)
	}
	p.Legend.Top = true

	// Scale the canvas to the frame's aspect ratio, capped at 10 inches
	// on the long side.
	width, height := canvasSize(g.bounds.Width()+2*pad, g.bounds.Height()+2*pad)
	if err := p.Save(width, height, g.outputPath); err != nil {
		res.Err = fmt.Errorf("save preview: %w", err)
		return res
	}
	res.Success = true
	return res
}

func canvasSize(w, h float64) (vg.Length, vg.Length) {
	const maxSide = 10.0 // inches
	if w <= 0 || h <= 0 {
		return vg.Inch * maxSide, vg.Inch * maxSide
	}
	if w >= h {
		return vg.Inch * maxSide, vg.Inch * vg.Length(maxSide*h/w)
	}
	return vg.Inch * vg.Length(maxSide*w/h), vg.Inch * maxSide
}
