package pipeline

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/weldfab/dotweld/internal/config"
	"github.com/weldfab/dotweld/internal/weld"
)

// seriesColors maps each weld type onto the color used by both the
// animation and the raster preview, matching the source drawing
// conventions (black normal, blue frangible, red stop, magenta
// pipette).
var seriesColors = map[weld.Type]string{
	weld.Normal:    "#000000",
	weld.Frangible: "#0000ff",
	weld.Stop:      "#ff0000",
	weld.Pipette:   "#ff00ff",
}

// AnimationGenerator renders the weld sequence as an animated HTML
// scatter chart, one series per weld type, sized from the Phase 1
// bounds. Points accumulate during streaming; the page is written in
// Finalize.
type AnimationGenerator struct {
	outputPath string
	bounds     weld.Bounds
	cfg        *config.Config

	series map[weld.Type][]opts.ScatterData
	points int
}

// NewAnimationGenerator returns an animation renderer for the given
// output path and frame bounds.
func NewAnimationGenerator(outputPath string, bounds weld.Bounds, cfg *config.Config) *AnimationGenerator {
	return &AnimationGenerator{
		outputPath: outputPath,
		bounds:     bounds,
		cfg:        cfg,
		series:     make(map[weld.Type][]opts.ScatterData),
	}
}

// Name identifies the generator in results and logs.
func (g *AnimationGenerator) Name() string { return "animation" }

// AddPoint buffers one record into its weld type series.
func (g *AnimationGenerator) AddPoint(rec weld.Record) {
	g.series[rec.Type] = append(g.series[rec.Type], opts.ScatterData{
		Value: []interface{}{rec.X, rec.Y},
	})
	g.points++
}

// Finalize renders the chart page to the output file.
func (g *AnimationGenerator) Finalize() weld.Result {
	res := weld.Result{Generator: g.Name(), OutputPath: g.outputPath}
	if g.points == 0 {
		res.Err = fmt.Errorf("no points received, animation not written")
		return res
	}

	// Padding keeps edge welds visible; the estimated duration assumes
	// one weld per configured animation interval.
	pad := 2.0
	duration := float64(g.points) * g.cfg.GetTimeBetweenWelds()

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "dotweld sequence",
			Width:     "900px",
			Height:    "900px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Weld sequence",
			Subtitle: fmt.Sprintf("%d points, ~%.0fs weld time", g.points, duration),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Min: g.bounds.MinX - pad, Max: g.bounds.MaxX + pad,
			Name: "X (mm)", NameLocation: "middle", NameGap: 25,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Min: g.bounds.MinY - pad, Max: g.bounds.MaxY + pad,
			Name: "Y (mm)", NameLocation: "middle", NameGap: 30,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	for _, t := range weld.Types {
		data := g.series[t]
		if len(data) == 0 {
			continue
		}
		scatter.AddSeries(string(t), data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: seriesColors[t]}),
		)
	}

	f, err := os.Create(g.outputPath)
	if err != nil {
		res.Err = fmt.Errorf("create animation output: %w", err)
		return res
	}
	defer f.Close()

	if err := scatter.Render(f); err != nil {
		res.Err = fmt.Errorf("render animation: %w", err)
		return res
	}
	res.Success = true
	return res
}
