package pipeline

import (
	"bufio"
	"fmt"
	"os"

	"github.com/weldfab/dotweld/internal/config"
	"github.com/weldfab/dotweld/internal/weld"
)

// GCodeGenerator streams a welding toolpath to a G-code file as points
// arrive, so no point set is ever held in memory. The file is created
// on the first point; an input with no points produces no file.
type GCodeGenerator struct {
	outputPath string
	bounds     weld.Bounds
	cfg        *config.Config

	file *os.File
	w    *bufio.Writer
	err  error

	currentPathID string
	firstEver     bool
	points        int
	paths         int
}

// NewGCodeGenerator returns a toolpath writer parameterized by the
// Phase 1 bounds.
func NewGCodeGenerator(outputPath string, bounds weld.Bounds, cfg *config.Config) *GCodeGenerator {
	return &GCodeGenerator{
		outputPath: outputPath,
		bounds:     bounds,
		cfg:        cfg,
		firstEver:  true,
	}
}

// Name identifies the generator in results and logs.
func (g *GCodeGenerator) Name() string { return "gcode" }

// AddPoint writes the travel and weld moves for one record. Errors are
// latched and reported by Finalize.
func (g *GCodeGenerator) AddPoint(rec weld.Record) {
	if g.err != nil {
		return
	}
	if g.file == nil {
		if err := g.open(); err != nil {
			g.err = err
			return
		}
	}

	if rec.PathID != g.currentPathID {
		if g.currentPathID != "" {
			fmt.Fprintf(g.w, "; completed path: %s\n\n", g.currentPathID)
		}
		fmt.Fprintf(g.w, "; starting path: %s (%s)\n", rec.PathID, rec.Type)
		g.currentPathID = rec.PathID
		g.paths++
	}

	switch rec.Type {
	case weld.Stop:
		g.writePause(rec, "Stop point - press to continue")
	case weld.Pipette:
		g.writePause(rec, "Pipette filling required")
	default:
		g.writeWeld(rec)
	}
	g.points++
	g.firstEver = false
}

func (g *GCodeGenerator) writeWeld(rec weld.Record) {
	travel := g.cfg.GetTravelHeight()
	xySpeed := g.cfg.GetXYSpeed()
	zSpeed := g.cfg.GetZSpeed()

	if g.firstEver {
		fmt.Fprintf(g.w, "G1 Z%.3f F%d ; travel height\n", travel, zSpeed)
	}
	fmt.Fprintf(g.w, "G1 X%.3f Y%.3f F%d\n", rec.X, rec.Y, xySpeed)

	// Press to the weld height (explicit per-point height when the
	// drawing supplied one), dwell, then lift back to travel height.
	weldZ := 0.0
	if rec.Height != nil {
		weldZ = *rec.Height
	}
	fmt.Fprintf(g.w, "G1 Z%.3f F%d ; weld\n", weldZ, zSpeed)
	fmt.Fprintf(g.w, "G4 P%d\n", g.cfg.GetWeldTimeMS())
	fmt.Fprintf(g.w, "G1 Z%.3f F%d\n", travel, zSpeed)
}

func (g *GCodeGenerator) writePause(rec weld.Record, message string) {
	fmt.Fprintf(g.w, "G1 X%.3f Y%.3f F%d\n", rec.X, rec.Y, g.cfg.GetXYSpeed())
	fmt.Fprintf(g.w, "M117 %s\n", message)
	fmt.Fprintf(g.w, "M601 ; pause print\n")
}

func (g *GCodeGenerator) open() error {
	f, err := os.Create(g.outputPath)
	if err != nil {
		return fmt.Errorf("create gcode output: %w", err)
	}
	g.file = f
	g.w = bufio.NewWriter(f)
	g.writeHeader()
	return nil
}

func (g *GCodeGenerator) writeHeader() {
	bed := g.cfg.GetBedTemperature()
	nozzle := g.cfg.GetNozzleTemperature()

	fmt.Fprintf(g.w, "; dotweld welding toolpath\n")
	fmt.Fprintf(g.w, "; frame: %.1f x %.1f mm\n", g.bounds.Width(), g.bounds.Height())
	fmt.Fprintf(g.w, "; bed %dC nozzle %dC\n\n", bed, nozzle)
	fmt.Fprintf(g.w, "G90 ; absolute positioning\n")
	fmt.Fprintf(g.w, "M140 S%d ; heat bed\n", bed)
	fmt.Fprintf(g.w, "G28 ; home\n")
	fmt.Fprintf(g.w, "M190 S%d ; wait for bed\n", bed)
	fmt.Fprintf(g.w, "M104 S%d ; heat nozzle\n", nozzle)
	fmt.Fprintf(g.w, "M109 S%d ; wait for nozzle\n", nozzle)
	fmt.Fprintf(g.w, "M117 Insert plastic sheets\n")
	fmt.Fprintf(g.w, "M601 ; pause for material\n\n")
}

func (g *GCodeGenerator) writeFooter() {
	if g.currentPathID != "" {
		fmt.Fprintf(g.w, "; completed path: %s\n\n", g.currentPathID)
	}
	fmt.Fprintf(g.w, "; %d points in %d paths\n", g.points, g.paths)
	fmt.Fprintf(g.w, "M104 S0 ; nozzle off\n")
	fmt.Fprintf(g.w, "M140 S0 ; bed off\n")
	fmt.Fprintf(g.w, "G1 Z20 F%d ; raise\n", g.cfg.GetZSpeed())
	fmt.Fprintf(g.w, "M84 ; motors off\n")
}

// Finalize writes the footer, flushes and closes the output file.
func (g *GCodeGenerator) Finalize() weld.Result {
	res := weld.Result{Generator: g.Name(), OutputPath: g.outputPath}
	if g.err != nil {
		res.Err = g.err
		return res
	}
	if g.file == nil {
		res.Err = fmt.Errorf("no points received, gcode output not written")
		return res
	}
	g.writeFooter()
	if err := g.w.Flush(); err != nil {
		res.Err = fmt.Errorf("flush gcode output: %w", err)
		g.file.Close()
		return res
	}
	if err := g.file.Close(); err != nil {
		res.Err = fmt.Errorf("close gcode output: %w", err)
		return res
	}
	res.Success = true
	return res
}
