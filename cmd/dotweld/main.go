// Command dotweld converts 2-D vector drawings (SVG, DXF) into welding
// outputs: a G-code toolpath, an optional HTML animation of the weld
// sequence, and an optional PNG preview.
//
// Usage:
//
//	dotweld -output out.gcode [-animation out.html] [-preview out.png] input.svg
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/weldfab/dotweld/internal/config"
	"github.com/weldfab/dotweld/internal/pipeline"
	"github.com/weldfab/dotweld/internal/points"
	"github.com/weldfab/dotweld/internal/runstore"
	"github.com/weldfab/dotweld/internal/version"
)

var (
	output      = flag.String("output", "", "G-code output path (required unless -count or -formats)")
	animation   = flag.String("animation", "", "HTML animation output path (optional)")
	preview     = flag.String("preview", "", "PNG preview output path (optional)")
	configPath  = flag.String("config", "", "JSON weld configuration file (optional)")
	runsDB      = flag.String("runs-db", "", "SQLite file recording run history (optional)")
	countOnly   = flag.Bool("count", false, "Count weld points in the input and exit")
	formats     = flag.Bool("formats", false, "List supported input formats and exit")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *formats {
		fmt.Printf("supported formats: %s\n", strings.Join(points.SupportedExtensions(), ", "))
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: dotweld -output out.gcode [flags] input.svg")
		flag.PrintDefaults()
		os.Exit(2)
	}
	input := flag.Arg(0)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	if *countOnly {
		n, err := points.CountPoints(input, cfg)
		if err != nil {
			log.Fatalf("count points: %v", err)
		}
		fmt.Printf("%s: %d points\n", input, n)
		return
	}

	if *output == "" {
		log.Fatal("-output is required")
	}

	processor := pipeline.NewProcessor(cfg)
	summary, err := processor.ProcessFile(input, pipeline.Outputs{
		GCode:     *output,
		Animation: *animation,
		Preview:   *preview,
	})
	if err != nil {
		log.Fatalf("processing failed: %v", err)
	}

	if *runsDB != "" {
		recordRun(*runsDB, summary)
	}

	for _, res := range summary.Results {
		if res.Success {
			fmt.Printf("wrote %s\n", res.OutputPath)
		} else {
			fmt.Fprintf(os.Stderr, "%s failed: %v\n", res.Generator, res.Err)
		}
	}
	if !summary.Success {
		os.Exit(1)
	}
}

// recordRun stores the summary in the run history database. Failures
// are logged, never fatal: history is observational.
func recordRun(path string, summary *pipeline.Summary) {
	store, err := runstore.Open(path)
	if err != nil {
		log.Printf("open runs db: %v", err)
		return
	}
	defer store.Close()

	run := runstore.Run{
		RunID:        summary.RunID,
		Input:        summary.Input,
		RawPoints:    summary.RawPoints,
		UniquePoints: summary.UniquePoints,
		Duplicates:   summary.Duplicates,
		MinX:         summary.Bounds.MinX,
		MinY:         summary.Bounds.MinY,
		MaxX:         summary.Bounds.MaxX,
		MaxY:         summary.Bounds.MaxY,
		Success:      summary.Success,
	}
	for _, res := range summary.Results {
		rr := runstore.RunResult{
			Generator:  res.Generator,
			Success:    res.Success,
			OutputPath: res.OutputPath,
		}
		if res.Err != nil {
			rr.Error = res.Err.Error()
		}
		run.Results = append(run.Results, rr)
	}
	if err := store.RecordRun(run); err != nil {
		log.Printf("record run: %v", err)
	}
}
