package pipeline

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/weldfab/dotweld/internal/config"
	"github.com/weldfab/dotweld/internal/points"
	"github.com/weldfab/dotweld/internal/testutil"
)

func TestProcessFileEndToEnd(t *testing.T) {
	input := testutil.WriteTempFile(t, "line.svg", testutil.LineSVG(40))
	out := filepath.Join(t.TempDir(), "welds.gcode")

	p := NewProcessor(config.Default())
	summary, err := p.ProcessFile(input, Outputs{GCode: out})
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}

	if !summary.Success {
		t.Fatalf("summary not successful: %+v", summary.Results)
	}
	if p.State() != StateDone || summary.State != StateDone {
		t.Errorf("state = %q / %q, want done", p.State(), summary.State)
	}
	if summary.RunID == "" {
		t.Error("missing run id")
	}
	if summary.RawPoints < 18 {
		t.Errorf("raw points = %d, want >= 18 for a 40mm line at 2mm spacing", summary.RawPoints)
	}
	if summary.UniquePoints == 0 || summary.UniquePoints > summary.RawPoints {
		t.Errorf("unique points = %d, raw = %d", summary.UniquePoints, summary.RawPoints)
	}
	if w := summary.Bounds.Width(); math.Abs(w-40) > 0.1 {
		t.Errorf("frame width = %v, want 40", w)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read gcode: %v", err)
	}
	assertWeldLine(t, string(data))
}

// assertWeldLine checks the welded X positions run from 0 to 40 with
// gaps no larger than spacing plus tolerance.
func assertWeldLine(t *testing.T, gcode string) {
	t.Helper()
	re := regexp.MustCompile(`G1 X([0-9.]+) Y[0-9.]+ F`)
	var xs []float64
	for _, m := range re.FindAllStringSubmatch(gcode, -1) {
		x, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			t.Fatal(err)
		}
		xs = append(xs, x)
	}
	if len(xs) < 18 {
		t.Fatalf("got %d weld moves, want >= 18", len(xs))
	}
	if math.Abs(xs[0]) > 0.1 || math.Abs(xs[len(xs)-1]-40) > 0.1 {
		t.Errorf("weld line spans %v..%v, want 0..40", xs[0], xs[len(xs)-1])
	}
	for i := 1; i < len(xs); i++ {
		if gap := xs[i] - xs[i-1]; gap > 2.5 {
			t.Errorf("gap %d = %v, want <= 2.5", i, gap)
		}
	}
}

func TestProcessFileDeduplicatesOverlap(t *testing.T) {
	doc := `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="200" height="200">
  <line id="weld_1" x1="0" y1="0" x2="40" y2="0" stroke="black"/>
  <line id="weld_2" x1="0" y1="0" x2="40" y2="0" stroke="black"/>
</svg>`
	input := testutil.WriteTempFile(t, "overlap.svg", doc)
	out := filepath.Join(t.TempDir(), "welds.gcode")

	summary, err := NewProcessor(config.Default()).ProcessFile(input, Outputs{GCode: out})
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if summary.UniquePoints*2 != summary.RawPoints {
		t.Errorf("unique = %d, raw = %d; the duplicate line must collapse",
			summary.UniquePoints, summary.RawPoints)
	}
	if summary.Duplicates != summary.UniquePoints {
		t.Errorf("duplicates = %d, want %d", summary.Duplicates, summary.UniquePoints)
	}
}

func TestProcessFileEmptyInput(t *testing.T) {
	doc := `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="200" height="200"></svg>`
	input := testutil.WriteTempFile(t, "empty.svg", doc)
	out := filepath.Join(t.TempDir(), "welds.gcode")

	p := NewProcessor(config.Default())
	summary, err := p.ProcessFile(input, Outputs{GCode: out})
	if !errors.Is(err, ErrNoBounds) {
		t.Fatalf("error = %v, want ErrNoBounds", err)
	}
	if p.State() != StateFailed || summary.State != StateFailed {
		t.Errorf("state = %q / %q, want failed", p.State(), summary.State)
	}
	// Phase 2 never ran, so no output file may exist.
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Errorf("output file exists after failed analysis (stat err %v)", statErr)
	}
}

func TestProcessFileUnsupportedFormat(t *testing.T) {
	input := testutil.WriteTempFile(t, "drawing.png", "not a drawing")
	out := filepath.Join(t.TempDir(), "welds.gcode")

	_, err := NewProcessor(config.Default()).ProcessFile(input, Outputs{GCode: out})
	var ufe *points.UnsupportedFormatError
	if !errors.As(err, &ufe) {
		t.Fatalf("error = %v, want UnsupportedFormatError", err)
	}
}

func TestProcessFileRequiresGCodePath(t *testing.T) {
	if _, err := NewProcessor(config.Default()).ProcessFile("x.svg", Outputs{}); err == nil {
		t.Fatal("expected error for missing gcode output path")
	}
}

func TestProcessFileOptionalOutputs(t *testing.T) {
	input := testutil.WriteTempFile(t, "line.svg", testutil.LineSVG(40))
	dir := t.TempDir()
	outputs := Outputs{
		GCode:     filepath.Join(dir, "welds.gcode"),
		Animation: filepath.Join(dir, "welds.html"),
		Preview:   filepath.Join(dir, "welds.png"),
	}

	summary, err := NewProcessor(config.Default()).ProcessFile(input, outputs)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if !summary.Success {
		t.Fatalf("summary not successful: %+v", summary.Results)
	}
	if len(summary.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(summary.Results))
	}
	names := map[string]bool{}
	for _, res := range summary.Results {
		names[res.Generator] = true
		if _, err := os.Stat(res.OutputPath); err != nil {
			t.Errorf("generator %s output %s missing: %v", res.Generator, res.OutputPath, err)
		}
	}
	for _, want := range []string{"gcode", "animation", "preview"} {
		if !names[want] {
			t.Errorf("no result for generator %s", want)
		}
	}
}

func TestProcessFileGCodeOnlyByDefault(t *testing.T) {
	input := testutil.WriteTempFile(t, "line.svg", testutil.LineSVG(10))
	out := filepath.Join(t.TempDir(), "welds.gcode")

	summary, err := NewProcessor(config.Default()).ProcessFile(input, Outputs{GCode: out})
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Results) != 1 || summary.Results[0].Generator != "gcode" {
		t.Errorf("results = %+v, want only gcode", summary.Results)
	}
}

func TestProcessFileDXFInput(t *testing.T) {
	input := testutil.WriteTempFile(t, "line.dxf", testutil.LineDXF(40, "welds"))
	out := filepath.Join(t.TempDir(), "welds.gcode")

	summary, err := NewProcessor(config.Default()).ProcessFile(input, Outputs{GCode: out})
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if !summary.Success {
		t.Fatalf("summary not successful: %+v", summary.Results)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "; starting path: line_welds_1") {
		t.Error("gcode does not reference the dxf entity path id")
	}
}
