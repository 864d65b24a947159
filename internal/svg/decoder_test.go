package svg

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/weldfab/dotweld/internal/weld"
)

func writeSVG(t *testing.T, body string) string {
	t.Helper()
	doc := `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="200" height="200">` + body + `</svg>`
	path := filepath.Join(t.TempDir(), "drawing.svg")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write svg: %v", err)
	}
	return path
}

func TestDecodeLine(t *testing.T) {
	file := writeSVG(t, `<line id="weld_1" x1="0" y1="0" x2="40" y2="0" stroke="black"/>`)

	paths, err := NewDecoder(2.0).Decode(file)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}

	p := paths[0]
	if p.ID != "weld_1" {
		t.Errorf("path id = %q, want weld_1", p.ID)
	}
	if p.Type != weld.Normal {
		t.Errorf("path type = %q, want normal", p.Type)
	}
	if len(p.Points) < 18 {
		t.Errorf("got %d points, want >= 18 for a 40mm line at 2mm spacing", len(p.Points))
	}

	first, last := p.Points[0], p.Points[len(p.Points)-1]
	if math.Abs(first.X) > 0.1 || math.Abs(last.X-40) > 0.1 {
		t.Errorf("endpoints = %v, %v; want 0 and 40", first.X, last.X)
	}
	for i := 1; i < len(p.Points); i++ {
		gap := math.Hypot(p.Points[i].X-p.Points[i-1].X, p.Points[i].Y-p.Points[i-1].Y)
		if gap > 2.5 {
			t.Errorf("gap %d = %v, want <= 2.5", i, gap)
		}
	}
}

func TestColorClassification(t *testing.T) {
	tests := []struct {
		name  string
		attrs string
		want  weld.Type
	}{
		{"black stroke", `stroke="black"`, weld.Normal},
		{"hex black", `stroke="#000000"`, weld.Normal},
		{"blue stroke", `stroke="blue"`, weld.Frangible},
		{"hex blue in style", `style="stroke:#0000ff"`, weld.Frangible},
		{"red stroke", `stroke="red"`, weld.Stop},
		{"magenta stroke", `stroke="magenta"`, weld.Pipette},
		{"pink fill", `fill="pink"`, weld.Pipette},
		{"unknown color", `stroke="orange"`, weld.Normal},
		{"no color", ``, weld.Normal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := writeSVG(t, `<line x1="0" y1="0" x2="10" y2="0" `+tt.attrs+`/>`)
			paths, err := NewDecoder(2.0).Decode(file)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(paths) != 1 {
				t.Fatalf("got %d paths, want 1", len(paths))
			}
			if paths[0].Type != tt.want {
				t.Errorf("type = %q, want %q", paths[0].Type, tt.want)
			}
		})
	}
}

func TestStopPauseMessage(t *testing.T) {
	file := writeSVG(t, `<circle cx="5" cy="5" r="3" stroke="red" data-pause-message="Insert film"/>`)

	paths, err := NewDecoder(2.0).Decode(file)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if paths[0].Type != weld.Stop {
		t.Fatalf("type = %q, want stop", paths[0].Type)
	}
	if paths[0].PauseMessage != "Insert film" {
		t.Errorf("pause message = %q, want Insert film", paths[0].PauseMessage)
	}
}

func TestCircleClosesLoop(t *testing.T) {
	file := writeSVG(t, `<circle id="c1" cx="10" cy="10" r="5" stroke="black"/>`)

	paths, err := NewDecoder(2.0).Decode(file)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	p := paths[0]
	if p.ElementType != "circle" || p.ElementRadius != 5 {
		t.Errorf("element metadata = %q r=%v, want circle r=5", p.ElementType, p.ElementRadius)
	}
	first, last := p.Points[0], p.Points[len(p.Points)-1]
	if first.X != last.X || first.Y != last.Y {
		t.Errorf("circle not closed: first %v,%v last %v,%v", first.X, first.Y, last.X, last.Y)
	}
	// All samples lie on the circle.
	for i, pt := range p.Points {
		r := math.Hypot(pt.X-10, pt.Y-10)
		if math.Abs(r-5) > 1e-6 {
			t.Fatalf("point %d radius = %v, want 5", i, r)
		}
	}
}

func TestRectTracesPerimeter(t *testing.T) {
	file := writeSVG(t, `<rect x="0" y="0" width="10" height="6" stroke="black"/>`)

	paths, err := NewDecoder(2.0).Decode(file)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	b := paths[0].Bounds()
	if b.MinX != 0 || b.MinY != 0 || b.MaxX != 10 || b.MaxY != 6 {
		t.Errorf("rect bounds = %+v, want 0,0..10,6", b)
	}
}

func TestPathDataCommands(t *testing.T) {
	tests := []struct {
		name string
		d    string
	}{
		{"absolute moveto lineto", "M 0 0 L 10 0 L 10 10"},
		{"relative lineto", "M 0 0 l 10 0 l 0 10"},
		{"horizontal vertical", "M 0 0 H 10 V 10"},
		{"close", "M 0 0 L 10 0 L 10 10 Z"},
		{"cubic", "M 0 0 C 3 0 7 10 10 10"},
		{"quadratic", "M 0 0 Q 5 10 10 0"},
		{"arc", "M 0 0 A 5 5 0 0 1 10 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := writeSVG(t, `<path d="`+tt.d+`" stroke="black"/>`)
			paths, err := NewDecoder(1.0).Decode(file)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(paths) != 1 {
				t.Fatalf("got %d paths, want 1", len(paths))
			}
			if len(paths[0].Points) < 2 {
				t.Errorf("got %d points, want >= 2", len(paths[0].Points))
			}
		})
	}
}

func TestPathCloseReturnsToStart(t *testing.T) {
	file := writeSVG(t, `<path d="M 2 3 L 10 3 L 10 8 Z" stroke="black"/>`)

	paths, err := NewDecoder(1.0).Decode(file)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	pts := paths[0].Points
	last := pts[len(pts)-1]
	if math.Abs(last.X-2) > 0.1 || math.Abs(last.Y-3) > 0.1 {
		t.Errorf("closed path ends at %v,%v, want 2,3", last.X, last.Y)
	}
}

func TestDefsAreSkipped(t *testing.T) {
	file := writeSVG(t, `
		<defs><line x1="0" y1="0" x2="99" y2="99" stroke="black"/></defs>
		<line x1="0" y1="0" x2="10" y2="0" stroke="black"/>`)

	paths, err := NewDecoder(2.0).Decode(file)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1 (defs content must be skipped)", len(paths))
	}
	if b := paths[0].Bounds(); b.MaxX > 10 {
		t.Errorf("defs geometry leaked into output: bounds %+v", b)
	}
}

func TestWeldHeightAttribute(t *testing.T) {
	file := writeSVG(t, `<line x1="0" y1="0" x2="10" y2="0" stroke="black" data-weld-height="0.15"/>`)

	paths, err := NewDecoder(2.0).Decode(file)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	p := paths[0]
	if p.DefaultHeight == nil || *p.DefaultHeight != 0.15 {
		t.Fatalf("default height = %v, want 0.15", p.DefaultHeight)
	}
	for i, pt := range p.Points {
		if pt.Height == nil || *pt.Height != 0.15 {
			t.Fatalf("point %d height = %v, want 0.15", i, pt.Height)
		}
	}
}

func TestNumericIDOrdering(t *testing.T) {
	file := writeSVG(t, `
		<line id="weld_10" x1="0" y1="0" x2="5" y2="0" stroke="black"/>
		<line id="weld_2" x1="0" y1="5" x2="5" y2="5" stroke="black"/>
		<line id="weld_1" x1="0" y1="10" x2="5" y2="10" stroke="black"/>`)

	paths, err := NewDecoder(2.0).Decode(file)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := []string{paths[0].ID, paths[1].ID, paths[2].ID}
	want := []string{"weld_1", "weld_2", "weld_10"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestDuplicateIDsMadeUnique(t *testing.T) {
	file := writeSVG(t, `
		<line id="w" x1="0" y1="0" x2="5" y2="0" stroke="black"/>
		<line id="w" x1="0" y1="5" x2="5" y2="5" stroke="black"/>`)

	paths, err := NewDecoder(2.0).Decode(file)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if paths[0].ID == paths[1].ID {
		t.Errorf("duplicate ids not made unique: %q and %q", paths[0].ID, paths[1].ID)
	}
}

func TestDecodeMissingFile(t *testing.T) {
	if _, err := NewDecoder(2.0).Decode(filepath.Join(t.TempDir(), "absent.svg")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDecodeMalformedXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.svg")
	if err := os.WriteFile(path, []byte("<svg><line"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewDecoder(2.0).Decode(path); err == nil {
		t.Error("expected error for malformed XML")
	}
}
