// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// WriteTempFile writes content to name under a fresh temp dir and
// returns the full path.
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// LineSVG returns a minimal SVG document with one horizontal black
// line of the given length starting at the origin.
func LineSVG(length float64) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="200" height="200">
  <line id="weld_1" x1="0" y1="0" x2="%s" y2="0" stroke="black"/>
</svg>`, strconv.FormatFloat(length, 'f', -1, 64))
}

// LineDXF returns a minimal ASCII DXF document with one LINE entity
// from (0,0) to (length,0) on the given layer, in millimeter units.
func LineDXF(length float64, layer string) string {
	return fmt.Sprintf(`0
SECTION
2
HEADER
9
$INSUNITS
70
4
0
ENDSEC
0
SECTION
2
ENTITIES
0
LINE
8
%s
10
0.0
20
0.0
11
%s
21
0.0
0
ENDSEC
0
EOF
`, layer, strconv.FormatFloat(length, 'f', -1, 64))
}
