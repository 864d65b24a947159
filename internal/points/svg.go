package points

import (
	"iter"
	"path/filepath"
	"strings"

	"github.com/weldfab/dotweld/internal/svg"
	"github.com/weldfab/dotweld/internal/weld"
)

// SVGIterator streams weld point records from SVG drawings.
type SVGIterator struct {
	spacing float64
}

// NewSVGIterator returns an iterator interpolating at the given dot
// spacing.
func NewSVGIterator(spacing float64) *SVGIterator {
	return &SVGIterator{spacing: spacing}
}

// Iterate decodes the SVG file and flattens its paths into a lazy
// record stream. A decode failure yields no records.
func (it *SVGIterator) Iterate(file string) (iter.Seq[weld.Record], error) {
	paths, err := svg.NewDecoder(it.spacing).Decode(file)
	if err != nil {
		return nil, &DecodeError{File: file, Err: err}
	}
	return flatten(paths), nil
}

// Count drains Iterate and returns the record count.
func (it *SVGIterator) Count(file string) (int, error) {
	seq, err := it.Iterate(file)
	if err != nil {
		return 0, err
	}
	return drain(seq), nil
}

// Supports reports whether the file has an SVG suffix.
func (it *SVGIterator) Supports(file string) bool {
	return strings.EqualFold(filepath.Ext(file), ".svg")
}

// Extensions lists the suffixes this iterator claims.
func (it *SVGIterator) Extensions() []string { return []string{".svg"} }
