package points

import (
	"iter"
	"path/filepath"
	"strings"

	"github.com/weldfab/dotweld/internal/dxf"
	"github.com/weldfab/dotweld/internal/weld"
)

// DXFIterator streams weld point records from DXF drawings.
type DXFIterator struct {
	spacing float64
}

// NewDXFIterator returns an iterator interpolating at the given dot
// spacing.
func NewDXFIterator(spacing float64) *DXFIterator {
	return &DXFIterator{spacing: spacing}
}

// Iterate decodes the DXF file and flattens its paths into a lazy
// record stream. A decode failure yields no records.
func (it *DXFIterator) Iterate(file string) (iter.Seq[weld.Record], error) {
	paths, err := dxf.NewDecoder(it.spacing).Decode(file)
	if err != nil {
		return nil, &DecodeError{File: file, Err: err}
	}
	return flatten(paths), nil
}

// Count drains Iterate and returns the record count.
func (it *DXFIterator) Count(file string) (int, error) {
	seq, err := it.Iterate(file)
	if err != nil {
		return 0, err
	}
	return drain(seq), nil
}

// Supports reports whether the file has a DXF suffix.
func (it *DXFIterator) Supports(file string) bool {
	return strings.EqualFold(filepath.Ext(file), ".dxf")
}

// Extensions lists the suffixes this iterator claims.
func (it *DXFIterator) Extensions() []string { return []string{".dxf"} }
