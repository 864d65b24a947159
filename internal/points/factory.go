package points

import (
	"iter"
	"path/filepath"

	"github.com/weldfab/dotweld/internal/config"
	"github.com/weldfab/dotweld/internal/weld"
)

// NewIterator selects the iterator variant for a file. Variants are
// tried in a fixed order (SVG, then DXF) and the first whose Supports
// predicate matches wins, so the priority between two variants claiming
// the same extension is deterministic. The interpolation spacing is
// resolved once from cfg (nil cfg falls back to the default spacing).
func NewIterator(file string, cfg *config.Config) (Iterator, error) {
	spacing := cfg.GetDotSpacing()
	variants := []Iterator{
		NewSVGIterator(spacing),
		NewDXFIterator(spacing),
	}
	for _, v := range variants {
		if v.Supports(file) {
			return v, nil
		}
	}
	return nil, &UnsupportedFormatError{File: file, Ext: filepath.Ext(file)}
}

// IteratePoints constructs the right iterator for the file and returns
// its flattened record stream. Each call yields a fresh sequence.
func IteratePoints(file string, cfg *config.Config) (iter.Seq[weld.Record], error) {
	it, err := NewIterator(file, cfg)
	if err != nil {
		return nil, err
	}
	return it.Iterate(file)
}

// CountPoints exhaustively counts the records IteratePoints would
// yield.
func CountPoints(file string, cfg *config.Config) (int, error) {
	it, err := NewIterator(file, cfg)
	if err != nil {
		return 0, err
	}
	return it.Count(file)
}

// SupportedExtensions returns the deduplicated union of every variant's
// declared extensions.
func SupportedExtensions() []string {
	variants := []Iterator{
		NewSVGIterator(config.DefaultDotSpacing),
		NewDXFIterator(config.DefaultDotSpacing),
	}
	seen := map[string]bool{}
	var exts []string
	for _, v := range variants {
		for _, ext := range v.Extensions() {
			if !seen[ext] {
				seen[ext] = true
				exts = append(exts, ext)
			}
		}
	}
	return exts
}
