// Package points turns decoded vector drawings into flat, lazy streams
// of weld point records. Format iterators flatten the decoder's ordered
// paths in path order and point order; the deduplicating wrapper
// suppresses repeated welds at the same quantized location; the factory
// picks the right iterator for a file by extension.
package points

import (
	"fmt"
	"iter"

	"github.com/weldfab/dotweld/internal/weld"
)

// Iterator is the capability set every format iterator implements.
// Iterate decodes the file and lazily flattens its paths into records;
// Count is defined as an exhaustive drain of Iterate, never a separate
// code path; Supports is a pure check on the file suffix.
type Iterator interface {
	Iterate(file string) (iter.Seq[weld.Record], error)
	Count(file string) (int, error)
	Supports(file string) bool
	Extensions() []string
}

// UnsupportedFormatError reports a file whose extension matched no
// registered iterator.
type UnsupportedFormatError struct {
	File string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q for %s", e.Ext, e.File)
}

// DecodeError wraps a format decoder failure for one file.
type DecodeError struct {
	File string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.File, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// flatten lazily walks the decoded paths in order, emitting one record
// per point. Paths with blank ids get a synthesized path_<ordinal> id.
func flatten(paths []*weld.Path) iter.Seq[weld.Record] {
	return func(yield func(weld.Record) bool) {
		for ordinal, p := range paths {
			pathID := p.ID
			if pathID == "" {
				pathID = fmt.Sprintf("path_%d", ordinal)
			}
			for _, pt := range p.Points {
				rec := weld.Record{
					X:      pt.X,
					Y:      pt.Y,
					Type:   pt.Type,
					PathID: pathID,
					Height: pt.Height,
				}
				if !yield(rec) {
					return
				}
			}
		}
	}
}

// drain counts a sequence to exhaustion.
func drain(seq iter.Seq[weld.Record]) int {
	count := 0
	for range seq {
		count++
	}
	return count
}
