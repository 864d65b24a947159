package points

import (
	"iter"
	"log"
	"math"

	"github.com/weldfab/dotweld/internal/weld"
)

// Deduplicator wraps an Iterator and suppresses records whose quantized
// coordinates and weld type were already seen in the current file, so
// overlapping geometry does not weld the same spot twice. Records with
// identical quantized coordinates but different weld types are never
// duplicates of each other: a stop marker coincident with a weld point
// must still execute.
//
// Coordinates are quantized as round(v/precision)*precision using
// math.Round, which rounds half away from zero. The seen-set belongs to
// one Iterate call at a time: it is cleared on every call, so one
// instance may be reused across files sequentially but never shared
// across concurrent invocations.
type Deduplicator struct {
	inner     Iterator
	precision float64
	seen      map[dedupKey]bool
	dropped   int
}

type dedupKey struct {
	x, y     float64
	weldType weld.Type
}

// NewDeduplicator wraps inner with duplicate suppression at the given
// quantization precision in mm.
func NewDeduplicator(inner Iterator, precision float64) *Deduplicator {
	return &Deduplicator{
		inner:     inner,
		precision: precision,
		seen:      make(map[dedupKey]bool),
	}
}

func (d *Deduplicator) quantize(v float64) float64 {
	return math.Round(v/d.precision) * d.precision
}

// Iterate streams the inner iterator's records with duplicates dropped.
// Survivors pass through unquantized and unchanged.
func (d *Deduplicator) Iterate(file string) (iter.Seq[weld.Record], error) {
	inner, err := d.inner.Iterate(file)
	if err != nil {
		return nil, err
	}

	// Fresh state per file.
	d.seen = make(map[dedupKey]bool)
	d.dropped = 0

	return func(yield func(weld.Record) bool) {
		total := 0
		for rec := range inner {
			total++
			key := dedupKey{
				x:        d.quantize(rec.X),
				y:        d.quantize(rec.Y),
				weldType: rec.Type,
			}
			if d.seen[key] {
				d.dropped++
				continue
			}
			d.seen[key] = true
			if !yield(rec) {
				return
			}
		}
		if d.dropped > 0 {
			log.Printf("dedup: dropped %d duplicate points out of %d in %s (%.1fmm precision)",
				d.dropped, total, file, d.precision)
		}
	}, nil
}

// Count drains the deduplicated stream; it reports unique records, not
// the underlying iterator's count.
func (d *Deduplicator) Count(file string) (int, error) {
	seq, err := d.Iterate(file)
	if err != nil {
		return 0, err
	}
	return drain(seq), nil
}

// Supports defers to the wrapped iterator.
func (d *Deduplicator) Supports(file string) bool { return d.inner.Supports(file) }

// Extensions defers to the wrapped iterator.
func (d *Deduplicator) Extensions() []string { return d.inner.Extensions() }

// Dropped reports how many duplicates the most recent iteration
// suppressed.
func (d *Deduplicator) Dropped() int { return d.dropped }
