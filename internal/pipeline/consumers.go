package pipeline

import (
	"log"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/weldfab/dotweld/internal/weld"
)

// Analyzer is a lightweight Phase 1 consumer. Analyzers see the raw,
// non-deduplicated stream so extents and statistics reflect the true
// input.
type Analyzer interface {
	AddPoint(weld.Record)
	Finalize() error
}

// BoundsSource is implemented by analyzers that can report frame
// bounds after finalization.
type BoundsSource interface {
	Bounds() (weld.Bounds, bool)
}

// BoundsAccumulator folds every point into an axis-aligned bounding
// box.
type BoundsAccumulator struct {
	bounds weld.Bounds
}

// NewBoundsAccumulator returns an empty accumulator.
func NewBoundsAccumulator() *BoundsAccumulator {
	return &BoundsAccumulator{}
}

// AddPoint folds one record into the bounds.
func (b *BoundsAccumulator) AddPoint(rec weld.Record) {
	b.bounds.Add(rec.X, rec.Y)
}

// Finalize logs the computed extent.
func (b *BoundsAccumulator) Finalize() error {
	if b.bounds.Valid() {
		log.Printf("analysis: frame extent %.1f x %.1f mm over %d points",
			b.bounds.Width(), b.bounds.Height(), b.bounds.PointCount())
	}
	return nil
}

// Bounds reports the folded box; ok is false when no point arrived.
func (b *BoundsAccumulator) Bounds() (weld.Bounds, bool) {
	return b.bounds, b.bounds.Valid()
}

// SpacingStats measures the distance between consecutive points within
// each path, summarizing how closely the stream matches the configured
// dot spacing.
type SpacingStats struct {
	lastPathID string
	lastX      float64
	lastY      float64
	havePrev   bool
	gaps       []float64

	// Set by Finalize.
	Mean   float64
	StdDev float64
}

// NewSpacingStats returns an empty spacing collector.
func NewSpacingStats() *SpacingStats {
	return &SpacingStats{}
}

// AddPoint records the gap to the previous point of the same path.
func (s *SpacingStats) AddPoint(rec weld.Record) {
	if s.havePrev && rec.PathID == s.lastPathID {
		gap := math.Hypot(rec.X-s.lastX, rec.Y-s.lastY)
		if gap > 0 {
			s.gaps = append(s.gaps, gap)
		}
	}
	s.lastPathID = rec.PathID
	s.lastX, s.lastY = rec.X, rec.Y
	s.havePrev = true
}

// Finalize computes the gap statistics.
func (s *SpacingStats) Finalize() error {
	if len(s.gaps) == 0 {
		return nil
	}
	s.Mean = stat.Mean(s.gaps, nil)
	s.StdDev = stat.StdDev(s.gaps, nil)
	log.Printf("analysis: point spacing mean %.2fmm stddev %.2fmm over %d gaps",
		s.Mean, s.StdDev, len(s.gaps))
	return nil
}
