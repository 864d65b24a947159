// Package pipeline drives the two-phase conversion of one vector
// drawing: a lightweight analysis pass that folds the raw point stream
// into frame bounds, then a generation pass that re-iterates the file
// through the deduplicating stream and feeds every requested output
// generator. Re-iterating instead of buffering keeps memory flat: the
// bounds are needed before any generator can be constructed, so Phase 1
// discards each point after folding it.
package pipeline

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/weldfab/dotweld/internal/config"
	"github.com/weldfab/dotweld/internal/points"
	"github.com/weldfab/dotweld/internal/weld"
)

// State tracks the processor through one file's lifecycle.
type State string

const (
	StateNotStarted     State = "not_started"
	StatePhase1Running  State = "phase1_running"
	StatePhase1Complete State = "phase1_complete"
	StatePhase2Running  State = "phase2_running"
	StatePhase2Complete State = "phase2_complete"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// ErrNoBounds reports that Phase 1 saw no usable points, so no output
// can be generated.
var ErrNoBounds = errors.New("analysis produced no bounds")

// Outputs names the requested generation targets. GCode is required;
// Animation and Preview are built only when non-empty.
type Outputs struct {
	GCode     string
	Animation string
	Preview   string
}

// Summary is the structured result of one ProcessFile call.
type Summary struct {
	RunID        string
	Input        string
	State        State
	Bounds       weld.Bounds
	RawPoints    int
	UniquePoints int
	Duplicates   int
	Results      []weld.Result
	Success      bool
}

// Processor runs the two-phase conversion. It holds transient bounds
// state for one file at a time and is not safe for concurrent use.
type Processor struct {
	cfg   *config.Config
	state State
}

// NewProcessor returns a processor bound to a loaded configuration.
func NewProcessor(cfg *config.Config) *Processor {
	return &Processor{cfg: cfg, state: StateNotStarted}
}

// State returns the current lifecycle state.
func (p *Processor) State() State { return p.state }

// ProcessFile converts one drawing. Phase 1 failures (including an
// empty file) abort before any generator is constructed or any output
// file is touched. Phase 2 generator failures are collected per
// generator without aborting siblings; outputs already written stay on
// disk.
func (p *Processor) ProcessFile(input string, outputs Outputs) (*Summary, error) {
	if outputs.GCode == "" {
		return nil, fmt.Errorf("gcode output path is required")
	}

	summary := &Summary{
		RunID: uuid.New().String(),
		Input: input,
	}
	log.Printf("processing %s (run %s)", input, summary.RunID)

	// Phase 1: analysis over the raw stream.
	p.state = StatePhase1Running
	summary.State = p.state
	bounds, rawCount, err := p.runPhase1(input)
	if err != nil {
		p.state = StateFailed
		summary.State = p.state
		return summary, err
	}
	summary.Bounds = bounds
	summary.RawPoints = rawCount
	p.state = StatePhase1Complete
	log.Printf("phase 1 complete: frame %.1f x %.1f mm, %d points",
		bounds.Width(), bounds.Height(), rawCount)

	// Phase 2: generation over the deduplicated stream.
	p.state = StatePhase2Running
	summary.State = p.state
	results, unique, dropped, err := p.runPhase2(input, bounds, outputs)
	if err != nil {
		p.state = StateFailed
		summary.State = p.state
		return summary, err
	}
	summary.Results = results
	summary.UniquePoints = unique
	summary.Duplicates = dropped
	p.state = StatePhase2Complete

	summary.Success = true
	for _, res := range results {
		if !res.Success {
			summary.Success = false
			log.Printf("generator %s failed: %v", res.Generator, res.Err)
		} else if res.OutputPath != "" {
			log.Printf("generated %s", res.OutputPath)
		}
	}

	p.state = StateDone
	summary.State = p.state
	return summary, nil
}

// runPhase1 streams every raw point into the analysis consumers and
// extracts bounds from whichever consumer exposes them.
func (p *Processor) runPhase1(input string) (weld.Bounds, int, error) {
	analyzers := []Analyzer{
		NewBoundsAccumulator(),
		NewSpacingStats(),
	}

	seq, err := points.IteratePoints(input, p.cfg)
	if err != nil {
		return weld.Bounds{}, 0, err
	}

	count := 0
	for rec := range seq {
		for _, a := range analyzers {
			a.AddPoint(rec)
		}
		count++
	}

	var bounds weld.Bounds
	haveBounds := false
	for _, a := range analyzers {
		if err := a.Finalize(); err != nil {
			log.Printf("analysis consumer failed: %v", err)
			continue
		}
		if src, ok := a.(BoundsSource); ok && !haveBounds {
			if b, valid := src.Bounds(); valid {
				bounds = b
				haveBounds = true
			}
		}
	}
	if !haveBounds {
		return weld.Bounds{}, count, fmt.Errorf("%s: %w", input, ErrNoBounds)
	}
	return bounds, count, nil
}

// runPhase2 re-iterates the file through the deduplicating stream and
// feeds every requested generator, finalizing all of them regardless
// of individual failures.
func (p *Processor) runPhase2(input string, bounds weld.Bounds, outputs Outputs) ([]weld.Result, int, int, error) {
	generators := p.buildGenerators(bounds, outputs)

	base, err := points.NewIterator(input, p.cfg)
	if err != nil {
		return nil, 0, 0, err
	}
	dedup := points.NewDeduplicator(base, p.cfg.GetDedupPrecision())
	seq, err := dedup.Iterate(input)
	if err != nil {
		return nil, 0, 0, err
	}

	count := 0
	for rec := range seq {
		for _, g := range generators {
			g.AddPoint(rec)
		}
		count++
	}

	results := make([]weld.Result, 0, len(generators))
	for _, g := range generators {
		results = append(results, g.Finalize())
	}
	return results, count, dedup.Dropped(), nil
}

// buildGenerators constructs the toolpath writer plus any optional
// renderers whose targets were requested.
func (p *Processor) buildGenerators(bounds weld.Bounds, outputs Outputs) []Generator {
	generators := []Generator{
		NewGCodeGenerator(outputs.GCode, bounds, p.cfg),
	}
	if outputs.Animation != "" {
		generators = append(generators, NewAnimationGenerator(outputs.Animation, bounds, p.cfg))
	}
	if outputs.Preview != "" {
		generators = append(generators, NewPreviewGenerator(outputs.Preview, bounds))
	}
	return generators
}
