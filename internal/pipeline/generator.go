package pipeline

import "github.com/weldfab/dotweld/internal/weld"

// Generator is a Phase 2 output consumer. Every generator receives the
// identical deduplicated record stream in identical order; AddPoint has
// side effects only, and Finalize flushes the output and reports one
// result. Generators are independent: a failure in one never prevents
// the others from finalizing.
type Generator interface {
	Name() string
	AddPoint(weld.Record)
	Finalize() weld.Result
}
