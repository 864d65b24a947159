package weld

// Record is the projection of one point emitted by the pipeline. It
// carries the owning path's id so generators can detect path changes
// without seeing the paths themselves.
type Record struct {
	X      float64
	Y      float64
	Type   Type
	PathID string
	Height *float64
}

// Result reports the outcome of one output generator after Finalize.
type Result struct {
	Generator  string
	Success    bool
	OutputPath string
	Err        error
}
