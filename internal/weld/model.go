// Package weld defines the point and path model that flows through the
// conversion pipeline. Points and paths are produced by the format
// decoders and are read-only to everything downstream.
package weld

import (
	"fmt"
	"math"
	"strings"
)

// Type classifies how a point is welded.
type Type string

const (
	// Normal is a standard weld dot.
	Normal Type = "normal"
	// Frangible is a weakened weld intended to tear along the path.
	Frangible Type = "frangible"
	// Stop pauses the machine, typically for a material change.
	Stop Type = "stop"
	// Pipette marks a pipette insertion location.
	Pipette Type = "pipette"
)

// Types lists every valid weld type in declaration order.
var Types = []Type{Normal, Frangible, Stop, Pipette}

// ParseType validates s against the closed weld type set.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("invalid weld type %q (valid: normal, frangible, stop, pipette)", s)
	}
	return t, nil
}

// Valid reports whether t is one of the enumerated weld types.
func (t Type) Valid() bool {
	switch t {
	case Normal, Frangible, Stop, Pipette:
		return true
	}
	return false
}

// Point is a single spatial weld location in drawing units (mm).
// Height is the compression depth; nil means the owning path's default
// applies.
type Point struct {
	X      float64
	Y      float64
	Type   Type
	Height *float64
}

// NewPoint constructs a validated point.
func NewPoint(x, y float64, t Type) (Point, error) {
	if !t.Valid() {
		return Point{}, fmt.Errorf("invalid weld type %q", t)
	}
	return Point{X: x, Y: y, Type: t}, nil
}

// Path is an ordered, non-empty run of points sharing one nominal weld
// type and a unique identifier from the source drawing element.
type Path struct {
	ID            string
	Type          Type
	Points        []Point
	PauseMessage  string   // only meaningful when Type == Stop
	ElementType   string   // original element kind (circle, rect, ...)
	ElementRadius float64  // original radius for circles, 0 otherwise
	DefaultHeight *float64 // applied to points without an explicit height
}

// NewPath validates the path invariants and applies the default weld
// height to any point that lacks one.
func NewPath(id string, t Type, pts []Point) (*Path, error) {
	p := &Path{ID: id, Type: t, Points: pts}
	if err := p.validate(); err != nil {
		return nil, err
	}
	p.ApplyDefaultHeight()
	return p, nil
}

func (p *Path) validate() error {
	if len(p.Points) == 0 {
		return fmt.Errorf("path %q must contain at least one point", p.ID)
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("path must have a non-blank id")
	}
	if !p.Type.Valid() {
		return fmt.Errorf("path %q has invalid weld type %q", p.ID, p.Type)
	}
	return nil
}

// SetDefaultHeight records the path-level default height and applies it
// to existing points that have no explicit value.
func (p *Path) SetDefaultHeight(h float64) {
	p.DefaultHeight = &h
	p.ApplyDefaultHeight()
}

// ApplyDefaultHeight assigns the path default to each point without an
// explicit height. Explicit per-point values always win, and repeated
// application is idempotent.
func (p *Path) ApplyDefaultHeight() {
	if p.DefaultHeight == nil {
		return
	}
	for i := range p.Points {
		if p.Points[i].Height == nil {
			h := *p.DefaultHeight
			p.Points[i].Height = &h
		}
	}
}

// AddPoint appends a point, inheriting the path default height when the
// point carries none of its own.
func (p *Path) AddPoint(pt Point) {
	if pt.Height == nil && p.DefaultHeight != nil {
		h := *p.DefaultHeight
		pt.Height = &h
	}
	p.Points = append(p.Points, pt)
}

// PointCount returns the number of points in the path.
func (p *Path) PointCount() int { return len(p.Points) }

// TotalLength returns the summed point-to-point distance in mm.
func (p *Path) TotalLength() float64 {
	var total float64
	for i := 1; i < len(p.Points); i++ {
		dx := p.Points[i].X - p.Points[i-1].X
		dy := p.Points[i].Y - p.Points[i-1].Y
		total += math.Hypot(dx, dy)
	}
	return total
}

// Bounds returns the axis-aligned bounding box over the path's own
// points.
func (p *Path) Bounds() Bounds {
	var b Bounds
	for _, pt := range p.Points {
		b.Add(pt.X, pt.Y)
	}
	return b
}
