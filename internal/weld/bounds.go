package weld

// Bounds is the axis-aligned bounding box of a point stream, folded one
// point at a time during Phase 1 analysis.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
	count      int
}

// Add folds one point into the bounds.
func (b *Bounds) Add(x, y float64) {
	if b.count == 0 {
		b.MinX, b.MaxX = x, x
		b.MinY, b.MaxY = y, y
	} else {
		if x < b.MinX {
			b.MinX = x
		}
		if x > b.MaxX {
			b.MaxX = x
		}
		if y < b.MinY {
			b.MinY = y
		}
		if y > b.MaxY {
			b.MaxY = y
		}
	}
	b.count++
}

// Valid reports whether at least one point has been folded in.
func (b *Bounds) Valid() bool { return b.count > 0 }

// PointCount returns the number of points folded into the bounds.
func (b *Bounds) PointCount() int { return b.count }

// Width returns MaxX - MinX, or 0 for empty bounds.
func (b *Bounds) Width() float64 {
	if b.count == 0 {
		return 0
	}
	return b.MaxX - b.MinX
}

// Height returns MaxY - MinY, or 0 for empty bounds.
func (b *Bounds) Height() float64 {
	if b.count == 0 {
		return 0
	}
	return b.MaxY - b.MinY
}

// CenterX returns the horizontal midpoint of the bounds.
func (b *Bounds) CenterX() float64 { return (b.MinX + b.MaxX) / 2 }

// CenterY returns the vertical midpoint of the bounds.
func (b *Bounds) CenterY() float64 { return (b.MinY + b.MaxY) / 2 }
