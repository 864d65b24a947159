package weld

import "math"

// Interpolate resamples a polyline at the given dot spacing. Each
// segment contributes max(1, floor(len/spacing)) evenly spaced steps
// plus its endpoints, so a straight segment of length L yields a count
// within one of L/spacing+1 and both endpoints are always emitted.
// Shared vertices between consecutive segments appear twice; the
// deduplicating wrapper downstream collapses them.
func Interpolate(points []Point, spacing float64) []Point {
	if len(points) < 2 || spacing <= 0 {
		return points
	}

	interpolated := make([]Point, 0, len(points)*2)
	for i := 0; i < len(points)-1; i++ {
		start, end := points[i], points[i+1]
		dx := end.X - start.X
		dy := end.Y - start.Y
		dist := math.Hypot(dx, dy)
		if dist == 0 {
			continue
		}

		n := int(dist / spacing)
		if n < 1 {
			n = 1
		}
		for j := 0; j <= n; j++ {
			t := float64(j) / float64(n)
			interpolated = append(interpolated, Point{
				X:      start.X + t*dx,
				Y:      start.Y + t*dy,
				Type:   start.Type,
				Height: start.Height,
			})
		}
	}
	return interpolated
}
