package svg

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/weldfab/dotweld/internal/weld"
)

// parsePathData converts an SVG path "d" attribute into a polyline of
// vertices. Supported commands: M/L/H/V/C/Q/A/Z, absolute and relative.
// Curves are flattened by uniform parameter sampling at roughly one
// sample per mm of estimated curve length; the caller resamples the
// result at the configured dot spacing.
func parsePathData(d string, t weld.Type) ([]weld.Point, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return nil, nil
	}

	var (
		pts              []weld.Point
		curX, curY       float64
		startX, startY   float64
		haveCurrentPoint bool
	)

	emit := func(x, y float64) {
		pts = append(pts, weld.Point{X: x, Y: y, Type: t})
	}

	for _, cmd := range splitCommands(d) {
		op := cmd[0]
		coords, err := parseCoords(cmd[1:])
		if err != nil {
			return nil, fmt.Errorf("path command %q: %w", op, err)
		}
		rel := op >= 'a' && op <= 'z'

		switch op {
		case 'M', 'm':
			if len(coords) < 2 {
				return nil, fmt.Errorf("M command needs 2 coordinates, got %d", len(coords))
			}
			// First pair moves; subsequent pairs are implicit linetos.
			for i := 0; i+1 < len(coords); i += 2 {
				x, y := coords[i], coords[i+1]
				if rel && haveCurrentPoint {
					x, y = curX+x, curY+y
				}
				curX, curY = x, y
				if i == 0 {
					startX, startY = x, y
				}
				emit(curX, curY)
				haveCurrentPoint = true
			}
		case 'L', 'l':
			if len(coords) < 2 {
				return nil, fmt.Errorf("L command needs 2 coordinates, got %d", len(coords))
			}
			for i := 0; i+1 < len(coords); i += 2 {
				x, y := coords[i], coords[i+1]
				if rel {
					x, y = curX+x, curY+y
				}
				curX, curY = x, y
				emit(curX, curY)
			}
		case 'H', 'h':
			for _, x := range coords {
				if rel {
					x = curX + x
				}
				curX = x
				emit(curX, curY)
			}
		case 'V', 'v':
			for _, y := range coords {
				if rel {
					y = curY + y
				}
				curY = y
				emit(curX, curY)
			}
		case 'C', 'c':
			if len(coords)%6 != 0 || len(coords) == 0 {
				return nil, fmt.Errorf("C command needs multiples of 6 coordinates, got %d", len(coords))
			}
			for i := 0; i < len(coords); i += 6 {
				c1x, c1y := coords[i], coords[i+1]
				c2x, c2y := coords[i+2], coords[i+3]
				ex, ey := coords[i+4], coords[i+5]
				if rel {
					c1x, c1y = curX+c1x, curY+c1y
					c2x, c2y = curX+c2x, curY+c2y
					ex, ey = curX+ex, curY+ey
				}
				for _, p := range flattenCubic(curX, curY, c1x, c1y, c2x, c2y, ex, ey, t) {
					pts = append(pts, p)
				}
				curX, curY = ex, ey
			}
		case 'Q', 'q':
			if len(coords)%4 != 0 || len(coords) == 0 {
				return nil, fmt.Errorf("Q command needs multiples of 4 coordinates, got %d", len(coords))
			}
			for i := 0; i < len(coords); i += 4 {
				cx, cy := coords[i], coords[i+1]
				ex, ey := coords[i+2], coords[i+3]
				if rel {
					cx, cy = curX+cx, curY+cy
					ex, ey = curX+ex, curY+ey
				}
				for _, p := range flattenQuadratic(curX, curY, cx, cy, ex, ey, t) {
					pts = append(pts, p)
				}
				curX, curY = ex, ey
			}
		case 'A', 'a':
			if len(coords)%7 != 0 || len(coords) == 0 {
				return nil, fmt.Errorf("A command needs multiples of 7 coordinates, got %d", len(coords))
			}
			for i := 0; i < len(coords); i += 7 {
				rx, ry := coords[i], coords[i+1]
				rot := coords[i+2]
				largeArc := coords[i+3] != 0
				sweep := coords[i+4] != 0
				ex, ey := coords[i+5], coords[i+6]
				if rel {
					ex, ey = curX+ex, curY+ey
				}
				for _, p := range flattenArc(curX, curY, rx, ry, rot, largeArc, sweep, ex, ey, t) {
					pts = append(pts, p)
				}
				curX, curY = ex, ey
			}
		case 'Z', 'z':
			if haveCurrentPoint && (curX != startX || curY != startY) {
				curX, curY = startX, startY
				emit(curX, curY)
			}
		default:
			return nil, fmt.Errorf("unsupported path command %q", op)
		}
	}
	return pts, nil
}

var cmdRe = regexp.MustCompile(`[MmLlHhVvCcQqAaZz][^MmLlHhVvCcQqAaZz]*`)

func splitCommands(d string) []string {
	return cmdRe.FindAllString(d, -1)
}

var numRe = regexp.MustCompile(`-?\d*\.?\d+(?:[eE][-+]?\d+)?`)

func parseCoords(s string) ([]float64, error) {
	fields := numRe.FindAllString(s, -1)
	coords := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad coordinate %q: %w", f, err)
		}
		coords = append(coords, v)
	}
	return coords, nil
}

// flattenSamples picks a sample count from a rough curve length
// estimate: one sample per mm, never fewer than 8.
func flattenSamples(estLength float64) int {
	n := int(estLength)
	if n < 8 {
		n = 8
	}
	return n
}

// flattenCubic samples a cubic Bezier, excluding the start point (the
// caller already emitted it).
func flattenCubic(x0, y0, c1x, c1y, c2x, c2y, x1, y1 float64, t weld.Type) []weld.Point {
	est := math.Hypot(c1x-x0, c1y-y0) + math.Hypot(c2x-c1x, c2y-c1y) + math.Hypot(x1-c2x, y1-c2y)
	n := flattenSamples(est)
	pts := make([]weld.Point, 0, n)
	for i := 1; i <= n; i++ {
		u := float64(i) / float64(n)
		v := 1 - u
		x := v*v*v*x0 + 3*v*v*u*c1x + 3*v*u*u*c2x + u*u*u*x1
		y := v*v*v*y0 + 3*v*v*u*c1y + 3*v*u*u*c2y + u*u*u*y1
		pts = append(pts, weld.Point{X: x, Y: y, Type: t})
	}
	return pts
}

// flattenQuadratic samples a quadratic Bezier, excluding the start point.
func flattenQuadratic(x0, y0, cx, cy, x1, y1 float64, t weld.Type) []weld.Point {
	est := math.Hypot(cx-x0, cy-y0) + math.Hypot(x1-cx, y1-cy)
	n := flattenSamples(est)
	pts := make([]weld.Point, 0, n)
	for i := 1; i <= n; i++ {
		u := float64(i) / float64(n)
		v := 1 - u
		x := v*v*x0 + 2*v*u*cx + u*u*x1
		y := v*v*y0 + 2*v*u*cy + u*u*y1
		pts = append(pts, weld.Point{X: x, Y: y, Type: t})
	}
	return pts
}

// flattenArc samples an elliptical arc using the endpoint to center
// conversion from the SVG arc implementation notes (F.6.5), excluding
// the start point.
func flattenArc(x0, y0, rx, ry, rotDeg float64, largeArc, sweep bool, x1, y1 float64, t weld.Type) []weld.Point {
	if rx == 0 || ry == 0 {
		return []weld.Point{{X: x1, Y: y1, Type: t}}
	}
	rx, ry = math.Abs(rx), math.Abs(ry)

	phi := rotDeg * math.Pi / 180
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)

	// Step 1: transform to the ellipse-aligned frame.
	dx2 := (x0 - x1) / 2
	dy2 := (y0 - y1) / 2
	x1p := cosPhi*dx2 + sinPhi*dy2
	y1p := -sinPhi*dx2 + cosPhi*dy2

	// Correct out-of-range radii.
	lambda := x1p*x1p/(rx*rx) + y1p*y1p/(ry*ry)
	if lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	// Step 2: center in the transformed frame.
	num := rx*rx*ry*ry - rx*rx*y1p*y1p - ry*ry*x1p*x1p
	den := rx*rx*y1p*y1p + ry*ry*x1p*x1p
	var coef float64
	if den != 0 && num > 0 {
		coef = math.Sqrt(num / den)
	}
	if largeArc == sweep {
		coef = -coef
	}
	cxp := coef * rx * y1p / ry
	cyp := -coef * ry * x1p / rx

	// Step 3: back to the original frame.
	cx := cosPhi*cxp - sinPhi*cyp + (x0+x1)/2
	cy := sinPhi*cxp + cosPhi*cyp + (y0+y1)/2

	angle := func(ux, uy, vx, vy float64) float64 {
		dot := ux*vx + uy*vy
		l := math.Hypot(ux, uy) * math.Hypot(vx, vy)
		if l == 0 {
			return 0
		}
		a := math.Acos(math.Max(-1, math.Min(1, dot/l)))
		if ux*vy-uy*vx < 0 {
			a = -a
		}
		return a
	}

	theta1 := angle(1, 0, (x1p-cxp)/rx, (y1p-cyp)/ry)
	dtheta := angle((x1p-cxp)/rx, (y1p-cyp)/ry, (-x1p-cxp)/rx, (-y1p-cyp)/ry)
	if !sweep && dtheta > 0 {
		dtheta -= 2 * math.Pi
	} else if sweep && dtheta < 0 {
		dtheta += 2 * math.Pi
	}

	est := math.Abs(dtheta) * math.Max(rx, ry)
	n := flattenSamples(est)
	pts := make([]weld.Point, 0, n)
	for i := 1; i <= n; i++ {
		theta := theta1 + dtheta*float64(i)/float64(n)
		px := cx + rx*math.Cos(theta)*cosPhi - ry*math.Sin(theta)*sinPhi
		py := cy + rx*math.Cos(theta)*sinPhi + ry*math.Sin(theta)*cosPhi
		pts = append(pts, weld.Point{X: px, Y: py, Type: t})
	}
	return pts
}
