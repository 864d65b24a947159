// Package dxf decodes ASCII DXF drawings into ordered weld paths. Only
// the entity subset used by welding drawings is read (LINE, CIRCLE,
// ARC, LWPOLYLINE, POINT); weld types are classified from layer names.
// The reader works directly on DXF group code / value pairs, so it has
// no dependency on a CAD library.
package dxf

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/weldfab/dotweld/internal/weld"
)

// Decoder parses DXF files into weld paths.
type Decoder struct {
	// DotSpacing is the target distance in mm between consecutive
	// interpolated points.
	DotSpacing float64
}

// NewDecoder returns a Decoder interpolating at the given spacing.
func NewDecoder(dotSpacing float64) *Decoder {
	return &Decoder{DotSpacing: dotSpacing}
}

// tag is one DXF group code / value pair.
type tag struct {
	code  int
	value string
}

// entity is a raw DXF entity: its type name, layer, and group values in
// file order (repeating codes preserved, as LWPOLYLINE vertices need).
type entity struct {
	kind  string
	layer string
	tags  []tag
}

// Decode parses the DXF file and returns its weld paths in entity
// order. Files must use millimeter units ($INSUNITS 4) or be unitless.
func (d *Decoder) Decode(file string) ([]*weld.Path, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open dxf %s: %w", file, err)
	}
	defer f.Close()

	tags, err := readTags(f)
	if err != nil {
		return nil, fmt.Errorf("read dxf %s: %w", file, err)
	}

	if err := validateUnits(tags); err != nil {
		return nil, fmt.Errorf("dxf %s: %w", file, err)
	}

	entities := collectEntities(tags)

	var paths []*weld.Path
	for i, ent := range entities {
		if isConstructionLayer(ent.layer) {
			continue
		}
		weldType := classifyLayer(ent.layer)
		pts, elemType, radius, err := d.entityPoints(ent, weldType)
		if err != nil {
			return nil, fmt.Errorf("dxf %s entity %s: %w", file, ent.kind, err)
		}
		if len(pts) == 0 {
			continue
		}

		id := fmt.Sprintf("%s_%s_%d", strings.ToLower(ent.kind), sanitizeLayer(ent.layer), i+1)
		p, err := weld.NewPath(id, weldType, pts)
		if err != nil {
			return nil, err
		}
		p.ElementType = elemType
		p.ElementRadius = radius
		if weldType == weld.Stop {
			p.PauseMessage = "Stop point on layer " + ent.layer
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func readTags(f *os.File) ([]tag, error) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var tags []tag
	for scanner.Scan() {
		codeLine := strings.TrimSpace(scanner.Text())
		if !scanner.Scan() {
			return nil, fmt.Errorf("group code %q has no value line", codeLine)
		}
		code, err := strconv.Atoi(codeLine)
		if err != nil {
			return nil, fmt.Errorf("bad group code %q: %w", codeLine, err)
		}
		tags = append(tags, tag{code: code, value: strings.TrimSpace(scanner.Text())})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("empty dxf document")
	}
	return tags, nil
}

// validateUnits checks $INSUNITS in the HEADER section. 4 is
// millimeters, 0 is unitless (assumed mm); anything else is rejected so
// a drawing in inches cannot silently scale the toolpath.
func validateUnits(tags []tag) error {
	for i, tg := range tags {
		if tg.code != 9 || tg.value != "$INSUNITS" {
			continue
		}
		for j := i + 1; j < len(tags) && j < i+4; j++ {
			if tags[j].code == 70 {
				units, err := strconv.Atoi(tags[j].value)
				if err != nil {
					return fmt.Errorf("bad $INSUNITS value %q", tags[j].value)
				}
				switch units {
				case 0, 4:
					return nil
				default:
					names := map[int]string{1: "inches", 2: "feet", 5: "centimeters", 6: "meters"}
					name := names[units]
					if name == "" {
						name = fmt.Sprintf("unknown (%d)", units)
					}
					return fmt.Errorf("drawing must use millimeter units, found %s", name)
				}
			}
		}
	}
	// No $INSUNITS header at all: treat as unitless.
	return nil
}

// collectEntities slices the ENTITIES section into raw entities.
func collectEntities(tags []tag) []entity {
	var (
		entities  []entity
		inSection bool
		current   *entity
	)
	flush := func() {
		if current != nil {
			entities = append(entities, *current)
			current = nil
		}
	}

	for i := 0; i < len(tags); i++ {
		tg := tags[i]
		if tg.code == 2 && tg.value == "ENTITIES" {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		if tg.code == 0 {
			if tg.value == "ENDSEC" {
				flush()
				break
			}
			flush()
			current = &entity{kind: tg.value, layer: "0"}
			continue
		}
		if current == nil {
			continue
		}
		if tg.code == 8 {
			current.layer = tg.value
			continue
		}
		current.tags = append(current.tags, tg)
	}
	flush()
	return entities
}

var constructionPatterns = []string{"construction", "const", "guide", "reference", "ref"}

func isConstructionLayer(layer string) bool {
	l := strings.ToLower(layer)
	for _, p := range constructionPatterns {
		if strings.Contains(l, p) {
			return true
		}
	}
	return false
}

var (
	frangibleKeywords = []string{"frangible", "light", "break", "seal", "weak"}
	stopKeywords      = []string{"stop", "pause"}
	pipetteKeywords   = []string{"pipette"}
)

// classifyLayer maps a layer name onto a weld type, defaulting to
// normal.
func classifyLayer(layer string) weld.Type {
	l := strings.ToLower(layer)
	contains := func(keys []string) bool {
		for _, k := range keys {
			if strings.Contains(l, k) {
				return true
			}
		}
		return false
	}
	switch {
	case contains(stopKeywords):
		return weld.Stop
	case contains(pipetteKeywords):
		return weld.Pipette
	case contains(frangibleKeywords):
		return weld.Frangible
	}
	return weld.Normal
}

func sanitizeLayer(layer string) string {
	s := strings.ToLower(strings.TrimSpace(layer))
	s = strings.ReplaceAll(s, " ", "_")
	if s == "" {
		s = "0"
	}
	return s
}

// entityPoints converts one raw entity into interpolated points.
func (d *Decoder) entityPoints(ent entity, t weld.Type) (pts []weld.Point, elemType string, radius float64, err error) {
	switch ent.kind {
	case "LINE":
		pts, err = d.linePoints(ent, t)
		return pts, "line", 0, err
	case "CIRCLE":
		pts, radius, err = d.circlePoints(ent, t)
		return pts, "circle", radius, err
	case "ARC":
		pts, radius, err = d.arcPoints(ent, t)
		return pts, "arc", radius, err
	case "LWPOLYLINE", "POLYLINE":
		pts, err = d.polylinePoints(ent, t)
		return pts, "polyline", 0, err
	case "POINT":
		x, okX := ent.float(10)
		y, okY := ent.float(20)
		if !okX || !okY {
			return nil, "point", 0, fmt.Errorf("POINT missing coordinates")
		}
		return []weld.Point{{X: x, Y: y, Type: t}}, "point", 0, nil
	}
	// Unsupported entity kinds are skipped, not fatal.
	return nil, strings.ToLower(ent.kind), 0, nil
}

// float returns the first value for a group code.
func (e entity) float(code int) (float64, bool) {
	for _, tg := range e.tags {
		if tg.code == code {
			v, err := strconv.ParseFloat(tg.value, 64)
			if err != nil {
				return 0, false
			}
			return v, true
		}
	}
	return 0, false
}

func (d *Decoder) linePoints(ent entity, t weld.Type) ([]weld.Point, error) {
	x1, ok1 := ent.float(10)
	y1, ok2 := ent.float(20)
	x2, ok3 := ent.float(11)
	y2, ok4 := ent.float(21)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, fmt.Errorf("LINE missing endpoint coordinates")
	}
	pts := []weld.Point{{X: x1, Y: y1, Type: t}, {X: x2, Y: y2, Type: t}}
	return weld.Interpolate(pts, d.DotSpacing), nil
}

func (d *Decoder) circlePoints(ent entity, t weld.Type) ([]weld.Point, float64, error) {
	cx, ok1 := ent.float(10)
	cy, ok2 := ent.float(20)
	r, ok3 := ent.float(40)
	if !ok1 || !ok2 || !ok3 {
		return nil, 0, fmt.Errorf("CIRCLE missing center or radius")
	}
	if r <= 0 {
		return nil, 0, fmt.Errorf("CIRCLE radius must be positive, got %v", r)
	}
	pts := d.sampleArc(cx, cy, r, 0, 360, t)
	// Close the loop.
	pts = append(pts, pts[0])
	return pts, r, nil
}

func (d *Decoder) arcPoints(ent entity, t weld.Type) ([]weld.Point, float64, error) {
	cx, ok1 := ent.float(10)
	cy, ok2 := ent.float(20)
	r, ok3 := ent.float(40)
	start, ok4 := ent.float(50)
	end, ok5 := ent.float(51)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return nil, 0, fmt.Errorf("ARC missing center, radius or angles")
	}
	if r <= 0 {
		return nil, 0, fmt.Errorf("ARC radius must be positive, got %v", r)
	}
	// DXF arcs run counterclockwise from start to end.
	if end < start {
		end += 360
	}
	return d.sampleArc(cx, cy, r, start, end, t), r, nil
}

// sampleArc tessellates a circular arc at the dot spacing, endpoints
// inclusive.
func (d *Decoder) sampleArc(cx, cy, r, startDeg, endDeg float64, t weld.Type) []weld.Point {
	arcLen := math.Abs(endDeg-startDeg) * math.Pi / 180 * r
	n := int(arcLen / d.DotSpacing)
	if n < 2 {
		n = 2
	}
	pts := make([]weld.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		angle := (startDeg + (endDeg-startDeg)*float64(i)/float64(n)) * math.Pi / 180
		pts = append(pts, weld.Point{
			X:    cx + r*math.Cos(angle),
			Y:    cy + r*math.Sin(angle),
			Type: t,
		})
	}
	// Full circles would duplicate the seam point.
	if math.Abs(endDeg-startDeg) >= 360 {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// polylinePoints reads LWPOLYLINE vertices (group 10/20 pairs with
// optional 42 bulge) into a polyline, expanding bulged segments into
// arcs.
func (d *Decoder) polylinePoints(ent entity, t weld.Type) ([]weld.Point, error) {
	type vertex struct {
		x, y, bulge float64
	}
	var (
		verts  []vertex
		cur    *vertex
		closed bool
	)
	for _, tg := range ent.tags {
		switch tg.code {
		case 10:
			if cur != nil {
				verts = append(verts, *cur)
			}
			v, err := strconv.ParseFloat(tg.value, 64)
			if err != nil {
				return nil, fmt.Errorf("bad vertex x %q: %w", tg.value, err)
			}
			cur = &vertex{x: v}
		case 20:
			if cur == nil {
				return nil, fmt.Errorf("vertex y before x")
			}
			v, err := strconv.ParseFloat(tg.value, 64)
			if err != nil {
				return nil, fmt.Errorf("bad vertex y %q: %w", tg.value, err)
			}
			cur.y = v
		case 42:
			if cur != nil {
				v, err := strconv.ParseFloat(tg.value, 64)
				if err != nil {
					return nil, fmt.Errorf("bad bulge %q: %w", tg.value, err)
				}
				cur.bulge = v
			}
		case 70:
			if flags, err := strconv.Atoi(tg.value); err == nil {
				closed = flags&1 != 0
			}
		}
	}
	if cur != nil {
		verts = append(verts, *cur)
	}
	if len(verts) < 2 {
		return nil, nil
	}
	if closed {
		verts = append(verts, verts[0])
	}

	var poly []weld.Point
	for i := 0; i < len(verts)-1; i++ {
		a, b := verts[i], verts[i+1]
		if a.bulge == 0 {
			poly = append(poly, weld.Point{X: a.x, Y: a.y, Type: t})
			continue
		}
		// A bulge is tan(theta/4) of the included arc angle; expand the
		// segment into arc samples (start inclusive, end exclusive, the
		// next vertex supplies it).
		poly = append(poly, bulgeArc(a.x, a.y, b.x, b.y, a.bulge, d.DotSpacing, t)...)
	}
	last := verts[len(verts)-1]
	poly = append(poly, weld.Point{X: last.x, Y: last.y, Type: t})

	return weld.Interpolate(poly, d.DotSpacing), nil
}

// bulgeArc converts one bulged polyline segment into arc samples from
// (x1,y1) up to but excluding (x2,y2).
func bulgeArc(x1, y1, x2, y2, bulge, spacing float64, t weld.Type) []weld.Point {
	theta := 4 * math.Atan(bulge)
	chord := math.Hypot(x2-x1, y2-y1)
	if chord == 0 || theta == 0 {
		return []weld.Point{{X: x1, Y: y1, Type: t}}
	}
	r := chord / (2 * math.Abs(math.Sin(theta/2)))

	// Center lies on the perpendicular bisector of the chord.
	mx, my := (x1+x2)/2, (y1+y2)/2
	dist := math.Sqrt(math.Max(0, r*r-chord*chord/4))
	if math.Abs(theta) > math.Pi {
		dist = -dist
	}
	nx, ny := -(y2-y1)/chord, (x2-x1)/chord
	if bulge < 0 {
		nx, ny = -nx, -ny
	}
	cx, cy := mx+nx*dist, my+ny*dist

	startAngle := math.Atan2(y1-cy, x1-cx)
	arcLen := math.Abs(theta) * r
	n := int(arcLen / spacing)
	if n < 2 {
		n = 2
	}
	pts := make([]weld.Point, 0, n)
	for i := 0; i < n; i++ {
		angle := startAngle + theta*float64(i)/float64(n)
		pts = append(pts, weld.Point{
			X:    cx + r*math.Cos(angle),
			Y:    cy + r*math.Sin(angle),
			Type: t,
		})
	}
	return pts
}
