// Package svg decodes SVG drawings into ordered weld paths. Weld types
// are classified from element colors: black strokes are normal welds,
// blue are frangible, red are stop markers, magenta/pink are pipette
// locations. Geometry is interpolated at the configured dot spacing.
package svg

import (
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/weldfab/dotweld/internal/weld"
)

// Decoder parses SVG files into weld paths.
type Decoder struct {
	// DotSpacing is the target distance in mm between consecutive
	// interpolated points.
	DotSpacing float64
}

// NewDecoder returns a Decoder interpolating at the given spacing.
func NewDecoder(dotSpacing float64) *Decoder {
	return &Decoder{DotSpacing: dotSpacing}
}

// element is the subset of SVG element attributes we care about. Nested
// children are walked recursively; defs subtrees are skipped.
type element struct {
	XMLName  xml.Name
	ID       string     `xml:"id,attr"`
	D        string     `xml:"d,attr"`
	X1       string     `xml:"x1,attr"`
	Y1       string     `xml:"y1,attr"`
	X2       string     `xml:"x2,attr"`
	Y2       string     `xml:"y2,attr"`
	CX       string     `xml:"cx,attr"`
	CY       string     `xml:"cy,attr"`
	R        string     `xml:"r,attr"`
	X        string     `xml:"x,attr"`
	Y        string     `xml:"y,attr"`
	Width    string     `xml:"width,attr"`
	Height   string     `xml:"height,attr"`
	Stroke   string     `xml:"stroke,attr"`
	Fill     string     `xml:"fill,attr"`
	Style    string     `xml:"style,attr"`
	PauseMsg string     `xml:"data-pause-message,attr"`
	Message  string     `xml:"data-message,attr"`
	Title    string     `xml:"title,attr"`
	WeldH    string     `xml:"data-weld-height,attr"`
	Children []*element `xml:",any"`
}

// Decode parses the SVG file and returns its weld paths in drawing
// order (numeric id fragments first, unnumbered elements last).
func (d *Decoder) Decode(file string) ([]*weld.Path, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read svg %s: %w", file, err)
	}

	var root element
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse svg %s: %w", file, err)
	}

	var elems []*element
	collectDrawables(&root, &elems)

	// Stable order: numeric fragment of the id when present, source
	// order otherwise.
	sort.SliceStable(elems, func(i, j int) bool {
		return idSortKey(elems[i].ID) < idSortKey(elems[j].ID)
	})

	var paths []*weld.Path
	usedIDs := map[string]bool{}
	for _, el := range elems {
		weldType, pauseMsg := classify(el)
		pts, elemType, radius, err := d.elementPoints(el, weldType)
		if err != nil {
			return nil, fmt.Errorf("svg element %s: %w", el.XMLName.Local, err)
		}
		if len(pts) == 0 {
			continue
		}

		id := uniqueID(el.ID, elemType, len(paths)+1, usedIDs)
		p, err := weld.NewPath(id, weldType, pts)
		if err != nil {
			return nil, err
		}
		p.PauseMessage = pauseMsg
		p.ElementType = elemType
		p.ElementRadius = radius
		if h, ok := floatAttr(el.WeldH); ok {
			p.SetDefaultHeight(h)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// collectDrawables walks the element tree gathering path, line, circle
// and rect elements, skipping everything under <defs>.
func collectDrawables(el *element, out *[]*element) {
	if el.XMLName.Local == "defs" {
		return
	}
	switch el.XMLName.Local {
	case "path", "line", "circle", "rect":
		*out = append(*out, el)
	}
	for _, child := range el.Children {
		collectDrawables(child, out)
	}
}

var idNumRe = regexp.MustCompile(`(\d+)`)

func idSortKey(id string) float64 {
	if m := idNumRe.FindString(id); m != "" {
		n, err := strconv.Atoi(m)
		if err == nil {
			return float64(n)
		}
	}
	return math.Inf(1)
}

func uniqueID(base, elemType string, ordinal int, used map[string]bool) string {
	if base == "" {
		base = fmt.Sprintf("%s_%d", elemType, ordinal)
	}
	id := base
	for n := 1; used[id]; n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	used[id] = true
	return id
}

// Color alias sets for weld type classification.
var (
	stopColors      = []string{"red", "#ff0000", "#f00", "rgb(255,0,0)"}
	frangibleColors = []string{"blue", "#0000ff", "#00f", "rgb(0,0,255)"}
	pipetteColors   = []string{"magenta", "pink", "fuchsia", "#ff00ff", "#f0f", "rgb(255,0,255)"}
)

// classify determines the weld type from the element's stroke, fill and
// style attributes and extracts a pause message for stop and pipette
// elements. Unrecognised colors default to normal.
func classify(el *element) (weld.Type, string) {
	colorInfo := strings.ToLower(el.Stroke + " " + el.Fill + " " + el.Style)

	containsAny := func(aliases []string) bool {
		for _, a := range aliases {
			if strings.Contains(colorInfo, a) {
				return true
			}
		}
		return false
	}

	message := el.PauseMsg
	if message == "" {
		message = el.Message
	}
	if message == "" {
		message = el.Title
	}

	switch {
	case containsAny(stopColors):
		return weld.Stop, message
	case containsAny(pipetteColors):
		if message == "" {
			message = "Pipette filling required"
		}
		return weld.Pipette, message
	case containsAny(frangibleColors):
		return weld.Frangible, ""
	}
	return weld.Normal, ""
}

// elementPoints converts one drawable element into interpolated points.
func (d *Decoder) elementPoints(el *element, t weld.Type) (pts []weld.Point, elemType string, radius float64, err error) {
	switch el.XMLName.Local {
	case "line":
		pts, err = d.linePoints(el, t)
		return pts, "line", 0, err
	case "circle":
		pts, radius, err = d.circlePoints(el, t)
		return pts, "circle", radius, err
	case "rect":
		pts, err = d.rectPoints(el, t)
		return pts, "rect", 0, err
	case "path":
		pts, err = d.pathPoints(el, t)
		return pts, "path", 0, err
	}
	return nil, el.XMLName.Local, 0, nil
}

func (d *Decoder) linePoints(el *element, t weld.Type) ([]weld.Point, error) {
	x1, y1 := floatOr(el.X1, 0), floatOr(el.Y1, 0)
	x2, y2 := floatOr(el.X2, 0), floatOr(el.Y2, 0)
	pts := []weld.Point{{X: x1, Y: y1, Type: t}, {X: x2, Y: y2, Type: t}}
	return weld.Interpolate(pts, d.DotSpacing), nil
}

func (d *Decoder) circlePoints(el *element, t weld.Type) ([]weld.Point, float64, error) {
	cx, cy := floatOr(el.CX, 0), floatOr(el.CY, 0)
	r := floatOr(el.R, 1)
	if r <= 0 {
		return nil, 0, fmt.Errorf("circle radius must be positive, got %v", r)
	}

	// Sample the circumference directly at the dot spacing; minimum 8
	// points so small circles stay round.
	n := int(2 * math.Pi * r / d.DotSpacing)
	if n < 8 {
		n = 8
	}
	pts := make([]weld.Point, 0, n+1)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		pts = append(pts, weld.Point{
			X:    cx + r*math.Cos(angle),
			Y:    cy + r*math.Sin(angle),
			Type: t,
		})
	}
	// Close the loop.
	pts = append(pts, pts[0])
	return pts, r, nil
}

func (d *Decoder) rectPoints(el *element, t weld.Type) ([]weld.Point, error) {
	x, y := floatOr(el.X, 0), floatOr(el.Y, 0)
	w, h := floatOr(el.Width, 0), floatOr(el.Height, 0)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("rect must have positive width and height, got %vx%v", w, h)
	}
	corners := []weld.Point{
		{X: x, Y: y, Type: t},
		{X: x + w, Y: y, Type: t},
		{X: x + w, Y: y + h, Type: t},
		{X: x, Y: y + h, Type: t},
		{X: x, Y: y, Type: t},
	}
	return weld.Interpolate(corners, d.DotSpacing), nil
}

func (d *Decoder) pathPoints(el *element, t weld.Type) ([]weld.Point, error) {
	verts, err := parsePathData(el.D, t)
	if err != nil {
		return nil, err
	}
	return weld.Interpolate(verts, d.DotSpacing), nil
}

func floatOr(s string, def float64) float64 {
	if v, ok := floatAttr(s); ok {
		return v
	}
	return def
}

func floatAttr(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
