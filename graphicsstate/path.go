package graphicsstate

import (
	"math"

	"github.com/tsawler/pagerag/model"
)

// PathSegmentType defines the type of path segment
type PathSegmentType int

const (
	// PathMoveTo starts a new subpath
	PathMoveTo PathSegmentType = iota
	// PathLineTo draws a line to a point
	PathLineTo
	// PathCurveTo draws a cubic Bézier curve
	PathCurveTo
	// PathClosePath closes the current subpath
	PathClosePath
)

// PathSegment is a single segment of a path. Points are in device space:
// the CTM in effect at construction time has already been applied.
type PathSegment struct {
	Type  PathSegmentType
	Point model.Point // end point; unused for PathClosePath
}

// Path is a graphics path under construction
type Path struct {
	Segments []PathSegment

	hasCurrent bool
}

// Clear resets the path
func (p *Path) Clear() {
	p.Segments = p.Segments[:0]
	p.hasCurrent = false
}

// IsEmpty returns true if the path has no segments
func (p *Path) IsEmpty() bool {
	return len(p.Segments) == 0
}

func (p *Path) add(t PathSegmentType, pt model.Point) {
	p.Segments = append(p.Segments, PathSegment{Type: t, Point: pt})
	if t != PathClosePath {
		p.hasCurrent = true
	}
}

// PathExtractor turns painted paths into rulings. Curves are kept as their
// chord and only axis-aligned segments become rulings.
type PathExtractor struct {
	gs   *GraphicsState
	path Path

	rulings []model.Ruling

	// AngleTolerance is the maximum off-axis drift, in points, for a
	// segment to count as horizontal or vertical
	AngleTolerance float64

	// ThinRect is the thickness below which a rectangle is a single ruling
	// rather than four edges
	ThinRect float64
}

// NewPathExtractor creates a path extractor bound to gs
func NewPathExtractor(gs *GraphicsState) *PathExtractor {
	return &PathExtractor{
		gs:             gs,
		AngleTolerance: 0.5,
		ThinRect:       3.0,
	}
}

func (pe *PathExtractor) device(x, y float64) model.Point {
	return pe.gs.CTM.Transform(model.Point{X: x, Y: y})
}

// MoveTo handles the m operator
func (pe *PathExtractor) MoveTo(x, y float64) {
	pe.path.add(PathMoveTo, pe.device(x, y))
}

// LineTo handles the l operator
func (pe *PathExtractor) LineTo(x, y float64) {
	if !pe.path.hasCurrent {
		pe.MoveTo(x, y)
		return
	}
	pe.path.add(PathLineTo, pe.device(x, y))
}

// CurveTo handles the c, v and y operators with the curve's end point
func (pe *PathExtractor) CurveTo(x3, y3 float64) {
	if !pe.path.hasCurrent {
		pe.MoveTo(x3, y3)
		return
	}
	pe.path.add(PathCurveTo, pe.device(x3, y3))
}

// ClosePath handles the h operator
func (pe *PathExtractor) ClosePath() {
	if pe.path.hasCurrent {
		pe.path.add(PathClosePath, model.Point{})
	}
}

// Rectangle handles the re operator
func (pe *PathExtractor) Rectangle(x, y, width, height float64) {
	pe.MoveTo(x, y)
	pe.LineTo(x+width, y)
	pe.LineTo(x+width, y+height)
	pe.LineTo(x, y+height)
	pe.ClosePath()
}

// Paint handles every painting operator. The path is consumed either way.
func (pe *PathExtractor) Paint(stroke, fill bool) {
	if stroke || fill {
		pe.collect(stroke)
	}
	pe.path.Clear()
}

// EndPath handles the n operator
func (pe *PathExtractor) EndPath() {
	pe.path.Clear()
}

// Rulings returns the rulings collected so far, in device space
func (pe *PathExtractor) Rulings() []model.Ruling {
	return pe.rulings
}

func (pe *PathExtractor) collect(stroked bool) {
	for _, sub := range pe.subpaths() {
		if rect, ok := asRectangle(sub, pe.AngleTolerance); ok {
			pe.addRectangle(rect, stroked)
			continue
		}
		if !stroked {
			continue
		}
		for i := 1; i < len(sub); i++ {
			pe.addSegment(sub[i-1], sub[i], pe.gs.LineWidth)
		}
	}
}

// subpaths flattens the path into point lists, one per subpath, with
// closed subpaths ending on their start point
func (pe *PathExtractor) subpaths() [][]model.Point {
	var out [][]model.Point
	var cur []model.Point

	for _, seg := range pe.path.Segments {
		switch seg.Type {
		case PathMoveTo:
			if len(cur) > 1 {
				out = append(out, cur)
			}
			cur = []model.Point{seg.Point}
		case PathLineTo, PathCurveTo:
			cur = append(cur, seg.Point)
		case PathClosePath:
			if len(cur) > 1 && !pointsEqual(cur[0], cur[len(cur)-1], 0.1) {
				cur = append(cur, cur[0])
			}
		}
	}
	if len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

func (pe *PathExtractor) addRectangle(r model.Rect, stroked bool) {
	switch {
	case r.Height() < pe.ThinRect && r.Width() >= pe.ThinRect:
		y := (r.Y0 + r.Y1) / 2
		pe.addSegment(model.Point{X: r.X0, Y: y}, model.Point{X: r.X1, Y: y}, r.Height())
	case r.Width() < pe.ThinRect && r.Height() >= pe.ThinRect:
		x := (r.X0 + r.X1) / 2
		pe.addSegment(model.Point{X: x, Y: r.Y0}, model.Point{X: x, Y: r.Y1}, r.Width())
	case r.Width() >= pe.ThinRect && r.Height() >= pe.ThinRect:
		width := 0.0
		if stroked {
			width = pe.gs.LineWidth
		}
		corners := []model.Point{{X: r.X0, Y: r.Y0}, {X: r.X1, Y: r.Y0}, {X: r.X1, Y: r.Y1}, {X: r.X0, Y: r.Y1}}
		for i := range corners {
			pe.addSegment(corners[i], corners[(i+1)%4], width)
		}
	}
}

func (pe *PathExtractor) addSegment(a, b model.Point, width float64) {
	if pointsEqual(a, b, 0.1) {
		return
	}
	r := model.Ruling{Start: a, End: b, Width: width}
	if !r.IsHorizontal(pe.AngleTolerance) && !r.IsVertical(pe.AngleTolerance) {
		return
	}
	pe.rulings = append(pe.rulings, r)
}

// pointsEqual checks if two points are approximately equal
func pointsEqual(a, b model.Point, tolerance float64) bool {
	return math.Abs(a.X-b.X) < tolerance && math.Abs(a.Y-b.Y) < tolerance
}

// asRectangle reports whether a closed subpath of four corners is an
// axis-aligned rectangle, returning its bounds
func asRectangle(pts []model.Point, tolerance float64) (model.Rect, bool) {
	if len(pts) != 5 || !pointsEqual(pts[0], pts[4], 0.1) {
		return model.Rect{}, false
	}
	pts = pts[:4]

	for i := range pts {
		a, b := pts[i], pts[(i+1)%4]
		if math.Abs(a.X-b.X) > tolerance && math.Abs(a.Y-b.Y) > tolerance {
			return model.Rect{}, false
		}
	}
	return model.RectFromPoints(pts...), true
}
