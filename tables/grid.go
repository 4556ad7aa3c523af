package tables

import (
	"math"
	"sort"

	"github.com/tsawler/pagerag/model"
)

// GridDetector detects table grids from rulings in page-local coordinates
type GridDetector struct {
	// Tolerance for considering lines aligned or touching (in points)
	AlignmentTolerance float64

	// Minimum number of aligned lines to form a grid axis
	MinAlignedLines int

	// Minimum line length to consider (in points)
	MinLineLength float64
}

// NewGridDetector creates a new grid detector with default settings
func NewGridDetector() *GridDetector {
	return &GridDetector{
		AlignmentTolerance: 3.0,
		MinAlignedLines:    2,
		MinLineLength:      10.0,
	}
}

// GridHypothesis is a potential table grid detected from rulings
type GridHypothesis struct {
	BBox model.Rect

	// Row boundaries (Y, ascending: top to bottom)
	HorizontalLines []float64

	// Column boundaries (X, ascending: left to right)
	VerticalLines []float64
}

// Rows returns the number of grid rows
func (h *GridHypothesis) Rows() int { return len(h.HorizontalLines) - 1 }

// Cols returns the number of grid columns
func (h *GridHypothesis) Cols() int { return len(h.VerticalLines) - 1 }

// CellAt returns the row and column of the cell containing p, or -1, -1
// when p lies outside the grid
func (h *GridHypothesis) CellAt(p model.Point) (row, col int) {
	row, col = -1, -1
	for i := 0; i < h.Rows(); i++ {
		if p.Y >= h.HorizontalLines[i] && p.Y <= h.HorizontalLines[i+1] {
			row = i
			break
		}
	}
	for j := 0; j < h.Cols(); j++ {
		if p.X >= h.VerticalLines[j] && p.X <= h.VerticalLines[j+1] {
			col = j
			break
		}
	}
	if row < 0 || col < 0 {
		return -1, -1
	}
	return row, col
}

// AlignedLineGroup represents a group of lines aligned on an axis
type AlignedLineGroup struct {
	// Position on the alignment axis (X for vertical lines, Y for horizontal)
	Position float64

	Lines []model.Ruling

	// Span of the lines (min to max on the perpendicular axis)
	MinExtent float64
	MaxExtent float64
}

// Detect returns one grid hypothesis per group of connected rulings,
// ordered top to bottom
func (gd *GridDetector) Detect(rulings []model.Ruling) []*GridHypothesis {
	var hypotheses []*GridHypothesis
	for _, component := range gd.connectedComponents(gd.filterByLength(rulings)) {
		if h := gd.detectGrid(component); h != nil {
			hypotheses = append(hypotheses, h)
		}
	}

	sort.SliceStable(hypotheses, func(i, j int) bool {
		return hypotheses[i].BBox.Y0 < hypotheses[j].BBox.Y0
	})
	return hypotheses
}

// filterByLength keeps axis-aligned rulings at least MinLineLength long
func (gd *GridDetector) filterByLength(rulings []model.Ruling) []model.Ruling {
	result := make([]model.Ruling, 0, len(rulings))
	for _, r := range rulings {
		if r.Length() < gd.MinLineLength {
			continue
		}
		if r.IsHorizontal(gd.AlignmentTolerance) || r.IsVertical(gd.AlignmentTolerance) {
			result = append(result, r)
		}
	}
	return result
}

// connectedComponents partitions rulings into groups that touch within the
// alignment tolerance, so separate tables on one page form separate grids
func (gd *GridDetector) connectedComponents(rulings []model.Ruling) [][]model.Ruling {
	parent := make([]int, len(rulings))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	boxes := make([]model.Rect, len(rulings))
	for i, r := range rulings {
		boxes[i] = model.RectFromPoints(r.Start, r.End).Expand(gd.AlignmentTolerance)
	}

	for i := range rulings {
		for j := i + 1; j < len(rulings); j++ {
			if boxes[i].Intersects(boxes[j]) {
				parent[find(i)] = find(j)
			}
		}
	}

	groups := make(map[int][]model.Ruling)
	var order []int
	for i, r := range rulings {
		root := find(i)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], r)
	}

	out := make([][]model.Ruling, 0, len(order))
	for _, root := range order {
		out = append(out, groups[root])
	}
	return out
}

// detectGrid builds a hypothesis from one connected group of rulings
func (gd *GridDetector) detectGrid(rulings []model.Ruling) *GridHypothesis {
	var horizontals, verticals []model.Ruling
	for _, r := range rulings {
		if r.IsHorizontal(gd.AlignmentTolerance) {
			horizontals = append(horizontals, r)
		} else {
			verticals = append(verticals, r)
		}
	}

	hGroups := gd.groupAlignedLines(horizontals, true)
	vGroups := gd.groupAlignedLines(verticals, false)
	if len(hGroups) < gd.MinAlignedLines || len(vGroups) < gd.MinAlignedLines {
		return nil
	}

	// Grid bounds: left/right from vertical positions, top/bottom from
	// horizontal positions
	gridLeft, gridRight := positionRange(vGroups)
	gridTop, gridBottom := positionRange(hGroups)
	if gridRight-gridLeft <= gd.AlignmentTolerance || gridBottom-gridTop <= gd.AlignmentTolerance {
		return nil
	}

	relevantH := filterGroupsByExtent(hGroups, gridLeft, gridRight)
	relevantV := filterGroupsByExtent(vGroups, gridTop, gridBottom)
	if len(relevantH) < gd.MinAlignedLines || len(relevantV) < gd.MinAlignedLines {
		return nil
	}

	h := &GridHypothesis{
		HorizontalLines: make([]float64, len(relevantH)),
		VerticalLines:   make([]float64, len(relevantV)),
	}
	for i, g := range relevantH {
		h.HorizontalLines[i] = g.Position
	}
	for i, g := range relevantV {
		h.VerticalLines[i] = g.Position
	}
	h.BBox = model.Rect{
		X0: h.VerticalLines[0],
		Y0: h.HorizontalLines[0],
		X1: h.VerticalLines[len(h.VerticalLines)-1],
		Y1: h.HorizontalLines[len(h.HorizontalLines)-1],
	}
	return h
}

// groupAlignedLines groups lines that are aligned on the same axis. Groups
// are returned in ascending position.
func (gd *GridDetector) groupAlignedLines(lines []model.Ruling, isHorizontal bool) []AlignedLineGroup {
	if len(lines) == 0 {
		return nil
	}

	position := func(r model.Ruling) float64 {
		if isHorizontal {
			return (r.Start.Y + r.End.Y) / 2
		}
		return (r.Start.X + r.End.X) / 2
	}

	sorted := make([]model.Ruling, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool {
		return position(sorted[i]) < position(sorted[j])
	})

	var groups []AlignedLineGroup
	current := AlignedLineGroup{Position: position(sorted[0]), Lines: sorted[:1:1]}

	for _, r := range sorted[1:] {
		pos := position(r)
		if pos-current.Position <= gd.AlignmentTolerance {
			current.Lines = append(current.Lines, r)
			n := float64(len(current.Lines))
			current.Position = (current.Position*(n-1) + pos) / n
			continue
		}
		groups = append(groups, finalizeGroup(current, isHorizontal))
		current = AlignedLineGroup{Position: pos, Lines: []model.Ruling{r}}
	}

	return append(groups, finalizeGroup(current, isHorizontal))
}

// finalizeGroup calculates the perpendicular extent of a group
func finalizeGroup(group AlignedLineGroup, isHorizontal bool) AlignedLineGroup {
	group.MinExtent = math.MaxFloat64
	group.MaxExtent = -math.MaxFloat64

	for _, line := range group.Lines {
		a, b := line.Start.Y, line.End.Y
		if isHorizontal {
			a, b = line.Start.X, line.End.X
		}
		group.MinExtent = math.Min(group.MinExtent, math.Min(a, b))
		group.MaxExtent = math.Max(group.MaxExtent, math.Max(a, b))
	}
	return group
}

func positionRange(groups []AlignedLineGroup) (lo, hi float64) {
	lo, hi = groups[0].Position, groups[0].Position
	for _, g := range groups[1:] {
		lo = math.Min(lo, g.Position)
		hi = math.Max(hi, g.Position)
	}
	return lo, hi
}

// filterGroupsByExtent keeps groups whose lines cover at least half of the
// grid's perpendicular extent
func filterGroupsByExtent(groups []AlignedLineGroup, minExtent, maxExtent float64) []AlignedLineGroup {
	var result []AlignedLineGroup
	required := (maxExtent - minExtent) * 0.5

	for _, g := range groups {
		if g.MaxExtent-g.MinExtent < required {
			continue
		}
		if math.Min(g.MaxExtent, maxExtent) > math.Max(g.MinExtent, minExtent) {
			result = append(result, g)
		}
	}
	return result
}
