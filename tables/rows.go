package tables

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/pagerag/model"
)

// cell is a run of words on one row with no gap wider than the cell gap
type cell struct {
	Text string
	BBox model.Rect
}

// row is a set of cells sharing a vertical band, ordered left to right
type row struct {
	Cells []cell
	BBox  model.Rect
}

// groupRows bands words into rows and splits each row into cells.
// A word joins the current row when its vertical center lies inside the
// row's band.
func groupRows(words []model.Word, config Config) []row {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]model.Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Y0 != sorted[j].BBox.Y0 {
			return sorted[i].BBox.Y0 < sorted[j].BBox.Y0
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	var bands [][]model.Word
	var band model.Rect
	for _, w := range sorted {
		cy := w.BBox.Center().Y
		if len(bands) > 0 && cy >= band.Y0 && cy <= band.Y1 {
			bands[len(bands)-1] = append(bands[len(bands)-1], w)
			band = band.Union(w.BBox)
			continue
		}
		bands = append(bands, []model.Word{w})
		band = w.BBox
	}

	rows := make([]row, 0, len(bands))
	for _, b := range bands {
		rows = append(rows, splitCells(b, config))
	}
	return rows
}

func splitCells(words []model.Word, config Config) row {
	sort.SliceStable(words, func(i, j int) bool {
		return words[i].BBox.X0 < words[j].BBox.X0
	})

	var r row
	var parts []string
	var cur model.Rect

	flush := func() {
		if len(parts) == 0 {
			return
		}
		c := cell{Text: strings.Join(parts, " "), BBox: cur}
		r.Cells = append(r.Cells, c)
		if len(r.Cells) == 1 {
			r.BBox = c.BBox
		} else {
			r.BBox = r.BBox.Union(c.BBox)
		}
		parts = nil
	}

	for i, w := range words {
		if i > 0 && w.BBox.X0-cur.X1 > config.cellGap(w.FontSize) {
			flush()
		}
		if len(parts) == 0 {
			cur = w.BBox
		} else {
			cur = cur.Union(w.BBox)
		}
		parts = append(parts, w.Text)
	}
	flush()

	return r
}

// clusterRows splits rows wherever the vertical gap between consecutive
// rows exceeds gap
func clusterRows(rows []row, gap float64) [][]row {
	if len(rows) == 0 {
		return nil
	}

	var clusters [][]row
	current := []row{rows[0]}
	for i := 1; i < len(rows); i++ {
		prev := current[len(current)-1]
		if rows[i].BBox.Y0-prev.BBox.Y1 > gap {
			clusters = append(clusters, current)
			current = nil
		}
		current = append(current, rows[i])
	}
	return append(clusters, current)
}

// rowsBBox returns the union of the rows' extents
func rowsBBox(rows []row) model.Rect {
	bbox := rows[0].BBox
	for _, r := range rows[1:] {
		bbox = bbox.Union(r.BBox)
	}
	return bbox
}

// columnSpans projects cells onto the x axis and merges overlapping
// extents; the gaps between spans separate columns. Only rows with at
// least two cells contribute, so captions and spanning titles do not fuse
// columns together.
func columnSpans(rows []row, tolerance float64) [][2]float64 {
	var spans [][2]float64
	for _, r := range rows {
		if len(r.Cells) < 2 {
			continue
		}
		for _, c := range r.Cells {
			spans = append(spans, [2]float64{c.BBox.X0, c.BBox.X1})
		}
	}
	if len(spans) == 0 {
		return nil
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })

	merged := [][2]float64{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s[0] <= last[1]+tolerance {
			last[1] = math.Max(last[1], s[1])
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// spanIndex returns the column whose span contains x, or the nearest one
func spanIndex(spans [][2]float64, x float64) int {
	best, bestDist := 0, math.MaxFloat64
	for i, s := range spans {
		if x >= s[0] && x <= s[1] {
			return i
		}
		d := math.Min(math.Abs(x-s[0]), math.Abs(x-s[1]))
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// clusterValues clusters sorted values, merging each value within
// tolerance of the running cluster center
func clusterValues(values []float64, tolerance float64) []float64 {
	if len(values) == 0 {
		return nil
	}

	clustered := []float64{values[0]}
	counts := []int{1}

	for _, v := range values[1:] {
		last := len(clustered) - 1
		if v-clustered[last] > tolerance {
			clustered = append(clustered, v)
			counts = append(counts, 1)
			continue
		}
		counts[last]++
		clustered[last] += (v - clustered[last]) / float64(counts[last])
	}

	return clustered
}

// grid collects cell text into a rows × cols matrix
type grid [][]string

func newGrid(rows, cols int) grid {
	g := make(grid, rows)
	for i := range g {
		g[i] = make([]string, cols)
	}
	return g
}

func (g grid) add(r, c int, text string) {
	if g[r][c] == "" {
		g[r][c] = text
		return
	}
	g[r][c] += " " + text
}

// Utility functions

// mean computes the arithmetic mean of a slice of float64 values.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// coefficientOfVariation calculates CV (std dev / mean)
func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	m := mean(values)
	if m == 0 {
		return 0
	}

	v := 0.0
	for _, val := range values {
		diff := val - m
		v += diff * diff
	}
	v /= float64(len(values))

	return math.Sqrt(v) / m
}
