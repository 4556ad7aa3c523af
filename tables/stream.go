package tables

import (
	"sort"

	"github.com/tsawler/pagerag/model"
)

// StreamDetector finds tables from whitespace alone: runs of consecutive
// rows that each split into two or more cells. Columns come from clustering
// the cells' left edges across the run.
type StreamDetector struct {
	config Config
}

// NewStreamDetector creates a whitespace-based detector
func NewStreamDetector(config Config) *StreamDetector {
	return &StreamDetector{config: config}
}

// Source returns model.SourceStream
func (d *StreamDetector) Source() model.Source {
	return model.SourceStream
}

// Detect finds whitespace-aligned tables on a page
func (d *StreamDetector) Detect(page *model.Page) ([]*model.TableItem, error) {
	var found []*model.TableItem
	for _, run := range d.runs(groupRows(page.Words, d.config)) {
		if t := d.buildTable(run); t != nil {
			found = append(found, t)
		}
	}
	return found, nil
}

// runs returns maximal sequences of adjacent multi-cell rows at least
// MinRows long
func (d *StreamDetector) runs(rows []row) [][]row {
	var out [][]row
	var cur []row

	flush := func() {
		if len(cur) >= d.config.MinRows {
			out = append(out, cur)
		}
		cur = nil
	}

	for _, r := range rows {
		if len(r.Cells) < 2 {
			flush()
			continue
		}
		if len(cur) > 0 && r.BBox.Y0-cur[len(cur)-1].BBox.Y1 > d.config.ClusterGap {
			flush()
		}
		cur = append(cur, r)
	}
	flush()

	return out
}

func (d *StreamDetector) buildTable(rows []row) *model.TableItem {
	var lefts []float64
	for _, r := range rows {
		for _, c := range r.Cells {
			lefts = append(lefts, c.BBox.X0)
		}
	}
	sort.Float64s(lefts)

	columns := clusterValues(lefts, d.config.cellGap(0))
	if len(columns) < d.config.MinCols {
		return nil
	}

	data := newGrid(len(rows), len(columns))
	for i, r := range rows {
		for _, c := range r.Cells {
			data.add(i, nearestColumn(columns, c.BBox.X0), c.Text)
		}
	}

	var bbox *model.Rect
	if d.config.InferStreamBBox {
		extent := rowsBBox(rows)
		bbox = &extent
	}
	return model.NewTableItem(bbox, data, model.SourceStream)
}

// nearestColumn returns the index of the column start closest to x
func nearestColumn(columns []float64, x float64) int {
	i := sort.SearchFloat64s(columns, x)
	switch {
	case i == 0:
		return 0
	case i == len(columns):
		return len(columns) - 1
	case x-columns[i-1] <= columns[i]-x:
		return i - 1
	default:
		return i
	}
}
