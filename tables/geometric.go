package tables

import (
	"math"

	"github.com/tsawler/pagerag/model"
)

// GeometricDetector implements table detection using geometric heuristics.
// It groups words into rows and cells, clusters rows into candidate regions
// and scores each region's grid for regularity, alignment, drawn lines and
// occupancy.
type GeometricDetector struct {
	config  Config
	rulings RulingSource
}

// NewGeometricDetector creates a geometric detector. rulings is optional;
// without it the line factor of the confidence score is zero.
func NewGeometricDetector(config Config, rulings RulingSource) *GeometricDetector {
	return &GeometricDetector{config: config, rulings: rulings}
}

// Source returns model.SourcePrimary
func (d *GeometricDetector) Source() model.Source {
	return model.SourcePrimary
}

// Detect finds tables on a page
func (d *GeometricDetector) Detect(page *model.Page) ([]*model.TableItem, error) {
	if len(page.Words) == 0 {
		return nil, nil
	}

	var lines []model.Ruling
	if d.rulings != nil {
		// drawn lines only raise confidence; a page without them is fine
		lines, _ = d.rulings.Rulings(page)
	}

	var found []*model.TableItem
	for _, cluster := range clusterRows(groupRows(page.Words, d.config), d.config.ClusterGap) {
		if t := d.detectInCluster(cluster, lines); t != nil {
			found = append(found, t)
		}
	}
	return found, nil
}

// layout is a candidate grid: one entry per row and column span
type layout struct {
	rows  []row
	spans [][2]float64
}

func (l layout) rowCount() int { return len(l.rows) }
func (l layout) colCount() int { return len(l.spans) }

// detectInCluster builds a grid from the cluster's rows, scores it and
// fills it with cell text
func (d *GeometricDetector) detectInCluster(rows []row, lines []model.Ruling) *model.TableItem {
	rows = trimCaptions(rows)
	if len(rows) < d.config.MinRows {
		return nil
	}

	l := layout{rows: rows, spans: columnSpans(rows, d.config.AlignmentTolerance)}
	if l.colCount() < d.config.MinCols {
		return nil
	}

	data := newGrid(l.rowCount(), l.colCount())
	structured := 0
	for i, r := range l.rows {
		used := make(map[int]bool)
		for _, c := range r.Cells {
			j := spanIndex(l.spans, c.BBox.Center().X)
			data.add(i, j, c.Text)
			used[j] = true
		}
		if len(used) >= d.config.MinCols {
			structured++
		}
	}

	// prose that happens to split into cells rarely keeps a column
	// structure on most of its lines
	if 2*structured < l.rowCount() {
		return nil
	}

	confidence := d.calculateConfidence(l, data, lines)
	if confidence < d.config.MinConfidence {
		return nil
	}

	bbox := rowsBBox(rows)
	t := model.NewTableItem(&bbox, data, model.SourcePrimary)
	if t != nil {
		t.Confidence = confidence
	}
	return t
}

// trimCaptions drops leading and trailing single-cell rows, which are
// usually titles or notes clustered with the table
func trimCaptions(rows []row) []row {
	for len(rows) > 0 && len(rows[0].Cells) < 2 {
		rows = rows[1:]
	}
	for len(rows) > 0 && len(rows[len(rows)-1].Cells) < 2 {
		rows = rows[:len(rows)-1]
	}
	return rows
}

// calculateConfidence computes a confidence score (0.0-1.0) for the grid.
// The score combines grid regularity (30%), alignment quality (30%), line
// presence (20%), and cell occupancy (20%).
func (d *GeometricDetector) calculateConfidence(l layout, data grid, lines []model.Ruling) float64 {
	score := 0.0
	score += d.calculateGridRegularity(l) * 0.3
	score += d.calculateAlignmentQuality(l) * 0.3
	score += d.calculateLineScore(l, lines) * 0.2
	score += calculateCellOccupancy(data) * 0.2
	return score
}

// calculateGridRegularity scores row pitch and column widths by their
// coefficient of variation; lower variance results in a higher score.
func (d *GeometricDetector) calculateGridRegularity(l layout) float64 {
	if l.rowCount() < 2 || l.colCount() < 2 {
		return 0
	}

	pitches := make([]float64, 0, l.rowCount()-1)
	for i := 1; i < l.rowCount(); i++ {
		pitches = append(pitches, l.rows[i].BBox.Y0-l.rows[i-1].BBox.Y0)
	}

	widths := make([]float64, 0, l.colCount())
	for _, s := range l.spans {
		widths = append(widths, s[1]-s[0])
	}

	rowScore := math.Max(0, 1-coefficientOfVariation(pitches))
	colScore := math.Max(0, 1-coefficientOfVariation(widths))

	return (rowScore + colScore) / 2
}

// calculateAlignmentQuality measures the fraction of cells whose left edge,
// right edge or center lines up with their column
func (d *GeometricDetector) calculateAlignmentQuality(l layout) float64 {
	total, aligned := 0, 0
	tol := d.config.AlignmentTolerance * 2

	for _, r := range l.rows {
		for _, c := range r.Cells {
			total++
			s := l.spans[spanIndex(l.spans, c.BBox.Center().X)]
			switch {
			case math.Abs(c.BBox.X0-s[0]) < tol,
				math.Abs(c.BBox.X1-s[1]) < tol,
				math.Abs(c.BBox.Center().X-(s[0]+s[1])/2) < tol:
				aligned++
			}
		}
	}

	if total == 0 {
		return 0
	}
	return float64(aligned) / float64(total)
}

// calculateLineScore measures the fraction of row and column separators
// that have a drawn ruling
func (d *GeometricDetector) calculateLineScore(l layout, lines []model.Ruling) float64 {
	if len(lines) == 0 || l.rowCount() < 2 || l.colCount() < 2 {
		return 0
	}

	tol := d.config.LineTolerance
	extent := rowsBBox(l.rows)

	hFound := 0
	for i := 1; i < l.rowCount(); i++ {
		lo, hi := l.rows[i-1].BBox.Y1-tol, l.rows[i].BBox.Y0+tol
		for _, r := range lines {
			if r.IsHorizontal(tol) && r.Start.Y >= lo && r.Start.Y <= hi &&
				math.Max(r.Start.X, r.End.X) > extent.X0 && math.Min(r.Start.X, r.End.X) < extent.X1 {
				hFound++
				break
			}
		}
	}

	vFound := 0
	for j := 1; j < l.colCount(); j++ {
		lo, hi := l.spans[j-1][1]-tol, l.spans[j][0]+tol
		for _, r := range lines {
			if r.IsVertical(tol) && r.Start.X >= lo && r.Start.X <= hi &&
				math.Max(r.Start.Y, r.End.Y) > extent.Y0 && math.Min(r.Start.Y, r.End.Y) < extent.Y1 {
				vFound++
				break
			}
		}
	}

	hScore := float64(hFound) / float64(l.rowCount()-1)
	vScore := float64(vFound) / float64(l.colCount()-1)
	return (hScore + vScore) / 2
}

// calculateCellOccupancy measures the fraction of grid cells holding text
func calculateCellOccupancy(data grid) float64 {
	total, occupied := 0, 0
	for _, r := range data {
		for _, c := range r {
			total++
			if c != "" {
				occupied++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(occupied) / float64(total)
}
