package tables

import (
	"fmt"
	"strings"

	"github.com/tsawler/pagerag/model"
)

// LatticeDetector finds tables outlined by drawn rulings and fills each grid
// cell with the words whose centers fall inside it
type LatticeDetector struct {
	config  Config
	rulings RulingSource
	grids   *GridDetector
}

// NewLatticeDetector creates a lattice detector reading rulings from src
func NewLatticeDetector(config Config, src RulingSource) *LatticeDetector {
	gd := NewGridDetector()
	gd.AlignmentTolerance = config.LineTolerance
	gd.MinLineLength = config.MinLineLength

	return &LatticeDetector{config: config, rulings: src, grids: gd}
}

// Source returns model.SourceLattice
func (d *LatticeDetector) Source() model.Source {
	return model.SourceLattice
}

// Detect finds ruled tables on a page
func (d *LatticeDetector) Detect(page *model.Page) ([]*model.TableItem, error) {
	if d.rulings == nil {
		return nil, fmt.Errorf("no ruling source: %w", model.ErrDetectorUnavailable)
	}

	rulings, err := d.rulings.Rulings(page)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, model.ErrDetectorUnavailable)
	}

	var found []*model.TableItem
	for _, h := range d.grids.Detect(rulings) {
		if h.Rows()*h.Cols() < 2 {
			// a single framed box is not a table
			continue
		}

		bbox := h.BBox
		if t := model.NewTableItem(&bbox, d.fillGrid(h, page.Words), model.SourceLattice); t != nil {
			t.Confidence = 1
			found = append(found, t)
		}
	}
	return found, nil
}

// fillGrid assigns words to grid cells by their centers. Words within one
// cell are read line by line, left to right.
func (d *LatticeDetector) fillGrid(h *GridHypothesis, words []model.Word) [][]string {
	cells := make([][][]model.Word, h.Rows())
	for i := range cells {
		cells[i] = make([][]model.Word, h.Cols())
	}
	for _, w := range words {
		if r, c := h.CellAt(w.BBox.Center()); r >= 0 {
			cells[r][c] = append(cells[r][c], w)
		}
	}

	out := make([][]string, h.Rows())
	for i := range cells {
		out[i] = make([]string, h.Cols())
		for j, in := range cells[i] {
			var parts []string
			for _, r := range groupRows(in, d.config) {
				for _, c := range r.Cells {
					parts = append(parts, c.Text)
				}
			}
			out[i][j] = strings.Join(parts, " ")
		}
	}
	return out
}
