package tables

import (
	"errors"

	"github.com/tsawler/pagerag/model"
)

// word places a 12pt word with its top-left corner at (x, y). Each
// character is 6pt wide.
func word(text string, x, y float64) model.Word {
	return model.Word{
		Text:     text,
		BBox:     model.Rect{X0: x, Y0: y, X1: x + 6*float64(len(text)), Y1: y + 12},
		FontSize: 12,
	}
}

// sentence lays out words left to right with ordinary 6pt spacing
func sentence(s []string, x, y float64) []model.Word {
	var out []model.Word
	for _, w := range s {
		out = append(out, word(w, x, y))
		x += 6*float64(len(w)) + 6
	}
	return out
}

func page(words ...model.Word) *model.Page {
	p := model.NewPage(1, [4]float64{0, 0, 612, 792})
	p.Words = words
	return p
}

// gridWords lays out a table with one word per cell at the given column
// and row origins
func gridWords(cells [][]string, xs, ys []float64) []model.Word {
	var out []model.Word
	for i, row := range cells {
		for j, text := range row {
			out = append(out, word(text, xs[j], ys[i]))
		}
	}
	return out
}

type staticRulings struct {
	rulings []model.Ruling
	err     error
}

func (s staticRulings) Rulings(*model.Page) ([]model.Ruling, error) {
	return s.rulings, s.err
}

var errNoContent = errors.New("no content stream")

func hline(y, x0, x1 float64) model.Ruling {
	return model.Ruling{Start: model.Point{X: x0, Y: y}, End: model.Point{X: x1, Y: y}, Width: 1}
}

func vline(x, y0, y1 float64) model.Ruling {
	return model.Ruling{Start: model.Point{X: x, Y: y0}, End: model.Point{X: x, Y: y1}, Width: 1}
}

// ruledGrid draws every boundary of a grid
func ruledGrid(xs, ys []float64) []model.Ruling {
	var out []model.Ruling
	for _, y := range ys {
		out = append(out, hline(y, xs[0], xs[len(xs)-1]))
	}
	for _, x := range xs {
		out = append(out, vline(x, ys[0], ys[len(ys)-1]))
	}
	return out
}
