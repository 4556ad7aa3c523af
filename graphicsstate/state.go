package graphicsstate

import (
	"fmt"

	"github.com/tsawler/pagerag/model"
)

// GraphicsState is the part of the PDF graphics state that affects where
// stroked and filled paths land on the page
type GraphicsState struct {
	// Current Transformation Matrix
	CTM model.Matrix

	LineWidth float64

	// Graphics state stack (for q/Q operators)
	stack []savedState
}

type savedState struct {
	ctm       model.Matrix
	lineWidth float64
}

// NewGraphicsState creates a graphics state with default values
func NewGraphicsState() *GraphicsState {
	return &GraphicsState{
		CTM:       model.Identity(),
		LineWidth: 1.0,
	}
}

// Save pushes the current graphics state onto the stack (q operator)
func (gs *GraphicsState) Save() {
	gs.stack = append(gs.stack, savedState{ctm: gs.CTM, lineWidth: gs.LineWidth})
}

// Restore pops a graphics state from the stack (Q operator)
func (gs *GraphicsState) Restore() error {
	if len(gs.stack) == 0 {
		return fmt.Errorf("graphics state stack underflow")
	}

	saved := gs.stack[len(gs.stack)-1]
	gs.stack = gs.stack[:len(gs.stack)-1]

	gs.CTM = saved.ctm
	gs.LineWidth = saved.lineWidth
	return nil
}

// Transform concatenates m onto the CTM (cm operator). m applies first,
// then the existing CTM.
func (gs *GraphicsState) Transform(m model.Matrix) {
	gs.CTM = m.Multiply(gs.CTM)
}

// SetLineWidth sets the line width (w operator)
func (gs *GraphicsState) SetLineWidth(width float64) {
	gs.LineWidth = width
}

// Depth returns the number of saved states
func (gs *GraphicsState) Depth() int {
	return len(gs.stack)
}
