// Package graphicsstate interprets the path operators of PDF content
// streams and recovers the straight rulings drawn on a page.
//
// Only the graphics state that moves paths around is tracked: the CTM and
// line width, with the q/Q stack. Text, color and image operators are
// skipped.
//
//	ge := graphicsstate.NewGraphicsExtractor()
//	if err := ge.ExtractFromBytes(content); err != nil {
//	    return err
//	}
//	rulings := ge.Rulings() // PDF user space
//
// # Rulings
//
// Stroked axis-aligned segments become rulings directly. Rectangles thinner
// than a few points, whether stroked or filled, collapse to a single ruling
// through their middle; larger rectangles contribute their four edges.
// Diagonal segments are dropped.
//
// [Source] reads page content through a shared pdfcpu context and returns
// rulings in page-local coordinates, ready for lattice table detection.
package graphicsstate
