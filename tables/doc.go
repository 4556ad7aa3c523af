// Package tables detects tables on a page with an ordered chain of
// strategies.
//
// # Strategies
//
// Every detector implements [Strategy] and tags its tables with a
// [model.Source]:
//
//   - [GeometricDetector] (primary): bands words into rows, splits rows into
//     cells at wide gaps, clusters rows into regions and scores each region's
//     grid for regularity, alignment, drawn lines and occupancy.
//   - [LatticeDetector] (fallback-lines): builds grids from connected groups
//     of drawn rulings and assigns words to cells by their centers.
//   - [StreamDetector] (fallback-stream): treats runs of consecutive
//     multi-cell rows as tables, with columns from clustered left edges.
//
// # Chain
//
// [Chain] tries strategies in priority order and stops at the first that
// produces a table with any non-blank cell. A strategy that returns an error
// or panics is recorded as a warning and the chain moves on; when all fail
// the page is treated as having no tables.
//
//	chain := tables.DefaultChain(tables.DefaultConfig(), rulingSource)
//	found := chain.Detect(sc, page)
//
// All coordinates are page-local with a top-left origin. Tables found by
// the stream detector carry the tight extent of their words as bbox, or no
// bbox at all when Config.InferStreamBBox is false.
package tables
