// Package model defines the data that flows through the page extraction
// pipeline.
//
// # Geometry
//
// All coordinates are page-local with the origin at the top-left corner:
//
//   - [Rect] - rectangle with intersection, union and expansion helpers
//   - [IoU] - intersection over union of two rectangles
//   - [Contains] - margin-tolerant containment, used to mask words inside tables
//   - [Matrix] - 2D affine transformation matrix for content-stream geometry
//
// Backends that speak PDF user space convert through [Page.FromPDF] at
// their boundary so downstream code never branches on where a coordinate
// came from.
//
// # Page data
//
// A [Page] carries the [Word] values of one page. Table detection yields
// [TableItem] values whose RawData is a rectangular grid of trimmed cells.
// Per-page results are collected as [PageRecord] values and finally chunked
// into [Document] values for the indexing consumer.
package model
