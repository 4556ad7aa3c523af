// Package reader opens PDF documents and turns each page into positioned
// words.
//
// A [Buffer] holds the document bytes and hands out independent cursors, so
// one document can be read by several goroutines at once, each through its
// own [Document]:
//
//	buf, err := reader.ReadFile("report.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc, err := reader.Open(buf)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	page, err := doc.Page(1)
//
// # Coordinates
//
// Word boxes are page-local: the origin is the top-left corner of the
// MediaBox and Y grows downward. Glyphs are merged into words when they
// share a baseline and the gap between them is small relative to the font
// size; whitespace glyphs always end a word.
//
// # Malformed pages
//
// When a page's content stream cannot be interpreted, [Document.Page]
// returns an error wrapping [model.ErrMalformedPage]. [Document.PlainText]
// still recovers whatever text the page shows.
package reader
