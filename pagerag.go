// Package pagerag converts PDF documents into page-aware retrieval
// Documents.
//
// Every page is read independently: tables are detected through an ordered
// chain of strategies, the remaining free text is rebuilt into lines and
// stripped of anything a table already carries, and each page is rendered
// as a marked block. The blocks are then split into overlapping chunks,
// each tagged with its source and page number.
//
// Basic usage:
//
//	docs, warnings, err := pagerag.Open("report.pdf").Documents(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pagerag.FormatWarnings(warnings))
//	}
//
// With options:
//
//	docs, _, err := pagerag.Open("report.pdf").
//	    PageRange(2, 10).
//	    ChunkSize(600).
//	    ChunkOverlap(120).
//	    Workers(4).
//	    Documents(ctx)
//
// The lower-level packages (tables, text, rag) can be used on their own.
package pagerag

import (
	"context"
	"path/filepath"

	"github.com/tsawler/pagerag/model"
	"github.com/tsawler/pagerag/reader"
)

// Open returns a Converter for the PDF at filename. The file is read when a
// terminal operation runs; its base name becomes the Documents' source.
//
// Example:
//
//	docs, warnings, err := pagerag.Open("document.pdf").Documents(ctx)
func Open(filename string) *Converter {
	return &Converter{
		filename: filename,
		source:   filepath.Base(filename),
		options:  DefaultOptions(),
	}
}

// FromBytes returns a Converter over an in-memory PDF. source labels the
// Documents it produces. The bytes are copied.
//
// Example:
//
//	docs, _, err := pagerag.FromBytes(data, "upload-42.pdf").Documents(ctx)
func FromBytes(data []byte, source string) *Converter {
	return &Converter{
		buf:     reader.NewBuffer(data),
		source:  source,
		options: DefaultOptions(),
	}
}

// Convert runs the whole pipeline over data with default options
func Convert(ctx context.Context, data []byte, source string) ([]model.Document, []Warning, error) {
	return FromBytes(data, source).Documents(ctx)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil.
//
// Example:
//
//	count := pagerag.Must(pagerag.Open("document.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustDocuments wraps a terminal operation, discarding warnings and
// panicking on error. It is intended for scripts and tests.
//
// Example:
//
//	docs := pagerag.MustDocuments(pagerag.Open("document.pdf").Documents(ctx))
func MustDocuments[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
