package model

import "errors"

var (
	// ErrMalformedPage is returned when a page's content cannot be
	// interpreted geometrically. Callers fall back to plain text.
	ErrMalformedPage = errors.New("malformed page")

	// ErrDetectorUnavailable is returned when a table detection strategy
	// cannot run on a page.
	ErrDetectorUnavailable = errors.New("table detector unavailable")

	// ErrEmptyCorpus is returned when a whole document yields no Document.
	ErrEmptyCorpus = errors.New("no extractable content")
)
