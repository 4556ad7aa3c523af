// Package ocr recovers words from image-only pages.
//
// The Tesseract engine is wrapped via gosseract and compiled in only with
// the "ocr" build tag:
//
//	go build -tags ocr
//
// This requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
//
// Without the tag every [Client] method returns [ErrOCRNotEnabled].
//
// [Source] picks the largest image placed on a page, recognizes its words
// and scales their pixel boxes onto the page, on the assumption that a
// scanned page image covers the whole page.
package ocr
