// Command pagerag converts PDF files into page-aware retrieval Documents.
//
// Usage:
//
//	pagerag convert report.pdf > report.jsonl
//	pagerag convert --text --pages 1-3 report.pdf
//	pagerag convert --config pagerag.yaml --cache ~/.cache/pagerag.db *.pdf
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
