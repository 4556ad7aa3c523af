// Package rag turns extracted pages into retrieval-ready Documents.
//
// # Assembly
//
// [Assemble] renders page records into one page-delimited string:
//
//	=== Page 1 ===
//
//	[Text]
//	Quarterly results were strong.
//
//	[Tables: 1]
//
//	--- Table 1 (primary) ---
//	| Region | Revenue |
//	| --- | --- |
//	| North | 1200 |
//
//	====================
//
// [SplitPages] recovers the per-page blocks from that string.
//
// # Chunking
//
// [RecursiveSplitter] splits each page block into chunks of about
// ChunkSize characters, cutting at paragraph breaks first, then line
// breaks, then spaces, and between characters only as a last resort.
// Consecutive chunks share up to ChunkOverlap characters.
//
//	s, err := rag.NewRecursiveSplitter(rag.DefaultSplitterConfig())
//	docs := s.Documents(assembled, "report.pdf")
//
// Each Document carries its source, page, chunk index and whether the page
// was split into more than one chunk.
//
// # Export
//
// [Exporter] writes Documents as JSON Lines, a JSON array, CSV or TSV.
package rag
