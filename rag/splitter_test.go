package rag

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/tsawler/pagerag/model"
)

func mustSplitter(t *testing.T, size, overlap int) *RecursiveSplitter {
	t.Helper()
	config := DefaultSplitterConfig()
	config.ChunkSize = size
	config.ChunkOverlap = overlap
	s, err := NewRecursiveSplitter(config)
	if err != nil {
		t.Fatalf("NewRecursiveSplitter() failed: %v", err)
	}
	return s
}

// reconstruct concatenates chunks with their overlap removed
func reconstruct(t *testing.T, text string, chunks []Chunk) string {
	t.Helper()
	var sb strings.Builder
	prevEnd := 0
	for i, c := range chunks {
		if c.Start > prevEnd {
			t.Fatalf("chunk %d starts at %d after previous end %d", i, c.Start, prevEnd)
		}
		if c.Text != text[c.Start:c.End] {
			t.Fatalf("chunk %d text does not match its span", i)
		}
		if c.End > prevEnd {
			sb.WriteString(text[prevEnd:c.End])
			prevEnd = c.End
		}
	}
	return sb.String()
}

func paragraphs(n int) string {
	sentence := "The committee reviewed the quarterly figures and approved the budget. "
	var paras []string
	for i := 0; i < n; i++ {
		paras = append(paras, strings.TrimSpace(strings.Repeat(sentence, 1+i%4)))
	}
	return strings.Join(paras, "\n\n")
}

func TestSplitterConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"default", 800, 100, false},
		{"no overlap", 100, 0, false},
		{"zero size", 0, 0, true},
		{"negative overlap", 100, -1, true},
		{"overlap too large", 100, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SplitterConfig{ChunkSize: tt.size, ChunkOverlap: tt.overlap}.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplit_Empty(t *testing.T) {
	if chunks := mustSplitter(t, 800, 100).Split(""); chunks != nil {
		t.Errorf("Split(\"\") = %v, want nil", chunks)
	}
}

func TestSplit_Short(t *testing.T) {
	chunks := mustSplitter(t, 800, 100).Split("short text")
	if len(chunks) != 1 || chunks[0].Text != "short text" {
		t.Errorf("Split() = %+v, want one chunk", chunks)
	}
}

func TestSplit_Reconstructs(t *testing.T) {
	text := paragraphs(20)
	s := mustSplitter(t, 800, 100)

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("Split() = %d chunks, want several", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c.Text); n > 800 {
			t.Errorf("chunk %d has %d characters, limit 800", i, n)
		}
	}
	if got := reconstruct(t, text, chunks); got != text {
		t.Errorf("reconstruction differs from input")
	}
}

func TestSplit_PrefersParagraphs(t *testing.T) {
	text := strings.Repeat("a", 60) + "\n\n" + strings.Repeat("b", 60)
	chunks := mustSplitter(t, 80, 10).Split(text)

	if len(chunks) != 2 {
		t.Fatalf("Split() = %d chunks, want 2", len(chunks))
	}
	if chunks[0].Text != strings.Repeat("a", 60)+"\n\n" {
		t.Errorf("first chunk = %q", chunks[0].Text)
	}
	if chunks[1].Text != strings.Repeat("b", 60) {
		t.Errorf("second chunk = %q", chunks[1].Text)
	}
}

func TestSplit_Overlap(t *testing.T) {
	words := make([]string, 50)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ")

	chunks := mustSplitter(t, 50, 15).Split(text)
	if len(chunks) < 2 {
		t.Fatalf("Split() = %d chunks, want several", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		shared := chunks[i-1].End - chunks[i].Start
		if shared <= 0 || shared > 15 {
			t.Errorf("chunks %d and %d share %d bytes, want 1..15", i-1, i, shared)
		}
	}
	if got := reconstruct(t, text, chunks); got != text {
		t.Errorf("reconstruction differs from input")
	}
}

func TestSplit_HardCut(t *testing.T) {
	text := strings.Repeat("x", 2000)
	chunks := mustSplitter(t, 800, 100).Split(text)

	for i, c := range chunks {
		if len(c.Text) > 800 {
			t.Errorf("chunk %d has %d characters, limit 800", i, len(c.Text))
		}
	}
	if got := reconstruct(t, text, chunks); got != text {
		t.Errorf("reconstruction differs from input")
	}
}

func TestSplit_CountsRunes(t *testing.T) {
	text := strings.Repeat("é", 90)
	chunks := mustSplitter(t, 100, 10).Split(text)

	if len(chunks) != 1 {
		t.Errorf("90 two-byte characters should fit one 100 character chunk, got %d", len(chunks))
	}
}

func TestDocuments_TwoByTwoTable(t *testing.T) {
	assembled := Assemble([]model.PageRecord{
		{Number: 1, Tables: []*model.TableItem{twoByTwo()}},
	})

	docs := Documents(assembled, "table.pdf")
	if len(docs) != 1 {
		t.Fatalf("Documents() = %d, want 1", len(docs))
	}

	content := docs[0].PageContent
	if !strings.Contains(content, "| A | B |") || !strings.Contains(content, "| C | D |") {
		t.Errorf("content missing markdown table:\n%s", content)
	}
	for _, line := range strings.Split(content, "\n") {
		if line == "A B" || line == "C D" {
			t.Errorf("duplicate free-text line %q", line)
		}
	}
}

func TestDocuments_Metadata(t *testing.T) {
	assembled := Assemble([]model.PageRecord{
		{Number: 1, Text: paragraphs(20)},
		{Number: 2},
		{Number: 3, Text: "a short page"},
	})

	docs := Documents(assembled, "report.pdf")
	if len(docs) < 3 {
		t.Fatalf("Documents() = %d, want page 1 split plus page 3", len(docs))
	}

	last := docs[len(docs)-1]
	if last.PageNumber() != 3 || last.Metadata.ChunkIndex != 0 || last.Metadata.IsPageSplit {
		t.Errorf("page 3 metadata = %+v", last.Metadata)
	}

	for i, d := range docs[:len(docs)-1] {
		if d.PageNumber() != 1 {
			t.Errorf("doc %d page = %d, want 1", i, d.PageNumber())
		}
		if d.Metadata.ChunkIndex != i || !d.Metadata.IsPageSplit {
			t.Errorf("doc %d metadata = %+v", i, d.Metadata)
		}
		if d.Metadata.Source != "report.pdf" {
			t.Errorf("doc %d source = %q", i, d.Metadata.Source)
		}
		if d.PageContent != strings.TrimSpace(d.PageContent) {
			t.Errorf("doc %d content not trimmed", i)
		}
	}
}

func TestDocuments_EmptyPagesSkipped(t *testing.T) {
	assembled := Assemble([]model.PageRecord{{Number: 1}, {Number: 2, Text: "   "}})
	if docs := Documents(assembled, "blank.pdf"); len(docs) != 0 {
		t.Errorf("Documents() = %d, want 0", len(docs))
	}
}
