package rag

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// SplitterConfig holds chunking options. Sizes are counted in characters
// (runes).
type SplitterConfig struct {
	// ChunkSize is the target maximum size of a chunk
	ChunkSize int

	// ChunkOverlap is the maximum size of the trailing content a chunk
	// shares with the next one
	ChunkOverlap int

	// Separators are tried in order; the empty string cuts between
	// characters and is always used as the last resort
	Separators []string
}

// DefaultSplitterConfig returns an 800 character target with 100
// characters of overlap, splitting at paragraphs, then lines, then spaces
func DefaultSplitterConfig() SplitterConfig {
	return SplitterConfig{
		ChunkSize:    800,
		ChunkOverlap: 100,
		Separators:   []string{"\n\n", "\n", " ", ""},
	}
}

// Validate checks the sizes
func (c SplitterConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return errors.New("chunk size must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap %d must be in [0, %d)", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// Chunk is a contiguous span [Start, End) of the split text, in bytes
type Chunk struct {
	Text  string
	Start int
	End   int
}

// RecursiveSplitter cuts text into bounded chunks, preferring the earliest
// separator that occurs in the text and recursing into pieces that are
// still too large with the remaining separators
type RecursiveSplitter struct {
	config SplitterConfig
}

// NewRecursiveSplitter creates a splitter, rejecting invalid sizes
func NewRecursiveSplitter(config SplitterConfig) (*RecursiveSplitter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(config.Separators) == 0 {
		config.Separators = DefaultSplitterConfig().Separators
	}
	return &RecursiveSplitter{config: config}, nil
}

// Config returns the splitter's configuration
func (s *RecursiveSplitter) Config() SplitterConfig {
	return s.config
}

// span is a byte range of the text being split with its size in runes
type span struct {
	start, end int
	size       int
}

// Split returns the chunks of text in order. Every chunk starts at or
// before the end of the previous one, so the chunks with their overlap
// removed concatenate back to text.
func (s *RecursiveSplitter) Split(text string) []Chunk {
	if text == "" {
		return nil
	}

	spans := s.split(text, 0, len(text), s.config.Separators)
	chunks := make([]Chunk, 0, len(spans))
	for _, sp := range spans {
		chunks = append(chunks, Chunk{Text: text[sp.start:sp.end], Start: sp.start, End: sp.end})
	}
	return chunks
}

func (s *RecursiveSplitter) split(text string, start, end int, separators []string) []span {
	sep, rest := "", []string(nil)
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text[start:end], candidate) {
			sep, rest = candidate, separators[i+1:]
			break
		}
	}

	var out, good []span
	for _, p := range pieces(text, start, end, sep) {
		if p.size <= s.config.ChunkSize {
			good = append(good, p)
			continue
		}

		out = append(out, s.merge(good)...)
		good = nil
		if len(rest) == 0 {
			rest = []string{""}
		}
		out = append(out, s.split(text, p.start, p.end, rest)...)
	}
	return append(out, s.merge(good)...)
}

// pieces cuts text[start:end] after every occurrence of sep, keeping the
// separator at the end of the preceding piece. An empty sep cuts between
// runes.
func pieces(text string, start, end int, sep string) []span {
	var out []span
	if sep == "" {
		for i := start; i < end; {
			_, n := utf8.DecodeRuneInString(text[i:end])
			out = append(out, span{start: i, end: i + n, size: 1})
			i += n
		}
		return out
	}

	for i := start; i < end; {
		j := strings.Index(text[i:end], sep)
		next := end
		if j >= 0 {
			next = i + j + len(sep)
		}
		out = append(out, span{start: i, end: next, size: utf8.RuneCountInString(text[i:next])})
		i = next
	}
	return out
}

// merge packs consecutive pieces greedily into chunks of at most
// ChunkSize, carrying trailing pieces of up to ChunkOverlap into the next
// chunk
func (s *RecursiveSplitter) merge(pieces []span) []span {
	var out, window []span
	total := 0

	for _, p := range pieces {
		if total+p.size > s.config.ChunkSize && len(window) > 0 {
			out = append(out, join(window))
			for total > s.config.ChunkOverlap || (total > 0 && total+p.size > s.config.ChunkSize) {
				total -= window[0].size
				window = window[1:]
			}
		}
		window = append(window, p)
		total += p.size
	}
	if len(window) > 0 {
		out = append(out, join(window))
	}
	return out
}

func join(window []span) span {
	size := 0
	for _, p := range window {
		size += p.size
	}
	return span{start: window[0].start, end: window[len(window)-1].end, size: size}
}
