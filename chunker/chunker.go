// Package chunker splits page text into overlapping chunks.
package chunker

import (
	"fmt"
	"strings"

	"github.com/viant/docvec/docindex"
)

// Defaults match the CLI configuration defaults.
const (
	DefaultSize    = 600
	DefaultOverlap = 100
)

// Page is the extracted text of one 1-based page.
type Page struct {
	Number  int
	Content string
}

// Splitter cuts text into windows of at most Size runes, preferring to end a
// window after a space, sentence punctuation or newline, and starting the
// next window Overlap runes before the previous end.
type Splitter struct {
	Size    int
	Overlap int
}

// Validate reports an unusable configuration.
func (s Splitter) Validate() error {
	if s.Size <= 0 {
		return fmt.Errorf("chunker: size must be positive, got %d", s.Size)
	}
	if s.Overlap < 0 || s.Overlap >= s.Size {
		return fmt.Errorf("chunker: overlap must be in [0, %d), got %d", s.Size, s.Overlap)
	}
	return nil
}

// Split chunks every page. Chunk ids are sequential across pages starting
// at 0; blank pages and blank windows produce nothing.
func (s Splitter) Split(pages []Page) ([]docindex.Chunk, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var out []docindex.Chunk
	for _, p := range pages {
		if p.Number < 1 {
			return nil, fmt.Errorf("chunker: invalid page number %d", p.Number)
		}
		for _, content := range s.splitText(strings.TrimSpace(p.Content)) {
			out = append(out, docindex.Chunk{ChunkID: len(out), Page: p.Number, Content: content})
		}
	}
	return out, nil
}

func (s Splitter) splitText(text string) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= s.Size {
		return []string{text}
	}
	var out []string
	start := 0
	for start < len(runes) {
		end := start + s.Size
		last := end >= len(runes)
		if last {
			end = len(runes)
		} else if cut := lastBreak(runes, start, end); cut > start {
			end = cut + 1
		}
		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			out = append(out, piece)
		}
		if last {
			break
		}
		start = max(start+1, end-s.Overlap)
	}
	return out
}

// lastBreak returns the index of the last break rune in runes[start:end],
// or -1.
func lastBreak(runes []rune, start, end int) int {
	for i := end - 1; i >= start; i-- {
		switch runes[i] {
		case ' ', '.', '!', '?', '\n':
			return i
		}
	}
	return -1
}
