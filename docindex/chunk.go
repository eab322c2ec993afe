package docindex

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Chunk is a contiguous slice of a document's text, the unit of retrieval.
type Chunk struct {
	ChunkID int    `json:"chunk_id"`
	Page    int    `json:"page"`
	Content string `json:"content"`
}

// Result is a chunk matched by Search.
type Result struct {
	Chunk Chunk
	Score float64
	// Rank is the 1-based position within this document's results.
	Rank int
}

func validateChunks(chunks []Chunk) error {
	seen := make(map[int]struct{}, len(chunks))
	for i, c := range chunks {
		if c.Page < 1 {
			return fmt.Errorf("chunk %d: page %d < 1", i, c.Page)
		}
		if _, ok := seen[c.ChunkID]; ok {
			return fmt.Errorf("chunk %d: duplicate chunk_id %d", i, c.ChunkID)
		}
		seen[c.ChunkID] = struct{}{}
	}
	return nil
}

func encodeChunks(chunks []Chunk) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(chunks); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeChunks(data []byte) ([]Chunk, error) {
	var chunks []Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}
