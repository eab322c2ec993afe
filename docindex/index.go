package docindex

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/viant/docvec/artifact"
	"github.com/viant/docvec/index/flat"
	"github.com/viant/docvec/vector"
)

// Index is the vector index of one document. It is read-only once built, so
// concurrent searches are safe.
type Index struct {
	docID  string
	idx    *flat.Index
	chunks []Chunk
}

// Stats summarises an index. Available is false when the document has no
// loadable index.
type Stats struct {
	DocID       string `json:"doc_id"`
	VectorCount int    `json:"vector_count"`
	Dimension   int    `json:"dimension"`
	ChunkCount  int    `json:"chunk_count"`
	Available   bool   `json:"available"`
}

// Unavailable returns the statistics of a document without a usable index.
func Unavailable(docID string) Stats { return Stats{DocID: docID} }

// New builds an in-memory index. Every embedding is re-normalised to unit
// length regardless of what the embedding provider promises.
func New(docID string, embeddings [][]float32, chunks []Chunk) (*Index, error) {
	if docID == "" {
		return nil, fmt.Errorf("docindex: %w: doc id is empty", ErrInvalidInput)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("docindex: %w: empty embedding batch", ErrInvalidInput)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("docindex: %w: embeddings and chunks length mismatch: %d != %d", ErrInvalidInput, len(embeddings), len(chunks))
	}
	dim := len(embeddings[0])
	if dim == 0 {
		return nil, fmt.Errorf("docindex: %w: zero-dimension embedding", ErrInvalidInput)
	}
	normalized := make([][]float32, len(embeddings))
	for i, e := range embeddings {
		if len(e) != dim {
			return nil, fmt.Errorf("docindex: %w: embedding %d has dim %d, want %d", ErrInvalidInput, i, len(e), dim)
		}
		v, err := vector.Normalize(e)
		if err != nil {
			return nil, fmt.Errorf("docindex: %w: embedding %d: %v", ErrInvalidInput, i, err)
		}
		normalized[i] = v
	}
	if err := validateChunks(chunks); err != nil {
		return nil, fmt.Errorf("docindex: %w: %v", ErrInvalidInput, err)
	}
	fi := &flat.Index{}
	if err := fi.Build(normalized); err != nil {
		return nil, fmt.Errorf("docindex: %w: %v", ErrInvalidInput, err)
	}
	return &Index{docID: docID, idx: fi, chunks: append([]Chunk(nil), chunks...)}, nil
}

// Build creates the index of docID and persists both artifacts, replacing
// any previous ones. Nothing is written when the input is invalid.
func Build(ctx context.Context, store artifact.Store, docID string, embeddings [][]float32, chunks []Chunk) (*Index, error) {
	x, err := New(docID, embeddings, chunks)
	if err != nil {
		return nil, err
	}
	if err := x.Persist(ctx, store); err != nil {
		return nil, err
	}
	return x, nil
}

// Persist writes the index and metadata artifacts.
func (x *Index) Persist(ctx context.Context, store artifact.Store) error {
	blob, err := x.idx.MarshalBinary()
	if err != nil {
		return fmt.Errorf("docindex: encode index %s: %w", x.docID, err)
	}
	meta, err := encodeChunks(x.chunks)
	if err != nil {
		return fmt.Errorf("docindex: encode metadata %s: %w", x.docID, err)
	}
	if err := store.Save(ctx, x.docID, blob, meta); err != nil {
		return fmt.Errorf("docindex: persist %s: %w", x.docID, err)
	}
	return nil
}

// Load reads the index of docID. A missing artifact yields (nil, false, nil).
// Artifacts that exist but cannot be read or disagree with each other yield
// ErrCorruptArtifact.
func Load(ctx context.Context, store artifact.Store, docID string) (*Index, bool, error) {
	blob, meta, err := store.Load(ctx, docID)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			return nil, false, nil
		}
		if ctx.Err() != nil {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("docindex: load %s: %w: %w", docID, ErrCorruptArtifact, err)
	}
	fi := &flat.Index{}
	if err := fi.UnmarshalBinary(blob); err != nil {
		return nil, false, fmt.Errorf("docindex: load %s: %w: %w", docID, ErrCorruptArtifact, err)
	}
	chunks, err := decodeChunks(meta)
	if err != nil {
		return nil, false, fmt.Errorf("docindex: load %s: %w: metadata: %v", docID, ErrCorruptArtifact, err)
	}
	if fi.Len() == 0 {
		return nil, false, fmt.Errorf("docindex: load %s: %w: empty index", docID, ErrCorruptArtifact)
	}
	if fi.Len() != len(chunks) {
		return nil, false, fmt.Errorf("docindex: load %s: %w: %d vectors vs %d chunks", docID, ErrCorruptArtifact, fi.Len(), len(chunks))
	}
	if err := validateChunks(chunks); err != nil {
		return nil, false, fmt.Errorf("docindex: load %s: %w: %v", docID, ErrCorruptArtifact, err)
	}
	return &Index{docID: docID, idx: fi, chunks: chunks}, true, nil
}

// Search returns the min(k, Len()) chunks most similar to query by cosine
// similarity, best first, ties in insertion order.
func (x *Index) Search(query []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("docindex: %w: k must be positive, got %d", ErrInvalidInput, k)
	}
	if len(query) != x.idx.Dimension() {
		return nil, fmt.Errorf("docindex: %w: query dim %d != index dim %d (doc %s)", ErrDimensionMismatch, len(query), x.idx.Dimension(), x.docID)
	}
	q, err := vector.Normalize(query)
	if err != nil {
		return nil, fmt.Errorf("docindex: %w: query: %v", ErrInvalidInput, err)
	}
	positions, scores, err := x.idx.Query(q, k)
	if err != nil {
		return nil, fmt.Errorf("docindex: search %s: %w", x.docID, err)
	}
	out := make([]Result, len(positions))
	for i, pos := range positions {
		out[i] = Result{
			Chunk: x.chunks[pos],
			Score: math.Max(-1, math.Min(1, scores[i])),
			Rank:  i + 1,
		}
	}
	return out, nil
}

// Statistics describes the loaded index.
func (x *Index) Statistics() Stats {
	return Stats{
		DocID:       x.docID,
		VectorCount: x.idx.Len(),
		Dimension:   x.idx.Dimension(),
		ChunkCount:  len(x.chunks),
		Available:   true,
	}
}

// DocID returns the document identifier.
func (x *Index) DocID() string { return x.docID }

// Len returns the number of indexed chunks.
func (x *Index) Len() int { return len(x.chunks) }

// Dimension returns the embedding dimension.
func (x *Index) Dimension() int { return x.idx.Dimension() }

// Chunks returns a copy of the chunk metadata in index order.
func (x *Index) Chunks() []Chunk { return append([]Chunk(nil), x.chunks...) }
