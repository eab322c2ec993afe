// Package retrieval answers a natural-language question with the most
// relevant chunks across every indexed document.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viant/docvec/embedding"
	"github.com/viant/docvec/registry"
)

// DefaultTopK is used when neither the call nor the Retriever sets k.
const DefaultTopK = 5

// PreviewLength is the rune length of Source.Preview.
const PreviewLength = 300

// Source is a retrieved chunk flattened for prompt construction or display.
type Source struct {
	DocID   string  `json:"doc_id"`
	Page    int     `json:"page"`
	ChunkID int     `json:"chunk_id"`
	Score   float64 `json:"score"`
	Rank    int     `json:"rank"`
	Content string  `json:"content"`
	Preview string  `json:"content_preview"`
}

// Retriever embeds questions and searches the registry.
type Retriever struct {
	provider embedding.Provider
	registry *registry.Registry
	topK     int
	timeout  time.Duration
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithTopK sets the default number of results.
func WithTopK(k int) Option {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithTimeout bounds every Retrieve call. When the deadline passes during
// the search, the results found so far are returned.
func WithTimeout(d time.Duration) Option {
	return func(r *Retriever) { r.timeout = d }
}

// New creates a Retriever.
func New(provider embedding.Provider, reg *registry.Registry, opts ...Option) *Retriever {
	r := &Retriever{provider: provider, registry: reg, topK: DefaultTopK}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns up to k hits for question, best first. A non-positive k
// uses the configured default.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]registry.Hit, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, embedding.ErrEmptyInput
	}
	if k <= 0 {
		k = r.topK
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	query, err := r.provider.EmbedOne(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("retrieval: embed question: %w", err)
	}
	return r.registry.SearchAll(ctx, query, k)
}

// Sources flattens hits.
func Sources(hits []registry.Hit) []Source {
	out := make([]Source, len(hits))
	for i, h := range hits {
		out[i] = Source{
			DocID:   h.DocID,
			Page:    h.Chunk.Page,
			ChunkID: h.Chunk.ChunkID,
			Score:   h.Score,
			Rank:    h.Rank,
			Content: h.Chunk.Content,
			Preview: Preview(h.Chunk.Content, PreviewLength),
		}
	}
	return out
}

// Preview truncates content to n runes, marking the cut with "...".
func Preview(content string, n int) string {
	runes := []rune(content)
	if len(runes) <= n {
		return content
	}
	return string(runes[:n]) + "..."
}
