package retrieval

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/viant/docvec/artifact/fsstore"
	"github.com/viant/docvec/docindex"
	"github.com/viant/docvec/embedding"
	"github.com/viant/docvec/registry"
)

func newRetriever(t *testing.T, opts ...Option) *Retriever {
	t.Helper()
	ctx := context.Background()
	store, err := fsstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("fsstore.New failed: %v", err)
	}
	reg := registry.New(store, registry.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	provider := embedding.NewHash(1024)
	docs := map[string][]string{
		"rockets": {"rockets reach orbit with liquid fuel", "launch windows depend on weather"},
		"garden":  {"tomatoes need full sun and water", "compost improves garden soil"},
	}
	for id, texts := range docs {
		vecs, err := provider.EmbedMany(ctx, texts)
		if err != nil {
			t.Fatalf("EmbedMany failed: %v", err)
		}
		chunks := make([]docindex.Chunk, len(texts))
		for i, text := range texts {
			chunks[i] = docindex.Chunk{ChunkID: i, Page: i + 1, Content: text}
		}
		if _, err := reg.CreateFor(ctx, id, vecs, chunks); err != nil {
			t.Fatalf("CreateFor failed: %v", err)
		}
	}
	return New(provider, reg, opts...)
}

func TestRetrieve(t *testing.T) {
	r := newRetriever(t, WithTopK(3), WithTimeout(time.Minute))
	hits, err := r.Retrieve(context.Background(), "  compost for garden soil ", 0)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected default top-k of 3, got %d", len(hits))
	}
	if hits[0].DocID != "garden" || hits[0].Chunk.ChunkID != 1 {
		t.Fatalf("unexpected best hit: %+v", hits[0])
	}
	sources := Sources(hits)
	if sources[0].Page != 2 || sources[0].Content != "compost improves garden soil" || sources[0].Preview != sources[0].Content {
		t.Fatalf("unexpected source: %+v", sources[0])
	}
}

func TestRetrieve_ExplicitK(t *testing.T) {
	r := newRetriever(t)
	hits, err := r.Retrieve(context.Background(), "rockets orbit", 1)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(hits) != 1 || hits[0].DocID != "rockets" {
		t.Fatalf("unexpected hits: %+v", hits)
	}
}

func TestRetrieve_BlankQuestion(t *testing.T) {
	r := newRetriever(t)
	if _, err := r.Retrieve(context.Background(), " \n", 2); !errors.Is(err, embedding.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("héllo wörld", 5); got != "héllo..." {
		t.Fatalf("Preview = %q", got)
	}
	if got := Preview("short", 10); got != "short" {
		t.Fatalf("Preview = %q", got)
	}
}
