package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/viant/docvec/artifact/fsstore"
	"github.com/viant/docvec/chunker"
	"github.com/viant/docvec/docindex"
	"github.com/viant/docvec/embedding"
	"github.com/viant/docvec/registry"
)

type fixture struct {
	store    *fsstore.Store
	registry *registry.Registry
	dir      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := fsstore.New(filepath.Join(dir, "vectorstore"), fsstore.WithSourceDir(filepath.Join(dir, "pdfs")))
	if err != nil {
		t.Fatalf("fsstore.New failed: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{store: store, registry: registry.New(store, registry.WithLogger(logger)), dir: dir}
}

func (f *fixture) pipeline(provider embedding.Provider, opts ...Option) *Pipeline {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(f.registry, provider, chunker.Splitter{Size: 40, Overlap: 5}, opts...)
}

func (f *fixture) assertEmpty(t *testing.T) {
	t.Helper()
	list, err := f.store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no leftovers, got %+v", list)
	}
}

var pages = []chunker.Page{
	{Number: 1, Content: "Solar panels convert sunlight into electricity for homes."},
	{Number: 2, Content: "Castles were built from stone in the middle ages."},
}

func TestIngestPages_Searchable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	provider := embedding.NewHash(1024)
	p := f.pipeline(provider, WithIDGenerator(func() string { return "doc-1" }))

	report, err := p.IngestPages(ctx, pages)
	if err != nil {
		t.Fatalf("IngestPages failed: %v", err)
	}
	if report.DocID != "doc-1" || report.TotalPages != 2 || report.TotalChunks < 2 || report.Dimension != 1024 {
		t.Fatalf("unexpected report: %+v", report)
	}

	query, err := provider.EmbedOne(ctx, "castles stone")
	if err != nil {
		t.Fatalf("EmbedOne failed: %v", err)
	}
	hits, err := f.registry.SearchAll(ctx, query, 1)
	if err != nil {
		t.Fatalf("SearchAll failed: %v", err)
	}
	if len(hits) != 1 || hits[0].DocID != "doc-1" || hits[0].Chunk.Page != 2 {
		t.Fatalf("unexpected hits: %+v", hits)
	}
}

func TestIngestPages_EmbeddingFailureLeavesNothing(t *testing.T) {
	f := newFixture(t)
	failing := embedding.NewFunc(4, func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("provider down")
	})
	if _, err := f.pipeline(failing).IngestPages(context.Background(), pages); err == nil {
		t.Fatalf("expected error")
	}
	f.assertEmpty(t)
}

func TestIngestPages_NoText(t *testing.T) {
	f := newFixture(t)
	_, err := f.pipeline(embedding.NewHash(8)).IngestPages(context.Background(), []chunker.Page{{Number: 1, Content: "  "}})
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
	f.assertEmpty(t)
}

// shortProvider drops the last embedding of every batch.
type shortProvider struct{ embedding.Provider }

func (s shortProvider) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := s.Provider.EmbedMany(ctx, texts)
	if err != nil || len(vecs) == 0 {
		return vecs, err
	}
	return vecs[:len(vecs)-1], nil
}

func TestIngestPages_MisalignedEmbeddings(t *testing.T) {
	f := newFixture(t)
	_, err := f.pipeline(shortProvider{embedding.NewHash(8)}).IngestPages(context.Background(), pages)
	if !errors.Is(err, docindex.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	f.assertEmpty(t)
}

func TestIngestFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	path := filepath.Join(f.dir, "report.PDF")
	if err := os.WriteFile(path, []byte("%PDF-fake"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	extractor := func(string) ([]chunker.Page, error) { return pages, nil }
	p := f.pipeline(embedding.NewHash(32), WithExtractor(extractor), WithIDGenerator(func() string { return "doc-2" }))

	report, err := p.IngestFile(ctx, path)
	if err != nil {
		t.Fatalf("IngestFile failed: %v", err)
	}
	if report.Filename != "report.PDF" || report.FileSize != int64(len("%PDF-fake")) {
		t.Fatalf("unexpected report: %+v", report)
	}
	info, err := f.store.Stat(ctx, "doc-2")
	if err != nil || !info.Complete() || !info.HasSource {
		t.Fatalf("Stat = %+v, %v", info, err)
	}
}

func TestIngestFile_ExtractFailureRemovesSource(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.dir, "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	extractor := func(string) ([]chunker.Page, error) { return nil, errors.New("bad pdf") }
	if _, err := f.pipeline(embedding.NewHash(8), WithExtractor(extractor)).IngestFile(context.Background(), path); err == nil {
		t.Fatalf("expected error")
	}
	f.assertEmpty(t)
}

func TestIngestFile_Rejects(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(embedding.NewHash(8), WithMaxFileSize(4))
	txt := filepath.Join(f.dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := p.IngestFile(context.Background(), txt); !errors.Is(err, ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile, got %v", err)
	}
	big := filepath.Join(f.dir, "big.pdf")
	if err := os.WriteFile(big, []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := p.IngestFile(context.Background(), big); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	f.assertEmpty(t)
}
