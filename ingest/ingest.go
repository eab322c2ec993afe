// Package ingest turns an uploaded document into a persisted index:
// extract pages, split them into chunks, embed the chunks and build the
// document index. A failed ingestion leaves no artifacts behind.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/viant/docvec/artifact"
	"github.com/viant/docvec/chunker"
	"github.com/viant/docvec/embedding"
	"github.com/viant/docvec/extract"
	"github.com/viant/docvec/registry"
)

// DefaultMaxFileSize is the largest accepted upload.
const DefaultMaxFileSize = 50 << 20

var (
	// ErrUnsupportedFile is returned for a file without a .pdf extension.
	ErrUnsupportedFile = errors.New("ingest: only PDF files are supported")
	// ErrFileTooLarge is returned for a file above the size limit.
	ErrFileTooLarge = errors.New("ingest: file too large")
	// ErrNoText is returned when no text could be extracted.
	ErrNoText = errors.New("ingest: no text extracted")
)

// Extractor reads the pages of a file.
type Extractor func(path string) ([]chunker.Page, error)

// Report describes an ingested document.
type Report struct {
	DocID       string `json:"doc_id"`
	Filename    string `json:"filename,omitempty"`
	FileSize    int64  `json:"file_size,omitempty"`
	TotalChunks int    `json:"total_chunks"`
	TotalPages  int    `json:"total_pages"`
	Dimension   int    `json:"embedding_dimension"`
}

// Pipeline ingests documents into a registry.
type Pipeline struct {
	registry    *registry.Registry
	provider    embedding.Provider
	splitter    chunker.Splitter
	extract     Extractor
	logger      *slog.Logger
	maxFileSize int64
	newID       func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithExtractor replaces the PDF extractor.
func WithExtractor(fn Extractor) Option {
	return func(p *Pipeline) { p.extract = fn }
}

// WithMaxFileSize sets the upload size limit in bytes.
func WithMaxFileSize(n int64) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxFileSize = n
		}
	}
}

// WithIDGenerator replaces the random document id generator.
func WithIDGenerator(fn func() string) Option {
	return func(p *Pipeline) { p.newID = fn }
}

// New creates a pipeline.
func New(reg *registry.Registry, provider embedding.Provider, splitter chunker.Splitter, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry:    reg,
		provider:    provider,
		splitter:    splitter,
		extract:     extract.PDF,
		logger:      slog.Default(),
		maxFileSize: DefaultMaxFileSize,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IngestFile ingests the PDF at path under a new document id. The original
// file is kept when the store supports sources.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*Report, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	if fi.Size() > p.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, fi.Size(), p.maxFileSize)
	}
	docID := p.newID()
	report, err := p.ingestFile(ctx, docID, path)
	if err != nil {
		p.discard(ctx, docID)
		return nil, err
	}
	report.Filename = filepath.Base(path)
	report.FileSize = fi.Size()
	p.logger.Info("ingest: document indexed", "doc_id", docID, "file", report.Filename, "chunks", report.TotalChunks)
	return report, nil
}

func (p *Pipeline) ingestFile(ctx context.Context, docID, path string) (*Report, error) {
	if saver, ok := p.registry.Store().(artifact.SourceSaver); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("ingest: %w", err)
		}
		if err := saver.SaveSource(ctx, docID, data); err != nil {
			return nil, fmt.Errorf("ingest: save source %s: %w", docID, err)
		}
	}
	pages, err := p.extract(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	return p.index(ctx, docID, pages)
}

// IngestPages indexes already extracted pages under a new document id.
func (p *Pipeline) IngestPages(ctx context.Context, pages []chunker.Page) (*Report, error) {
	docID := p.newID()
	report, err := p.index(ctx, docID, pages)
	if err != nil {
		p.discard(ctx, docID)
		return nil, err
	}
	p.logger.Info("ingest: document indexed", "doc_id", docID, "chunks", report.TotalChunks)
	return report, nil
}

func (p *Pipeline) index(ctx context.Context, docID string, pages []chunker.Page) (*Report, error) {
	chunks, err := p.splitter.Split(pages)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	if len(chunks) == 0 {
		return nil, ErrNoText
	}
	texts := make([]string, len(chunks))
	totalPages := 0
	for i, c := range chunks {
		texts[i] = c.Content
		totalPages = max(totalPages, c.Page)
	}
	embeddings, err := p.provider.EmbedMany(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("ingest: embed %s: %w", docID, err)
	}
	idx, err := p.registry.CreateFor(ctx, docID, embeddings, chunks)
	if err != nil {
		return nil, fmt.Errorf("ingest: index %s: %w", docID, err)
	}
	return &Report{
		DocID:       docID,
		TotalChunks: idx.Len(),
		TotalPages:  totalPages,
		Dimension:   idx.Dimension(),
	}, nil
}

// discard removes whatever a failed ingestion left behind, even when ctx is
// already cancelled.
func (p *Pipeline) discard(ctx context.Context, docID string) {
	if err := p.registry.Remove(context.WithoutCancel(ctx), docID); err != nil {
		p.logger.Error("ingest: cleanup failed", "doc_id", docID, "err", err)
	}
}
