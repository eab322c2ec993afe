package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/viant/docvec/artifact"
	"github.com/viant/docvec/artifact/fsstore"
	"github.com/viant/docvec/artifact/sqlstore"
	"github.com/viant/docvec/chunker"
	"github.com/viant/docvec/config"
	"github.com/viant/docvec/embedding"
	"github.com/viant/docvec/engine"
	"github.com/viant/docvec/ingest"
	"github.com/viant/docvec/registry"
	"github.com/viant/docvec/retrieval"
)

// app holds the components wired from one configuration.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *sql.DB
	registry  *registry.Registry
	provider  embedding.Provider
	pipeline  *ingest.Pipeline
	retriever *retrieval.Retriever
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	logger, err := newLogger(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	if a.provider, err = newProvider(cfg.Embedder); err != nil {
		a.Close()
		return nil, err
	}
	a.registry = registry.New(store, registry.WithLogger(logger), registry.WithParallelism(cfg.Search.Parallelism))
	splitter := chunker.Splitter{Size: cfg.Chunker.Size, Overlap: cfg.Chunker.Overlap}
	a.pipeline = ingest.New(a.registry, a.provider, splitter, ingest.WithLogger(logger))
	a.retriever = retrieval.New(a.provider, a.registry,
		retrieval.WithTopK(cfg.Search.TopK),
		retrieval.WithTimeout(time.Duration(cfg.Search.TimeoutSecs)*time.Second))
	return a, nil
}

func (a *app) openStore(ctx context.Context) (artifact.Store, error) {
	switch a.cfg.Storage.Backend {
	case config.BackendSQLite:
		path := a.cfg.Storage.SQLitePath
		if path != engine.MemoryDSN {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, err
			}
		}
		db, err := engine.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", path, err)
		}
		a.db = db
		store, err := sqlstore.New(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return store, nil
	default:
		return fsstore.New(a.cfg.Storage.VectorstoreDir, fsstore.WithSourceDir(a.cfg.Storage.PDFDir))
	}
}

func newProvider(cfg config.EmbedderConfig) (embedding.Provider, error) {
	if cfg.Type != config.EmbedderOpenAI {
		return embedding.NewHash(cfg.HashDimension), nil
	}
	o := cfg.OpenAI
	return embedding.NewOpenAI(embedding.OpenAIConfig{
		BaseURL:    o.BaseURL,
		APIKeyEnv:  o.APIKeyEnv,
		Model:      o.Model,
		Dimensions: o.Dimensions,
		BatchSize:  o.BatchSize,
	})
}

// Close releases the database, if any.
func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("close database", "err", err)
		}
	}
}
