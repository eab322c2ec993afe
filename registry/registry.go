package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/viant/docvec/artifact"
	"github.com/viant/docvec/docindex"
	"github.com/viant/docvec/vector"
)

// ErrNotIndexed is returned by Inspect for a document without a complete
// pair of artifacts.
var ErrNotIndexed = errors.New("registry: document not indexed")

// Hit is one chunk returned by SearchAll.
type Hit struct {
	DocID string         `json:"doc_id"`
	Chunk docindex.Chunk `json:"chunk"`
	Score float64        `json:"score"`
	// Rank is the chunk's rank within its own document.
	Rank int `json:"rank"`
}

type entry struct {
	mu  sync.RWMutex
	idx *docindex.Index
}

// Registry caches document indexes loaded from a store.
type Registry struct {
	store       artifact.Store
	logger      *slog.Logger
	parallelism int

	mu      sync.RWMutex
	entries map[string]*entry
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for skipped documents.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithParallelism bounds the number of documents searched concurrently.
func WithParallelism(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.parallelism = n
		}
	}
}

// New creates a registry over store.
func New(store artifact.Store, opts ...Option) *Registry {
	r := &Registry{
		store:       store,
		logger:      slog.Default(),
		parallelism: runtime.GOMAXPROCS(0),
		entries:     map[string]*entry{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the underlying artifact store.
func (r *Registry) Store() artifact.Store { return r.store }

func (r *Registry) entryFor(docID string) *entry {
	r.mu.RLock()
	e, ok := r.entries[docID]
	r.mu.RUnlock()
	if ok {
		return e
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok = r.entries[docID]; !ok {
		e = &entry{}
		r.entries[docID] = e
	}
	return e
}

// GetOrLoad returns the index of docID, loading and caching it on a miss.
// A cached index whose artifacts have since disappeared is evicted. Absent
// and corrupt documents yield false; corruption is logged.
func (r *Registry) GetOrLoad(ctx context.Context, docID string) (*docindex.Index, bool) {
	idx, ok, err := r.load(ctx, docID)
	if err != nil {
		level := slog.LevelError
		if ctx.Err() != nil {
			level = slog.LevelWarn
		}
		r.logger.Log(ctx, level, "registry: load failed", "doc_id", docID, "err", err)
		return nil, false
	}
	return idx, ok
}

func (r *Registry) load(ctx context.Context, docID string) (*docindex.Index, bool, error) {
	e := r.entryFor(docID)
	e.mu.RLock()
	cached := e.idx
	e.mu.RUnlock()
	if cached != nil {
		info, err := r.store.Stat(ctx, docID)
		if err != nil {
			return nil, false, err
		}
		if info.Complete() {
			return cached, true, nil
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.idx != nil && e.idx != cached {
		// replaced by a concurrent load or rebuild
		return e.idx, true, nil
	}
	e.idx = nil
	idx, ok, err := docindex.Load(ctx, r.store, docID)
	if err != nil || !ok {
		return nil, false, err
	}
	e.idx = idx
	return idx, true, nil
}

// CreateFor builds and persists the index of docID and replaces any cached
// one.
func (r *Registry) CreateFor(ctx context.Context, docID string, embeddings [][]float32, chunks []docindex.Chunk) (*docindex.Index, error) {
	e := r.entryFor(docID)
	e.mu.Lock()
	defer e.mu.Unlock()
	idx, err := docindex.Build(ctx, r.store, docID, embeddings, chunks)
	if err != nil {
		return nil, err
	}
	e.idx = idx
	return idx, nil
}

// SearchAll returns the k best chunks across every complete document.
//
// Each document contributes at most k results, which are merged by score
// (ties keep document order, then local rank) and truncated to k. When ctx
// is done before every document was searched, the hits gathered so far are
// returned with a nil error.
func (r *Registry) SearchAll(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("registry: %w: k must be positive, got %d", docindex.ErrInvalidInput, k)
	}
	if _, err := vector.Normalize(query); err != nil {
		return nil, fmt.Errorf("registry: %w: query: %v", docindex.ErrInvalidInput, err)
	}
	infos, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("registry: list documents: %w", err)
	}
	docs := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.Complete() {
			docs = append(docs, info.DocID)
		}
	}

	perDoc := make([][]Hit, len(docs))
	var g errgroup.Group
	g.SetLimit(r.parallelism)
	searched := 0
	for i, docID := range docs {
		if ctx.Err() != nil {
			break
		}
		searched++
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			perDoc[i] = r.searchOne(ctx, docID, query, k)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		r.logger.Warn("registry: search interrupted, returning partial results",
			"documents", len(docs), "dispatched", searched, "err", err)
	}

	var hits []Hit
	for _, h := range perDoc {
		hits = append(hits, h...)
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (r *Registry) searchOne(ctx context.Context, docID string, query []float32, k int) []Hit {
	if _, ok := r.GetOrLoad(ctx, docID); !ok {
		return nil
	}
	e := r.entryFor(docID)
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.idx == nil {
		return nil
	}
	results, err := e.idx.Search(query, k)
	if err != nil {
		if errors.Is(err, docindex.ErrDimensionMismatch) {
			r.logger.Error("registry: embedding dimension changed, rebuild required", "doc_id", docID, "err", err)
		} else {
			r.logger.Warn("registry: search failed", "doc_id", docID, "err", err)
		}
		return nil
	}
	hits := make([]Hit, len(results))
	for i, res := range results {
		hits[i] = Hit{DocID: docID, Chunk: res.Chunk, Score: res.Score, Rank: res.Rank}
	}
	return hits
}

// Remove deletes every artifact of docID and evicts it from the cache.
func (r *Registry) Remove(ctx context.Context, docID string) error {
	e := r.entryFor(docID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.idx = nil
	r.mu.Lock()
	delete(r.entries, docID)
	r.mu.Unlock()
	if err := r.store.Delete(ctx, docID); err != nil {
		return fmt.Errorf("registry: remove %s: %w", docID, err)
	}
	return nil
}

// Invalidate drops the cached index of docID, forcing a reload on next use.
func (r *Registry) Invalidate(docID string) {
	r.mu.RLock()
	e, ok := r.entries[docID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	e.mu.Lock()
	e.idx = nil
	e.mu.Unlock()
}

// Statistics returns the statistics of docID, or an unavailable Stats when
// it has no usable index.
func (r *Registry) Statistics(ctx context.Context, docID string) docindex.Stats {
	idx, ok := r.GetOrLoad(ctx, docID)
	if !ok {
		return docindex.Unavailable(docID)
	}
	return idx.Statistics()
}

// Inspect is the strict form of Statistics: it reports ErrNotIndexed for a
// document without both artifacts and surfaces load errors.
func (r *Registry) Inspect(ctx context.Context, docID string) (docindex.Stats, error) {
	idx, ok, err := r.load(ctx, docID)
	if err != nil {
		return docindex.Unavailable(docID), err
	}
	if !ok {
		return docindex.Unavailable(docID), fmt.Errorf("%w: %s", ErrNotIndexed, docID)
	}
	return idx.Statistics(), nil
}

// Documents lists every document known to the store, complete or not.
func (r *Registry) Documents(ctx context.Context) ([]artifact.Info, error) {
	return r.store.List(ctx)
}
