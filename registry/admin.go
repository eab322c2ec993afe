package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Summary aggregates the state of every document in the store.
type Summary struct {
	Documents  int `json:"documents"`
	Complete   int `json:"complete"`
	Incomplete int `json:"incomplete"`
	// Corrupt counts complete documents whose artifacts failed to load.
	Corrupt    int   `json:"corrupt"`
	Vectors    int   `json:"vectors"`
	Chunks     int   `json:"chunks"`
	Dimensions []int `json:"dimensions"`
	SizeBytes  int64 `json:"size_bytes"`
}

// Summary loads every complete document and totals its statistics. More
// than one entry in Dimensions means some documents need a rebuild.
func (r *Registry) Summary(ctx context.Context) (Summary, error) {
	infos, err := r.store.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("registry: list documents: %w", err)
	}
	var out Summary
	dims := map[int]struct{}{}
	for _, info := range infos {
		out.Documents++
		out.SizeBytes += info.Size
		if !info.Complete() {
			out.Incomplete++
			continue
		}
		out.Complete++
		idx, ok := r.GetOrLoad(ctx, info.DocID)
		if !ok {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			out.Corrupt++
			continue
		}
		stats := idx.Statistics()
		out.Vectors += stats.VectorCount
		out.Chunks += stats.ChunkCount
		dims[stats.Dimension] = struct{}{}
	}
	for d := range dims {
		out.Dimensions = append(out.Dimensions, d)
	}
	sort.Ints(out.Dimensions)
	return out, nil
}

// Cleanup finds documents that have some artifacts or a stored source but
// not both index artifacts, and removes them unless dryRun is set. It
// returns the affected document ids.
func (r *Registry) Cleanup(ctx context.Context, dryRun bool) ([]string, error) {
	infos, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("registry: list documents: %w", err)
	}
	var ids []string
	for _, info := range infos {
		if info.Exists() && !info.Complete() {
			ids = append(ids, info.DocID)
		}
	}
	if dryRun {
		return ids, nil
	}
	var errs []error
	var removed []string
	for _, id := range ids {
		if err := r.Remove(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, id)
		r.logger.Info("registry: removed incomplete document", "doc_id", id)
	}
	return removed, errors.Join(errs...)
}
