package embedding

import (
	"context"
	"fmt"

	"github.com/viant/docvec/vector"
)

// Func embeds a single text.
type Func func(ctx context.Context, text string) ([]float32, error)

// FuncProvider adapts a Func to Provider, calling it once per text.
type FuncProvider struct {
	fn  Func
	dim int
}

// NewFunc wraps fn, which must produce vectors of dimension dim.
func NewFunc(dim int, fn Func) *FuncProvider {
	return &FuncProvider{fn: fn, dim: dim}
}

// Dimension returns the declared dimension.
func (f *FuncProvider) Dimension() int { return f.dim }

// EmbedOne embeds text.
func (f *FuncProvider) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	return embedOne(ctx, f, text)
}

// EmbedMany calls the function for every text in order.
func (f *FuncProvider) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := checkTexts(texts); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.fn(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("embedding: text %d: %w", i, err)
		}
		if f.dim > 0 && len(v) != f.dim {
			return nil, fmt.Errorf("embedding: text %d: got dim %d, want %d", i, len(v), f.dim)
		}
		if out[i], err = vector.Normalize(v); err != nil {
			return nil, fmt.Errorf("embedding: text %d: %w", i, err)
		}
	}
	return out, nil
}
