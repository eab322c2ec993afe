package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput is returned for a blank text.
var ErrEmptyInput = errors.New("embedding: empty input")

// Provider embeds text.
type Provider interface {
	// EmbedMany returns one vector per text in the same order. An empty
	// slice yields nil, nil.
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedOne embeds a single text, typically a query.
	EmbedOne(ctx context.Context, text string) ([]float32, error)
	// Dimension returns the vector dimension, or 0 when not yet known.
	Dimension() int
}

func checkTexts(texts []string) error {
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w: text %d is blank", ErrEmptyInput, i)
		}
	}
	return nil
}

func embedOne(ctx context.Context, p Provider, text string) ([]float32, error) {
	vecs, err := p.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedding: expected 1 vector, got %d", len(vecs))
	}
	return vecs[0], nil
}
