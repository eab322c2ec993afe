package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/viant/docvec/vector"
)

// DefaultHashDimension is used by NewHash for a non-positive dimension.
const DefaultHashDimension = 256

// Hash is a deterministic offline provider based on feature hashing: every
// lower-cased token adds ±1 to one of dim buckets. Texts sharing words get
// similar vectors, which is enough for tests and air-gapped use.
type Hash struct {
	dim int
}

// NewHash creates a hashing provider.
func NewHash(dim int) *Hash {
	if dim <= 0 {
		dim = DefaultHashDimension
	}
	return &Hash{dim: dim}
}

// Dimension returns the configured dimension.
func (h *Hash) Dimension() int { return h.dim }

// EmbedMany embeds every text.
func (h *Hash) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := checkTexts(texts); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := h.embed(t)
		if err != nil {
			return nil, fmt.Errorf("embedding: text %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// EmbedOne embeds text.
func (h *Hash) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	return embedOne(ctx, h, text)
}

func (h *Hash) embed(text string) ([]float32, error) {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) == 0 {
		tokens = []string{strings.TrimSpace(text)}
	}
	v := make([]float32, h.dim)
	for _, tok := range tokens {
		sum := fnvSum(tok)
		bucket := int(sum % uint32(h.dim))
		if sum&(1<<31) != 0 {
			v[bucket]--
		} else {
			v[bucket]++
		}
	}
	n, err := vector.Normalize(v)
	if err != nil {
		// every token cancelled out; fall back to the whole text
		v[int(fnvSum(text)%uint32(h.dim))] = 1
		return v, nil
	}
	return n, nil
}

func fnvSum(s string) uint32 {
	f := fnv.New32a()
	_, _ = f.Write([]byte(s))
	return f.Sum32()
}
