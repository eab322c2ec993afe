package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	openai "github.com/sashabaranov/go-openai"

	"github.com/viant/docvec/vector"
)

// OpenAIConfig configures an OpenAI-compatible embeddings provider.
type OpenAIConfig struct {
	// BaseURL overrides the API endpoint, e.g. for a local server.
	BaseURL string
	// APIKey wins over APIKeyEnv when set.
	APIKey    string
	APIKeyEnv string
	Model     string
	// Dimensions is requested from models that support shortening; zero
	// keeps the model default and learns it from the first response.
	Dimensions int
	// BatchSize caps the number of texts per request.
	BatchSize int
}

const (
	defaultOpenAIModel     = "text-embedding-3-small"
	defaultOpenAIKeyEnv    = "OPENAI_API_KEY"
	defaultOpenAIBatchSize = 64
)

// OpenAI embeds text through the OpenAI embeddings API.
type OpenAI struct {
	client    *openai.Client
	model     string
	requested int
	batchSize int
	dim       atomic.Int64
}

// NewOpenAI creates a provider from cfg.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = defaultOpenAIKeyEnv
	}
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv(cfg.APIKeyEnv)
	}
	if key == "" {
		return nil, fmt.Errorf("embedding: missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultOpenAIBatchSize
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	p := &OpenAI{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		requested: cfg.Dimensions,
		batchSize: cfg.BatchSize,
	}
	p.dim.Store(int64(cfg.Dimensions))
	return p, nil
}

// Dimension returns the configured dimension or the one observed so far.
func (p *OpenAI) Dimension() int { return int(p.dim.Load()) }

// EmbedOne embeds text.
func (p *OpenAI) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	return embedOne(ctx, p, text)
}

// EmbedMany embeds texts in batches of at most BatchSize.
func (p *OpenAI) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := checkTexts(texts); err != nil {
		return nil, err
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += p.batchSize {
		end := min(start+p.batchSize, len(texts))
		batch, err := p.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (p *OpenAI) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(p.model),
		Dimensions: p.requested,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: openai: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding: openai returned %d vectors for %d texts", len(resp.Data), len(texts))
	}
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) || out[d.Index] != nil {
			return nil, fmt.Errorf("embedding: openai returned bad index %d", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i := range d.Embedding {
			v[i] = float32(d.Embedding[i])
		}
		n, err := vector.Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("embedding: openai vector %d: %w", d.Index, err)
		}
		if err := p.observe(len(n)); err != nil {
			return nil, err
		}
		out[d.Index] = n
	}
	return out, nil
}

var errDimensionChanged = errors.New("embedding: provider dimension changed")

func (p *OpenAI) observe(dim int) error {
	if p.dim.CompareAndSwap(0, int64(dim)) {
		return nil
	}
	if got := int(p.dim.Load()); got != dim {
		return fmt.Errorf("%w: %d != %d", errDimensionChanged, dim, got)
	}
	return nil
}
