package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/loansight/loansight/common/httpx"
	"github.com/loansight/loansight/config"
	"github.com/loansight/loansight/dataset"
)

type openaiProvider struct {
	client openai.Client
	cfg    config.EmbeddingConfig
}

// NewProvider builds an embedding provider for any OpenAI-compatible
// embeddings endpoint.
func NewProvider(cfg config.EmbeddingConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding: api key required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpx.NewClient(httpx.Options{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		})),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &openaiProvider{client: openai.NewClient(opts...), cfg: cfg}, nil
}

func (p *openaiProvider) GetProviderType() string { return "openai" }

func (p *openaiProvider) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.GetEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p *openaiProvider) GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	callCtx, cancel := context.WithTimeout(ctx, time.Duration(p.cfg.TimeoutMS)*time.Millisecond)
	defer cancel()

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.cfg.Model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	}
	if p.cfg.Dimensions > 0 {
		params.Dimensions = openai.Int(int64(p.cfg.Dimensions))
	}
	resp, err := p.client.Embeddings.New(callCtx, params)
	if err != nil {
		return nil, fmt.Errorf("embedding call: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding call: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		v := make([]float32, len(d.Embedding))
		for j, x := range d.Embedding {
			v[j] = float32(x)
		}
		dataset.Normalize(v)
		out[i] = v
	}
	return out, nil
}
