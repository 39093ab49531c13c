package embedding

import (
	"context"
	"time"

	"github.com/loansight/loansight/cache"
)

// cachedProvider memoizes single-text embeddings by exact query text.
// Repeated queries (common in chat sessions) skip the remote call.
type cachedProvider struct {
	inner Provider
	lru   cache.Cache
}

// WithCache wraps a provider with an LRU of the given capacity.
func WithCache(inner Provider, capacity int) Provider {
	return &cachedProvider{
		inner: inner,
		lru:   cache.NewLRU(capacity, 10*time.Minute),
	}
}

func (c *cachedProvider) GetProviderType() string { return c.inner.GetProviderType() }

func (c *cachedProvider) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.lru.Get(text); ok {
		return v.([]float32), nil
	}
	vec, err := c.inner.GetEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}
	c.lru.Set(text, vec, 0)
	return vec, nil
}

func (c *cachedProvider) GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	// Batch path is used for corpus builds; no caching benefit there.
	return c.inner.GetEmbeddings(ctx, texts)
}
