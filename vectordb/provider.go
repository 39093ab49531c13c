package vectordb

import (
	"context"
	"fmt"

	"github.com/loansight/loansight/config"
	"github.com/loansight/loansight/dataset"
	"github.com/loansight/loansight/schema"
)

// Provider answers nearest-neighbor queries over the case corpus. Hits are
// returned in descending similarity order and reference corpus row indexes.
type Provider interface {
	GetProviderType() string
	Search(ctx context.Context, vector []float32, topK int) ([]schema.SearchHit, error)
}

// NewProvider selects a vector store from config. The memory provider indexes
// the frame's attached embeddings directly; milvus queries a remote collection
// whose primary keys are corpus row indexes.
func NewProvider(cfg config.VectorDBConfig, frame *dataset.Frame) (Provider, error) {
	switch cfg.Provider {
	case "", "memory":
		return NewMemoryIndex(frame.Embeddings()), nil
	case "milvus":
		return newMilvusProvider(cfg)
	default:
		return nil, fmt.Errorf("vectordb: unknown provider %q", cfg.Provider)
	}
}
