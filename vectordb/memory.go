package vectordb

import (
	"context"
	"sort"

	"github.com/loansight/loansight/schema"
)

// memoryIndex is a flat inner-product index over pre-normalized vectors.
// Exhaustive scan is fine at corpus scale (thousands of rows); it keeps the
// default deployment free of external services.
type memoryIndex struct {
	vectors [][]float32
}

// NewMemoryIndex builds an in-process index. Vectors must be L2-normalized so
// inner product equals cosine similarity. Rows with nil vectors are skipped.
func NewMemoryIndex(vectors [][]float32) Provider {
	return &memoryIndex{vectors: vectors}
}

func (m *memoryIndex) GetProviderType() string { return "memory" }

func (m *memoryIndex) Search(_ context.Context, vector []float32, topK int) ([]schema.SearchHit, error) {
	if topK <= 0 || len(vector) == 0 {
		return nil, nil
	}
	hits := make([]schema.SearchHit, 0, len(m.vectors))
	for i, v := range m.vectors {
		if len(v) != len(vector) {
			continue
		}
		hits = append(hits, schema.SearchHit{RowIndex: i, Score: dot(vector, v)})
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
