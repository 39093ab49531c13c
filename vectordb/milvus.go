package vectordb

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/loansight/loansight/common/logger"
	"github.com/loansight/loansight/config"
	"github.com/loansight/loansight/schema"
)

// milvusProvider serves deployments where the case embeddings live in a
// Milvus collection instead of process memory. The collection's int64 primary
// key must hold the corpus row index so hits map back onto the loaded frame.
type milvusProvider struct {
	cli         client.Client
	collection  string
	vectorField string
}

func newMilvusProvider(cfg config.VectorDBConfig) (Provider, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	cli, err := client.NewClient(context.Background(), client.Config{
		Address:  addr,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("milvus connect %s: %w", addr, err)
	}
	if err := cli.LoadCollection(context.Background(), cfg.Collection, false); err != nil {
		logger.Warnf("milvus load collection %s: %v", cfg.Collection, err)
	}
	field := cfg.VectorField
	if field == "" {
		field = "vector"
	}
	return &milvusProvider{cli: cli, collection: cfg.Collection, vectorField: field}, nil
}

func (m *milvusProvider) GetProviderType() string { return "milvus" }

func (m *milvusProvider) Search(ctx context.Context, vector []float32, topK int) ([]schema.SearchHit, error) {
	if topK <= 0 || len(vector) == 0 {
		return nil, nil
	}
	sp, err := entity.NewIndexFlatSearchParam()
	if err != nil {
		return nil, fmt.Errorf("milvus search param: %w", err)
	}
	results, err := m.cli.Search(
		ctx,
		m.collection,
		nil,
		"",
		nil,
		[]entity.Vector{entity.FloatVector(vector)},
		m.vectorField,
		entity.IP,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search: %w", err)
	}

	var hits []schema.SearchHit
	for _, res := range results {
		ids, ok := res.IDs.(*entity.ColumnInt64)
		if !ok {
			return nil, fmt.Errorf("milvus search: primary key column is %v, want int64", res.IDs.Type())
		}
		for i, id := range ids.Data() {
			if i >= len(res.Scores) {
				break
			}
			hits = append(hits, schema.SearchHit{RowIndex: int(id), Score: float64(res.Scores[i])})
		}
	}
	return hits, nil
}
