package retriever

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/loansight/loansight/common/logger"
	"github.com/loansight/loansight/dataset"
	"github.com/loansight/loansight/embedding"
	"github.com/loansight/loansight/metrics"
	"github.com/loansight/loansight/schema"
	"github.com/loansight/loansight/vectordb"
)

// Retriever turns a natural-language query into ranked loan cases. It embeds
// the query, searches the vector store, and hydrates hits from the frame.
type Retriever struct {
	Embed    embedding.Provider
	Store    vectordb.Provider
	Frame    *dataset.Frame
	IDColumn string
	TopK     int
}

func New(embed embedding.Provider, store vectordb.Provider, frame *dataset.Frame, idColumn string, topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{Embed: embed, Store: store, Frame: frame, IDColumn: idColumn, TopK: topK}
}

// Search returns up to topK cases in descending similarity order. topK <= 0
// falls back to the configured default.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]schema.RetrievedCase, error) {
	if topK <= 0 {
		topK = r.TopK
	}
	start := time.Now()

	vec, err := r.Embed.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := r.Store.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	cases := make([]schema.RetrievedCase, 0, len(hits))
	for _, h := range hits {
		if h.RowIndex < 0 || h.RowIndex >= r.Frame.NumRows() {
			logger.Warnf("retriever: hit row %d out of range, skipping", h.RowIndex)
			continue
		}
		cases = append(cases, r.hydrate(h))
	}
	metrics.ObserveRetrieval(start, len(cases))
	return cases, nil
}

func (r *Retriever) hydrate(hit schema.SearchHit) schema.RetrievedCase {
	i := hit.RowIndex
	c := schema.RetrievedCase{
		CaseID:          r.Frame.Cell(i, r.IDColumn),
		CustomerName:    r.Frame.Cell(i, "Customer_Name"),
		ApprovalStatus:  r.Frame.Cell(i, "Loan_Status"),
		SimilarityScore: hit.Score,
		Raw:             r.Frame.Row(i),
	}
	if c.CaseID == "" {
		c.CaseID = fmt.Sprintf("row-%d", i)
	}
	if amt, ok := r.Frame.Number(i, "Loan_Amount"); ok {
		c.LoanAmount = &amt
	}
	return c
}

// ApplyFilters narrows retrieved cases by the classifier's structured hints.
// Plain keys match field values case-insensitively; min_/max_ prefixed keys
// bound numeric fields. Unknown fields never match.
func ApplyFilters(cases []schema.RetrievedCase, filters map[string]any) []schema.RetrievedCase {
	if len(filters) == 0 {
		return cases
	}
	out := make([]schema.RetrievedCase, 0, len(cases))
	for _, c := range cases {
		if matchesAll(c, filters) {
			out = append(out, c)
		}
	}
	return out
}

func matchesAll(c schema.RetrievedCase, filters map[string]any) bool {
	for key, want := range filters {
		switch {
		case strings.HasPrefix(key, "min_"):
			if !boundCheck(c, strings.TrimPrefix(key, "min_"), want, false) {
				return false
			}
		case strings.HasPrefix(key, "max_"):
			if !boundCheck(c, strings.TrimPrefix(key, "max_"), want, true) {
				return false
			}
		default:
			got, ok := c.Raw[key]
			if !ok {
				return false
			}
			if !strings.EqualFold(fmt.Sprint(got), fmt.Sprint(want)) {
				return false
			}
		}
	}
	return true
}

func boundCheck(c schema.RetrievedCase, field string, want any, upper bool) bool {
	limit, ok := toFloat(want)
	if !ok {
		return false
	}
	got, ok := toFloat(c.Raw[field])
	if !ok {
		return false
	}
	if upper {
		return got <= limit
	}
	return got >= limit
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(x), "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
