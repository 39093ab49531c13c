package embedding

import "context"

// Provider abstracts the text-embedding collaborator. Returned vectors are
// L2-normalized so inner-product similarity equals cosine similarity.
type Provider interface {
	GetProviderType() string
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}
