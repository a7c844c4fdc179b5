package embedding

import "context"

type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)

	// BatchEmbedding embeds chunk texts in provider-sized groups and returns
	// vectors in input order, one per text.
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}
