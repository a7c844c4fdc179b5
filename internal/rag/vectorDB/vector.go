package vectorDB

import (
	"context"

	"github.com/dealbrief/memoapi/internal/domain/docModel"
)

// Match is one retrieval hit, annotated with cosine distance. Results are
// ordered closest-first by the store.
type Match struct {
	Text       string
	DocId      string
	DocName    string
	PageNumber int
	ChunkIndex int
	Distance   float32
}

type DataProcessor interface {
	EnsureCollection(ctx context.Context, collectionName string) error

	// UpsertBatch stores one vector per chunk with document-scoped metadata.
	// chunks and vectors must be the same length and order.
	UpsertBatch(ctx context.Context, collectionName string, docId string, docName string, chunks []docModel.Chunk, vectors [][]float32) error

	// Query returns the k nearest chunks; docIds, when non-empty, restricts
	// matches to that document subset.
	Query(ctx context.Context, vector []float32, k int, docIds []string) ([]Match, error)

	// DeleteByDoc removes every vector whose metadata names docId. Deleting a
	// document with nothing indexed is a no-op, not an error.
	DeleteByDoc(ctx context.Context, docId string) error

	// Count and DocNames feed the suggested-questions helper.
	Count(ctx context.Context) (uint64, error)
	DocNames(ctx context.Context, limit int) ([]string, error)
}
