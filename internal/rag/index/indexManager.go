// Package index owns the mapping from a document to its chunk vectors in
// the external store.
package index

import (
	"context"
	"time"

	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/domain/docModel"
	"github.com/dealbrief/memoapi/internal/metrics"
	"github.com/dealbrief/memoapi/internal/rag/chunker"
	"github.com/dealbrief/memoapi/internal/rag/embedding"
	"github.com/dealbrief/memoapi/internal/rag/vectorDB"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

type Manager interface {
	// AddDocument chunks the pages, embeds every chunk text in one batched
	// pass, and upserts the vectors with per-chunk metadata. A document with
	// no extractable text indexes zero chunks and is not an error.
	AddDocument(ctx context.Context, docId string, docName string, pages []docModel.Page) (int, error)

	// Query embeds the question once and returns the k nearest chunks,
	// optionally restricted to a document subset, closest-first.
	Query(ctx context.Context, question string, k int, docIds []string) ([]vectorDB.Match, error)

	// RemoveDocument deletes every vector owned by the document. Removing a
	// document that never indexed anything is a clean no-op.
	RemoveDocument(ctx context.Context, docId string) error
}

type manager struct {
	vectorDB vectorDB.DataProcessor
	embedder embedding.Embedder
	logger   *logger_i.Logger
}

// NewManager constructor
func NewManager(vector vectorDB.DataProcessor, em embedding.Embedder) Manager {
	return &manager{
		vectorDB: vector,
		embedder: em,
		logger:   logger_i.NewLogger("Index Manager"),
	}
}

func (m *manager) AddDocument(ctx context.Context, docId string, docName string, pages []docModel.Page) (int, error) {
	log := m.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc_id", docId)

	chunks := chunker.Split(pages, config.ChunkSize, config.ChunkOverlap)
	if len(chunks) == 0 {
		// nothing to index - blank documents must not touch the store
		log.Debug("No chunks produced, skipping index")
		return 0, nil
	}
	log.Debug("Chunked document", "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	start := time.Now()
	vectors, err := m.embedder.BatchEmbedding(ctx, texts)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		return 0, err
	}

	if err := m.vectorDB.EnsureCollection(ctx, config.MemoCollectionName); err != nil {
		return 0, err
	}

	start = time.Now()
	err = m.vectorDB.UpsertBatch(ctx, config.MemoCollectionName, docId, docName, chunks, vectors)
	metrics.CaptureExecutionMetrics("vector_upsert", time.Since(start))
	if err != nil {
		return 0, err
	}

	log.Debug("Indexed document", "vectors", len(vectors))
	return len(chunks), nil
}

func (m *manager) Query(ctx context.Context, question string, k int, docIds []string) ([]vectorDB.Match, error) {
	start := time.Now()
	vector, err := m.embedder.GetEmbedding(ctx, question)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		return nil, err
	}

	start = time.Now()
	matches, err := m.vectorDB.Query(ctx, vector, k, docIds)
	metrics.CaptureExecutionMetrics("vector_search", time.Since(start))
	return matches, err
}

func (m *manager) RemoveDocument(ctx context.Context, docId string) error {
	return m.vectorDB.DeleteByDoc(ctx, docId)
}
