package index_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dealbrief/memoapi/internal/domain/docModel"
	"github.com/dealbrief/memoapi/internal/rag/index"
	"github.com/dealbrief/memoapi/internal/rag/vectorDB"
)

// MockVectorDB implements vectorDB.DataProcessor
type MockVectorDB struct {
	OnEnsureCollection func(ctx context.Context, name string) error
	OnUpsertBatch      func(ctx context.Context, name string, docId string, docName string, chunks []docModel.Chunk, vectors [][]float32) error
	OnQuery            func(ctx context.Context, vector []float32, k int, docIds []string) ([]vectorDB.Match, error)
	OnDeleteByDoc      func(ctx context.Context, docId string) error
}

func (m *MockVectorDB) EnsureCollection(ctx context.Context, name string) error {
	if m.OnEnsureCollection != nil {
		return m.OnEnsureCollection(ctx, name)
	}
	return nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, name string, docId string, docName string, chunks []docModel.Chunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, name, docId, docName, chunks, vectors)
	}
	return nil
}

func (m *MockVectorDB) Query(ctx context.Context, vector []float32, k int, docIds []string) ([]vectorDB.Match, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, vector, k, docIds)
	}
	return nil, nil
}

func (m *MockVectorDB) DeleteByDoc(ctx context.Context, docId string) error {
	if m.OnDeleteByDoc != nil {
		return m.OnDeleteByDoc(ctx, docId)
	}
	return nil
}

func (m *MockVectorDB) Count(ctx context.Context) (uint64, error) { return 0, nil }

func (m *MockVectorDB) DocNames(ctx context.Context, limit int) ([]string, error) { return nil, nil }

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, query string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	return make([][]float32, len(chunks)), nil
}

func TestAddDocument_BlankDocumentSkipsStore(t *testing.T) {
	embedCalls := 0
	upsertCalls := 0

	mEmbed := &MockEmbedder{
		OnBatchEmbedding: func(ctx context.Context, chunks []string) ([][]float32, error) {
			embedCalls++
			return make([][]float32, len(chunks)), nil
		},
	}
	mVec := &MockVectorDB{
		OnUpsertBatch: func(ctx context.Context, name string, docId string, docName string, chunks []docModel.Chunk, vectors [][]float32) error {
			upsertCalls++
			return nil
		},
	}

	m := index.NewManager(mVec, mEmbed)
	count, err := m.AddDocument(context.Background(), "doc-1", "blank.pdf", []docModel.Page{{Number: 1, Text: "   \n  "}})

	if err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}
	if count != 0 {
		t.Errorf("chunk count got %d, want 0", count)
	}
	if embedCalls != 0 || upsertCalls != 0 {
		t.Errorf("blank document touched providers: embed=%d upsert=%d", embedCalls, upsertCalls)
	}
}

func TestAddDocument_EmbedsAndUpsertsOnce(t *testing.T) {
	var gotTexts []string
	var gotChunks []docModel.Chunk
	upsertCalls := 0

	mEmbed := &MockEmbedder{
		OnBatchEmbedding: func(ctx context.Context, chunks []string) ([][]float32, error) {
			gotTexts = chunks
			return make([][]float32, len(chunks)), nil
		},
	}
	mVec := &MockVectorDB{
		OnUpsertBatch: func(ctx context.Context, name string, docId string, docName string, chunks []docModel.Chunk, vectors [][]float32) error {
			upsertCalls++
			gotChunks = chunks
			if len(chunks) != len(vectors) {
				t.Errorf("chunk/vector length mismatch: %d vs %d", len(chunks), len(vectors))
			}
			return nil
		},
	}

	m := index.NewManager(mVec, mEmbed)
	pages := []docModel.Page{{Number: 1, Text: "The company raised two million. Revenue grew fast."}}
	count, err := m.AddDocument(context.Background(), "doc-1", "memo.pdf", pages)

	if err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}
	if count == 0 {
		t.Fatal("expected at least one chunk")
	}
	if upsertCalls != 1 {
		t.Errorf("upsert calls got %d, want 1", upsertCalls)
	}
	if len(gotTexts) != len(gotChunks) {
		t.Errorf("embedded %d texts but upserted %d chunks", len(gotTexts), len(gotChunks))
	}
}

func TestAddDocument_EmbeddingFailurePropagates(t *testing.T) {
	mEmbed := &MockEmbedder{
		OnBatchEmbedding: func(ctx context.Context, chunks []string) ([][]float32, error) {
			return nil, errors.New("api limit")
		},
	}

	m := index.NewManager(&MockVectorDB{}, mEmbed)
	pages := []docModel.Page{{Number: 1, Text: "Some memo text."}}

	if _, err := m.AddDocument(context.Background(), "doc-1", "memo.pdf", pages); err == nil {
		t.Error("expected embedding failure to propagate, got nil")
	}
}

func TestQuery_EmbedsOnceAndForwardsFilter(t *testing.T) {
	embedCalls := 0
	var gotK int
	var gotDocIds []string

	mEmbed := &MockEmbedder{
		OnGetEmbedding: func(ctx context.Context, query string) ([]float32, error) {
			embedCalls++
			return []float32{0.5, 0.5}, nil
		},
	}
	mVec := &MockVectorDB{
		OnQuery: func(ctx context.Context, vector []float32, k int, docIds []string) ([]vectorDB.Match, error) {
			gotK = k
			gotDocIds = docIds
			return []vectorDB.Match{{Text: "hit", DocId: "doc-1"}}, nil
		},
	}

	m := index.NewManager(mVec, mEmbed)
	matches, err := m.Query(context.Background(), "what is the ask?", 7, []string{"doc-1", "doc-2"})

	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if embedCalls != 1 {
		t.Errorf("embed calls got %d, want 1", embedCalls)
	}
	if gotK != 7 || len(gotDocIds) != 2 {
		t.Errorf("filter not forwarded: k=%d docIds=%v", gotK, gotDocIds)
	}
	if len(matches) != 1 {
		t.Errorf("matches got %d, want 1", len(matches))
	}
}

func TestRemoveDocument_Delegates(t *testing.T) {
	var deleted string
	mVec := &MockVectorDB{
		OnDeleteByDoc: func(ctx context.Context, docId string) error {
			deleted = docId
			return nil
		},
	}

	m := index.NewManager(mVec, &MockEmbedder{})
	if err := m.RemoveDocument(context.Background(), "doc-9"); err != nil {
		t.Fatalf("RemoveDocument failed: %v", err)
	}
	if deleted != "doc-9" {
		t.Errorf("deleted doc got %q, want doc-9", deleted)
	}
}
