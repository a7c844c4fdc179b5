package rag_test

import (
	"context"

	"github.com/dealbrief/memoapi/internal/domain/docModel"
	"github.com/dealbrief/memoapi/internal/rag/llm"
	"github.com/dealbrief/memoapi/internal/rag/vectorDB"
)

// MockIndex implements index.Manager
type MockIndex struct {
	// Control fields to simulate different behaviors
	OnAddDocument    func(ctx context.Context, docId string, docName string, pages []docModel.Page) (int, error)
	OnQuery          func(ctx context.Context, question string, k int, docIds []string) ([]vectorDB.Match, error)
	OnRemoveDocument func(ctx context.Context, docId string) error
}

func (m *MockIndex) AddDocument(ctx context.Context, docId string, docName string, pages []docModel.Page) (int, error) {
	if m.OnAddDocument != nil {
		return m.OnAddDocument(ctx, docId, docName, pages)
	}
	return 0, nil
}

func (m *MockIndex) Query(ctx context.Context, question string, k int, docIds []string) ([]vectorDB.Match, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, question, k, docIds)
	}
	return nil, nil
}

func (m *MockIndex) RemoveDocument(ctx context.Context, docId string) error {
	if m.OnRemoveDocument != nil {
		return m.OnRemoveDocument(ctx, docId)
	}
	return nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnComplete       func(ctx context.Context, prompt string, jsonMode bool) (string, error)
	OnCompleteStream func(ctx context.Context, prompt string, handler llm.TokenHandler) error
}

func (m *MockLLM) Complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if m.OnComplete != nil {
		return m.OnComplete(ctx, prompt, jsonMode)
	}
	return "default answer", nil
}

func (m *MockLLM) CompleteStream(ctx context.Context, prompt string, handler llm.TokenHandler) error {
	if m.OnCompleteStream != nil {
		return m.OnCompleteStream(ctx, prompt, handler)
	}
	return handler("default answer")
}

// MockVectorDB implements vectorDB.DataProcessor - the RAG service only
// touches Count and DocNames, for suggested questions.
type MockVectorDB struct {
	OnCount    func(ctx context.Context) (uint64, error)
	OnDocNames func(ctx context.Context, limit int) ([]string, error)
}

func (m *MockVectorDB) EnsureCollection(ctx context.Context, name string) error { return nil }

func (m *MockVectorDB) UpsertBatch(ctx context.Context, name string, docId string, docName string, chunks []docModel.Chunk, vectors [][]float32) error {
	return nil
}

func (m *MockVectorDB) Query(ctx context.Context, vector []float32, k int, docIds []string) ([]vectorDB.Match, error) {
	return nil, nil
}

func (m *MockVectorDB) DeleteByDoc(ctx context.Context, docId string) error { return nil }

func (m *MockVectorDB) Count(ctx context.Context) (uint64, error) {
	if m.OnCount != nil {
		return m.OnCount(ctx)
	}
	return 0, nil
}

func (m *MockVectorDB) DocNames(ctx context.Context, limit int) ([]string, error) {
	if m.OnDocNames != nil {
		return m.OnDocNames(ctx, limit)
	}
	return nil, nil
}
