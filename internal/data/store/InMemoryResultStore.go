package store

import (
	"context"
	"sync"

	"github.com/dealbrief/memoapi/internal/domain/analysisModel"
)

type InMemoryResultStore struct {
	resultMutex   *sync.RWMutex
	extractionMap map[string]analysisModel.ExtractionResult
	faqMap        map[string]analysisModel.FAQResult
}

func InitInMemoryResultStore() *InMemoryResultStore {
	return &InMemoryResultStore{
		resultMutex:   new(sync.RWMutex),
		extractionMap: make(map[string]analysisModel.ExtractionResult),
		faqMap:        make(map[string]analysisModel.FAQResult),
	}
}

func (store *InMemoryResultStore) SaveExtraction(ctx context.Context, result analysisModel.ExtractionResult) error {
	store.resultMutex.Lock()
	defer store.resultMutex.Unlock()
	store.extractionMap[result.DocId] = result
	return nil
}

func (store *InMemoryResultStore) GetExtraction(ctx context.Context, docId string) (analysisModel.ExtractionResult, bool) {
	store.resultMutex.RLock()
	defer store.resultMutex.RUnlock()
	result, found := store.extractionMap[docId]
	return result, found
}

func (store *InMemoryResultStore) SaveFAQ(ctx context.Context, result analysisModel.FAQResult) error {
	store.resultMutex.Lock()
	defer store.resultMutex.Unlock()
	store.faqMap[result.DocId] = result
	return nil
}

func (store *InMemoryResultStore) GetFAQ(ctx context.Context, docId string) (analysisModel.FAQResult, bool) {
	store.resultMutex.RLock()
	defer store.resultMutex.RUnlock()
	result, found := store.faqMap[docId]
	return result, found
}

func (store *InMemoryResultStore) DeleteResults(ctx context.Context, docId string) error {
	store.resultMutex.Lock()
	defer store.resultMutex.Unlock()
	delete(store.extractionMap, docId)
	delete(store.faqMap, docId)
	return nil
}
