package store

import (
	"context"
	"sort"
	"sync"

	"github.com/dealbrief/memoapi/internal/domain/docModel"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem Store")

type InMemoryDocumentStore struct {
	docMutex *sync.RWMutex
	docMap   map[string]docModel.Document
}

func InitInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		docMutex: new(sync.RWMutex),
		docMap:   make(map[string]docModel.Document),
	}
}

func (store *InMemoryDocumentStore) SaveDocument(ctx context.Context, doc docModel.Document) error {
	store.docMutex.Lock()
	defer store.docMutex.Unlock()
	store.docMap[doc.Id] = doc
	inMemLogger.Debug("Saved document to store", "doc_id", doc.Id)
	return nil
}

func (store *InMemoryDocumentStore) GetDocument(ctx context.Context, docId string) (docModel.Document, bool) {
	store.docMutex.RLock()
	defer store.docMutex.RUnlock()
	result, found := store.docMap[docId]
	return result, found
}

func (store *InMemoryDocumentStore) ListDocuments(ctx context.Context) ([]docModel.Document, error) {
	store.docMutex.RLock()
	defer store.docMutex.RUnlock()

	docs := make([]docModel.Document, 0, len(store.docMap))
	for _, doc := range store.docMap {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadDate > docs[j].UploadDate
	})
	return docs, nil
}

func (store *InMemoryDocumentStore) UpdateStatus(ctx context.Context, docId string, status docModel.DocStatus, errorMessage string) error {
	store.docMutex.Lock()
	defer store.docMutex.Unlock()

	doc := store.docMap[docId]
	doc.Id = docId
	doc.Status = status
	doc.ErrorMessage = errorMessage
	store.docMap[docId] = doc
	return nil
}

func (store *InMemoryDocumentStore) UpdatePageCount(ctx context.Context, docId string, pages int) error {
	store.docMutex.Lock()
	defer store.docMutex.Unlock()

	doc := store.docMap[docId]
	doc.Id = docId
	doc.PageCount = pages
	store.docMap[docId] = doc
	return nil
}

func (store *InMemoryDocumentStore) DeleteDocument(ctx context.Context, docId string) error {
	store.docMutex.Lock()
	defer store.docMutex.Unlock()
	delete(store.docMap, docId)
	return nil
}
