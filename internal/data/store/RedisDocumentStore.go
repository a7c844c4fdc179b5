package store

import (
	"context"
	"sort"
	"strconv"

	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/data/redisStore"
	"github.com/dealbrief/memoapi/internal/domain/docModel"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

const documentsIndexKey = "documents"

type RedisDocumentStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisDocumentStore(ctx context.Context) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  redisStore.GetRedisStore(ctx, config.RedisDocumentStore),
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func docKey(docId string) string {
	return "doc:" + docId
}

// SaveDocument writes the full record. Later mutations go through the
// per-field updates below, so concurrent writers can't clobber each other.
func (s *RedisDocumentStore) SaveDocument(ctx context.Context, doc docModel.Document) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc_id", doc.Id)
	log.Debug("saving document")

	err := s.store.HashSet(ctx, docKey(doc.Id), map[string]interface{}{
		"id":                doc.Id,
		"filename":          doc.Filename,
		"original_filename": doc.OriginalFilename,
		"file_size":         doc.FileSize,
		"page_count":        doc.PageCount,
		"status":            string(doc.Status),
		"upload_date":       doc.UploadDate,
		"error_message":     doc.ErrorMessage,
	})
	if err != nil {
		return err
	}
	return s.store.SetAdd(ctx, documentsIndexKey, doc.Id)
}

func (s *RedisDocumentStore) GetDocument(ctx context.Context, docId string) (docModel.Document, bool) {
	var doc docModel.Document

	fields, err := s.store.HashGetAll(ctx, docKey(docId))
	if err != nil || len(fields) == 0 {
		return doc, false
	}

	return documentFromFields(fields), true
}

func (s *RedisDocumentStore) ListDocuments(ctx context.Context) ([]docModel.Document, error) {
	ids, err := s.store.SetMembers(ctx, documentsIndexKey)
	if err != nil {
		return nil, err
	}

	docs := make([]docModel.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := s.GetDocument(ctx, id); ok {
			docs = append(docs, doc)
		}
	}

	// newest uploads first
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadDate > docs[j].UploadDate
	})
	return docs, nil
}

func (s *RedisDocumentStore) UpdateStatus(ctx context.Context, docId string, status docModel.DocStatus, errorMessage string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc_id", docId)
	log.Debug("updating document status", "status", status)

	return s.store.HashSet(ctx, docKey(docId), map[string]interface{}{
		"status":        string(status),
		"error_message": errorMessage,
	})
}

func (s *RedisDocumentStore) UpdatePageCount(ctx context.Context, docId string, pages int) error {
	return s.store.HashSet(ctx, docKey(docId), map[string]interface{}{
		"page_count": pages,
	})
}

func (s *RedisDocumentStore) DeleteDocument(ctx context.Context, docId string) error {
	if err := s.store.Del(ctx, docKey(docId)); err != nil {
		s.logger.Error("Error deleting document from Redis", "doc_id", docId, "error", err)
		return err
	}
	return s.store.SetRemove(ctx, documentsIndexKey, docId)
}

func documentFromFields(fields map[string]string) docModel.Document {
	fileSize, _ := strconv.ParseInt(fields["file_size"], 10, 64)
	pageCount, _ := strconv.Atoi(fields["page_count"])

	return docModel.Document{
		Id:               fields["id"],
		Filename:         fields["filename"],
		OriginalFilename: fields["original_filename"],
		FileSize:         fileSize,
		PageCount:        pageCount,
		Status:           docModel.DocStatus(fields["status"]),
		UploadDate:       fields["upload_date"],
		ErrorMessage:     fields["error_message"],
	}
}

func TestDocumentStore(store *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  store,
		logger: logger_i.NewLogger("test document store"),
	}
}
