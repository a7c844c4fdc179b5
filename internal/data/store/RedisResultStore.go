package store

import (
	"context"
	"encoding/json"

	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/data/redisStore"
	"github.com/dealbrief/memoapi/internal/domain/analysisModel"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

type RedisResultStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisResultStore(ctx context.Context) *RedisResultStore {
	return &RedisResultStore{
		store:  redisStore.GetRedisStore(ctx, config.RedisResultStore),
		logger: logger_i.NewLogger("ResultStore"),
	}
}

func extractionKey(docId string) string {
	return "extraction:" + docId
}

func faqKey(docId string) string {
	return "faq:" + docId
}

func (s *RedisResultStore) SaveExtraction(ctx context.Context, result analysisModel.ExtractionResult) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc_id", result.DocId)

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, extractionKey(result.DocId), data, config.RedisResultTTL)
	if err == nil {
		log.Debug("Saved extraction result")
	}
	return err
}

func (s *RedisResultStore) GetExtraction(ctx context.Context, docId string) (analysisModel.ExtractionResult, bool) {
	var result analysisModel.ExtractionResult

	val, err := s.store.Get(ctx, extractionKey(docId))
	if s.store.IsNil(err) || err != nil {
		return result, false
	}
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return result, false
	}
	return result, true
}

func (s *RedisResultStore) SaveFAQ(ctx context.Context, result analysisModel.FAQResult) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc_id", result.DocId)

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, faqKey(result.DocId), data, config.RedisResultTTL)
	if err == nil {
		log.Debug("Saved FAQ result")
	}
	return err
}

func (s *RedisResultStore) GetFAQ(ctx context.Context, docId string) (analysisModel.FAQResult, bool) {
	var result analysisModel.FAQResult

	val, err := s.store.Get(ctx, faqKey(docId))
	if s.store.IsNil(err) || err != nil {
		return result, false
	}
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return result, false
	}
	return result, true
}

func (s *RedisResultStore) DeleteResults(ctx context.Context, docId string) error {
	return s.store.Del(ctx, extractionKey(docId), faqKey(docId))
}

func TestResultStore(store *redisStore.Store) *RedisResultStore {
	return &RedisResultStore{
		store:  store,
		logger: logger_i.NewLogger("test result store"),
	}
}
