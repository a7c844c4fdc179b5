package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/domain/analysisModel"
	"github.com/dealbrief/memoapi/internal/metrics"
	"github.com/dealbrief/memoapi/internal/rag/ingest"
	"github.com/dealbrief/memoapi/internal/rag/llm"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

// ErrAlreadyGenerating is returned when a generation for the same document
// is still running. Callers surface it as a conflict, not a failure.
var ErrAlreadyGenerating = errors.New("generation already in progress for this document")

// Service Handlers and the pipeline call this - they don't need to know the llm or the cache
type Service interface {
	// ExtractDocument pulls the structured record out of one memo and caches
	// it. Regeneration overwrites the previous entry. A second trigger while
	// one is running returns ErrAlreadyGenerating.
	ExtractDocument(ctx context.Context, docId string, path string) (analysisModel.ExtractionResult, error)

	// CachedExtraction returns the stored result, if any.
	CachedExtraction(ctx context.Context, docId string) (analysisModel.ExtractionResult, bool)

	// CompletedExtractions filters the given documents down to those with a
	// completed extraction, for the comparison view.
	CompletedExtractions(ctx context.Context, docIds []string) []analysisModel.ExtractionResult

	// GenerateFAQs answers the standard investor question set for one memo
	// and caches the result. Same guard semantics as ExtractDocument.
	GenerateFAQs(ctx context.Context, docId string, docName string, path string) (analysisModel.FAQResult, error)

	// CachedFAQ returns the stored result, if any.
	CachedFAQ(ctx context.Context, docId string) (analysisModel.FAQResult, bool)
}

type service struct {
	llmProvider llm.Provider
	results     analysisModel.ResultStore
	logger      *logger_i.Logger

	// generating tracks in-flight work per (kind, doc) so a double trigger
	// can't run two completions against the same memo.
	mu         sync.Mutex
	generating map[string]bool
}

// NewService constructor
func NewService(llm llm.Provider, results analysisModel.ResultStore) Service {
	return &service{
		llmProvider: llm,
		results:     results,
		logger:      logger_i.NewLogger("Analysis Service :"),
		generating:  make(map[string]bool),
	}
}

func (s *service) ExtractDocument(ctx context.Context, docId string, path string) (analysisModel.ExtractionResult, error) {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc_id", docId)

	release, err := s.acquire("extraction", docId)
	if err != nil {
		return analysisModel.ExtractionResult{}, err
	}
	defer release()

	text, contentErr := s.fullText(path)
	if contentErr != nil {
		return analysisModel.ExtractionResult{}, contentErr
	}
	if text == "" {
		return analysisModel.ExtractionResult{
			DocId:        docId,
			Status:       analysisModel.ResultStatusError,
			ErrorMessage: "no text extracted from document",
		}, nil
	}

	response, err := s.executeCompletionStep(ctx, "ai_extraction", buildExtractionPrompt(text))
	if err != nil {
		inMethodLogger.Error("EXTRACTION_LLM_FAILURE", "error", err)
		return analysisModel.ExtractionResult{}, err
	}

	result, decodeErr := decodeExtraction(docId, response)
	if decodeErr != nil {
		inMethodLogger.Error("EXTRACTION_PARSE_FAILURE", "error", decodeErr)
		return analysisModel.ExtractionResult{
			DocId:        docId,
			Status:       analysisModel.ResultStatusError,
			ErrorMessage: "failed to parse model response as JSON",
		}, nil
	}

	result.Status = analysisModel.ResultStatusCompleted
	if err := s.results.SaveExtraction(ctx, result); err != nil {
		inMethodLogger.Error("EXTRACTION_CACHE_FAILURE", "error", err)
	}
	return result, nil
}

func (s *service) CachedExtraction(ctx context.Context, docId string) (analysisModel.ExtractionResult, bool) {
	return s.results.GetExtraction(ctx, docId)
}

func (s *service) CompletedExtractions(ctx context.Context, docIds []string) []analysisModel.ExtractionResult {
	completed := make([]analysisModel.ExtractionResult, 0, len(docIds))
	for _, id := range docIds {
		result, ok := s.results.GetExtraction(ctx, id)
		if ok && result.Status == analysisModel.ResultStatusCompleted {
			completed = append(completed, result)
		}
	}
	return completed
}

func (s *service) GenerateFAQs(ctx context.Context, docId string, docName string, path string) (analysisModel.FAQResult, error) {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "doc_id", docId)

	release, err := s.acquire("faq", docId)
	if err != nil {
		return analysisModel.FAQResult{}, err
	}
	defer release()

	text, contentErr := s.fullText(path)
	if contentErr != nil {
		return analysisModel.FAQResult{}, contentErr
	}
	if text == "" {
		return analysisModel.FAQResult{
			DocId:        docId,
			DocName:      docName,
			Status:       analysisModel.ResultStatusError,
			ErrorMessage: "no text extracted from document",
		}, nil
	}

	response, err := s.executeCompletionStep(ctx, "faq_generation", buildFAQPrompt(text))
	if err != nil {
		inMethodLogger.Error("FAQ_LLM_FAILURE", "error", err)
		return analysisModel.FAQResult{}, err
	}

	items, decodeErr := decodeFAQItems(response)
	if decodeErr != nil {
		inMethodLogger.Error("FAQ_PARSE_FAILURE", "error", decodeErr)
		return analysisModel.FAQResult{
			DocId:        docId,
			DocName:      docName,
			Status:       analysisModel.ResultStatusError,
			ErrorMessage: "failed to parse model response as JSON",
		}, nil
	}

	result := analysisModel.FAQResult{
		DocId:   docId,
		DocName: docName,
		FAQs:    items,
		Status:  analysisModel.ResultStatusCompleted,
	}
	if err := s.results.SaveFAQ(ctx, result); err != nil {
		inMethodLogger.Error("FAQ_CACHE_FAILURE", "error", err)
	}
	return result, nil
}

func (s *service) CachedFAQ(ctx context.Context, docId string) (analysisModel.FAQResult, bool) {
	return s.results.GetFAQ(ctx, docId)
}

// acquire marks (kind, doc) as generating. The returned release must run
// unconditionally - callers defer it right away.
func (s *service) acquire(kind string, docId string) (func(), error) {
	key := fmt.Sprintf("%s:%s", kind, docId)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generating[key] {
		return nil, ErrAlreadyGenerating
	}
	s.generating[key] = true

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.generating, key)
	}, nil
}

// fullText re-extracts the document and clamps it under the model context
// window. The clamp keeps the head of the memo - the summary-heavy part.
func (s *service) fullText(path string) (string, error) {
	pages, err := ingest.ExtractPages(path)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(ingest.ExtractFullText(pages))
	runes := []rune(text)
	if len(runes) > config.MaxPromptChars {
		text = string(runes[:config.MaxPromptChars])
	}
	return text, nil
}

func (s *service) executeCompletionStep(ctx context.Context, step string, prompt string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics(step, time.Since(start)) }()

	return s.llmProvider.Complete(ctx, prompt, true)
}
