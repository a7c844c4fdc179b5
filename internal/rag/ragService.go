package rag

import (
	"context"
	"fmt"

	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/domain/qaModel"
	"github.com/dealbrief/memoapi/internal/rag/index"
	"github.com/dealbrief/memoapi/internal/rag/llm"
	"github.com/dealbrief/memoapi/internal/rag/vectorDB"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - Real work happens down low bruh
  - This is the PUBLIC contract.
  - It defines the "behavior" (what handlers can ask for).
  - We expose this to keep the HTTP layer decoupled from our specific logic.

2. service (Private Struct):
  - down low stuff
  - This is the PRIVATE implementation.
  - It holds the "state" (index manager and LLM clients).
  - It is lowercase to prevent external packages from accessing our
    internal dependencies (index, llmProvider) directly.

3. Pointer Receiver (*service):
  - By defining methods on (*service), the struct IMPLICITLY satisfies
    the Service interface.
  - if it quacks like a duck, -it's a duck (Duck Typing)

4. Dependency Injection (NewService):
  - This constructor links the private struct to the public interface.
  - It allows us to swap real retrieval for mocks during testing without
    changing the handler's code.
*/

// Service Handlers will only call this service - they don't need to know the llm or the vector
type Service interface {
	// Answer runs retrieval then one completion. When retrieval returns no
	// chunks the canned no-documents answer comes back and the LLM is never
	// called.
	Answer(ctx context.Context, question string, docIds []string) (qaModel.QAResult, error)

	// AnswerStream emits answer token events, then one sources event, then
	// a terminal done event. The no-chunks path emits a single answer event
	// and done - no sources event, no LLM call.
	AnswerStream(ctx context.Context, question string, docIds []string, emit func(qaModel.StreamEvent) error) error

	// SuggestedQuestions derives starter questions from the documents
	// currently indexed. It never fails: any store trouble yields an empty
	// list.
	SuggestedQuestions(ctx context.Context) []string
}

type service struct {
	index       index.Manager
	llmProvider llm.Provider
	vectorDB    vectorDB.DataProcessor
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(idx index.Manager, llm llm.Provider, vector vectorDB.DataProcessor) Service {
	return &service{
		index:       idx,
		llmProvider: llm,
		vectorDB:    vector,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

func (s *service) Answer(ctx context.Context, question string, docIds []string) (qaModel.QAResult, error) {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	matches, err := s.index.Query(ctx, question, config.RetrievalTopK, docIds)
	if err != nil {
		inMethodLogger.Error("RETRIEVAL_FAILURE", "error", err)
		return qaModel.QAResult{}, err
	}

	if len(matches) == 0 {
		inMethodLogger.Debug("No chunks retrieved, returning canned answer")
		return qaModel.QAResult{
			Question: question,
			Answer:   config.NoDocsAnswer,
			Sources:  []qaModel.Source{},
		}, nil
	}

	prompt := fmt.Sprintf(ragPromptTemplate, buildContext(matches), question)

	answer, err := s.executeLLMStep(ctx, prompt)
	if err != nil {
		inMethodLogger.Error("LLM_GENERATION_FAILURE", "error", err)
		return qaModel.QAResult{}, err
	}

	return qaModel.QAResult{
		Question: question,
		Answer:   answer,
		Sources:  collectSources(matches),
	}, nil
}

func (s *service) AnswerStream(ctx context.Context, question string, docIds []string, emit func(qaModel.StreamEvent) error) error {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	matches, err := s.index.Query(ctx, question, config.RetrievalTopK, docIds)
	if err != nil {
		inMethodLogger.Error("RETRIEVAL_FAILURE", "error", err)
		return err
	}

	if len(matches) == 0 {
		inMethodLogger.Debug("No chunks retrieved, streaming canned answer")
		if err := emit(qaModel.StreamEvent{Type: qaModel.StreamEventAnswer, Data: config.NoDocsAnswer}); err != nil {
			return err
		}
		return emit(qaModel.StreamEvent{Type: qaModel.StreamEventDone, Data: ""})
	}

	prompt := fmt.Sprintf(ragPromptTemplate, buildContext(matches), question)

	err = s.executeLLMStreamStep(ctx, prompt, func(token string) error {
		return emit(qaModel.StreamEvent{Type: qaModel.StreamEventAnswer, Data: token})
	})
	if err != nil {
		inMethodLogger.Error("LLM_STREAM_FAILURE", "error", err)
		return err
	}

	if err := emit(qaModel.StreamEvent{Type: qaModel.StreamEventSources, Data: collectSources(matches)}); err != nil {
		return err
	}
	return emit(qaModel.StreamEvent{Type: qaModel.StreamEventDone, Data: ""})
}

func (s *service) SuggestedQuestions(ctx context.Context) []string {
	count, err := s.vectorDB.Count(ctx)
	if err != nil || count == 0 {
		return []string{}
	}

	names, err := s.vectorDB.DocNames(ctx, 200)
	if err != nil || len(names) == 0 {
		return []string{}
	}

	if len(names) == 1 {
		name := names[0]
		return []string{
			fmt.Sprintf("What is %s about?", name),
			fmt.Sprintf("What are the key risks mentioned in %s?", name),
			fmt.Sprintf("What is the business model described in %s?", name),
			fmt.Sprintf("What traction metrics are in %s?", name),
			fmt.Sprintf("What is the funding ask in %s?", name),
		}
	}

	return []string{
		fmt.Sprintf("Compare the business models across %s", joinNames(names, 5)),
		"Which company has the strongest traction?",
		"What are the common risks across all documents?",
		"Compare the TAM of all companies",
		"Which company requires the least funding?",
		"Who are the founders and their backgrounds?",
	}
}
