package handlers

import (
	"sync"

	"github.com/dealbrief/memoapi/internal/analysis"
	"github.com/dealbrief/memoapi/internal/domain/analysisModel"
	"github.com/dealbrief/memoapi/internal/domain/docModel"
	"github.com/dealbrief/memoapi/internal/domain/qaModel"
	"github.com/dealbrief/memoapi/internal/pipeline"
	"github.com/dealbrief/memoapi/internal/progress"
	"github.com/dealbrief/memoapi/internal/rag"
	"github.com/dealbrief/memoapi/internal/rag/index"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

var (
	handlerInstance *AppHandler //private singleton
	once            sync.Once
	logDH           *logger_i.Logger
	logQH           *logger_i.Logger
	logAH           *logger_i.Logger
)

// AppHandler carries every dependency the HTTP layer needs. Handlers are
// plain functions so the middleware chain can wrap them; they all reach the
// singleton set up at boot.
type AppHandler struct {
	Documents docModel.DocumentStore
	History   qaModel.HistoryStore
	Results   analysisModel.ResultStore
	Pipeline  *pipeline.Orchestrator
	Progress  *progress.Broadcaster
	RAG       rag.Service
	Analysis  analysis.Service
	Index     index.Manager
}

func InitHandlers(deps AppHandler) {
	once.Do(func() {
		handlerInstance = &deps

		logDH = logger_i.NewLogger("DocumentHandler")
		logQH = logger_i.NewLogger("QAHandler")
		logAH = logger_i.NewLogger("AnalysisHandler")
		logDH.Info("Starting request handlers")
	})
}
