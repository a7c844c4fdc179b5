// @title           Investment Memo Analyzer API
// @version         1.0
// @description     Document ingestion, retrieval-augmented QA and structured extraction for investment memos
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /api/v1
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dealbrief/memoapi/internal/analysis"
	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/data/store"
	"github.com/dealbrief/memoapi/internal/domain/analysisModel"
	"github.com/dealbrief/memoapi/internal/domain/docModel"
	"github.com/dealbrief/memoapi/internal/domain/qaModel"
	"github.com/dealbrief/memoapi/internal/handlers"
	"github.com/dealbrief/memoapi/internal/pipeline"
	"github.com/dealbrief/memoapi/internal/progress"
	"github.com/dealbrief/memoapi/internal/rag"
	"github.com/dealbrief/memoapi/internal/rag/embedding"
	"github.com/dealbrief/memoapi/internal/rag/embedding/googleEmbedding"
	"github.com/dealbrief/memoapi/internal/rag/embedding/openaiEmbedding"
	"github.com/dealbrief/memoapi/internal/rag/index"
	"github.com/dealbrief/memoapi/internal/rag/llm"
	"github.com/dealbrief/memoapi/internal/rag/llm/gemini"
	"github.com/dealbrief/memoapi/internal/rag/llm/openaiLLM"
	"github.com/dealbrief/memoapi/internal/rag/vectorDB/qdrantDB"
	"github.com/dealbrief/memoapi/internal/server"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

var (
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	config.LoadEnv()
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//stores - redis when it's up, in-memory otherwise
	var documentStore docModel.DocumentStore
	var resultStore analysisModel.ResultStore
	var historyStore qaModel.HistoryStore

	redisDocuments := store.GetRedisDocumentStore(serviceContext)
	redisResults := store.GetRedisResultStore(serviceContext)
	redisHistory := store.GetRedisHistoryStore(serviceContext)
	if redisDocuments == nil || redisResults == nil || redisHistory == nil {
		logger.Error("Redis stores are offline, falling back to in-memory stores")
		documentStore = store.InitInMemoryDocumentStore()
		resultStore = store.InitInMemoryResultStore()
		historyStore = store.InitInMemoryHistoryStore()
	} else {
		documentStore = redisDocuments
		resultStore = redisResults
		historyStore = redisHistory
	}

	vectorDB := qdrantDB.GetQuadrantClient(serviceContext)
	embedder, llmProvider := buildProviders(serviceContext)

	if vectorDB == nil || embedder == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDB != nil, "EmbeddingService", embedder != nil, "LLMProvider", llmProvider != nil)
		return
	}

	indexManager := index.NewManager(vectorDB, embedder)
	ragService := rag.NewService(indexManager, llmProvider, vectorDB)
	analysisService := analysis.NewService(llmProvider, resultStore)

	broadcaster := progress.NewBroadcaster()
	orchestrator := pipeline.NewOrchestrator(documentStore, indexManager, analysisService, broadcaster)
	orchestrator.Start(stopWorkerChannel, &workerWaitGroup)

	handlers.InitHandlers(handlers.AppHandler{
		Documents: documentStore,
		History:   historyStore,
		Results:   resultStore,
		Pipeline:  orchestrator,
		Progress:  broadcaster,
		RAG:       ragService,
		Analysis:  analysisService,
		Index:     indexManager,
	})

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

// buildProviders picks the embedding and LLM clients. OpenAI is the default,
// LLM_PROVIDER=gemini switches to the Google stack.
func buildProviders(ctx context.Context) (embedding.Embedder, llm.Provider) {
	switch config.Env("LLM_PROVIDER", "openai") {
	case "gemini", "google":
		apiKey := config.Env("GOOGLE_API_KEY", "")
		return googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, apiKey),
			gemini.GetGeminiClient(ctx, config.GeminiModelName, apiKey)
	default:
		apiKey := config.Env("OPENAI_API_KEY", "")
		return openaiEmbedding.GetOpenAIEmbeddingClient(ctx, config.OpenAIEmbeddingModel, apiKey),
			openaiLLM.GetOpenAIClient(ctx, config.OpenAILLMModel, apiKey)
	}
}
