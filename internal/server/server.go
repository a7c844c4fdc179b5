package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/dealbrief/memoapi/internal/adapter/utils"
	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/middleware"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

var (
	server  *http.Server
	_logger *logger_i.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

func CreateServer(listenAddr string) {
	_logger = logger_i.NewLogger("Server")

	r := utils.GetRouter()

	r.Router.Get("/api/v1/health", middleware.HealthHandler)

	r.Router.Post("/api/v1/documents/upload", middleware.UploadDocumentsHandler)
	r.Router.Get("/api/v1/documents", middleware.ListDocumentsHandler)
	r.Router.Get("/api/v1/documents/{id}", middleware.GetDocumentHandler)
	r.Router.Delete("/api/v1/documents/{id}", middleware.DeleteDocumentHandler)
	r.Router.Post("/api/v1/documents/{id}/reprocess", middleware.ReprocessDocumentHandler)
	r.Router.Get("/api/v1/documents/{id}/progress/stream", middleware.DocumentProgressStreamHandler)

	r.Router.Post("/api/v1/qa/ask", middleware.AskHandler)
	r.Router.Post("/api/v1/qa/ask/stream", middleware.AskStreamHandler)
	r.Router.Get("/api/v1/qa/history", middleware.QAHistoryHandler)
	r.Router.Get("/api/v1/qa/suggested-questions", middleware.SuggestedQuestionsHandler)
	r.Router.Post("/api/v1/qa/sessions", middleware.CreateSessionHandler)
	r.Router.Get("/api/v1/qa/sessions", middleware.ListSessionsHandler)
	r.Router.Get("/api/v1/qa/sessions/{id}", middleware.GetSessionHandler)
	r.Router.Delete("/api/v1/qa/sessions/{id}", middleware.DeleteSessionHandler)
	r.Router.Post("/api/v1/qa/sessions/{id}/messages", middleware.AddSessionMessageHandler)

	r.Router.Get("/api/v1/extraction/results", middleware.ListExtractionsHandler)
	r.Router.Get("/api/v1/extraction/results/{id}", middleware.GetExtractionHandler)
	r.Router.Post("/api/v1/extraction/process/{id}", middleware.ProcessExtractionHandler)
	r.Router.Get("/api/v1/comparison/documents", middleware.ComparisonDocumentsHandler)

	r.Router.Post("/api/v1/faq/generate/{id}", middleware.GenerateFAQHandler)
	r.Router.Get("/api/v1/faq/get/{id}", middleware.GetFAQHandler)
	r.Router.Post("/api/v1/faq/regenerate/{id}", middleware.RegenerateFAQHandler)

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error :", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	println("\nServer is shutting down", state)

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully: %s", err)
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully is shutting down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
