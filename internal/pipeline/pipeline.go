// Package pipeline runs the document processing stages. One worker drains
// the queue, so documents are processed strictly one at a time and progress
// percentages for a document never interleave with another run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dealbrief/memoapi/internal/analysis"
	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/domain/analysisModel"
	"github.com/dealbrief/memoapi/internal/domain/docModel"
	"github.com/dealbrief/memoapi/internal/metrics"
	"github.com/dealbrief/memoapi/internal/progress"
	"github.com/dealbrief/memoapi/internal/rag/index"
	"github.com/dealbrief/memoapi/internal/rag/ingest"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

// ErrQueueFull is returned when the pipeline backlog is at capacity.
var ErrQueueFull = errors.New("processing queue is full")

// taskTimeout bounds one document end to end, AI extraction included.
const taskTimeout = 10 * time.Minute

// Task is one document queued for processing.
type Task struct {
	DocId    string
	Path     string
	Filename string
	TraceId  string
}

type Orchestrator struct {
	documents   docModel.DocumentStore
	index       index.Manager
	analysis    analysis.Service
	broadcaster *progress.Broadcaster
	logger      *logger_i.Logger

	tasks           chan Task
	stopChannel     chan bool
	workerWaitGroup *sync.WaitGroup
}

// NewOrchestrator constructor
func NewOrchestrator(documents docModel.DocumentStore, idx index.Manager, analysisSvc analysis.Service, broadcaster *progress.Broadcaster) *Orchestrator {
	return &Orchestrator{
		documents:   documents,
		index:       idx,
		analysis:    analysisSvc,
		broadcaster: broadcaster,
		logger:      logger_i.NewLogger("Pipeline"),
		tasks:       make(chan Task, config.PipelineQueueSize),
	}
}

// Start launches the single pipeline worker. The worker drains the queue
// until the stop channel fires.
func (o *Orchestrator) Start(stopChannel chan bool, waitGroup *sync.WaitGroup) {
	o.stopChannel = stopChannel
	o.workerWaitGroup = waitGroup

	o.workerWaitGroup.Add(1)
	go o.worker()
	o.logger.Info("Pipeline worker started")
}

// Enqueue queues a document for processing without blocking the caller.
func (o *Orchestrator) Enqueue(task Task) error {
	select {
	case o.tasks <- task:
		metrics.IncrementDocumentsInQueue()
		return nil
	default:
		return ErrQueueFull
	}
}

// Reprocess re-runs the full pipeline for an existing document. Previous
// vectors are removed best-effort first, so a half-indexed document can't
// double up.
func (o *Orchestrator) Reprocess(ctx context.Context, doc docModel.Document, path string) error {
	if err := o.index.RemoveDocument(ctx, doc.Id); err != nil {
		o.logger.Warn("Could not remove old vectors before reprocess", "doc_id", doc.Id, "error", err)
	}
	o.broadcaster.Clear(doc.Id)

	if err := o.documents.UpdateStatus(ctx, doc.Id, docModel.DocStatusUploaded, ""); err != nil {
		return err
	}

	o.emit(doc.Id, docModel.StepUpload, docModel.StepCompleted, fmt.Sprintf("File queued for reprocessing: %s", doc.OriginalFilename), 5)

	traceId, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return o.Enqueue(Task{
		DocId:    doc.Id,
		Path:     path,
		Filename: doc.OriginalFilename,
		TraceId:  traceId,
	})
}

func (o *Orchestrator) worker() {
	for {
		select {
		case task := <-o.tasks:
			metrics.DecrementDocumentsInQueue()
			o.process(task)

		case <-o.stopChannel:
			o.logger.Info("Pipeline worker stopping")
			o.workerWaitGroup.Done()
			return
		}
	}
}

func (o *Orchestrator) process(task Task) {
	metrics.MarkPipelineBusy()
	start := time.Now()
	status := string(docModel.DocStatusProcessed)
	defer func() {
		metrics.MarkPipelineIdle()
		metrics.CaptureDocumentMetrics(status, time.Since(start))
	}()

	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, task.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, taskTimeout)
	defer cancel()

	log := o.logger.With("traceId", task.TraceId, "doc_id", task.DocId)
	log.Info("Processing document", "file", task.Filename)

	if err := o.documents.UpdateStatus(ctx, task.DocId, docModel.DocStatusProcessing, ""); err != nil {
		log.Error("Failed to mark document processing", "error", err)
	}

	// Stage 1: text extraction
	o.emit(task.DocId, docModel.StepExtraction, docModel.StepStarted, fmt.Sprintf("Extracting text from %s...", task.Filename), 10)
	pages, err := o.extractStep(ctx, task)
	if err != nil {
		status = string(docModel.DocStatusError)
		o.fail(ctx, task, log, err)
		return
	}
	o.emit(task.DocId, docModel.StepExtraction, docModel.StepCompleted, fmt.Sprintf("Extracted text from %d pages", len(pages)), 25)

	if err := o.documents.UpdatePageCount(ctx, task.DocId, len(pages)); err != nil {
		log.Error("Failed to persist page count", "error", err)
	}

	// Stage 2: chunking and embedding
	o.emit(task.DocId, docModel.StepEmbedding, docModel.StepStarted, "Chunking text and generating embeddings...", 30)
	if _, err := o.index.AddDocument(ctx, task.DocId, task.Filename, pages); err != nil {
		status = string(docModel.DocStatusError)
		o.fail(ctx, task, log, err)
		return
	}
	o.emit(task.DocId, docModel.StepEmbedding, docModel.StepCompleted, "Document indexed in vector database", 60)

	// Stage 3: AI extraction. A failure here is recorded on the document
	// but the memo is already searchable, so it still ends up processed.
	o.emit(task.DocId, docModel.StepAIExtraction, docModel.StepStarted, "Running AI analysis to extract key data...", 65)
	extractionErr := o.extractionStep(ctx, task)
	if extractionErr != "" {
		log.Error("AI extraction failed", "error", extractionErr)
		o.emit(task.DocId, docModel.StepAIExtraction, docModel.StepError, extractionErr, 95)
	} else {
		o.emit(task.DocId, docModel.StepAIExtraction, docModel.StepCompleted, "AI extraction complete", 95)
	}

	if err := o.documents.UpdateStatus(ctx, task.DocId, docModel.DocStatusProcessed, extractionErr); err != nil {
		log.Error("Failed to mark document processed", "error", err)
	}
	o.emit(task.DocId, docModel.StepDone, docModel.StepCompleted, "Document fully processed!", 100)
	log.Info("Document processed", "pages", len(pages))
}

func (o *Orchestrator) extractStep(ctx context.Context, task Task) ([]docModel.Page, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("text_extraction", time.Since(start)) }()

	pages, err := ingest.ExtractPages(task.Path)
	if err != nil {
		return nil, err
	}
	// a scanned or image-only file parses fine but carries nothing to index
	if !ingest.HasText(pages) {
		return nil, fmt.Errorf("no extractable text in %s", task.Filename)
	}
	return pages, nil
}

// extractionStep runs the structured extraction and reports the failure
// message, empty on success. An error-status result counts as a failure.
func (o *Orchestrator) extractionStep(ctx context.Context, task Task) string {
	result, err := o.analysis.ExtractDocument(ctx, task.DocId, task.Path)
	if err != nil {
		return err.Error()
	}
	if result.Status == analysisModel.ResultStatusError {
		return result.ErrorMessage
	}
	return ""
}

func (o *Orchestrator) fail(ctx context.Context, task Task, log *logger_i.Logger, err error) {
	log.Error("Document processing failed", "error", err)

	if updateErr := o.documents.UpdateStatus(ctx, task.DocId, docModel.DocStatusError, err.Error()); updateErr != nil {
		log.Error("Failed to mark document errored", "error", updateErr)
	}
	o.emit(task.DocId, docModel.StepFailed, docModel.StepError, err.Error(), 0)
}

func (o *Orchestrator) emit(docId string, step string, status docModel.StepStatus, detail string, pct int) {
	o.broadcaster.Publish(docModel.ProgressEvent{
		DocId:     docId,
		Step:      step,
		Status:    status,
		Detail:    detail,
		Progress:  pct,
		Timestamp: time.Now(),
	})
}
