package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/domain/analysisModel"
	"github.com/dealbrief/memoapi/internal/domain/docModel"
	"github.com/dealbrief/memoapi/internal/pipeline"
	"github.com/dealbrief/memoapi/internal/progress"
	"github.com/dealbrief/memoapi/internal/rag/vectorDB"
)

type mockDocStore struct {
	mu   sync.Mutex
	docs map[string]docModel.Document
}

func newMockDocStore(docs ...docModel.Document) *mockDocStore {
	s := &mockDocStore{docs: make(map[string]docModel.Document)}
	for _, d := range docs {
		s.docs[d.Id] = d
	}
	return s
}

func (s *mockDocStore) GetDocument(ctx context.Context, docId string) (docModel.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[docId]
	return d, ok
}

func (s *mockDocStore) ListDocuments(ctx context.Context) ([]docModel.Document, error) {
	return nil, nil
}

func (s *mockDocStore) SaveDocument(ctx context.Context, doc docModel.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.Id] = doc
	return nil
}

func (s *mockDocStore) UpdateStatus(ctx context.Context, docId string, status docModel.DocStatus, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.docs[docId]
	d.Id = docId
	d.Status = status
	d.ErrorMessage = errorMessage
	s.docs[docId] = d
	return nil
}

func (s *mockDocStore) UpdatePageCount(ctx context.Context, docId string, pages int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.docs[docId]
	d.Id = docId
	d.PageCount = pages
	s.docs[docId] = d
	return nil
}

func (s *mockDocStore) DeleteDocument(ctx context.Context, docId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, docId)
	return nil
}

type mockIndex struct {
	OnAddDocument    func(ctx context.Context, docId string, docName string, pages []docModel.Page) (int, error)
	OnRemoveDocument func(ctx context.Context, docId string) error
}

func (m *mockIndex) AddDocument(ctx context.Context, docId string, docName string, pages []docModel.Page) (int, error) {
	if m.OnAddDocument != nil {
		return m.OnAddDocument(ctx, docId, docName, pages)
	}
	return len(pages), nil
}

func (m *mockIndex) Query(ctx context.Context, question string, k int, docIds []string) ([]vectorDB.Match, error) {
	return nil, nil
}

func (m *mockIndex) RemoveDocument(ctx context.Context, docId string) error {
	if m.OnRemoveDocument != nil {
		return m.OnRemoveDocument(ctx, docId)
	}
	return nil
}

type mockAnalysis struct {
	OnExtractDocument func(ctx context.Context, docId string, path string) (analysisModel.ExtractionResult, error)
}

func (m *mockAnalysis) ExtractDocument(ctx context.Context, docId string, path string) (analysisModel.ExtractionResult, error) {
	if m.OnExtractDocument != nil {
		return m.OnExtractDocument(ctx, docId, path)
	}
	return analysisModel.ExtractionResult{DocId: docId, Status: analysisModel.ResultStatusCompleted}, nil
}

func (m *mockAnalysis) CachedExtraction(ctx context.Context, docId string) (analysisModel.ExtractionResult, bool) {
	return analysisModel.ExtractionResult{}, false
}

func (m *mockAnalysis) CompletedExtractions(ctx context.Context, docIds []string) []analysisModel.ExtractionResult {
	return nil
}

func (m *mockAnalysis) GenerateFAQs(ctx context.Context, docId string, docName string, path string) (analysisModel.FAQResult, error) {
	return analysisModel.FAQResult{}, nil
}

func (m *mockAnalysis) CachedFAQ(ctx context.Context, docId string) (analysisModel.FAQResult, bool) {
	return analysisModel.FAQResult{}, false
}

func writeDocFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memo.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("could not write doc file: %v", err)
	}
	return path
}

// waitForTerminal blocks until the document reaches processed or error.
func waitForTerminal(t *testing.T, store *mockDocStore, docId string) docModel.Document {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("document %s never reached a terminal status", docId)
		case <-time.After(10 * time.Millisecond):
			doc, ok := store.GetDocument(context.Background(), docId)
			if ok && (doc.Status == docModel.DocStatusProcessed || doc.Status == docModel.DocStatusError) {
				return doc
			}
		}
	}
}

func startOrchestrator(t *testing.T, o *pipeline.Orchestrator) {
	t.Helper()
	stop := make(chan bool)
	wg := &sync.WaitGroup{}
	o.Start(stop, wg)
	t.Cleanup(func() {
		close(stop)
		wg.Wait()
	})
}

func TestProcess_HappyFlow(t *testing.T) {
	path := writeDocFile(t, "Acme is raising a seed round. Revenue is $2M ARR.")
	store := newMockDocStore(docModel.Document{Id: "doc-1", Status: docModel.DocStatusUploaded})
	b := progress.NewBroadcaster()

	o := pipeline.NewOrchestrator(store, &mockIndex{}, &mockAnalysis{}, b)
	startOrchestrator(t, o)

	if err := o.Enqueue(pipeline.Task{DocId: "doc-1", Path: path, Filename: "memo.txt", TraceId: "trace-1"}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	doc := waitForTerminal(t, store, "doc-1")
	if doc.Status != docModel.DocStatusProcessed {
		t.Fatalf("status got %s, want processed (error=%q)", doc.Status, doc.ErrorMessage)
	}
	if doc.PageCount != 1 {
		t.Errorf("page count got %d, want 1", doc.PageCount)
	}
	if doc.ErrorMessage != "" {
		t.Errorf("unexpected error message: %q", doc.ErrorMessage)
	}

	wantProgress := []int{10, 25, 30, 60, 65, 95, 100}
	backlog := b.Backlog("doc-1")
	if len(backlog) != len(wantProgress) {
		t.Fatalf("event count got %d, want %d: %+v", len(backlog), len(wantProgress), backlog)
	}
	for i, want := range wantProgress {
		if backlog[i].Progress != want {
			t.Errorf("event %d progress got %d, want %d", i, backlog[i].Progress, want)
		}
	}
}

func TestProcess_BlankDocumentIsTerminal(t *testing.T) {
	path := writeDocFile(t, "   \n\t  \n")
	store := newMockDocStore(docModel.Document{Id: "doc-1", Status: docModel.DocStatusUploaded})
	b := progress.NewBroadcaster()

	indexed := false
	idx := &mockIndex{
		OnAddDocument: func(ctx context.Context, docId string, docName string, pages []docModel.Page) (int, error) {
			indexed = true
			return len(pages), nil
		},
	}

	o := pipeline.NewOrchestrator(store, idx, &mockAnalysis{}, b)
	startOrchestrator(t, o)

	if err := o.Enqueue(pipeline.Task{DocId: "doc-1", Path: path, Filename: "memo.txt"}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	doc := waitForTerminal(t, store, "doc-1")
	if doc.Status != docModel.DocStatusError {
		t.Fatalf("status got %s, want error for whitespace-only document", doc.Status)
	}
	if doc.ErrorMessage == "" {
		t.Error("expected error message on document")
	}
	if indexed {
		t.Error("blank document must not reach the indexing stage")
	}

	backlog := b.Backlog("doc-1")
	last := backlog[len(backlog)-1]
	if last.Step != docModel.StepFailed || last.Progress != 0 {
		t.Errorf("terminal event got %+v, want error step with progress 0", last)
	}
}

func TestProcess_IndexFailureIsTerminal(t *testing.T) {
	path := writeDocFile(t, "Some memo text.")
	store := newMockDocStore(docModel.Document{Id: "doc-1", Status: docModel.DocStatusUploaded})
	b := progress.NewBroadcaster()

	idx := &mockIndex{
		OnAddDocument: func(ctx context.Context, docId string, docName string, pages []docModel.Page) (int, error) {
			return 0, errors.New("qdrant unreachable")
		},
	}

	o := pipeline.NewOrchestrator(store, idx, &mockAnalysis{}, b)
	startOrchestrator(t, o)

	if err := o.Enqueue(pipeline.Task{DocId: "doc-1", Path: path, Filename: "memo.txt"}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	doc := waitForTerminal(t, store, "doc-1")
	if doc.Status != docModel.DocStatusError {
		t.Fatalf("status got %s, want error", doc.Status)
	}
	if doc.ErrorMessage == "" {
		t.Error("expected error message on document")
	}

	backlog := b.Backlog("doc-1")
	last := backlog[len(backlog)-1]
	if last.Step != docModel.StepFailed || last.Progress != 0 {
		t.Errorf("terminal event got %+v, want error step with progress 0", last)
	}
}

func TestProcess_ExtractionFailureTolerated(t *testing.T) {
	path := writeDocFile(t, "Some memo text.")
	store := newMockDocStore(docModel.Document{Id: "doc-1", Status: docModel.DocStatusUploaded})
	b := progress.NewBroadcaster()

	an := &mockAnalysis{
		OnExtractDocument: func(ctx context.Context, docId string, path string) (analysisModel.ExtractionResult, error) {
			return analysisModel.ExtractionResult{}, errors.New("model overloaded")
		},
	}

	o := pipeline.NewOrchestrator(store, &mockIndex{}, an, b)
	startOrchestrator(t, o)

	if err := o.Enqueue(pipeline.Task{DocId: "doc-1", Path: path, Filename: "memo.txt"}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	// the document stays searchable: stage 3 trouble is recorded, not fatal
	doc := waitForTerminal(t, store, "doc-1")
	if doc.Status != docModel.DocStatusProcessed {
		t.Fatalf("status got %s, want processed", doc.Status)
	}
	if doc.ErrorMessage == "" {
		t.Error("expected extraction failure recorded on document")
	}

	backlog := b.Backlog("doc-1")
	last := backlog[len(backlog)-1]
	if last.Step != docModel.StepDone || last.Progress != 100 {
		t.Errorf("terminal event got %+v, want done at 100", last)
	}
}

func TestProcess_StrictlySequential(t *testing.T) {
	store := newMockDocStore(
		docModel.Document{Id: "doc-1", Status: docModel.DocStatusUploaded},
		docModel.Document{Id: "doc-2", Status: docModel.DocStatusUploaded},
		docModel.Document{Id: "doc-3", Status: docModel.DocStatusUploaded},
	)
	b := progress.NewBroadcaster()

	var inFlight, maxInFlight int32
	var order []string
	var orderMu sync.Mutex

	idx := &mockIndex{
		OnAddDocument: func(ctx context.Context, docId string, docName string, pages []docModel.Page) (int, error) {
			cur := atomic.AddInt32(&inFlight, 1)
			for {
				prev := atomic.LoadInt32(&maxInFlight)
				if cur <= prev || atomic.CompareAndSwapInt32(&maxInFlight, prev, cur) {
					break
				}
			}
			time.Sleep(30 * time.Millisecond)
			orderMu.Lock()
			order = append(order, docId)
			orderMu.Unlock()
			atomic.AddInt32(&inFlight, -1)
			return len(pages), nil
		},
	}

	o := pipeline.NewOrchestrator(store, idx, &mockAnalysis{}, b)
	startOrchestrator(t, o)

	for _, id := range []string{"doc-1", "doc-2", "doc-3"} {
		path := writeDocFile(t, "Memo text for "+id+".")
		if err := o.Enqueue(pipeline.Task{DocId: id, Path: path, Filename: id + ".txt"}); err != nil {
			t.Fatalf("Enqueue %s failed: %v", id, err)
		}
	}

	for _, id := range []string{"doc-1", "doc-2", "doc-3"} {
		waitForTerminal(t, store, id)
	}

	if got := atomic.LoadInt32(&maxInFlight); got != 1 {
		t.Errorf("max concurrent documents got %d, want 1", got)
	}

	orderMu.Lock()
	defer orderMu.Unlock()
	for i, want := range []string{"doc-1", "doc-2", "doc-3"} {
		if order[i] != want {
			t.Errorf("processing order position %d got %s, want %s", i, order[i], want)
		}
	}
}

func TestEnqueue_QueueFull(t *testing.T) {
	o := pipeline.NewOrchestrator(newMockDocStore(), &mockIndex{}, &mockAnalysis{}, progress.NewBroadcaster())
	// worker never started, so the buffer is the whole capacity

	for i := 0; i < config.PipelineQueueSize; i++ {
		if err := o.Enqueue(pipeline.Task{DocId: "doc"}); err != nil {
			t.Fatalf("Enqueue %d failed early: %v", i, err)
		}
	}
	if err := o.Enqueue(pipeline.Task{DocId: "overflow"}); !errors.Is(err, pipeline.ErrQueueFull) {
		t.Errorf("overflow enqueue got %v, want ErrQueueFull", err)
	}
}

func TestReprocess_ResetsAndRequeues(t *testing.T) {
	path := writeDocFile(t, "Memo to reprocess.")
	doc := docModel.Document{
		Id:               "doc-1",
		Filename:         path,
		OriginalFilename: "memo.txt",
		Status:           docModel.DocStatusError,
		ErrorMessage:     "previous failure",
	}
	store := newMockDocStore(doc)
	b := progress.NewBroadcaster()

	removed := false
	idx := &mockIndex{
		OnRemoveDocument: func(ctx context.Context, docId string) error {
			removed = true
			return nil
		},
	}

	// stale backlog from the failed run must not survive
	b.Publish(docModel.ProgressEvent{DocId: "doc-1", Step: docModel.StepFailed, Progress: 0})

	o := pipeline.NewOrchestrator(store, idx, &mockAnalysis{}, b)
	startOrchestrator(t, o)

	if err := o.Reprocess(context.Background(), doc, path); err != nil {
		t.Fatalf("Reprocess failed: %v", err)
	}

	// the document starts out errored, so wait for processed specifically
	var got docModel.Document
	deadline := time.After(5 * time.Second)
	for got.Status != docModel.DocStatusProcessed {
		select {
		case <-deadline:
			t.Fatalf("document never reached processed, stuck at %s", got.Status)
		case <-time.After(10 * time.Millisecond):
			got, _ = store.GetDocument(context.Background(), "doc-1")
		}
	}
	if !removed {
		t.Error("old vectors were not removed before reprocessing")
	}
	if got.ErrorMessage != "" {
		t.Errorf("error message not cleared: %q", got.ErrorMessage)
	}

	backlog := b.Backlog("doc-1")
	if len(backlog) == 0 || backlog[0].Step != docModel.StepUpload {
		t.Errorf("backlog should restart at upload, got %+v", backlog)
	}
}
