package progress

import (
	"testing"
	"time"

	"github.com/dealbrief/memoapi/internal/domain/docModel"
)

func event(docId string, step string, pct int) docModel.ProgressEvent {
	return docModel.ProgressEvent{
		DocId:     docId,
		Step:      step,
		Status:    docModel.StepStarted,
		Progress:  pct,
		Timestamp: time.Now(),
	}
}

func TestSubscribe_ReplaysBacklogThenLive(t *testing.T) {
	b := NewBroadcaster()

	b.Publish(event("doc-1", docModel.StepUpload, 5))
	b.Publish(event("doc-1", docModel.StepExtraction, 10))

	ch, cancel := b.Subscribe("doc-1")
	defer cancel()

	b.Publish(event("doc-1", docModel.StepEmbedding, 30))

	wantSteps := []string{docModel.StepUpload, docModel.StepExtraction, docModel.StepEmbedding}
	for i, want := range wantSteps {
		select {
		case got := <-ch:
			if got.Step != want {
				t.Errorf("event %d step got %q, want %q", i, got.Step, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestPublish_PerDocumentIsolation(t *testing.T) {
	b := NewBroadcaster()

	ch, cancel := b.Subscribe("doc-1")
	defer cancel()

	b.Publish(event("doc-2", docModel.StepUpload, 5))
	b.Publish(event("doc-1", docModel.StepUpload, 5))

	select {
	case got := <-ch:
		if got.DocId != "doc-1" {
			t.Errorf("received event for %q on doc-1 subscription", got.DocId)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for doc-1 event")
	}

	select {
	case got, ok := <-ch:
		if ok {
			t.Errorf("unexpected second event: %+v", got)
		}
	default:
	}
}

func TestSubscribe_IdleAutoClose(t *testing.T) {
	b := NewBroadcaster()
	b.idleTimeout = 20 * time.Millisecond

	ch, _ := b.Subscribe("doc-1")

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel, got event")
		}
	case <-time.After(time.Second):
		t.Fatal("idle subscription never closed")
	}
}

func TestSubscribe_PublishResetsIdleWindow(t *testing.T) {
	b := NewBroadcaster()
	b.idleTimeout = 60 * time.Millisecond

	ch, cancel := b.Subscribe("doc-1")
	defer cancel()

	// keep the subscription alive past the original deadline
	for i := 0; i < 3; i++ {
		time.Sleep(40 * time.Millisecond)
		b.Publish(event("doc-1", docModel.StepExtraction, 10))
	}

	received := 0
	for received < 3 {
		select {
		case _, ok := <-ch:
			if !ok {
				t.Fatalf("subscription closed after %d events despite activity", received)
			}
			received++
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d events", received)
		}
	}
}

func TestClear_DropsBacklogAndClosesSubscribers(t *testing.T) {
	b := NewBroadcaster()

	b.Publish(event("doc-1", docModel.StepUpload, 5))
	ch, _ := b.Subscribe("doc-1")

	b.Clear("doc-1")

	// drain the replayed event, then expect close
	closed := false
	for !closed {
		select {
		case _, ok := <-ch:
			if !ok {
				closed = true
			}
		case <-time.After(time.Second):
			t.Fatal("subscription never closed after Clear")
		}
	}

	if backlog := b.Backlog("doc-1"); len(backlog) != 0 {
		t.Errorf("backlog after Clear got %d events, want 0", len(backlog))
	}
}

func TestBacklog_ReturnsCopyInOrder(t *testing.T) {
	b := NewBroadcaster()

	b.Publish(event("doc-1", docModel.StepUpload, 5))
	b.Publish(event("doc-1", docModel.StepExtraction, 10))

	backlog := b.Backlog("doc-1")
	if len(backlog) != 2 {
		t.Fatalf("backlog size got %d, want 2", len(backlog))
	}
	if backlog[0].Step != docModel.StepUpload || backlog[1].Step != docModel.StepExtraction {
		t.Errorf("backlog out of order: %+v", backlog)
	}

	backlog[0].Step = "mutated"
	if b.Backlog("doc-1")[0].Step == "mutated" {
		t.Error("Backlog must return a copy")
	}
}
