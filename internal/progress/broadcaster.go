// Package progress fans document processing events out to SSE subscribers.
// Events are kept per document in emission order, so a late subscriber
// replays the backlog before receiving live events.
package progress

import (
	"sync"
	"time"

	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/domain/docModel"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

type Broadcaster struct {
	mu          sync.Mutex
	events      map[string][]docModel.ProgressEvent
	subscribers map[string][]*subscription
	logger      *logger_i.Logger
	idleTimeout time.Duration
}

type subscription struct {
	ch     chan docModel.ProgressEvent
	closed bool
	timer  *time.Timer
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		events:      make(map[string][]docModel.ProgressEvent),
		subscribers: make(map[string][]*subscription),
		logger:      logger_i.NewLogger("Progress Broadcaster"),
		idleTimeout: config.ProgressIdleTimeout,
	}
}

// Publish appends the event to the document's log and delivers it to every
// live subscriber. A subscriber that cannot keep up loses its slot rather
// than stalling the pipeline.
func (b *Broadcaster) Publish(event docModel.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[event.DocId] = append(b.events[event.DocId], event)

	kept := b.subscribers[event.DocId][:0]
	for _, sub := range b.subscribers[event.DocId] {
		if sub.closed {
			continue
		}
		select {
		case sub.ch <- event:
			sub.timer.Reset(b.idleTimeout)
			kept = append(kept, sub)
		default:
			b.logger.Warn("Dropping slow progress subscriber", "doc_id", event.DocId)
			sub.closed = true
			close(sub.ch)
		}
	}
	b.subscribers[event.DocId] = kept
}

// Subscribe returns a channel that first replays the document's backlog and
// then carries live events. The channel closes after cancel is called or
// after the idle window elapses with no new events.
func (b *Broadcaster) Subscribe(docId string) (<-chan docModel.ProgressEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	backlog := b.events[docId]
	sub := &subscription{
		ch: make(chan docModel.ProgressEvent, config.ProgressSubBuffer+len(backlog)),
	}
	for _, event := range backlog {
		sub.ch <- event
	}

	sub.timer = time.AfterFunc(b.idleTimeout, func() {
		b.closeSubscription(docId, sub)
	})

	b.subscribers[docId] = append(b.subscribers[docId], sub)

	cancel := func() { b.closeSubscription(docId, sub) }
	return sub.ch, cancel
}

// Backlog returns a copy of every event published for the document so far.
func (b *Broadcaster) Backlog(docId string) []docModel.ProgressEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	backlog := make([]docModel.ProgressEvent, len(b.events[docId]))
	copy(backlog, b.events[docId])
	return backlog
}

// Clear drops the document's event log and closes its subscribers. Called
// when the document is deleted or reprocessed.
func (b *Broadcaster) Clear(docId string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.events, docId)
	for _, sub := range b.subscribers[docId] {
		if !sub.closed {
			sub.closed = true
			sub.timer.Stop()
			close(sub.ch)
		}
	}
	delete(b.subscribers, docId)
}

func (b *Broadcaster) closeSubscription(docId string, target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if target.closed {
		return
	}
	target.closed = true
	target.timer.Stop()
	close(target.ch)

	kept := b.subscribers[docId][:0]
	for _, sub := range b.subscribers[docId] {
		if sub != target {
			kept = append(kept, sub)
		}
	}
	b.subscribers[docId] = kept
}
