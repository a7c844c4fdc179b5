package qaModel

import (
	"context"
	"time"
)

// Source is the provenance attached to an answer: one entry per distinct
// (document, page) pair, ordered by first retrieval rank.
type Source struct {
	DocName string `json:"doc_name"`
	Page    int    `json:"page"`
	Snippet string `json:"snippet"`
}

type QAResult struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources"`
}

// StreamEvent is one element of a streaming answer. Type is "answer" for
// incremental tokens, then exactly one "sources", then a terminal "done".
type StreamEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const (
	StreamEventAnswer  = "answer"
	StreamEventSources = "sources"
	StreamEventDone    = "done"
)

type HistoryItem struct {
	Id       string    `json:"id"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Sources  []Source  `json:"sources"`
	AskedAt  time.Time `json:"asked_at"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatSession struct {
	Id        string        `json:"id"`
	Title     string        `json:"title"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Messages  []ChatMessage `json:"messages"`
}

type HistoryStore interface {
	AppendHistory(ctx context.Context, item HistoryItem) error
	RecentHistory(ctx context.Context, limit int) ([]HistoryItem, error)

	CreateSession(ctx context.Context, session ChatSession) error
	ListSessions(ctx context.Context) ([]ChatSession, error)
	GetSession(ctx context.Context, sessionId string) (ChatSession, bool)
	SaveSession(ctx context.Context, session ChatSession) error
	DeleteSession(ctx context.Context, sessionId string) error
}
