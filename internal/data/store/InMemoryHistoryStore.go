package store

import (
	"context"
	"sort"
	"sync"

	"github.com/dealbrief/memoapi/internal/domain/qaModel"
)

type InMemoryHistoryStore struct {
	historyLock *sync.RWMutex
	history     []qaModel.HistoryItem
	sessionMap  map[string]qaModel.ChatSession
}

func InitInMemoryHistoryStore() *InMemoryHistoryStore {
	return &InMemoryHistoryStore{
		historyLock: new(sync.RWMutex),
		history:     make([]qaModel.HistoryItem, 0),
		sessionMap:  make(map[string]qaModel.ChatSession),
	}
}

func (store *InMemoryHistoryStore) AppendHistory(ctx context.Context, item qaModel.HistoryItem) error {
	store.historyLock.Lock()
	defer store.historyLock.Unlock()
	store.history = append(store.history, item)
	return nil
}

func (store *InMemoryHistoryStore) RecentHistory(ctx context.Context, limit int) ([]qaModel.HistoryItem, error) {
	store.historyLock.RLock()
	defer store.historyLock.RUnlock()

	start := 0
	if len(store.history) > limit {
		start = len(store.history) - limit
	}
	items := make([]qaModel.HistoryItem, len(store.history)-start)
	copy(items, store.history[start:])
	return items, nil
}

func (store *InMemoryHistoryStore) CreateSession(ctx context.Context, session qaModel.ChatSession) error {
	store.historyLock.Lock()
	defer store.historyLock.Unlock()
	store.sessionMap[session.Id] = session
	return nil
}

func (store *InMemoryHistoryStore) ListSessions(ctx context.Context) ([]qaModel.ChatSession, error) {
	store.historyLock.RLock()
	defer store.historyLock.RUnlock()

	sessions := make([]qaModel.ChatSession, 0, len(store.sessionMap))
	for _, session := range store.sessionMap {
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (store *InMemoryHistoryStore) GetSession(ctx context.Context, sessionId string) (qaModel.ChatSession, bool) {
	store.historyLock.RLock()
	defer store.historyLock.RUnlock()
	session, found := store.sessionMap[sessionId]
	return session, found
}

func (store *InMemoryHistoryStore) SaveSession(ctx context.Context, session qaModel.ChatSession) error {
	store.historyLock.Lock()
	defer store.historyLock.Unlock()
	store.sessionMap[session.Id] = session
	return nil
}

func (store *InMemoryHistoryStore) DeleteSession(ctx context.Context, sessionId string) error {
	store.historyLock.Lock()
	defer store.historyLock.Unlock()
	delete(store.sessionMap, sessionId)
	return nil
}
