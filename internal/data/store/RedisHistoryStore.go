package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/data/redisStore"
	"github.com/dealbrief/memoapi/internal/domain/qaModel"
	"github.com/dealbrief/memoapi/pkg/logger_i"
)

const (
	qaHistoryKey     = "qa_history"
	sessionsIndexKey = "sessions"
)

var ErrSessionNotFound = errors.New("session not found")

type RedisHistoryStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisHistoryStore(ctx context.Context) *RedisHistoryStore {
	return &RedisHistoryStore{
		store:  redisStore.GetRedisStore(ctx, config.RedisHistoryStore),
		logger: logger_i.NewLogger("HistoryStore"),
	}
}

func sessionKey(sessionId string) string {
	return "session:" + sessionId
}

func (s *RedisHistoryStore) AppendHistory(ctx context.Context, item qaModel.HistoryItem) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	data, err := json.Marshal(item)
	if err != nil {
		return err
	}

	err = s.store.ListPush(ctx, qaHistoryKey, data)
	if err != nil {
		log.Error("error saving history item", "error:", err)
	}
	return err
}

// RecentHistory returns up to limit items, oldest first. Entries that no
// longer unmarshal are skipped.
func (s *RedisHistoryStore) RecentHistory(ctx context.Context, limit int) ([]qaModel.HistoryItem, error) {
	raw, err := s.store.ListGetLastN(ctx, qaHistoryKey, int64(limit))
	if err != nil {
		return nil, err
	}

	items := make([]qaModel.HistoryItem, 0, len(raw))
	for _, entry := range raw {
		var item qaModel.HistoryItem
		if err := json.Unmarshal([]byte(entry), &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *RedisHistoryStore) CreateSession(ctx context.Context, session qaModel.ChatSession) error {
	if err := s.SaveSession(ctx, session); err != nil {
		return err
	}
	return s.store.SetAdd(ctx, sessionsIndexKey, session.Id)
}

func (s *RedisHistoryStore) ListSessions(ctx context.Context) ([]qaModel.ChatSession, error) {
	ids, err := s.store.SetMembers(ctx, sessionsIndexKey)
	if err != nil {
		return nil, err
	}

	sessions := make([]qaModel.ChatSession, 0, len(ids))
	for _, id := range ids {
		if session, ok := s.GetSession(ctx, id); ok {
			sessions = append(sessions, session)
		}
	}

	// newest first
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (s *RedisHistoryStore) GetSession(ctx context.Context, sessionId string) (qaModel.ChatSession, bool) {
	var session qaModel.ChatSession

	val, err := s.store.Get(ctx, sessionKey(sessionId))
	if s.store.IsNil(err) || err != nil {
		return session, false
	}
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return session, false
	}
	return session, true
}

func (s *RedisHistoryStore) SaveSession(ctx context.Context, session qaModel.ChatSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, sessionKey(session.Id), data, config.RedisHistoryTTL)
}

func (s *RedisHistoryStore) DeleteSession(ctx context.Context, sessionId string) error {
	if err := s.store.Del(ctx, sessionKey(sessionId)); err != nil {
		return err
	}
	return s.store.SetRemove(ctx, sessionsIndexKey, sessionId)
}

func TestHistoryStore(store *redisStore.Store) *RedisHistoryStore {
	return &RedisHistoryStore{
		store:  store,
		logger: logger_i.NewLogger("test history store"),
	}
}
