package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/dealbrief/memoapi/internal/config"
	"github.com/dealbrief/memoapi/internal/data/redisStore"
	"github.com/dealbrief/memoapi/internal/data/store"
	"github.com/dealbrief/memoapi/internal/domain/analysisModel"
	"github.com/dealbrief/memoapi/internal/domain/docModel"
	"github.com/dealbrief/memoapi/internal/domain/qaModel"
)

func newTestStore(t *testing.T) *redisStore.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return redisStore.NewTestStore(client)
}

func testCtx() context.Context {
	return context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
}

func TestRedisDocumentStore_Lifecycle(t *testing.T) {
	docStore := store.TestDocumentStore(newTestStore(t))
	ctx := testCtx()

	doc := docModel.Document{
		Id:               "a1b2c3d4",
		Filename:         "a1b2c3d4_memo.pdf",
		OriginalFilename: "memo.pdf",
		FileSize:         2048,
		Status:           docModel.DocStatusUploaded,
		UploadDate:       "2026-08-30T10:00:00",
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := docStore.SaveDocument(ctx, doc); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}

		got, found := docStore.GetDocument(ctx, doc.Id)
		if !found {
			t.Fatal("Document was saved but not found")
		}
		if got != doc {
			t.Errorf("Data mismatch! Got %+v, want %+v", got, doc)
		}
	})

	t.Run("Per-Field Updates Do Not Clobber", func(t *testing.T) {
		if err := docStore.UpdatePageCount(ctx, doc.Id, 12); err != nil {
			t.Fatalf("UpdatePageCount failed: %v", err)
		}
		if err := docStore.UpdateStatus(ctx, doc.Id, docModel.DocStatusProcessed, ""); err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}

		got, _ := docStore.GetDocument(ctx, doc.Id)
		if got.PageCount != 12 {
			t.Errorf("page count clobbered by status update: got %d", got.PageCount)
		}
		if got.Status != docModel.DocStatusProcessed {
			t.Errorf("status got %s, want processed", got.Status)
		}
		if got.OriginalFilename != doc.OriginalFilename {
			t.Error("filename lost on partial update")
		}
	})

	t.Run("Get Non-Existent Document", func(t *testing.T) {
		if _, found := docStore.GetDocument(ctx, "ghost-id"); found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("List Sorted Newest First", func(t *testing.T) {
		newer := doc
		newer.Id = "e5f6a7b8"
		newer.UploadDate = "2026-08-31T10:00:00"
		if err := docStore.SaveDocument(ctx, newer); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}

		docs, err := docStore.ListDocuments(ctx)
		if err != nil {
			t.Fatalf("ListDocuments failed: %v", err)
		}
		if len(docs) != 2 || docs[0].Id != newer.Id {
			t.Errorf("list order wrong: %+v", docs)
		}
	})

	t.Run("Delete Document", func(t *testing.T) {
		if err := docStore.DeleteDocument(ctx, doc.Id); err != nil {
			t.Fatalf("DeleteDocument failed: %v", err)
		}
		if _, found := docStore.GetDocument(ctx, doc.Id); found {
			t.Error("Document still exists after delete")
		}
		docs, _ := docStore.ListDocuments(ctx)
		if len(docs) != 1 {
			t.Errorf("index not cleaned up: %d docs listed", len(docs))
		}
	})
}

func TestRedisResultStore_Lifecycle(t *testing.T) {
	resultStore := store.TestResultStore(newTestStore(t))
	ctx := testCtx()

	extraction := analysisModel.ExtractionResult{
		DocId:       "doc-1",
		CompanyName: "Acme",
		Status:      analysisModel.ResultStatusCompleted,
	}
	faq := analysisModel.FAQResult{
		DocId:   "doc-1",
		DocName: "memo.pdf",
		FAQs:    []analysisModel.FAQItem{{Question: "Q1", Answer: "A1"}},
		Status:  analysisModel.ResultStatusCompleted,
	}

	t.Run("Extraction Roundtrip", func(t *testing.T) {
		if err := resultStore.SaveExtraction(ctx, extraction); err != nil {
			t.Fatalf("SaveExtraction failed: %v", err)
		}
		got, found := resultStore.GetExtraction(ctx, "doc-1")
		if !found || got.CompanyName != "Acme" {
			t.Errorf("extraction roundtrip failed: found=%v got=%+v", found, got)
		}
	})

	t.Run("FAQ Roundtrip", func(t *testing.T) {
		if err := resultStore.SaveFAQ(ctx, faq); err != nil {
			t.Fatalf("SaveFAQ failed: %v", err)
		}
		got, found := resultStore.GetFAQ(ctx, "doc-1")
		if !found || len(got.FAQs) != 1 {
			t.Errorf("FAQ roundtrip failed: found=%v got=%+v", found, got)
		}
	})

	t.Run("Regenerate Overwrites", func(t *testing.T) {
		updated := extraction
		updated.CompanyName = "Acme Corp"
		if err := resultStore.SaveExtraction(ctx, updated); err != nil {
			t.Fatalf("SaveExtraction failed: %v", err)
		}
		got, _ := resultStore.GetExtraction(ctx, "doc-1")
		if got.CompanyName != "Acme Corp" {
			t.Errorf("old result survived regenerate: %+v", got)
		}
	})

	t.Run("Delete Removes Both", func(t *testing.T) {
		if err := resultStore.DeleteResults(ctx, "doc-1"); err != nil {
			t.Fatalf("DeleteResults failed: %v", err)
		}
		if _, found := resultStore.GetExtraction(ctx, "doc-1"); found {
			t.Error("extraction survived DeleteResults")
		}
		if _, found := resultStore.GetFAQ(ctx, "doc-1"); found {
			t.Error("FAQ survived DeleteResults")
		}
	})
}

func TestRedisHistoryStore_History(t *testing.T) {
	historyStore := store.TestHistoryStore(newTestStore(t))
	ctx := testCtx()

	for i := 0; i < config.QAHistoryWindow+10; i++ {
		item := qaModel.HistoryItem{
			Id:       fmt.Sprintf("qa-%d", i),
			Question: fmt.Sprintf("question %d", i),
			Answer:   "answer",
			AskedAt:  time.Now(),
		}
		if err := historyStore.AppendHistory(ctx, item); err != nil {
			t.Fatalf("AppendHistory %d failed: %v", i, err)
		}
	}

	items, err := historyStore.RecentHistory(ctx, config.QAHistoryWindow)
	if err != nil {
		t.Fatalf("RecentHistory failed: %v", err)
	}
	if len(items) != config.QAHistoryWindow {
		t.Fatalf("history window got %d, want %d", len(items), config.QAHistoryWindow)
	}
	// the oldest 10 fell out of the window, order stays oldest-first
	if items[0].Id != "qa-10" {
		t.Errorf("first item got %s, want qa-10", items[0].Id)
	}
	if items[len(items)-1].Id != fmt.Sprintf("qa-%d", config.QAHistoryWindow+9) {
		t.Errorf("last item got %s, want newest", items[len(items)-1].Id)
	}
}

func TestRedisHistoryStore_Sessions(t *testing.T) {
	historyStore := store.TestHistoryStore(newTestStore(t))
	ctx := testCtx()

	older := qaModel.ChatSession{
		Id:        "sess-1",
		Title:     "New Chat",
		CreatedAt: time.Now().Add(-time.Hour),
		UpdatedAt: time.Now().Add(-time.Hour),
		Messages:  []qaModel.ChatMessage{},
	}
	newer := qaModel.ChatSession{
		Id:        "sess-2",
		Title:     "New Chat",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Messages:  []qaModel.ChatMessage{},
	}

	for _, s := range []qaModel.ChatSession{older, newer} {
		if err := historyStore.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	t.Run("List Newest First", func(t *testing.T) {
		sessions, err := historyStore.ListSessions(ctx)
		if err != nil {
			t.Fatalf("ListSessions failed: %v", err)
		}
		if len(sessions) != 2 || sessions[0].Id != "sess-2" {
			t.Errorf("session order wrong: %+v", sessions)
		}
	})

	t.Run("Save Updates Messages", func(t *testing.T) {
		older.Messages = append(older.Messages, qaModel.ChatMessage{Role: "user", Content: "hello"})
		older.Title = "hello"
		if err := historyStore.SaveSession(ctx, older); err != nil {
			t.Fatalf("SaveSession failed: %v", err)
		}

		got, found := historyStore.GetSession(ctx, "sess-1")
		if !found || len(got.Messages) != 1 || got.Title != "hello" {
			t.Errorf("session update lost: found=%v got=%+v", found, got)
		}
	})

	t.Run("Delete Session", func(t *testing.T) {
		if err := historyStore.DeleteSession(ctx, "sess-1"); err != nil {
			t.Fatalf("DeleteSession failed: %v", err)
		}
		if _, found := historyStore.GetSession(ctx, "sess-1"); found {
			t.Error("session still exists after delete")
		}
		sessions, _ := historyStore.ListSessions(ctx)
		if len(sessions) != 1 {
			t.Errorf("index not cleaned up: %d sessions listed", len(sessions))
		}
	})
}
