package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"money-copilot/internal/domain"
)

func TestMemSessionRepository_CreateAndGet(t *testing.T) {
	repo := NewMemSessionRepository()
	session := domain.ChatSession{
		SessionID: "sess-1",
		Title:     "New Chat Session",
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetByID(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "New Chat Session" {
		t.Fatalf("unexpected session: %+v", got)
	}

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemMessageRepository_ListKeepsOrderPerSession(t *testing.T) {
	repo := NewMemMessageRepository()
	for i, content := range []string{"first", "second", "third"} {
		msg := domain.SessionMessage{
			ID:        string(rune('a' + i)),
			SessionID: "sess-1",
			Role:      domain.RoleUser,
			Content:   content,
		}
		if err := repo.Create(context.Background(), msg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	_ = repo.Create(context.Background(), domain.SessionMessage{ID: "x", SessionID: "other", Content: "noise"})

	msgs, err := repo.ListBySessionID(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, want := range []string{"first", "second", "third"} {
		if msgs[i].Content != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, msgs[i].Content)
		}
	}
}
