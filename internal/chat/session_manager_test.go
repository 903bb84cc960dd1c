package chat

import (
	"context"
	"errors"
	"testing"
)

type stubSessionCreator struct {
	id    string
	err   error
	calls int
}

func (s *stubSessionCreator) CreateSession(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.id, s.err
}

func TestSessionManager_CreatesLazilyOnce(t *testing.T) {
	creator := &stubSessionCreator{id: "sess-1"}
	mgr := NewSessionManager(creator, "")

	id, err := mgr.EnsureSession(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "sess-1" {
		t.Fatalf("expected sess-1, got %q", id)
	}

	if _, err := mgr.EnsureSession(context.Background()); err != nil {
		t.Fatalf("unexpected error on repeat: %v", err)
	}
	if creator.calls != 1 {
		t.Fatalf("expected a single create call, got %d", creator.calls)
	}
}

func TestSessionManager_PreSuppliedIDSkipsCreation(t *testing.T) {
	creator := &stubSessionCreator{id: "ignored"}
	mgr := NewSessionManager(creator, "route-param-id")

	id, err := mgr.EnsureSession(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "route-param-id" {
		t.Fatalf("expected pre-supplied id, got %q", id)
	}
	if creator.calls != 0 {
		t.Fatalf("expected no create calls, got %d", creator.calls)
	}
}

func TestSessionManager_FailureLeavesIDUnset(t *testing.T) {
	creator := &stubSessionCreator{err: errors.New("network down")}
	mgr := NewSessionManager(creator, "")

	if _, err := mgr.EnsureSession(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if mgr.ID() != "" {
		t.Fatalf("expected unset id after failure, got %q", mgr.ID())
	}

	// No hay retry automático, pero una llamada posterior sí reintenta.
	creator.err = nil
	creator.id = "sess-2"
	id, err := mgr.EnsureSession(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "sess-2" {
		t.Fatalf("expected sess-2, got %q", id)
	}
	if creator.calls != 2 {
		t.Fatalf("expected 2 create calls, got %d", creator.calls)
	}
}
