package repository

import (
	"context"
	"sync"

	"money-copilot/internal/domain"
)

// MemSessionRepository guarda sesiones en memoria; es el default del
// backend de desarrollo cuando no hay DATABASE_URL.
type MemSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.ChatSession
}

func NewMemSessionRepository() *MemSessionRepository {
	return &MemSessionRepository{sessions: make(map[string]domain.ChatSession)}
}

func (r *MemSessionRepository) Create(_ context.Context, session domain.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.SessionID] = session
	return nil
}

func (r *MemSessionRepository) GetByID(_ context.Context, sessionID string) (domain.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return domain.ChatSession{}, ErrSessionNotFound
	}
	return session, nil
}

// MemMessageRepository guarda mensajes en memoria en orden de llegada.
type MemMessageRepository struct {
	mu        sync.RWMutex
	bySession map[string][]domain.SessionMessage
}

func NewMemMessageRepository() *MemMessageRepository {
	return &MemMessageRepository{bySession: make(map[string][]domain.SessionMessage)}
}

func (r *MemMessageRepository) Create(_ context.Context, message domain.SessionMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySession[message.SessionID] = append(r.bySession[message.SessionID], message)
	return nil
}

func (r *MemMessageRepository) ListBySessionID(_ context.Context, sessionID string) ([]domain.SessionMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	msgs := r.bySession[sessionID]
	out := make([]domain.SessionMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}
