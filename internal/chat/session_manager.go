package chat

import (
	"context"
	"fmt"
)

// DefaultSessionTitle es el título con el que se crean sesiones nuevas.
const DefaultSessionTitle = "New Chat Session"

// SessionCreator es la porción del gateway que necesita el manager.
type SessionCreator interface {
	CreateSession(ctx context.Context, title string) (string, error)
}

// SessionManager posee la identidad de la conversación actual. Crea la
// sesión de forma perezosa en el primer uso; si la creación falla el id
// queda sin asignar y el siguiente EnsureSession vuelve a intentar.
type SessionManager struct {
	gw    SessionCreator
	title string
	id    string
}

// NewSessionManager acepta un id pre-suministrado para retomar una sesión
// existente; con id vacío la sesión se crea on demand.
func NewSessionManager(gw SessionCreator, initialID string) *SessionManager {
	return &SessionManager{gw: gw, title: DefaultSessionTitle, id: initialID}
}

// EnsureSession devuelve el id de sesión, creándola si hace falta.
// Idempotente tras el primer éxito.
func (m *SessionManager) EnsureSession(ctx context.Context) (string, error) {
	if m.id != "" {
		return m.id, nil
	}
	id, err := m.gw.CreateSession(ctx, m.title)
	if err != nil {
		return "", fmt.Errorf("ensure session: %w", err)
	}
	m.id = id
	return m.id, nil
}

// ID devuelve el id actual, vacío si aún no hay sesión.
func (m *SessionManager) ID() string {
	return m.id
}
