package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"money-copilot/internal/domain"
)

// ErrSessionNotFound se devuelve cuando el id de sesión no existe.
var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Create(ctx context.Context, session domain.ChatSession) error
	GetByID(ctx context.Context, sessionID string) (domain.ChatSession, error)
}

type PgSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSessionRepository(pool *pgxpool.Pool) *PgSessionRepository {
	return &PgSessionRepository{pool: pool}
}

func (r *PgSessionRepository) Create(ctx context.Context, session domain.ChatSession) error {
	const query = `
		INSERT INTO chat_sessions (session_id, title, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.pool.Exec(ctx, query,
		session.SessionID,
		session.Title,
		session.CreatedAt,
	)
	return err
}

func (r *PgSessionRepository) GetByID(ctx context.Context, sessionID string) (domain.ChatSession, error) {
	const query = `
		SELECT session_id, title, created_at
		FROM chat_sessions
		WHERE session_id = $1
	`
	var session domain.ChatSession
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&session.SessionID,
		&session.Title,
		&session.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ChatSession{}, ErrSessionNotFound
	}
	return session, err
}
