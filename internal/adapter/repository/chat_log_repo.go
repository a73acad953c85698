package repository

import (
	"context"
	"fmt"

	"github.com/annavdvet2000/chatbot11directanswers/internal/usecase"

	"github.com/jackc/pgx/v5/pgxpool"
)

const chatLogSchema = `
CREATE TABLE IF NOT EXISTS chat_logs (
	id            UUID PRIMARY KEY,
	session_id    TEXT NOT NULL,
	question      TEXT NOT NULL,
	answer        TEXT NOT NULL,
	context_found BOOLEAN NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS chat_logs_session_idx ON chat_logs (session_id, created_at);
`

type chatLogRepository struct {
	pool *pgxpool.Pool
}

// NewChatLogRepository creates the postgres-backed chat-log archive.
func NewChatLogRepository(pool *pgxpool.Pool) usecase.ChatLogArchive {
	return &chatLogRepository{pool: pool}
}

// EnsureSchema creates the chat_logs table if it does not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, chatLogSchema); err != nil {
		return fmt.Errorf("ensure chat_logs schema: %w", err)
	}
	return nil
}

func (r *chatLogRepository) Insert(ctx context.Context, log usecase.ChatLog) error {
	query := `
		INSERT INTO chat_logs (id, session_id, question, answer, context_found, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		log.ID,
		log.SessionID,
		log.Question,
		log.Answer,
		log.ContextFound,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chat log: %w", err)
	}
	return nil
}
