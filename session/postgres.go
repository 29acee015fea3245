package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore persists sessions in the sessions table, one row per chat.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an already connected database handle.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get loads the session for a chat, mapping missing rows to ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, chatID int64) (Session, error) {
	var sess Session
	err := s.db.GetContext(ctx, &sess,
		`SELECT chat_id, state, cart_id FROM sessions WHERE chat_id = $1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("session get: %w", err)
	}
	return sess, nil
}

// Put upserts the session row for the chat.
func (s *PostgresStore) Put(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (chat_id, state, cart_id, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (chat_id)
		DO UPDATE SET state = EXCLUDED.state, cart_id = EXCLUDED.cart_id, updated_at = now()`,
		sess.ChatID, sess.State, sess.CartID)
	if err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}
