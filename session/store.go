// Package session persists per-chat conversation progress: the current
// state name and the cart bound to the chat. Backends are selected by
// configuration; absence of a record is reported as ErrNotFound so the
// dispatcher can treat it as a fresh conversation.
package session

import (
	"context"
	"errors"
)

// ErrNotFound indicates no session exists for the chat id. Stores never
// fabricate defaults; the caller owns the new-session policy.
var ErrNotFound = errors.New("session: not found")

// Session is the persisted conversation record for one chat.
type Session struct {
	ChatID int64  `db:"chat_id" json:"-"`
	State  string `db:"state" json:"state"`
	CartID string `db:"cart_id" json:"cart_id,omitempty"`
}

// Store reads and writes sessions keyed by chat id. Writes are
// last-writer-wins; no transactional semantics are assumed.
type Store interface {
	Get(ctx context.Context, chatID int64) (Session, error)
	Put(ctx context.Context, sess Session) error
}
