package shop

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/m3rciful/fishbot/session"
)

// CartBinding lazily attaches a cart to a chat session. Cart ids are
// generated client-side; the commerce API creates the cart implicitly on
// first reference.
type CartBinding struct {
	store session.Store
	newID func() string
}

// NewCartBinding builds a binding over the given session store.
func NewCartBinding(store session.Store) *CartBinding {
	return &CartBinding{store: store, newID: uuid.NewString}
}

// Bind returns the cart id for the session, generating and persisting one
// on first use. The id is written to the store before it is ever sent to
// the commerce API, so a later handler failure cannot orphan the cart.
func (b *CartBinding) Bind(ctx context.Context, sess *session.Session) (string, error) {
	if sess.CartID != "" {
		return sess.CartID, nil
	}
	sess.CartID = b.newID()
	if err := b.store.Put(ctx, *sess); err != nil {
		sess.CartID = ""
		return "", fmt.Errorf("bind cart: %w", err)
	}
	return sess.CartID, nil
}
