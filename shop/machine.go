package shop

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m3rciful/fishbot/core/logger"
	"github.com/m3rciful/fishbot/session"
	"log/slog"
)

// Event is one incoming update, normalized away from the transport.
type Event struct {
	ChatID     int64
	MessageID  int
	SenderName string
	// Payload is the message text for plain messages and the button token
	// for callbacks.
	Payload  string
	Callback bool
}

// Machine drives the conversation. Dispatch resolves the handler from the
// persisted state and the event, runs it, and persists the returned state
// only when the handler succeeds.
type Machine struct {
	store     session.Store
	commerce  Commerce
	transport Transport
	carts     *CartBinding
}

// NewMachine wires the conversation over its three ports.
func NewMachine(store session.Store, commerce Commerce, transport Transport) *Machine {
	return &Machine{
		store:     store,
		commerce:  commerce,
		transport: transport,
		carts:     NewCartBinding(store),
	}
}

type handlerFunc func(ctx context.Context, ev *Event, sess *session.Session, in Intent) (State, error)

// Dispatch processes one event end to end. On handler failure the stored
// state is left untouched and the chat gets a generic failure reply.
func (m *Machine) Dispatch(ctx context.Context, ev Event) error {
	sess, err := m.store.Get(ctx, ev.ChatID)
	if errors.Is(err, session.ErrNotFound) {
		sess = session.Session{ChatID: ev.ChatID, State: StateStart.String()}
	} else if err != nil {
		logger.Error(ctx, "shop", "session.load",
			slog.Int64("chat_id", ev.ChatID),
			slog.String("err", err.Error()),
		)
		m.sendFailure(ctx, ev.ChatID)
		return err
	}

	name, handler, in := m.route(ctx, State(sess.State), &ev)

	start := time.Now()
	next, err := handler(ctx, &ev, &sess, in)
	if err != nil {
		logger.Error(ctx, "shop", "handler.handled",
			slog.String("handler", name),
			slog.String("status", logger.Status(err)),
			slog.String("state", sess.State),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		m.sendFailure(ctx, ev.ChatID)
		return err
	}

	sess.State = next.String()
	if err := m.store.Put(ctx, sess); err != nil {
		logger.Error(ctx, "shop", "session.save",
			slog.Int64("chat_id", ev.ChatID),
			slog.String("state", sess.State),
			slog.String("err", err.Error()),
		)
		return err
	}

	logger.Info(ctx, "shop", "handler.handled",
		slog.String("handler", name),
		slog.String("status", "ok"),
		slog.String("state", next.String()),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// route picks the handler. Commands and navigation buttons override the
// persisted state; everything else is interpreted by the state the chat is
// in. Unknown input falls back to rendering the menu, so dispatch is total.
func (m *Machine) route(ctx context.Context, stored State, ev *Event) (string, handlerFunc, Intent) {
	if !ev.Callback {
		text := strings.TrimSpace(ev.Payload)
		if text == "/start" || strings.HasPrefix(text, "/start ") {
			return "start", m.handleStart, Intent{}
		}
		switch stored {
		case StateAwaitingEmail:
			return "email", m.handleEmail, Intent{}
		case StateCart:
			// Stray text while the cart is open: show the cart again.
			return "cart", m.handleShowCart, Intent{Kind: IntentShowCart}
		}
		// Other states have no text protocol; the menu is the safe view.
		return "start", m.handleStart, Intent{}
	}

	in, err := DecodeIntent(ev.Payload)
	if err != nil {
		logger.Warn(ctx, "shop", "intent.malformed",
			slog.String("payload", logger.SanitizeLimit(ev.Payload, 64)),
		)
		return "menu", m.handleShowMenu, Intent{Kind: IntentShowMenu}
	}

	switch in.Kind {
	case IntentShowMenu:
		return "menu", m.handleShowMenu, in
	case IntentShowCart:
		return "cart", m.handleShowCart, in
	case IntentCheckout:
		return "checkout", m.handleCheckout, in
	case IntentAddQuantity:
		return "add_to_cart", m.handleAddToCart, in
	case IntentSelect:
		if stored == StateCart {
			return "remove_item", m.handleRemoveItem, in
		}
		return "detail", m.handleShowDetail, in
	}
	return "menu", m.handleShowMenu, Intent{Kind: IntentShowMenu}
}

func (m *Machine) sendFailure(ctx context.Context, chatID int64) {
	if err := m.transport.Send(ctx, chatID, Message{Text: failureReply}); err != nil {
		logger.Warn(ctx, "shop", "reply.failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
	}
}
