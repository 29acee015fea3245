package shop

import (
	"context"
	"strings"

	"github.com/m3rciful/fishbot/core/logger"
	"github.com/m3rciful/fishbot/moltin"
	"github.com/m3rciful/fishbot/session"
	"log/slog"
)

func (m *Machine) handleStart(ctx context.Context, ev *Event, _ *session.Session, _ Intent) (State, error) {
	return m.renderMenu(ctx, ev.ChatID)
}

func (m *Machine) handleShowMenu(ctx context.Context, ev *Event, _ *session.Session, _ Intent) (State, error) {
	return m.renderMenu(ctx, ev.ChatID)
}

func (m *Machine) renderMenu(ctx context.Context, chatID int64) (State, error) {
	products, err := m.commerce.Products(ctx)
	if err != nil {
		return StateMenu, err
	}
	if err := m.transport.Send(ctx, chatID, menuMessage(products)); err != nil {
		return StateMenu, err
	}
	return StateMenu, nil
}

// handleShowDetail sends the item card and removes the message the button
// was pressed on, so the chat shows one view at a time.
func (m *Machine) handleShowDetail(ctx context.Context, ev *Event, _ *session.Session, in Intent) (State, error) {
	if err := m.renderDetail(ctx, ev.ChatID, in.ProductID); err != nil {
		return StateDescription, err
	}
	m.deleteShown(ctx, ev)
	return StateDescription, nil
}

func (m *Machine) renderDetail(ctx context.Context, chatID int64, productID string) error {
	product, err := m.commerce.Product(ctx, productID)
	if err != nil {
		return err
	}
	inv, err := m.commerce.Inventory(ctx, productID)
	if err != nil {
		return err
	}
	photoURL, err := m.commerce.ImageURL(ctx, productID)
	if err != nil {
		// The card is still useful without a picture.
		logger.Warn(ctx, "shop", "image.resolve",
			slog.String("product_id", productID),
			slog.String("err", err.Error()),
		)
		photoURL = ""
	}
	return m.transport.Send(ctx, chatID, detailMessage(product, inv, photoURL))
}

func (m *Machine) handleAddToCart(ctx context.Context, ev *Event, sess *session.Session, in Intent) (State, error) {
	cartID, err := m.carts.Bind(ctx, sess)
	if err != nil {
		return StateDescription, err
	}
	if err := m.commerce.AddCartItem(ctx, cartID, in.ProductID, in.Quantity); err != nil {
		return StateDescription, err
	}
	logger.Info(ctx, "shop", "cart.add",
		slog.String("cart_id", cartID),
		slog.String("product_id", in.ProductID),
		slog.Int("quantity", in.Quantity),
	)
	if err := m.renderDetail(ctx, ev.ChatID, in.ProductID); err != nil {
		return StateDescription, err
	}
	m.deleteShown(ctx, ev)
	return StateDescription, nil
}

func (m *Machine) handleShowCart(ctx context.Context, ev *Event, sess *session.Session, _ Intent) (State, error) {
	if err := m.renderCart(ctx, ev.ChatID, sess); err != nil {
		return StateCart, err
	}
	return StateCart, nil
}

// handleRemoveItem deletes one cart line and re-renders the cart. The
// callback payload in the cart view carries the line item id.
func (m *Machine) handleRemoveItem(ctx context.Context, ev *Event, sess *session.Session, in Intent) (State, error) {
	cartID, err := m.carts.Bind(ctx, sess)
	if err != nil {
		return StateCart, err
	}
	if err := m.commerce.RemoveCartItem(ctx, cartID, in.ProductID); err != nil {
		return StateCart, err
	}
	if err := m.renderCart(ctx, ev.ChatID, sess); err != nil {
		return StateCart, err
	}
	return StateCart, nil
}

func (m *Machine) renderCart(ctx context.Context, chatID int64, sess *session.Session) error {
	cartID, err := m.carts.Bind(ctx, sess)
	if err != nil {
		return err
	}
	cart, err := m.commerce.Cart(ctx, cartID)
	if err != nil {
		return err
	}
	items, err := m.commerce.CartItems(ctx, cartID)
	if err != nil {
		return err
	}
	return m.transport.Send(ctx, chatID, cartMessage(cart, items))
}

func (m *Machine) handleCheckout(ctx context.Context, ev *Event, _ *session.Session, _ Intent) (State, error) {
	if err := m.transport.Send(ctx, ev.ChatID, Message{Text: checkoutPrompt}); err != nil {
		return StateAwaitingEmail, err
	}
	return StateAwaitingEmail, nil
}

// handleEmail registers the customer. A 422 from the API means the address
// was rejected; the chat is asked again and stays in the email state. A 409
// means the address is already registered; that is acknowledged and the
// conversation returns to the menu.
func (m *Machine) handleEmail(ctx context.Context, ev *Event, _ *session.Session, _ Intent) (State, error) {
	email := strings.TrimSpace(ev.Payload)
	name := ev.SenderName
	if name == "" {
		name = email
	}

	_, err := m.commerce.CreateCustomer(ctx, name, email)
	switch {
	case err == nil:
		if err := m.transport.Send(ctx, ev.ChatID, Message{Text: checkoutDoneReply(email)}); err != nil {
			return StateAwaitingEmail, err
		}
		logger.Info(ctx, "shop", "customer.created",
			slog.String("email", logger.SanitizeLimit(email, 64)),
		)
		return m.renderMenu(ctx, ev.ChatID)
	case moltin.IsConflict(err):
		if err := m.transport.Send(ctx, ev.ChatID, Message{Text: registeredReply(email)}); err != nil {
			return StateAwaitingEmail, err
		}
		return m.renderMenu(ctx, ev.ChatID)
	case moltin.IsValidation(err):
		if err := m.transport.Send(ctx, ev.ChatID, Message{Text: invalidEmail}); err != nil {
			return StateAwaitingEmail, err
		}
		return StateAwaitingEmail, nil
	}
	return StateAwaitingEmail, err
}

func (m *Machine) deleteShown(ctx context.Context, ev *Event) {
	if ev.MessageID == 0 {
		return
	}
	if err := m.transport.Delete(ctx, ev.ChatID, ev.MessageID); err != nil {
		logger.Warn(ctx, "shop", "message.delete",
			slog.Int("message_id", ev.MessageID),
			slog.String("err", err.Error()),
		)
	}
}
