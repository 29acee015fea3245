package shop

import (
	"context"

	"github.com/m3rciful/fishbot/moltin"
)

// Button is a single inline keyboard button: the visible label and the
// callback token it carries.
type Button struct {
	Label string
	Token string
}

// Message is a rendered reply ready for delivery. When PhotoURL is set the
// message is sent as a photo with Text as the caption.
type Message struct {
	Text     string
	PhotoURL string
	Keyboard [][]Button
}

// Transport delivers rendered messages to the chat platform.
type Transport interface {
	Send(ctx context.Context, chatID int64, msg Message) error
	Delete(ctx context.Context, chatID int64, messageID int) error
}

// Commerce is the slice of the commerce API the conversation uses.
// *moltin.Client satisfies it.
type Commerce interface {
	Products(ctx context.Context) ([]moltin.Product, error)
	Product(ctx context.Context, productID string) (moltin.Product, error)
	Inventory(ctx context.Context, productID string) (moltin.Inventory, error)
	ImageURL(ctx context.Context, productID string) (string, error)
	Cart(ctx context.Context, cartID string) (moltin.Cart, error)
	CartItems(ctx context.Context, cartID string) ([]moltin.CartItem, error)
	AddCartItem(ctx context.Context, cartID, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, cartID, itemID string) error
	CreateCustomer(ctx context.Context, name, email string) (moltin.Customer, error)
	CustomerByName(ctx context.Context, name string) ([]moltin.Customer, error)
}
