// Package shop implements the storefront conversation: catalog browsing,
// item detail with quantity selection, cart review, and checkout by email.
// State per chat is persisted through a session.Store; commerce calls go
// through the Commerce port, outgoing messages through the Transport port.
package shop

// State names the view a chat currently sees. The name is what gets
// persisted in the session record.
type State string

const (
	// StateStart marks a fresh conversation with nothing shown yet.
	StateStart State = "start"
	// StateMenu shows the product catalog.
	StateMenu State = "menu"
	// StateDescription shows a single item detail card.
	StateDescription State = "description"
	// StateCart shows the cart contents.
	StateCart State = "cart"
	// StateAwaitingEmail waits for the customer's email after checkout.
	StateAwaitingEmail State = "awaiting_email"
)

func (s State) String() string { return string(s) }
