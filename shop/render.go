package shop

import (
	"fmt"
	"strings"

	"github.com/m3rciful/fishbot/moltin"
)

const (
	menuHeader     = "Please choose:"
	emptyCartText  = "Your cart is empty."
	checkoutPrompt = "Please send your email address."
	invalidEmail   = "That does not look like a valid email address. Please try again."
	failureReply   = "Something went wrong. Please try again."
)

var quantityOptions = []int{1, 5, 10}

func registeredReply(email string) string {
	return fmt.Sprintf("You are already registered. We will contact you at %s.", email)
}

func checkoutDoneReply(email string) string {
	return fmt.Sprintf("Thanks! We will contact you at %s.", email)
}

// buttonFor encodes a button token. Buttons whose ids fail to encode are
// dropped rather than sent with a broken payload.
func buttonFor(label string, in Intent) (Button, bool) {
	token, err := EncodeIntent(in)
	if err != nil {
		return Button{}, false
	}
	return Button{Label: label, Token: token}, true
}

func menuMessage(products []moltin.Product) Message {
	rows := make([][]Button, 0, len(products)+1)
	for _, p := range products {
		btn, ok := buttonFor(p.Name, Intent{Kind: IntentSelect, ProductID: p.ID})
		if !ok {
			continue
		}
		rows = append(rows, []Button{btn})
	}
	cartBtn, _ := buttonFor("Cart", Intent{Kind: IntentShowCart})
	rows = append(rows, []Button{cartBtn})
	return Message{Text: menuHeader, Keyboard: rows}
}

func detailMessage(p moltin.Product, inv moltin.Inventory, photoURL string) Message {
	caption := fmt.Sprintf("%s\n\n%s per kg\n%d kg available\n\n%s",
		p.Name, p.PriceFormatted, inv.Available, p.Description)

	qtyRow := make([]Button, 0, len(quantityOptions))
	for _, qty := range quantityOptions {
		btn, ok := buttonFor(fmt.Sprintf("%d kg", qty),
			Intent{Kind: IntentAddQuantity, ProductID: p.ID, Quantity: qty})
		if !ok {
			continue
		}
		qtyRow = append(qtyRow, btn)
	}
	cartBtn, _ := buttonFor("Cart", Intent{Kind: IntentShowCart})
	backBtn, _ := buttonFor("Back", Intent{Kind: IntentShowMenu})

	return Message{
		Text:     caption,
		PhotoURL: photoURL,
		Keyboard: [][]Button{qtyRow, {cartBtn}, {backBtn}},
	}
}

func cartMessage(cart moltin.Cart, items []moltin.CartItem) Message {
	menuBtn, _ := buttonFor("Menu", Intent{Kind: IntentShowMenu})
	if len(items) == 0 {
		return Message{Text: emptyCartText, Keyboard: [][]Button{{menuBtn}}}
	}

	var text strings.Builder
	rows := make([][]Button, 0, len(items)+2)
	for _, item := range items {
		fmt.Fprintf(&text, "%s\n%s\n%d kg in cart\n\n", item.Name, item.Description, item.Quantity)
		btn, ok := buttonFor("Remove "+item.Name, Intent{Kind: IntentSelect, ProductID: item.ID})
		if !ok {
			continue
		}
		rows = append(rows, []Button{btn})
	}
	fmt.Fprintf(&text, "Total: %s", cart.TotalWithTax)

	checkoutBtn, _ := buttonFor("Checkout", Intent{Kind: IntentCheckout})
	rows = append(rows, []Button{checkoutBtn}, []Button{menuBtn})

	return Message{Text: text.String(), Keyboard: rows}
}
