package shop

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedIntent reports a callback payload that does not match the
// button token grammar.
var ErrMalformedIntent = errors.New("shop: malformed intent token")

// maxTokenLen is the Telegram callback-data limit.
const maxTokenLen = 64

// IntentKind enumerates what a button press asks for.
type IntentKind int

const (
	// IntentShowMenu requests the catalog view.
	IntentShowMenu IntentKind = iota
	// IntentShowCart requests the cart view.
	IntentShowCart
	// IntentCheckout starts checkout.
	IntentCheckout
	// IntentSelect carries a bare id: a product in the catalog view,
	// a cart line item in the cart view.
	IntentSelect
	// IntentAddQuantity carries a quantity and a product id.
	IntentAddQuantity
)

// Intent is a decoded button press.
type Intent struct {
	Kind      IntentKind
	ProductID string
	Quantity  int
}

// Reserved navigation literals. "back" is accepted on decode as a synonym
// for the menu but never produced by Encode.
const (
	tokenMenu     = "menu"
	tokenCart     = "cart"
	tokenBack     = "back"
	tokenCheckout = "checkout"
)

func isReserved(s string) bool {
	switch s {
	case tokenMenu, tokenCart, tokenBack, tokenCheckout:
		return true
	}
	return false
}

// EncodeIntent renders an intent as a callback token. It rejects intents
// that violate the grammar: a quantity without a product, a non-positive
// quantity, ids that collide with reserved literals or contain spaces,
// and tokens over the Telegram size limit.
func EncodeIntent(in Intent) (string, error) {
	switch in.Kind {
	case IntentShowMenu:
		return tokenMenu, nil
	case IntentShowCart:
		return tokenCart, nil
	case IntentCheckout:
		return tokenCheckout, nil
	case IntentSelect:
		if err := validID(in.ProductID); err != nil {
			return "", err
		}
		return in.ProductID, nil
	case IntentAddQuantity:
		if in.Quantity <= 0 {
			return "", fmt.Errorf("shop: quantity must be positive, got %d", in.Quantity)
		}
		if err := validID(in.ProductID); err != nil {
			return "", err
		}
		token := strconv.Itoa(in.Quantity) + " " + in.ProductID
		if len(token) > maxTokenLen {
			return "", fmt.Errorf("shop: token exceeds %d bytes", maxTokenLen)
		}
		return token, nil
	}
	return "", fmt.Errorf("shop: unknown intent kind %d", in.Kind)
}

func validID(id string) error {
	if id == "" {
		return errors.New("shop: empty id")
	}
	if strings.ContainsAny(id, " \t\n") {
		return fmt.Errorf("shop: id %q contains whitespace", id)
	}
	if isReserved(id) {
		return fmt.Errorf("shop: id %q collides with a reserved token", id)
	}
	if len(id) > maxTokenLen {
		return fmt.Errorf("shop: token exceeds %d bytes", maxTokenLen)
	}
	return nil
}

// DecodeIntent parses a callback token. Decoding is total over arbitrary
// input: every string either yields an intent or ErrMalformedIntent.
func DecodeIntent(token string) (Intent, error) {
	switch token {
	case tokenMenu, tokenBack:
		return Intent{Kind: IntentShowMenu}, nil
	case tokenCart:
		return Intent{Kind: IntentShowCart}, nil
	case tokenCheckout:
		return Intent{Kind: IntentCheckout}, nil
	}

	fields := strings.Fields(token)
	switch len(fields) {
	case 1:
		if fields[0] != token {
			return Intent{}, ErrMalformedIntent
		}
		return Intent{Kind: IntentSelect, ProductID: fields[0]}, nil
	case 2:
		qty, err := strconv.Atoi(fields[0])
		if err != nil || qty <= 0 {
			return Intent{}, ErrMalformedIntent
		}
		if isReserved(fields[1]) {
			return Intent{}, ErrMalformedIntent
		}
		return Intent{Kind: IntentAddQuantity, ProductID: fields[1], Quantity: qty}, nil
	}
	return Intent{}, ErrMalformedIntent
}
