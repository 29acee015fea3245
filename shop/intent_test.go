package shop

import (
	"errors"
	"strings"
	"testing"
)

func TestIntentRoundTrip(t *testing.T) {
	cases := []Intent{
		{Kind: IntentShowMenu},
		{Kind: IntentShowCart},
		{Kind: IntentCheckout},
		{Kind: IntentSelect, ProductID: "7a3f0c9e-1b2d-4e5f-8a6b-0c1d2e3f4a5b"},
		{Kind: IntentAddQuantity, ProductID: "p-1", Quantity: 1},
		{Kind: IntentAddQuantity, ProductID: "p-1", Quantity: 10},
	}
	for _, want := range cases {
		token, err := EncodeIntent(want)
		if err != nil {
			t.Fatalf("encode %+v: %v", want, err)
		}
		if len(token) > maxTokenLen {
			t.Fatalf("token %q over limit", token)
		}
		got, err := DecodeIntent(token)
		if err != nil {
			t.Fatalf("decode %q: %v", token, err)
		}
		if got != want {
			t.Fatalf("round trip %q: got %+v, want %+v", token, got, want)
		}
	}
}

func TestDecodeBackMeansMenu(t *testing.T) {
	got, err := DecodeIntent("back")
	if err != nil {
		t.Fatalf("decode back: %v", err)
	}
	if got.Kind != IntentShowMenu {
		t.Fatalf("got kind %d", got.Kind)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"0 p1",
		"-3 p1",
		"x p1",
		"1 2 3",
		"5 menu",
		" p1 ",
		"a b c d",
	}
	for _, token := range cases {
		if _, err := DecodeIntent(token); !errors.Is(err, ErrMalformedIntent) {
			t.Errorf("decode %q: expected ErrMalformedIntent, got %v", token, err)
		}
	}
}

func TestEncodeRejectsInvalid(t *testing.T) {
	cases := []Intent{
		{Kind: IntentAddQuantity, Quantity: 5},
		{Kind: IntentAddQuantity, ProductID: "p1", Quantity: 0},
		{Kind: IntentAddQuantity, ProductID: "p1", Quantity: -1},
		{Kind: IntentSelect},
		{Kind: IntentSelect, ProductID: "has space"},
		{Kind: IntentSelect, ProductID: "menu"},
		{Kind: IntentSelect, ProductID: strings.Repeat("x", maxTokenLen+1)},
	}
	for _, in := range cases {
		if _, err := EncodeIntent(in); err == nil {
			t.Errorf("encode %+v: expected error", in)
		}
	}
}
