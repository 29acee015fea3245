package shop

import (
	"context"
	"testing"

	"github.com/m3rciful/fishbot/session"
)

func TestCartBindingGeneratesOnce(t *testing.T) {
	store := session.NewMemoryStore()
	binding := NewCartBinding(store)

	seq := 0
	binding.newID = func() string {
		seq++
		return "cart-generated"
	}

	ctx := context.Background()
	sess := session.Session{ChatID: 7, State: "menu"}

	first, err := binding.Bind(ctx, &sess)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if first != "cart-generated" {
		t.Fatalf("cart id = %q", first)
	}

	second, err := binding.Bind(ctx, &sess)
	if err != nil {
		t.Fatalf("rebind: %v", err)
	}
	if second != first {
		t.Fatalf("cart id changed: %q != %q", second, first)
	}
	if seq != 1 {
		t.Fatalf("generated %d ids, want 1", seq)
	}

	stored, err := store.Get(ctx, 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.CartID != first {
		t.Fatalf("persisted cart id = %q, want %q", stored.CartID, first)
	}
}

func TestCartBindingKeepsExisting(t *testing.T) {
	store := session.NewMemoryStore()
	binding := NewCartBinding(store)

	sess := session.Session{ChatID: 7, State: "cart", CartID: "cart-existing"}
	got, err := binding.Bind(context.Background(), &sess)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if got != "cart-existing" {
		t.Fatalf("cart id = %q", got)
	}
}
