package moltin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newAPIServer(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/access_token" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "test-token",
				"expires":      time.Now().Add(time.Hour).Unix(),
			})
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		handle(w, r)
	}))
	tokens := NewTokenSource(srv.URL, "id", "secret", DefaultRefreshMargin, srv.Client())
	return srv, NewClient(srv.URL, tokens, srv.Client())
}

func TestProducts(t *testing.T) {
	srv, client := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog/products" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"data":[
			{"id":"p1","attributes":{"name":"Cod","description":"Fresh cod"},
			 "meta":{"display_price":{"without_tax":{"formatted":"$10.00"}}}},
			{"id":"p2","attributes":{"name":"Salmon","description":"Wild salmon"},
			 "meta":{"display_price":{"without_tax":{"formatted":"$20.00"}}}}
		]}`)
	})
	defer srv.Close()

	products, err := client.Products(context.Background())
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("len = %d", len(products))
	}
	want := Product{ID: "p1", Name: "Cod", Description: "Fresh cod", PriceFormatted: "$10.00"}
	if products[0] != want {
		t.Fatalf("products[0] = %+v", products[0])
	}
}

func TestAddCartItem(t *testing.T) {
	var captured map[string]map[string]any
	srv, client := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/carts/cart-1/items" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-MOLTIN-CURRENCY"); got != "USD" {
			t.Errorf("currency header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	})
	defer srv.Close()

	if err := client.AddCartItem(context.Background(), "cart-1", "p1", 5); err != nil {
		t.Fatalf("add cart item: %v", err)
	}
	data := captured["data"]
	if data["id"] != "p1" || data["type"] != "cart_item" {
		t.Fatalf("body data = %+v", data)
	}
	if qty, ok := data["quantity"].(float64); !ok || qty != 5 {
		t.Fatalf("quantity = %v", data["quantity"])
	}
}

func TestAddCartItemRejectsNonPositiveQuantity(t *testing.T) {
	srv, client := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	defer srv.Close()

	if err := client.AddCartItem(context.Background(), "cart-1", "p1", 0); err == nil {
		t.Fatal("expected error for zero quantity")
	}
}

func TestCreateCustomerErrorMapping(t *testing.T) {
	status := http.StatusConflict
	srv, client := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{"errors":[{"title":"Duplicate email","detail":"customer already exists"}]}`)
	})
	defer srv.Close()

	_, err := client.CreateCustomer(context.Background(), "7", "ron@swanson.com")
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	status = http.StatusUnprocessableEntity
	_, err = client.CreateCustomer(context.Background(), "7", "not-an-email")
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var apiErr *APIError
	if !asAPIError(err, &apiErr) || apiErr.Title != "Duplicate email" {
		t.Fatalf("unexpected error payload: %v", err)
	}
}

func asAPIError(err error, target **APIError) bool {
	e, ok := err.(*APIError)
	if ok {
		*target = e
	}
	return ok
}

func TestImageURLTwoHops(t *testing.T) {
	srv, client := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pcm/products/p1/relationships/main_image":
			_, _ = io.WriteString(w, `{"data":{"id":"file-9"}}`)
		case "/v2/files/file-9":
			_, _ = io.WriteString(w, `{"data":{"link":{"href":"https://cdn.example.com/p1.jpg"}}}`)
		default:
			t.Errorf("path = %s", r.URL.Path)
		}
	})
	defer srv.Close()

	href, err := client.ImageURL(context.Background(), "p1")
	if err != nil {
		t.Fatalf("image url: %v", err)
	}
	if href != "https://cdn.example.com/p1.jpg" {
		t.Fatalf("href = %s", href)
	}
}

func TestCustomerByNameFilter(t *testing.T) {
	srv, client := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filter"); got != "eq(name,7)" {
			t.Errorf("filter = %q", got)
		}
		_, _ = io.WriteString(w, `{"data":[{"id":"c1","name":"7","email":"ron@swanson.com"}]}`)
	})
	defer srv.Close()

	customers, err := client.CustomerByName(context.Background(), "7")
	if err != nil {
		t.Fatalf("customer by name: %v", err)
	}
	if len(customers) != 1 || customers[0].Email != "ron@swanson.com" {
		t.Fatalf("customers = %+v", customers)
	}
}

func TestCartTotals(t *testing.T) {
	srv, client := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/carts/cart-1":
			_, _ = io.WriteString(w, `{"data":{"id":"cart-1",
				"meta":{"display_price":{"with_tax":{"formatted":"$30.00"}}}}}`)
		case "/v2/carts/cart-1/items":
			_, _ = io.WriteString(w, `{"data":[
				{"id":"i1","product_id":"p1","name":"Cod","description":"Fresh","quantity":1},
				{"id":"i2","product_id":"p2","name":"Salmon","description":"Wild","quantity":2}
			]}`)
		default:
			t.Errorf("path = %s", r.URL.Path)
		}
	})
	defer srv.Close()

	cart, err := client.Cart(context.Background(), "cart-1")
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	if cart.TotalWithTax != "$30.00" {
		t.Fatalf("total = %s", cart.TotalWithTax)
	}

	items, err := client.CartItems(context.Background(), "cart-1")
	if err != nil {
		t.Fatalf("cart items: %v", err)
	}
	if len(items) != 2 || items[0].ID != "i1" || items[1].ProductID != "p2" {
		t.Fatalf("items = %+v", items)
	}
}
