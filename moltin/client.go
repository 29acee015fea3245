// Package moltin implements a client for the Elastic Path (Moltin) commerce
// HTTP API: catalog products, inventories, product images, carts, and
// customers. All calls carry a bearer token obtained from a shared
// TokenSource.
package moltin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m3rciful/fishbot/core/logger"
	"log/slog"
)

// Client talks to the commerce API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     *TokenSource
}

// NewClient builds a commerce API client around a shared token source.
// A nil httpClient falls back to http.DefaultClient.
func NewClient(baseURL string, tokens *TokenSource, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
	}
}

// Products lists all catalog products.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var envelope struct {
		Data []productData `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/catalog/products", nil, nil, nil, &envelope); err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(envelope.Data))
	for _, d := range envelope.Data {
		products = append(products, d.toProduct())
	}
	return products, nil
}

// Product fetches a single catalog product by id.
func (c *Client) Product(ctx context.Context, productID string) (Product, error) {
	var envelope struct {
		Data productData `json:"data"`
	}
	path := "/catalog/products/" + url.PathEscape(productID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, nil, &envelope); err != nil {
		return Product{}, err
	}
	return envelope.Data.toProduct(), nil
}

// Inventory fetches stock levels for a product.
func (c *Client) Inventory(ctx context.Context, productID string) (Inventory, error) {
	var envelope struct {
		Data struct {
			Available int `json:"available"`
			Total     int `json:"total"`
		} `json:"data"`
	}
	path := "/v2/inventories/" + url.PathEscape(productID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, nil, &envelope); err != nil {
		return Inventory{}, err
	}
	return Inventory{Available: envelope.Data.Available, Total: envelope.Data.Total}, nil
}

// ImageURL resolves the main image URL for a product. The API exposes it in
// two hops: the main_image relationship yields a file id, the file record
// carries the link.
func (c *Client) ImageURL(ctx context.Context, productID string) (string, error) {
	var relEnvelope struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	relPath := "/pcm/products/" + url.PathEscape(productID) + "/relationships/main_image"
	if err := c.do(ctx, http.MethodGet, relPath, nil, nil, nil, &relEnvelope); err != nil {
		return "", err
	}

	var fileEnvelope struct {
		Data struct {
			Link struct {
				Href string `json:"href"`
			} `json:"link"`
		} `json:"data"`
	}
	filePath := "/v2/files/" + url.PathEscape(relEnvelope.Data.ID)
	if err := c.do(ctx, http.MethodGet, filePath, nil, nil, nil, &fileEnvelope); err != nil {
		return "", err
	}
	return fileEnvelope.Data.Link.Href, nil
}

// Cart fetches cart-level totals. Carts are created implicitly by the API on
// first reference to a cart id.
func (c *Client) Cart(ctx context.Context, cartID string) (Cart, error) {
	var envelope struct {
		Data cartData `json:"data"`
	}
	path := "/v2/carts/" + url.PathEscape(cartID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, nil, &envelope); err != nil {
		return Cart{}, err
	}
	return Cart{
		ID:           envelope.Data.ID,
		TotalWithTax: envelope.Data.Meta.DisplayPrice.WithTax.Formatted,
	}, nil
}

// CartItems lists cart line items in API order.
func (c *Client) CartItems(ctx context.Context, cartID string) ([]CartItem, error) {
	var envelope struct {
		Data []cartItemData `json:"data"`
	}
	path := "/v2/carts/" + url.PathEscape(cartID) + "/items"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, nil, &envelope); err != nil {
		return nil, err
	}
	items := make([]CartItem, 0, len(envelope.Data))
	for _, d := range envelope.Data {
		items = append(items, CartItem{
			ID:          d.ID,
			ProductID:   d.ProductID,
			Name:        d.Name,
			Description: d.Description,
			Quantity:    d.Quantity,
		})
	}
	return items, nil
}

// AddCartItem adds a product with the given quantity to a cart.
func (c *Client) AddCartItem(ctx context.Context, cartID, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("moltin: quantity must be positive, got %d", quantity)
	}
	body := map[string]any{
		"data": map[string]any{
			"quantity": quantity,
			"type":     "cart_item",
			"id":       productID,
		},
	}
	headers := http.Header{"X-MOLTIN-CURRENCY": {"USD"}}
	path := "/v2/carts/" + url.PathEscape(cartID) + "/items"
	return c.do(ctx, http.MethodPost, path, nil, headers, body, nil)
}

// RemoveCartItem deletes a line item from a cart.
func (c *Client) RemoveCartItem(ctx context.Context, cartID, itemID string) error {
	path := "/v2/carts/" + url.PathEscape(cartID) + "/items/" + url.PathEscape(itemID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil, nil)
}

// CreateCustomer registers a customer by name and email.
// A duplicate email yields a 409 APIError, an invalid one a 422.
func (c *Client) CreateCustomer(ctx context.Context, name, email string) (Customer, error) {
	body := map[string]any{
		"data": map[string]any{
			"type":  "customer",
			"name":  name,
			"email": email,
		},
	}
	var envelope struct {
		Data customerData `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/customers", nil, nil, body, &envelope); err != nil {
		return Customer{}, err
	}
	return Customer{
		ID:    envelope.Data.ID,
		Name:  envelope.Data.Name,
		Email: envelope.Data.Email,
	}, nil
}

// CustomerByName looks up customers with an exact name match.
func (c *Client) CustomerByName(ctx context.Context, name string) ([]Customer, error) {
	query := url.Values{"filter": {fmt.Sprintf("eq(name,%s)", name)}}
	var envelope struct {
		Data []customerData `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v2/customers", query, nil, nil, &envelope); err != nil {
		return nil, err
	}
	customers := make([]Customer, 0, len(envelope.Data))
	for _, d := range envelope.Data {
		customers = append(customers, Customer{ID: d.ID, Name: d.Name, Email: d.Email})
	}
	return customers, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, headers http.Header, body, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("credential: %w", err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	for key, values := range headers {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error(ctx, "moltin", "api.call",
			slog.String("status", "fail"),
			slog.String("op", method+" "+path),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	logger.Debug(ctx, "moltin", "api.call",
		slog.String("status", "ok"),
		slog.String("op", method+" "+path),
		slog.Int("http_code", resp.StatusCode),
		slog.Duration("duration", logger.Took(start)),
	)

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}

	var envelope struct {
		Errors []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		if envelope.Errors[0].Title != "" {
			apiErr.Title = envelope.Errors[0].Title
		}
		apiErr.Detail = envelope.Errors[0].Detail
	}
	return apiErr
}
