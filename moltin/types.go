package moltin

// Product describes a catalog product as rendered in the storefront.
type Product struct {
	ID          string
	Name        string
	Description string
	// PriceFormatted is the without-tax display price reported by the catalog.
	PriceFormatted string
}

// Inventory reports stock levels for a product.
type Inventory struct {
	Available int
	Total     int
}

// Cart carries cart-level identity and totals.
type Cart struct {
	ID string
	// TotalWithTax is the formatted with-tax display total reported by the API.
	TotalWithTax string
}

// CartItem is a single cart line item as returned by the cart API.
type CartItem struct {
	// ID is the cart line item identifier used for removal.
	ID          string
	ProductID   string
	Name        string
	Description string
	Quantity    int
}

// Customer is a registered storefront customer.
type Customer struct {
	ID    string
	Name  string
	Email string
}

// wire envelopes

type displayPrice struct {
	WithoutTax struct {
		Formatted string `json:"formatted"`
	} `json:"without_tax"`
	WithTax struct {
		Formatted string `json:"formatted"`
	} `json:"with_tax"`
}

type productData struct {
	ID         string `json:"id"`
	Attributes struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"attributes"`
	Meta struct {
		DisplayPrice displayPrice `json:"display_price"`
	} `json:"meta"`
}

func (d productData) toProduct() Product {
	return Product{
		ID:             d.ID,
		Name:           d.Attributes.Name,
		Description:    d.Attributes.Description,
		PriceFormatted: d.Meta.DisplayPrice.WithoutTax.Formatted,
	}
}

type cartData struct {
	ID   string `json:"id"`
	Meta struct {
		DisplayPrice displayPrice `json:"display_price"`
	} `json:"meta"`
}

type cartItemData struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

type customerData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
