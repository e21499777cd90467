package model

// CartLine is a cart row joined with live catalogue data. UnitPrice is
// the current catalogue price, never a snapshot; orders freeze prices
// separately at checkout.
type CartLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice int64   `json:"unitPrice"`
	ImageURL  *string `json:"imageUrl,omitempty"`
	IsActive  bool    `json:"isActive"`
	Quantity  int     `json:"quantity"`
	Subtotal  int64   `json:"subtotal"`
}

// Cart is the full cart view returned to the storefront.
// ItemCount is the summed quantity across lines.
type Cart struct {
	Lines     []CartLine `json:"lines"`
	Total     int64      `json:"total"`
	ItemCount int        `json:"itemCount"`
}

// AddToCartRequest is the payload for POST /api/cart. A nil Quantity
// means one unit.
type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity,omitempty"`
}

// UpdateCartRequest is the payload for PUT /api/cart/{productId}.
type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}
