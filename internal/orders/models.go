package orders

import "time"

// Order is the aggregate root: a header plus exactly one shipping address
// and at least one line item, created together at checkout.
type Order struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	OrderAmount   int64     `json:"orderAmount"`
	TransactionID string    `json:"transactionId"`
	IsDelivered   bool      `json:"isDelivered"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Items           []LineItem       `json:"order_items"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
}

// LineItem is a snapshot of a cart entry at purchase time; it does not
// reference the live catalog row.
type LineItem struct {
	ID       int64  `json:"id"`
	OrderID  int64  `json:"-"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// ShippingAddress is copied from the payment token's billing fields when the
// order is created and has no independent lifecycle.
type ShippingAddress struct {
	ID         int64  `json:"id"`
	OrderID    int64  `json:"-"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
}
