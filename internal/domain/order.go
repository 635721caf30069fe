package domain

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Order is the server-side record created at checkout from a copy of the cart.
type Order struct {
	ID           string       `json:"id"`
	SessionID    string       `json:"-"`
	Email        string       `json:"email,omitempty"`
	Status       string       `json:"status"`
	Currency     string       `json:"currency"`
	ShippingType ShippingType `json:"shippingType,omitempty"`
	TotalCents   int64        `json:"totalCents"`
	ItemCount    int          `json:"itemCount"`
	Items        []LineItem   `json:"items"`
	CreatedAt    time.Time    `json:"createdAt"`
}
