package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"printshop-storefront/internal/domain"
)

// CartCheckedOut is emitted once an order record exists for a cart.
type CartCheckedOut struct {
	EventType    string          `json:"eventType"`
	EventID      string          `json:"eventId"`
	Producer     string          `json:"producer"`
	OrderID      string          `json:"orderId"`
	SessionID    string          `json:"sessionId"`
	Currency     string          `json:"currency"`
	ShippingType string          `json:"shippingType,omitempty"`
	Items        []CartItemEvent `json:"items"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Timestamp    time.Time       `json:"timestamp"`
}

type CartItemEvent struct {
	ProductID        string          `json:"productId"`
	VariantID        string          `json:"variantId,omitempty"`
	Size             string          `json:"size,omitempty"`
	Color            string          `json:"color,omitempty"`
	CustomizationRef string          `json:"customizationRef,omitempty"`
	Quantity         int             `json:"quantity"`
	Price            decimal.Decimal `json:"price"`
}

// Amount converts integer cents into a decimal currency amount.
func Amount(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func NewCartCheckedOut(o domain.Order) CartCheckedOut {
	ev := CartCheckedOut{
		EventType:    "CartCheckedOut",
		EventID:      uuid.NewString(),
		Producer:     producerName,
		OrderID:      o.ID,
		SessionID:    o.SessionID,
		Currency:     o.Currency,
		ShippingType: string(o.ShippingType),
		Items:        make([]CartItemEvent, 0, len(o.Items)),
		TotalAmount:  Amount(o.TotalCents),
		Timestamp:    time.Now().UTC(),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, CartItemEvent{
			ProductID:        it.ProductID,
			VariantID:        it.VariantID,
			Size:             it.Size,
			Color:            it.Color,
			CustomizationRef: it.CustomizationRef(),
			Quantity:         it.Quantity,
			Price:            Amount(it.UnitPriceCents),
		})
	}
	return ev
}
