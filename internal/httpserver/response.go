package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"printshop-storefront/internal/cartstore"
	"printshop-storefront/internal/domain"
	"printshop-storefront/internal/pricing"
	cartsvc "printshop-storefront/internal/service/cart"
	checkoutsvc "printshop-storefront/internal/service/checkout"
	"printshop-storefront/internal/service/session"
)

const fractionDigits = 2

type priceValue struct {
	CurrencyCode   string `json:"currencyCode"`
	CentAmount     int64  `json:"centAmount"`
	FractionDigits int    `json:"fractionDigits"`
	Amount         string `json:"amount"`
}

func money(cents int64, currency string) priceValue {
	return priceValue{
		CurrencyCode:   currency,
		CentAmount:     cents,
		FractionDigits: fractionDigits,
		Amount:         decimal.New(cents, -fractionDigits).StringFixed(fractionDigits),
	}
}

type productResponse struct {
	ID          string     `json:"id"`
	Key         string     `json:"key,omitempty"`
	SKU         string     `json:"sku"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Price       priceValue `json:"price"`
	Images      []string   `json:"images"`
	Sizes       []string   `json:"sizes"`
	Colors      []string   `json:"colors"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type productList struct {
	Count   int               `json:"count"`
	Results []productResponse `json:"results"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Key:         p.Key,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.PriceCents, p.Currency),
		Images:      nonNil(p.Images()),
		Sizes:       nonNil(p.Sizes()),
		Colors:      nonNil(p.Colors()),
		CreatedAt:   p.CreatedAt,
	}
}

type lineItemResponse struct {
	ProductID     string                `json:"productId"`
	VariantID     string                `json:"variantId,omitempty"`
	Name          string                `json:"name"`
	ImageURL      string                `json:"imageUrl,omitempty"`
	Size          string                `json:"size,omitempty"`
	Color         string                `json:"color,omitempty"`
	Quantity      int                   `json:"quantity"`
	ShippingType  domain.ShippingType   `json:"shippingType,omitempty"`
	Customization *domain.Customization `json:"customization,omitempty"`
	UnitPrice     priceValue            `json:"unitPrice"`
	TotalPrice    priceValue            `json:"totalPrice"`
}

type cartResponse struct {
	LineItems  []lineItemResponse `json:"lineItems"`
	ItemCount  int                `json:"itemCount"`
	CartCount  int                `json:"cartCount"`
	TotalPrice priceValue         `json:"totalPrice"`
}

func toLineItems(items []domain.LineItem, currency string) []lineItemResponse {
	out := make([]lineItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, lineItemResponse{
			ProductID:     it.ProductID,
			VariantID:     it.VariantID,
			Name:          it.Name,
			ImageURL:      it.ImageURL,
			Size:          it.Size,
			Color:         it.Color,
			Quantity:      it.Quantity,
			ShippingType:  it.ShippingType,
			Customization: it.Customization,
			UnitPrice:     money(it.UnitPriceCents, currency),
			TotalPrice:    money(it.TotalCents(), currency),
		})
	}
	return out
}

func toCartResponse(snap cartstore.Snapshot, currency string) cartResponse {
	return cartResponse{
		LineItems:  toLineItems(snap.Items, currency),
		ItemCount:  snap.ItemCount,
		CartCount:  snap.CartCount,
		TotalPrice: money(snap.CartTotal, currency),
	}
}

type orderResponse struct {
	ID           string              `json:"id"`
	Status       string              `json:"status"`
	Email        string              `json:"email,omitempty"`
	ShippingType domain.ShippingType `json:"shippingType,omitempty"`
	LineItems    []lineItemResponse  `json:"lineItems"`
	ItemCount    int                 `json:"itemCount"`
	TotalPrice   priceValue          `json:"totalPrice"`
	CreatedAt    time.Time           `json:"createdAt"`
}

func toOrderResponse(o domain.Order) orderResponse {
	return orderResponse{
		ID:           o.ID,
		Status:       o.Status,
		Email:        o.Email,
		ShippingType: o.ShippingType,
		LineItems:    toLineItems(o.Items, o.Currency),
		ItemCount:    o.ItemCount,
		TotalPrice:   money(o.TotalCents, o.Currency),
		CreatedAt:    o.CreatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

// writeError maps service errors onto status codes. Unexpected errors are
// logged and reported without detail.
func (h *handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cartsvc.ErrInvalidInput),
		errors.Is(err, checkoutsvc.ErrInvalidInput),
		errors.Is(err, checkoutsvc.ErrEmptyCart),
		errors.Is(err, pricing.ErrUnknownTechnique):
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, session.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, errorBody("invalid token"))
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody("not found"))
	default:
		_ = c.Error(err)
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, errorBody("internal error"))
	}
}
