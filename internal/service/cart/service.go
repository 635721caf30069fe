package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"printshop-storefront/internal/cartstore"
	"printshop-storefront/internal/domain"
	"printshop-storefront/internal/pricing"
)

// ErrInvalidInput marks request validation failures.
var ErrInvalidInput = errors.New("invalid input")

// MaxLineQuantity bounds the units on a single line, merged adds included.
const MaxLineQuantity = 999

type Service struct {
	stores   storeRegistry
	products productReader
	currency string
}

type storeRegistry interface {
	Open(ctx context.Context, sessionID string) *cartstore.Store
}

type productReader interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

// New builds the service. Only products priced in currency can be added.
func New(stores storeRegistry, products productReader, currency string) *Service {
	return &Service{stores: stores, products: products, currency: strings.ToUpper(currency)}
}

type AddInput struct {
	ProductID    string              `json:"productId"`
	VariantID    string              `json:"variantId,omitempty"`
	Size         string              `json:"size,omitempty"`
	Color        string              `json:"color,omitempty"`
	Quantity     int                 `json:"quantity"`
	ShippingType domain.ShippingType `json:"shippingType,omitempty"`
	Placements   []domain.Placement  `json:"placements,omitempty"`
}

type LineInput struct {
	ProductID        string `json:"productId" form:"productId"`
	Size             string `json:"size,omitempty" form:"size"`
	Color            string `json:"color,omitempty" form:"color"`
	CustomizationRef string `json:"customizationRef,omitempty" form:"customizationRef"`
	Quantity         int    `json:"quantity,omitempty" form:"quantity"`
}

func (in LineInput) ref() cartstore.LineRef {
	return cartstore.LineRef{
		ProductID:        strings.TrimSpace(in.ProductID),
		Size:             in.Size,
		Color:            in.Color,
		CustomizationRef: strings.TrimSpace(in.CustomizationRef),
	}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

func (s *Service) Get(ctx context.Context, sessionID string) cartstore.Snapshot {
	return s.stores.Open(ctx, sessionID).Snapshot()
}

// Add builds a line item from the catalog product, freezes the unit price
// including the customization surcharge and adds it to the session's cart.
func (s *Service) Add(ctx context.Context, sessionID string, in AddInput) (cartstore.Snapshot, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return cartstore.Snapshot{}, invalid("productId required")
	}
	if in.Quantity <= 0 {
		return cartstore.Snapshot{}, invalid("quantity must be positive")
	}
	if in.Quantity > MaxLineQuantity {
		return cartstore.Snapshot{}, invalid(fmt.Sprintf("quantity must not exceed %d", MaxLineQuantity))
	}
	if !in.ShippingType.Valid() {
		return cartstore.Snapshot{}, invalid("unsupported shippingType")
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return cartstore.Snapshot{}, err
	}
	if sizes := product.Sizes(); len(sizes) > 0 && !slices.Contains(sizes, in.Size) {
		return cartstore.Snapshot{}, invalid("size not offered for product")
	}
	if colors := product.Colors(); len(colors) > 0 && !slices.Contains(colors, in.Color) {
		return cartstore.Snapshot{}, invalid("color not offered for product")
	}
	if !strings.EqualFold(product.Currency, s.currency) {
		return cartstore.Snapshot{}, invalid(fmt.Sprintf("product priced in %s, store sells in %s", product.Currency, s.currency))
	}

	unitPrice, err := pricing.UnitPrice(product.PriceCents, in.Placements)
	if err != nil {
		if errors.Is(err, pricing.ErrUnknownTechnique) {
			return cartstore.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return cartstore.Snapshot{}, err
	}

	item := domain.LineItem{
		ProductID:      product.ID,
		VariantID:      in.VariantID,
		Name:           product.Name,
		UnitPriceCents: unitPrice,
		Quantity:       in.Quantity,
		Size:           in.Size,
		Color:          in.Color,
		ShippingType:   in.ShippingType,
	}
	if images := product.Images(); len(images) > 0 {
		item.ImageURL = images[0]
	}
	if len(in.Placements) > 0 {
		item.Customization = &domain.Customization{Placements: in.Placements}
	}

	store := s.stores.Open(ctx, sessionID)
	if !item.Customized() {
		for _, existing := range store.Items() {
			if existing.SameLine(item) && existing.Quantity+item.Quantity > MaxLineQuantity {
				return cartstore.Snapshot{}, invalid(fmt.Sprintf("line would exceed %d units", MaxLineQuantity))
			}
		}
	}
	store.AddToCart(ctx, item)
	return store.Snapshot(), nil
}

func (s *Service) ChangeQuantity(ctx context.Context, sessionID string, in LineInput) (cartstore.Snapshot, error) {
	ref := in.ref()
	if ref.ProductID == "" {
		return cartstore.Snapshot{}, invalid("productId required")
	}
	if in.Quantity > MaxLineQuantity {
		return cartstore.Snapshot{}, invalid(fmt.Sprintf("quantity must not exceed %d", MaxLineQuantity))
	}
	store := s.stores.Open(ctx, sessionID)
	store.UpdateQuantity(ctx, ref, in.Quantity)
	return store.Snapshot(), nil
}

func (s *Service) Remove(ctx context.Context, sessionID string, in LineInput) (cartstore.Snapshot, error) {
	ref := in.ref()
	if ref.ProductID == "" {
		return cartstore.Snapshot{}, invalid("productId required")
	}
	store := s.stores.Open(ctx, sessionID)
	store.RemoveFromCart(ctx, ref)
	return store.Snapshot(), nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) {
	s.stores.Open(ctx, sessionID).ClearCart(ctx)
}

// Subscribe streams cart changes of the session until cancel is called.
func (s *Service) Subscribe(ctx context.Context, sessionID string) (cartstore.Totals, <-chan cartstore.Change, func()) {
	store := s.stores.Open(ctx, sessionID)
	ch, cancel := store.Subscribe()
	totals := store.Totals()
	return totals, ch, cancel
}
