// Package checkout hands a copy of the cart to order creation. The cart
// itself is never modified here.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"printshop-storefront/internal/cartstore"
	"printshop-storefront/internal/domain"
	"printshop-storefront/internal/events"
	orderrepo "printshop-storefront/internal/repository/order"
)

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrInvalidInput = errors.New("invalid input")
)

type publisher interface {
	PublishCartCheckedOut(ctx context.Context, ev events.CartCheckedOut) error
}

type Service struct {
	orders    orderrepo.Repository
	publisher publisher
	currency  string
	logger    zerolog.Logger
}

// New builds the service. pub may be nil, in which case no event is emitted.
func New(orders orderrepo.Repository, pub publisher, currency string, logger zerolog.Logger) *Service {
	return &Service{
		orders:    orders,
		publisher: pub,
		currency:  currency,
		logger:    logger.With().Str("component", "checkout").Logger(),
	}
}

type InitiateInput struct {
	Email        string              `json:"email"`
	ShippingType domain.ShippingType `json:"shippingType,omitempty"`
}

// Initiate records a pending order built from snap and announces it.
func (s *Service) Initiate(ctx context.Context, sessionID string, snap cartstore.Snapshot, in InitiateInput) (*domain.Order, error) {
	if len(snap.Items) == 0 {
		return nil, ErrEmptyCart
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email != "" && !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if !in.ShippingType.Valid() {
		return nil, fmt.Errorf("%w: unsupported shippingType", ErrInvalidInput)
	}
	shipping := in.ShippingType
	if shipping == "" {
		shipping = fastestShipping(snap.Items)
	}

	order, err := s.orders.Create(ctx, domain.Order{
		SessionID:    sessionID,
		Email:        email,
		Status:       domain.OrderStatusPending,
		Currency:     s.currency,
		ShippingType: shipping,
		TotalCents:   snap.CartTotal,
		ItemCount:    snap.ItemCount,
		Items:        snap.Items,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.logger.Info().
		Str("order_id", order.ID).
		Str("session_id", sessionID).
		Int64("total_cents", order.TotalCents).
		Int("items", order.ItemCount).
		Msg("order created")

	if s.publisher != nil {
		if err := s.publisher.PublishCartCheckedOut(ctx, events.NewCartCheckedOut(*order)); err != nil {
			s.logger.Error().Err(err).Str("order_id", order.ID).Msg("publish CartCheckedOut failed")
		}
	}
	return order, nil
}

// Get looks an order up by id. Ids that are not UUIDs cannot exist.
func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.orders.GetByID(ctx, id)
}

// fastestShipping picks the most urgent shipping type requested by any line.
func fastestShipping(items []domain.LineItem) domain.ShippingType {
	rank := map[domain.ShippingType]int{domain.ShippingNormal: 1, domain.ShippingFast: 2, domain.ShippingUrgent: 3}
	best := domain.ShippingNormal
	for _, it := range items {
		if rank[it.ShippingType] > rank[best] {
			best = it.ShippingType
		}
	}
	return best
}
