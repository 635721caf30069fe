package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printshop-storefront/internal/cartstore"
	"printshop-storefront/internal/domain"
	"printshop-storefront/internal/events"
)

type stubOrderRepo struct {
	created   []domain.Order
	createErr error
	order     *domain.Order
	getErr    error
}

func (s *stubOrderRepo) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, o)
	o.ID = "order-1"
	o.CreatedAt = time.Now()
	return &o, nil
}

func (s *stubOrderRepo) GetByID(_ context.Context, _ string) (*domain.Order, error) {
	return s.order, s.getErr
}

type stubPublisher struct {
	events []events.CartCheckedOut
	err    error
}

func (s *stubPublisher) PublishCartCheckedOut(_ context.Context, ev events.CartCheckedOut) error {
	s.events = append(s.events, ev)
	return s.err
}

func snapshot(items ...domain.LineItem) cartstore.Snapshot {
	snap := cartstore.Snapshot{Items: items}
	snap.ItemCount = len(items)
	for _, it := range items {
		snap.CartCount += it.Quantity
		snap.CartTotal += it.TotalCents()
	}
	return snap
}

func TestInitiate_EmptyCart(t *testing.T) {
	svc := New(&stubOrderRepo{}, nil, "EUR", zerolog.Nop())
	_, err := svc.Initiate(context.Background(), "s1", cartstore.Snapshot{}, InitiateInput{})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestInitiate_Validation(t *testing.T) {
	svc := New(&stubOrderRepo{}, nil, "EUR", zerolog.Nop())
	snap := snapshot(domain.LineItem{ProductID: "P1", UnitPriceCents: 100, Quantity: 1})

	_, err := svc.Initiate(context.Background(), "s1", snap, InitiateInput{Email: "nope"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Initiate(context.Background(), "s1", snap, InitiateInput{ShippingType: "rocket"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestInitiate_CreatesOrderAndPublishes(t *testing.T) {
	repo := &stubOrderRepo{}
	pub := &stubPublisher{}
	svc := New(repo, pub, "EUR", zerolog.Nop())
	snap := snapshot(
		domain.LineItem{ProductID: "P1", UnitPriceCents: 1000, Quantity: 2},
		domain.LineItem{ProductID: "P2", UnitPriceCents: 2500, Quantity: 1, ShippingType: domain.ShippingUrgent, Customization: &domain.Customization{Ref: "r1"}},
	)

	order, err := svc.Initiate(context.Background(), "s1", snap, InitiateInput{Email: " Buyer@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, int64(4500), order.TotalCents)
	assert.Equal(t, 2, order.ItemCount)
	assert.Equal(t, "buyer@example.com", order.Email)
	assert.Equal(t, domain.ShippingUrgent, order.ShippingType)
	assert.Equal(t, "EUR", order.Currency)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "order-1", pub.events[0].OrderID)
	assert.Equal(t, "45.00", pub.events[0].TotalAmount.StringFixed(2))
}

func TestInitiate_PublishFailureDoesNotFailCheckout(t *testing.T) {
	pub := &stubPublisher{err: errors.New("broker down")}
	svc := New(&stubOrderRepo{}, pub, "EUR", zerolog.Nop())
	snap := snapshot(domain.LineItem{ProductID: "P1", UnitPriceCents: 1000, Quantity: 1})

	order, err := svc.Initiate(context.Background(), "s1", snap, InitiateInput{ShippingType: domain.ShippingFast})
	require.NoError(t, err)
	assert.Equal(t, domain.ShippingFast, order.ShippingType)
}

func TestInitiate_RepoError(t *testing.T) {
	pub := &stubPublisher{}
	svc := New(&stubOrderRepo{createErr: errors.New("db down")}, pub, "EUR", zerolog.Nop())
	snap := snapshot(domain.LineItem{ProductID: "P1", UnitPriceCents: 1000, Quantity: 1})

	_, err := svc.Initiate(context.Background(), "s1", snap, InitiateInput{})
	assert.EqualError(t, err, "create order: db down")
	assert.Empty(t, pub.events)
}

func TestGet(t *testing.T) {
	id := "3b8f0c2e-9d41-4a7b-8e25-6c1f0a9d7e43"
	want := &domain.Order{ID: id}
	svc := New(&stubOrderRepo{order: want}, nil, "EUR", zerolog.Nop())
	got, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Same(t, want, got)

	_, err = svc.Get(context.Background(), "o1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
