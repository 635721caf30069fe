package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"printshop-storefront/internal/cartstore"
	"printshop-storefront/internal/domain"
	"printshop-storefront/internal/pricing"
	"printshop-storefront/internal/repository/slot"
)

type stubProductReader struct {
	product *domain.Product
	err     error
	lastID  string
}

func (s *stubProductReader) Get(_ context.Context, id string) (*domain.Product, error) {
	s.lastID = id
	return s.product, s.err
}

func tee() *domain.Product {
	return &domain.Product{
		ID:         "P1",
		Name:       "Classic Tee",
		PriceCents: 1999,
		Currency:   "EUR",
		Attributes: map[string]interface{}{
			"images": []interface{}{"https://cdn.example.com/tee.png"},
			"sizes":  []interface{}{"S", "M", "L"},
			"colors": []interface{}{"red", "black"},
		},
	}
}

func newTestService(products productReader) *Service {
	return New(cartstore.NewRegistry(slot.NewMemory(), zerolog.Nop()), products, "eur")
}

func TestServiceAddValidation(t *testing.T) {
	svc := newTestService(&stubProductReader{product: tee()})
	cases := []struct {
		name string
		in   AddInput
	}{
		{"missing product", AddInput{ProductID: "  ", Quantity: 1}},
		{"zero quantity", AddInput{ProductID: "P1", Quantity: 0}},
		{"bad shipping", AddInput{ProductID: "P1", Quantity: 1, ShippingType: "teleport"}},
		{"size not offered", AddInput{ProductID: "P1", Quantity: 1, Size: "XXL", Color: "red"}},
		{"color not offered", AddInput{ProductID: "P1", Quantity: 1, Size: "M", Color: "green"}},
		{"quantity above cap", AddInput{ProductID: "P1", Quantity: MaxLineQuantity + 1, Size: "M", Color: "red"}},
		{"unknown technique", AddInput{ProductID: "P1", Quantity: 1, Size: "M", Color: "red", Placements: []domain.Placement{{Technique: "laser"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), "s1", tc.in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestServiceAddProductNotFound(t *testing.T) {
	svc := newTestService(&stubProductReader{err: domain.ErrNotFound})
	_, err := svc.Add(context.Background(), "s1", AddInput{ProductID: "P9", Quantity: 1})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceAddPlainSnapshotsProduct(t *testing.T) {
	products := &stubProductReader{product: tee()}
	svc := newTestService(products)

	snap, err := svc.Add(context.Background(), "s1", AddInput{ProductID: "P1", Size: "M", Color: "red", Quantity: 2, ShippingType: domain.ShippingFast})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if products.lastID != "P1" {
		t.Fatalf("product lookup not called as expected")
	}
	if len(snap.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(snap.Items))
	}
	line := snap.Items[0]
	if line.Name != "Classic Tee" || line.ImageURL != "https://cdn.example.com/tee.png" || line.UnitPriceCents != 1999 || line.Customized() {
		t.Fatalf("unexpected line %+v", line)
	}
	if snap.CartTotal != 3998 || snap.CartCount != 2 || snap.ItemCount != 1 {
		t.Fatalf("unexpected totals %+v", snap.Totals)
	}
}

func TestServiceAddCustomizedFreezesSurcharge(t *testing.T) {
	product := tee()
	svc := newTestService(&stubProductReader{product: product})
	placements := []domain.Placement{{Position: "back", Technique: domain.TechniqueEmbroidery, Text: "CAPTAIN"}}

	snap, err := svc.Add(context.Background(), "s1", AddInput{ProductID: "P1", Size: "M", Color: "red", Quantity: 1, Placements: placements})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := int64(1999 + pricing.EmbroideryCents + pricing.ShortTextCents)
	if snap.Items[0].UnitPriceCents != want {
		t.Fatalf("expected unit price %d, got %d", want, snap.Items[0].UnitPriceCents)
	}
	if snap.Items[0].CustomizationRef() == "" {
		t.Fatalf("expected customization ref to be assigned")
	}

	product.PriceCents = 5000
	again := svc.Get(context.Background(), "s1")
	if again.Items[0].UnitPriceCents != want {
		t.Fatalf("unit price must stay frozen, got %d", again.Items[0].UnitPriceCents)
	}
}

func TestServiceChangeQuantityAndRemove(t *testing.T) {
	svc := newTestService(&stubProductReader{product: tee()})
	ctx := context.Background()
	if _, err := svc.Add(ctx, "s1", AddInput{ProductID: "P1", Size: "M", Color: "red", Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := svc.ChangeQuantity(ctx, "s1", LineInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	snap, err := svc.ChangeQuantity(ctx, "s1", LineInput{ProductID: "P1", Size: "M", Color: "red", Quantity: 4})
	if err != nil {
		t.Fatalf("change quantity: %v", err)
	}
	if snap.CartCount != 4 {
		t.Fatalf("expected 4 units, got %d", snap.CartCount)
	}

	snap, err = svc.Remove(ctx, "s1", LineInput{ProductID: "P1", Size: "M", Color: "red"})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if snap.ItemCount != 0 {
		t.Fatalf("expected empty cart, got %+v", snap)
	}
}

func TestServiceSessionsAreIsolated(t *testing.T) {
	svc := newTestService(&stubProductReader{product: tee()})
	ctx := context.Background()
	if _, err := svc.Add(ctx, "s1", AddInput{ProductID: "P1", Size: "M", Color: "red", Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := svc.Get(ctx, "s2"); got.ItemCount != 0 {
		t.Fatalf("expected other session to be empty, got %+v", got)
	}
	svc.Clear(ctx, "s1")
	if got := svc.Get(ctx, "s1"); got.ItemCount != 0 {
		t.Fatalf("expected cleared cart, got %+v", got)
	}
}

func TestServiceSubscribe(t *testing.T) {
	svc := newTestService(&stubProductReader{product: tee()})
	ctx := context.Background()
	totals, ch, cancel := svc.Subscribe(ctx, "s1")
	defer cancel()
	if totals != (cartstore.Totals{}) {
		t.Fatalf("expected empty totals, got %+v", totals)
	}
	if _, err := svc.Add(ctx, "s1", AddInput{ProductID: "P1", Size: "S", Color: "black", Quantity: 3}); err != nil {
		t.Fatalf("add: %v", err)
	}
	change := <-ch
	if change.Kind != cartstore.ChangeAdded || change.Totals.CartCount != 3 {
		t.Fatalf("unexpected change %+v", change)
	}
}

func TestServiceAddRejectsForeignCurrency(t *testing.T) {
	product := tee()
	product.Currency = "USD"
	svc := newTestService(&stubProductReader{product: product})

	_, err := svc.Add(context.Background(), "s1", AddInput{ProductID: "P1", Size: "M", Color: "red", Quantity: 1})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if got := svc.Get(context.Background(), "s1"); got.ItemCount != 0 {
		t.Fatalf("expected nothing added, got %+v", got)
	}
}

func TestServiceQuantityCap(t *testing.T) {
	svc := newTestService(&stubProductReader{product: tee()})
	ctx := context.Background()
	plain := AddInput{ProductID: "P1", Size: "M", Color: "red", Quantity: MaxLineQuantity - 1}
	if _, err := svc.Add(ctx, "s1", plain); err != nil {
		t.Fatalf("add: %v", err)
	}

	plain.Quantity = 2
	if _, err := svc.Add(ctx, "s1", plain); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected merge above cap to be rejected, got %v", err)
	}
	plain.Quantity = 1
	snap, err := svc.Add(ctx, "s1", plain)
	if err != nil {
		t.Fatalf("add up to cap: %v", err)
	}
	if snap.CartCount != MaxLineQuantity {
		t.Fatalf("expected %d units, got %d", MaxLineQuantity, snap.CartCount)
	}

	if _, err := svc.ChangeQuantity(ctx, "s1", LineInput{ProductID: "P1", Size: "M", Color: "red", Quantity: MaxLineQuantity + 1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected update above cap to be rejected, got %v", err)
	}
	if got := svc.Get(ctx, "s1"); got.CartTotal != int64(MaxLineQuantity)*1999 {
		t.Fatalf("unexpected total %d", got.CartTotal)
	}
}
