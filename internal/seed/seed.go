package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"printshop-storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type productSeed struct {
	Key         string
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	Sizes       []string
	Colors      []string
	Images      []string
}

var demoProducts = []productSeed{
	{
		Key:         "classic-tee",
		SKU:         "TEE-CLASSIC",
		Name:        "Classic T-Shirt",
		Description: "180 g/m² combed cotton, ready for flock, vinyl or embroidery",
		PriceCents:  1499,
		Sizes:       []string{"XS", "S", "M", "L", "XL", "XXL"},
		Colors:      []string{"white", "black", "navy", "red"},
		Images:      []string{"/img/classic-tee-front.jpg", "/img/classic-tee-back.jpg"},
	},
	{
		Key:         "team-hoodie",
		SKU:         "HOOD-TEAM",
		Name:        "Team Hoodie",
		Description: "Brushed fleece hoodie with kangaroo pocket",
		PriceCents:  3999,
		Sizes:       []string{"S", "M", "L", "XL"},
		Colors:      []string{"black", "grey"},
		Images:      []string{"/img/team-hoodie.jpg"},
	},
	{
		Key:         "tote-bag",
		SKU:         "BAG-TOTE",
		Name:        "Cotton Tote Bag",
		Description: "One size tote, printable on both sides",
		PriceCents:  899,
		Colors:      []string{"natural"},
		Images:      []string{"/img/tote-bag.jpg"},
	},
}

// Apply upserts the demo catalog for manual testing. It is idempotent via the
// product key.
func Apply(ctx context.Context, products ProductWriter, currency string, logger zerolog.Logger) error {
	for _, s := range demoProducts {
		attrs := map[string]interface{}{"images": s.Images}
		if len(s.Sizes) > 0 {
			attrs["sizes"] = s.Sizes
		}
		if len(s.Colors) > 0 {
			attrs["colors"] = s.Colors
		}
		p, err := products.Upsert(ctx, domain.Product{
			Key:         s.Key,
			SKU:         s.SKU,
			Name:        s.Name,
			Description: s.Description,
			PriceCents:  s.PriceCents,
			Currency:    currency,
			Attributes:  attrs,
		})
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", s.Key, err)
		}
		logger.Info().Str("key", s.Key).Str("id", p.ID).Msg("seeded product")
	}
	return nil
}
