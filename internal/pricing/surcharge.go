// Package pricing computes customization surcharges for apparel line items.
//
// The result is meant to be computed once, added to the product base price and
// frozen into the line item's unit price before it reaches the cart.
package pricing

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"printshop-storefront/internal/domain"
)

var ErrUnknownTechnique = errors.New("unknown customization technique")

// Surcharges in cents.
const (
	EmbroideryCents = 800
	FlockCents      = 500

	ShortTextCents  = 200
	MediumTextCents = 400
	LongTextCents   = 600

	ImageCents = 500

	shortTextMax  = 10
	mediumTextMax = 20
)

// PlacementSurcharge returns the surcharge of a single placement.
func PlacementSurcharge(p domain.Placement) (int64, error) {
	var total int64
	switch domain.Technique(strings.ToLower(strings.TrimSpace(string(p.Technique)))) {
	case domain.TechniqueEmbroidery:
		total += EmbroideryCents
	case domain.TechniqueFlock, domain.TechniqueVinyl:
		total += FlockCents
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTechnique, p.Technique)
	}

	total += textSurcharge(p.Text)
	if strings.TrimSpace(p.ImageURL) != "" {
		total += ImageCents
	}
	return total, nil
}

// Surcharge sums the surcharge of every placement on a line.
func Surcharge(placements []domain.Placement) (int64, error) {
	var total int64
	for i, p := range placements {
		s, err := PlacementSurcharge(p)
		if err != nil {
			return 0, fmt.Errorf("placement %d: %w", i, err)
		}
		total += s
	}
	return total, nil
}

// UnitPrice is the base price plus the customization surcharge.
func UnitPrice(baseCents int64, placements []domain.Placement) (int64, error) {
	s, err := Surcharge(placements)
	if err != nil {
		return 0, err
	}
	return baseCents + s, nil
}

func textSurcharge(text string) int64 {
	n := utf8.RuneCountInString(text)
	switch {
	case n == 0:
		return 0
	case n <= shortTextMax:
		return ShortTextCents
	case n <= mediumTextMax:
		return MediumTextCents
	default:
		return LongTextCents
	}
}
