package domain

// ShippingType is informational on a line item; the cart never acts on it.
type ShippingType string

const (
	ShippingNormal ShippingType = "normal"
	ShippingFast   ShippingType = "fast"
	ShippingUrgent ShippingType = "urgent"
)

// Valid reports whether s is empty or one of the known shipping types.
func (s ShippingType) Valid() bool {
	switch s {
	case "", ShippingNormal, ShippingFast, ShippingUrgent:
		return true
	}
	return false
}

// Technique is the print method of a single placement.
type Technique string

const (
	TechniqueEmbroidery Technique = "embroidery"
	TechniqueFlock      Technique = "flock"
	TechniqueVinyl      Technique = "vinyl"
)

// Placement is one customization unit on a garment, e.g. front text or a back logo.
type Placement struct {
	Position  string    `json:"position,omitempty"`
	Technique Technique `json:"technique"`
	Text      string    `json:"text,omitempty"`
	Font      string    `json:"font,omitempty"`
	TextColor string    `json:"textColor,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
}

// Customization is the personalization payload attached to a line item.
// The cart only looks at whether one is present and at its Ref.
type Customization struct {
	Ref        string      `json:"ref"`
	Placements []Placement `json:"placements,omitempty"`
}

// LineItem is one row of the cart as it is persisted in the slot.
type LineItem struct {
	ProductID      string         `json:"productId"`
	VariantID      string         `json:"variantId,omitempty"`
	Name           string         `json:"name"`
	ImageURL       string         `json:"imageUrl,omitempty"`
	UnitPriceCents int64          `json:"unitPriceCents"`
	Quantity       int            `json:"quantity"`
	Size           string         `json:"size,omitempty"`
	Color          string         `json:"color,omitempty"`
	Customization  *Customization `json:"customization,omitempty"`
	ShippingType   ShippingType   `json:"shippingType,omitempty"`
}

// Customized reports whether the line carries a customization payload.
func (l LineItem) Customized() bool {
	return l.Customization != nil
}

// CustomizationRef returns the customization reference or "" for plain lines.
func (l LineItem) CustomizationRef() string {
	if l.Customization == nil {
		return ""
	}
	return l.Customization.Ref
}

// SameLine reports whether two items share an identity key. Customized items
// never match anything, including another customized item with equal content.
func (l LineItem) SameLine(other LineItem) bool {
	if l.Customized() || other.Customized() {
		return false
	}
	return l.ProductID == other.ProductID && l.Size == other.Size && l.Color == other.Color
}

// TotalCents is unit price times quantity.
func (l LineItem) TotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}
