package domain

import "time"

type Product struct {
	ID          string                 `json:"id"`
	Key         string                 `json:"key"`
	SKU         string                 `json:"sku"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	PriceCents  int64                  `json:"priceCents"`
	Currency    string                 `json:"currency"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// Images returns the image URLs stored under the "images" attribute.
func (p Product) Images() []string {
	return stringList(p.Attributes["images"])
}

// Sizes returns the sizes offered for the product, if any were recorded.
func (p Product) Sizes() []string {
	return stringList(p.Attributes["sizes"])
}

// Colors returns the colors offered for the product, if any were recorded.
func (p Product) Colors() []string {
	return stringList(p.Attributes["colors"])
}

func stringList(raw interface{}) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
