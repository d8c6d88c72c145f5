package models

import "time"

// Cart is one user's in-progress order. A user is expected to own at most one cart.
type Cart struct {
	ID        string     `json:"_id"`
	User      string     `json:"user"`
	Products  []LineItem `json:"products"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// LineItem pairs a product reference with a quantity.
type LineItem struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// CartPatch carries the raw fields accepted by a direct cart replace.
// Nil fields are left untouched.
type CartPatch struct {
	User     *string     `json:"user"`
	Products *[]LineItem `json:"products"`
}

// ExpandedCart is a Cart whose line items carry the full product record.
type ExpandedCart struct {
	ID        string             `json:"_id"`
	User      string             `json:"user"`
	Products  []ExpandedLineItem `json:"products"`
	Version   int64              `json:"version"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// ExpandedLineItem holds a nil Product when the referenced product no longer exists.
type ExpandedLineItem struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

// Expand resolves every line item against products, keyed by product id.
func (c Cart) Expand(products map[string]Product) ExpandedCart {
	out := ExpandedCart{
		ID:        c.ID,
		User:      c.User,
		Products:  make([]ExpandedLineItem, 0, len(c.Products)),
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for _, item := range c.Products {
		expanded := ExpandedLineItem{Quantity: item.Quantity}
		if p, ok := products[item.Product]; ok {
			p := p
			expanded.Product = &p
		}
		out.Products = append(out.Products, expanded)
	}
	return out
}

// ProductIDs returns the distinct product references of the cart in first-seen order.
func (c Cart) ProductIDs() []string {
	seen := make(map[string]struct{}, len(c.Products))
	ids := make([]string, 0, len(c.Products))
	for _, item := range c.Products {
		if _, ok := seen[item.Product]; ok {
			continue
		}
		seen[item.Product] = struct{}{}
		ids = append(ids, item.Product)
	}
	return ids
}
