package models

import "time"

type Product struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Discount    float64   `json:"discount"`
	Total       float64   `json:"total"` // display total, not checked against Price-Discount
	Image       string    `json:"image"`
	Image2      string    `json:"image2"`
	Category    *string   `json:"category,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductPatch carries optional product field updates.
type ProductPatch struct {
	Title       *string  `json:"title"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	Discount    *float64 `json:"discount"`
	Total       *float64 `json:"total"`
	Image       *string  `json:"image"`
	Image2      *string  `json:"image2"`
	Category    *string  `json:"category"`
}

// Apply copies every non-nil patch field onto p.
func (patch ProductPatch) Apply(p *Product) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Discount != nil {
		p.Discount = *patch.Discount
	}
	if patch.Total != nil {
		p.Total = *patch.Total
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Image2 != nil {
		p.Image2 = *patch.Image2
	}
	if patch.Category != nil {
		if *patch.Category == "" {
			p.Category = nil
		} else {
			c := *patch.Category
			p.Category = &c
		}
	}
}
