package models

import (
	"strings"
)

// Product represents an item in the inventory and on the storefront
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"` // Free-form tag ("Cooked", "Fresh", ...)
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"` // Can go negative after an over-sale
	Unit     string  `json:"unit"`
	Icon     string  `json:"icon,omitempty"`
	Barcode  string  `json:"barcode,omitempty"`
}

// IsLowStock reports whether stock is at or below the given threshold
func (p Product) IsLowStock(threshold int) bool {
	return p.Stock <= threshold
}

// IsOversold reports whether sales have driven stock below zero
func (p Product) IsOversold() bool {
	return p.Stock < 0
}

// ProductDraft collects product form fields before they form a complete Product
type ProductDraft struct {
	ID       int64
	Name     string
	Category string
	Price    *float64
	Stock    *int
	Unit     string
	Icon     string
	Barcode  string
}

// Build validates the draft and returns the product it describes
func (d ProductDraft) Build() (Product, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Product{}, missing("name")
	}
	if d.Price == nil {
		return Product{}, missing("price")
	}
	if *d.Price < 0 {
		return Product{}, invalid("price must not be negative: %v", *d.Price)
	}
	if d.Stock == nil {
		return Product{}, missing("stock")
	}
	if *d.Stock < 0 {
		return Product{}, invalid("stock must not be negative: %d", *d.Stock)
	}

	category := strings.TrimSpace(d.Category)
	if category == "" {
		category = "Fresh"
	}
	unit := strings.TrimSpace(d.Unit)
	if unit == "" {
		unit = "kg"
	}

	return Product{
		ID:       d.ID,
		Name:     name,
		Category: category,
		Price:    *d.Price,
		Stock:    *d.Stock,
		Unit:     unit,
		Icon:     d.Icon,
		Barcode:  strings.TrimSpace(d.Barcode),
	}, nil
}
