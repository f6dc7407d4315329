package services

import (
	"slices"
	"strings"

	"RetailPOS/app/database"
	"RetailPOS/app/models"
)

// AllCategories is the catalog filter that matches every product
const AllCategories = "All"

// Products returns a copy of the catalog
func (s *Store) Products() []models.Product {
	return slices.Clone(s.products)
}

// GetProduct returns the product with the given id
func (s *Store) GetProduct(id int64) (models.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// AddProduct appends a product, assigning the next free id when ID is zero
func (s *Store) AddProduct(p models.Product) (models.Product, error) {
	if p.ID == 0 {
		p.ID = nextID(s.products, func(x models.Product) int64 { return x.ID })
	}
	next := append(slices.Clone(s.products), p)
	return p, s.commit(stage(&s.products, database.KeyProducts, next, "create", idString(p.ID)))
}

// UpdateProduct replaces the product with the same id. Unknown ids are ignored.
func (s *Store) UpdateProduct(p models.Product) error {
	i := slices.IndexFunc(s.products, func(x models.Product) bool { return x.ID == p.ID })
	if i < 0 {
		return nil
	}
	next := slices.Clone(s.products)
	next[i] = p
	return s.commit(stage(&s.products, database.KeyProducts, next, "update", idString(p.ID)))
}

// DeleteProduct removes the product with the given id. Unknown ids are ignored.
func (s *Store) DeleteProduct(id int64) error {
	i := slices.IndexFunc(s.products, func(x models.Product) bool { return x.ID == id })
	if i < 0 {
		return nil
	}
	next := slices.Delete(slices.Clone(s.products), i, i+1)
	return s.commit(stage(&s.products, database.KeyProducts, next, "delete", idString(id)))
}

// Categories returns the distinct product categories in catalog order,
// preceded by AllCategories
func (s *Store) Categories() []string {
	categories := []string{AllCategories}
	for _, p := range s.products {
		if !slices.Contains(categories, p.Category) {
			categories = append(categories, p.Category)
		}
	}
	return categories
}

// SearchProducts filters the catalog by a case-insensitive name or barcode
// match and by category. An empty query or AllCategories matches everything.
func (s *Store) SearchProducts(query, category string) []models.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	result := []models.Product{}
	for _, p := range s.products {
		if category != "" && category != AllCategories && p.Category != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(p.Barcode, query) {
			continue
		}
		result = append(result, p)
	}
	return result
}

// ProductByBarcode returns the product carrying the scanned barcode
func (s *Store) ProductByBarcode(code string) (models.Product, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.Product{}, false
	}
	for _, p := range s.products {
		if p.Barcode == code {
			return p, true
		}
	}
	return models.Product{}, false
}

// LowStockProducts returns products at or below the settings threshold
func (s *Store) LowStockProducts() []models.Product {
	result := []models.Product{}
	for _, p := range s.products {
		if p.IsLowStock(s.settings.LowStockLevel) {
			result = append(result, p)
		}
	}
	return result
}

// OversoldProducts returns products whose stock has gone negative
func (s *Store) OversoldProducts() []models.Product {
	result := []models.Product{}
	for _, p := range s.products {
		if p.IsOversold() {
			result = append(result, p)
		}
	}
	return result
}
