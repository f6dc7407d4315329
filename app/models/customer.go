package models

import (
	"strings"
	"time"
)

// Customer represents a loyalty customer, created by staff or by storefront registration
type Customer struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email,omitempty"`
	Address        string    `json:"address,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	Points         int       `json:"points"`          // Loyalty balance, never negative
	TotalPurchases float64   `json:"total_purchases"` // Cumulative amount spent
	RegisteredDate time.Time `json:"registered_date"`
	Password       string    `json:"password,omitempty"` // bcrypt hash, storefront login only
}

// CustomerDraft collects customer form fields
type CustomerDraft struct {
	ID       int64
	Name     string
	Phone    string
	Email    string
	Address  string
	Notes    string
	Password string // Plain text, hashed by the store before it is persisted
}

// Build validates the draft. Loyalty fields start at zero and the
// registration date is the given time.
func (d CustomerDraft) Build(registered time.Time) (Customer, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Customer{}, missing("name")
	}

	return Customer{
		ID:             d.ID,
		Name:           name,
		Phone:          strings.TrimSpace(d.Phone),
		Email:          strings.ToLower(strings.TrimSpace(d.Email)),
		Address:        strings.TrimSpace(d.Address),
		Notes:          d.Notes,
		RegisteredDate: registered,
	}, nil
}
