package services

import (
	"slices"
	"strings"
	"time"

	"RetailPOS/app/database"
	"RetailPOS/app/models"
)

// Customers returns a copy of the customer list
func (s *Store) Customers() []models.Customer {
	return slices.Clone(s.customers)
}

// GetCustomer returns the customer with the given id
func (s *Store) GetCustomer(id int64) (models.Customer, bool) {
	for _, c := range s.customers {
		if c.ID == id {
			return c, true
		}
	}
	return models.Customer{}, false
}

// AddCustomer appends a customer, assigning the next free id when ID is zero
// and stamping the registration date when it is unset
func (s *Store) AddCustomer(c models.Customer) (models.Customer, error) {
	c, w := s.stageNewCustomer(c)
	return c, s.commit(w)
}

func (s *Store) stageNewCustomer(c models.Customer) (models.Customer, slotWrite) {
	if c.ID == 0 {
		c.ID = nextID(s.customers, func(x models.Customer) int64 { return x.ID })
	}
	if c.RegisteredDate.IsZero() {
		c.RegisteredDate = s.now()
	}
	if c.Points < 0 {
		c.Points = 0
	}
	next := append(slices.Clone(s.customers), c)
	return c, stage(&s.customers, database.KeyCustomers, next, "create", idString(c.ID))
}

// UpdateCustomer replaces the customer with the same id. Unknown ids are
// ignored. An empty password keeps the stored hash.
func (s *Store) UpdateCustomer(c models.Customer) error {
	i := slices.IndexFunc(s.customers, func(x models.Customer) bool { return x.ID == c.ID })
	if i < 0 {
		return nil
	}
	if c.Password == "" {
		c.Password = s.customers[i].Password
	}
	if c.Points < 0 {
		c.Points = 0
	}
	next := slices.Clone(s.customers)
	next[i] = c
	writes := []slotWrite{stage(&s.customers, database.KeyCustomers, next, "update", idString(c.ID))}
	return s.commit(append(writes, s.followShopper(c)...)...)
}

// DeleteCustomer removes the customer with the given id. When that customer
// holds the storefront session it is logged out as by LogoutShopper.
// Unknown ids are ignored.
func (s *Store) DeleteCustomer(id int64) error {
	i := slices.IndexFunc(s.customers, func(x models.Customer) bool { return x.ID == id })
	if i < 0 {
		return nil
	}
	next := slices.Delete(slices.Clone(s.customers), i, i+1)
	writes := []slotWrite{stage(&s.customers, database.KeyCustomers, next, "delete", idString(id))}
	if s.shopper != nil && s.shopper.ID == id {
		writes = append(writes, s.stageShopper(nil), s.stageClearCart())
	}
	return s.commit(writes...)
}

// CustomersByTier returns the customers whose points place them in the named
// tier. An empty name or AllCategories returns everyone.
func (s *Store) CustomersByTier(name string) []models.Customer {
	return s.SearchCustomers("", name)
}

// SearchCustomers filters customers by a case-insensitive name match or a
// phone substring, and by tier name
func (s *Store) SearchCustomers(query, tier string) []models.Customer {
	query = strings.ToLower(strings.TrimSpace(query))
	result := []models.Customer{}
	for _, c := range s.customers {
		if tier != "" && tier != AllCategories && TierOf(c.Points).Name != tier {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(c.Name), query) &&
			!strings.Contains(c.Phone, query) {
			continue
		}
		result = append(result, c)
	}
	return result
}

// CustomerHistory summarizes the purchases recorded against one customer
type CustomerHistory struct {
	Sales        []models.Sale `json:"sales"` // Most recent first
	LastVisit    *time.Time    `json:"last_visit,omitempty"`
	AverageOrder float64       `json:"average_order"`
}

// HistoryOf returns the sales linked to the customer by id. The average
// divides the customer's recorded total purchases by the number of visits.
func (s *Store) HistoryOf(customerID int64) CustomerHistory {
	h := CustomerHistory{Sales: []models.Sale{}}
	for _, sale := range s.sales {
		if sale.CustomerID != nil && *sale.CustomerID == customerID {
			h.Sales = append(h.Sales, sale.Clone())
		}
	}
	slices.SortStableFunc(h.Sales, func(a, b models.Sale) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	if len(h.Sales) > 0 {
		last := h.Sales[0].Timestamp
		h.LastVisit = &last
		if c, ok := s.GetCustomer(customerID); ok {
			h.AverageOrder = c.TotalPurchases / float64(len(h.Sales))
		}
	}
	return h
}
