package models

import (
	"slices"
	"time"
)

// PaymentMethod is how a sale was paid
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentCrypto PaymentMethod = "crypto"
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentCrypto:
		return true
	}
	return false
}

// OrderType is the fulfilment channel of a sale
type OrderType string

const (
	OrderDineIn   OrderType = "dine-in"
	OrderTakeout  OrderType = "takeout"
	OrderDelivery OrderType = "delivery"
)

// Valid reports whether t is a known order type
func (t OrderType) Valid() bool {
	switch t {
	case OrderDineIn, OrderTakeout, OrderDelivery:
		return true
	}
	return false
}

// SaleItem is a product snapshot frozen at the time of sale, with the quantity sold.
// Later edits to the live product never reach it.
type SaleItem struct {
	Product
	Qty int `json:"qty"`
}

// LineTotal returns price times quantity
func (i SaleItem) LineTotal() float64 {
	return i.Price * float64(i.Qty)
}

// CartItem is a storefront cart line; it has the same shape as a sale line
type CartItem = SaleItem

// Sale represents a completed sale transaction. Immutable once created.
type Sale struct {
	ID            string        `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	CustomerName  string        `json:"customer_name"`
	CustomerID    *int64        `json:"customer_id,omitempty"`
	Items         []SaleItem    `json:"items"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax"`
	Discount      float64       `json:"discount"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	OrderType     OrderType     `json:"order_type"`
	Currency      string        `json:"currency"`
}

// Clone returns a copy that shares no memory with s
func (s Sale) Clone() Sale {
	if s.CustomerID != nil {
		id := *s.CustomerID
		s.CustomerID = &id
	}
	s.Items = slices.Clone(s.Items)
	return s
}

// QtyOf returns the quantity of the given product sold in this sale
func (s Sale) QtyOf(productID int64) int {
	qty := 0
	for _, item := range s.Items {
		if item.ID == productID {
			qty += item.Qty
		}
	}
	return qty
}
