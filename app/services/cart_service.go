package services

import (
	"errors"
	"slices"

	"RetailPOS/app/database"
	"RetailPOS/app/models"
)

// ErrEmptyCart is returned when checking out a cart with no lines
var ErrEmptyCart = errors.New("cart is empty")

// GuestCustomer is the customer name recorded for storefront sales without a shopper
const GuestCustomer = "Guest"

// Cart returns a copy of the storefront cart
func (s *Store) Cart() []models.CartItem {
	return slices.Clone(s.cart)
}

// CartTotals prices the cart with the settings tax rate
func (s *Store) CartTotals() Totals {
	return ComputeTotals(s.cart, s.settings.TaxRate, 0)
}

// AddToCart adds one unit of the product, opening a new line for products not yet in the cart
func (s *Store) AddToCart(p models.Product) error {
	next := slices.Clone(s.cart)
	i := slices.IndexFunc(next, func(x models.CartItem) bool { return x.ID == p.ID })
	if i >= 0 {
		next[i].Qty++
	} else {
		next = append(next, models.CartItem{Product: p, Qty: 1})
	}
	return s.commit(stage(&s.cart, database.KeyCart, next, "update", idString(p.ID)))
}

// RemoveFromCart drops the line for the product. Unknown ids are ignored.
func (s *Store) RemoveFromCart(productID int64) error {
	i := slices.IndexFunc(s.cart, func(x models.CartItem) bool { return x.ID == productID })
	if i < 0 {
		return nil
	}
	next := slices.Delete(slices.Clone(s.cart), i, i+1)
	return s.commit(stage(&s.cart, database.KeyCart, next, "delete", idString(productID)))
}

// UpdateCartQty changes a line's quantity by delta. Quantities floor at zero
// and lines reaching zero are dropped.
func (s *Store) UpdateCartQty(productID int64, delta int) error {
	i := slices.IndexFunc(s.cart, func(x models.CartItem) bool { return x.ID == productID })
	if i < 0 {
		return nil
	}
	next := slices.Clone(s.cart)
	next[i].Qty = max(0, next[i].Qty+delta)
	if next[i].Qty == 0 {
		next = slices.Delete(next, i, i+1)
	}
	return s.commit(stage(&s.cart, database.KeyCart, next, "update", idString(productID)))
}

// ClearCart empties the cart
func (s *Store) ClearCart() error {
	return s.commit(s.stageClearCart())
}

func (s *Store) stageClearCart() slotWrite {
	return stage(&s.cart, database.KeyCart, []models.CartItem{}, "clear", "")
}

// CheckoutCart finalizes the storefront cart as a card-paid delivery sale
// in the settings currency and tax rate, emptying the cart in the same write.
// The sale is credited to the logged in shopper, or to "Guest".
func (s *Store) CheckoutCart() (models.Sale, error) {
	if len(s.cart) == 0 {
		return models.Sale{}, ErrEmptyCart
	}

	req := SaleRequest{
		Items:         s.cart,
		Customer:      s.Shopper(),
		CustomerName:  GuestCustomer,
		PaymentMethod: models.PaymentCard,
		OrderType:     models.OrderDelivery,
		Currency:      s.settings.Currency,
		TaxRate:       s.settings.TaxRate,
	}
	return s.finalizeSale(req, s.stageClearCart())
}
