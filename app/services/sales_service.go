package services

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"RetailPOS/app/database"
	"RetailPOS/app/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WalkInCustomer is the customer name recorded for anonymous POS sales
const WalkInCustomer = "Walk-in"

var (
	// ErrPaymentNotAccepted is returned when the settings disallow the payment method
	ErrPaymentNotAccepted = errors.New("payment method not accepted")
	// ErrInvalidQuantity is returned for sale lines with a quantity below one
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// InsufficientStockError reports a sale line that exceeds available stock.
// Only returned when strict stock checking is enabled.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (id %d): requested %d, available %d",
		e.Name, e.ProductID, e.Requested, e.Available)
}

// SaleRequest carries everything needed to finalize a sale
type SaleRequest struct {
	Items         []models.SaleItem    `json:"items"`
	Customer      *models.Customer     `json:"customer,omitempty"` // nil for walk-in
	CustomerName  string               `json:"customer_name,omitempty"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	OrderType     models.OrderType     `json:"order_type"`
	Currency      string               `json:"currency"`
	TaxRate       float64              `json:"tax_rate"`
	Discount      float64              `json:"discount"`
}

// Totals are the money amounts of a sale
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// ComputeTotals returns subtotal = Σ price·qty, tax = subtotal·taxRate and
// total = subtotal + tax − discount. Arithmetic is decimal; nothing is rounded.
func ComputeTotals(items []models.SaleItem, taxRate, discount float64) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	tax := subtotal.Mul(decimal.NewFromFloat(taxRate))
	disc := decimal.NewFromFloat(discount)
	total := subtotal.Add(tax).Sub(disc)

	return Totals{
		Subtotal: subtotal.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Discount: disc.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}

// OnSale registers fn to be called after every finalized sale
func (s *Store) OnSale(fn func(models.Sale)) {
	s.saleListeners = append(s.saleListeners, fn)
}

// FinalizeSale records a sale and decrements the stock of every sold product.
//
// Items are snapshotted, so later product edits never reach the sale. Empty
// item lists are accepted and produce a zero-total sale. Stock may go
// negative unless strict stock checking is on, in which case an
// *InsufficientStockError is returned before anything changes. The sale, the
// stock and any loyalty credit are written together: when one write fails
// none of them takes effect. The cart is not touched.
func (s *Store) FinalizeSale(req SaleRequest) (models.Sale, error) {
	return s.finalizeSale(req)
}

// finalizeSale commits extra in the same batch as the sale
func (s *Store) finalizeSale(req SaleRequest, extra ...slotWrite) (models.Sale, error) {
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentCash
	}
	if !s.settings.AcceptsPayment(req.PaymentMethod) {
		return models.Sale{}, fmt.Errorf("%w: %s", ErrPaymentNotAccepted, req.PaymentMethod)
	}
	if req.OrderType == "" {
		req.OrderType = models.OrderTakeout
	}
	if !req.OrderType.Valid() {
		return models.Sale{}, fmt.Errorf("%w: unknown order type %q", models.ErrInvalidValue, req.OrderType)
	}
	if req.Currency == "" {
		req.Currency = s.settings.Currency
	}
	for _, item := range req.Items {
		if item.Qty < 1 {
			return models.Sale{}, fmt.Errorf("%w: %s has %d", ErrInvalidQuantity, item.Name, item.Qty)
		}
	}
	if s.opts.StrictStock {
		if err := s.checkStock(req.Items); err != nil {
			return models.Sale{}, err
		}
	}

	totals := ComputeTotals(req.Items, req.TaxRate, req.Discount)
	sale := models.Sale{
		ID:            uuid.NewString(),
		Timestamp:     s.now(),
		CustomerName:  WalkInCustomer,
		Items:         slices.Clone(req.Items),
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Discount:      totals.Discount,
		Total:         totals.Total,
		PaymentMethod: req.PaymentMethod,
		OrderType:     req.OrderType,
		Currency:      req.Currency,
	}
	if sale.Items == nil {
		sale.Items = []models.SaleItem{}
	}
	if req.CustomerName != "" {
		sale.CustomerName = req.CustomerName
	}
	if req.Customer != nil {
		id := req.Customer.ID
		sale.CustomerID = &id
		sale.CustomerName = req.Customer.Name
	}

	writes := []slotWrite{stage(&s.sales, database.KeySales, append(slices.Clone(s.sales), sale), "create", sale.ID)}
	if w, ok := s.stageStockDecrement(sale); ok {
		writes = append(writes, w)
	}
	if s.opts.AccrueLoyalty && sale.CustomerID != nil {
		writes = append(writes, s.stageLoyalty(*sale.CustomerID, sale.Total)...)
	}
	if err := s.commit(append(writes, extra...)...); err != nil {
		return models.Sale{}, err
	}

	for _, p := range s.OversoldProducts() {
		if sale.QtyOf(p.ID) != 0 {
			s.log.Warn("Product oversold",
				zap.Int64("id", p.ID),
				zap.String("name", p.Name),
				zap.Int("stock", p.Stock))
		}
	}
	s.log.Info("Sale finalized",
		zap.String("id", sale.ID),
		zap.String("customer", sale.CustomerName),
		zap.Int("lines", len(sale.Items)),
		zap.Float64("total", sale.Total),
		zap.String("currency", sale.Currency))

	for _, fn := range s.saleListeners {
		fn(sale.Clone())
	}
	return sale.Clone(), nil
}

// checkStock verifies every product has enough stock for the summed quantity sold
func (s *Store) checkStock(items []models.SaleItem) error {
	requested := map[int64]int{}
	var order []int64
	for _, item := range items {
		if _, seen := requested[item.ID]; !seen {
			order = append(order, item.ID)
		}
		requested[item.ID] += item.Qty
	}

	for _, id := range order {
		p, ok := s.GetProduct(id)
		if !ok {
			continue
		}
		if p.Stock < requested[id] {
			return &InsufficientStockError{
				ProductID: id,
				Name:      p.Name,
				Requested: requested[id],
				Available: p.Stock,
			}
		}
	}
	return nil
}

// stageStockDecrement stages the catalog with the sold quantities taken off.
// It reports false when the sale touches no known product.
func (s *Store) stageStockDecrement(sale models.Sale) (slotWrite, bool) {
	next := slices.Clone(s.products)
	changed := false
	for i := range next {
		if qty := sale.QtyOf(next[i].ID); qty != 0 {
			next[i].Stock -= qty
			changed = true
		}
	}
	if !changed {
		return slotWrite{}, false
	}
	return stage(&s.products, database.KeyProducts, next, "update", ""), true
}

// stageLoyalty stages floor(total) points and the total amount credited to the customer
func (s *Store) stageLoyalty(customerID int64, total float64) []slotWrite {
	i := slices.IndexFunc(s.customers, func(c models.Customer) bool { return c.ID == customerID })
	if i < 0 {
		return nil
	}
	next := slices.Clone(s.customers)
	c := &next[i]
	c.Points = max(0, c.Points+int(math.Floor(total)))
	c.TotalPurchases = decimal.NewFromFloat(c.TotalPurchases).Add(decimal.NewFromFloat(total)).InexactFloat64()
	writes := []slotWrite{stage(&s.customers, database.KeyCustomers, next, "update", idString(c.ID))}
	return append(writes, s.followShopper(*c)...)
}

// Sales returns a copy of the sales log in the order sales were made
func (s *Store) Sales() []models.Sale {
	return cloneSales(s.sales)
}

// GetSale returns the sale with the given id
func (s *Store) GetSale(id string) (models.Sale, bool) {
	for _, sale := range s.sales {
		if sale.ID == id {
			return sale.Clone(), true
		}
	}
	return models.Sale{}, false
}

// SalesOn returns the sales whose timestamp falls on the calendar date of
// day, compared in day's location
func (s *Store) SalesOn(day time.Time) []models.Sale {
	result := []models.Sale{}
	for _, sale := range s.sales {
		if sameDate(sale.Timestamp, day) {
			result = append(result, sale.Clone())
		}
	}
	return result
}

// RecentSales returns up to n sales, newest first
func (s *Store) RecentSales(n int) []models.Sale {
	sorted := cloneSales(s.sales)
	slices.SortStableFunc(sorted, func(a, b models.Sale) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []models.Sale{}
	}
	return sorted
}

// sameDate reports whether t falls on the calendar date of ref in ref's location
func sameDate(t, ref time.Time) bool {
	ty, tm, td := t.In(ref.Location()).Date()
	ry, rm, rd := ref.Date()
	return ty == ry && tm == rm && td == rd
}

func cloneSales(sales []models.Sale) []models.Sale {
	out := make([]models.Sale, len(sales))
	for i, sale := range sales {
		out[i] = sale.Clone()
	}
	return out
}
