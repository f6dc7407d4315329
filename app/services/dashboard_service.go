package services

import (
	"slices"
	"time"

	"RetailPOS/app/models"

	"github.com/shopspring/decimal"
)

// RecentSalesLimit is how many sales the dashboard lists
const RecentSalesLimit = 5

// DashboardService handles dashboard statistics operations
type DashboardService struct {
	serial *Serial
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(serial *Serial) *DashboardService {
	return &DashboardService{serial: serial}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	BusinessName  string  `json:"business_name"`
	Currency      string  `json:"currency"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalOrders   int     `json:"total_orders"`
	AverageTicket float64 `json:"average_ticket"`
	Customers     int     `json:"customers"`

	// Sales made today
	TodayRevenue float64 `json:"today_revenue"`
	TodayOrders  int     `json:"today_orders"`

	LowStockThreshold int              `json:"low_stock_threshold"`
	LowStockProducts  []models.Product `json:"low_stock_products"`
	OversoldProducts  []models.Product `json:"oversold_products"`
	RecentSales       []models.Sale    `json:"recent_sales"`
	TopSellingItems   []TopSellingItem `json:"top_selling_items"`
}

// TopSellingItem represents a top selling product
type TopSellingItem struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	TotalSales  float64 `json:"total_sales"`
}

// GetDashboardStats retrieves all dashboard statistics
func (s *DashboardService) GetDashboardStats() DashboardStats {
	return Read(s.serial, func(store *Store) DashboardStats {
		return BuildDashboard(store, store.opts.Now())
	})
}

// BuildDashboard computes the dashboard from the store's current state
func BuildDashboard(store *Store, now time.Time) DashboardStats {
	settings := store.Settings()
	sales := store.Sales()

	stats := DashboardStats{
		BusinessName:      settings.BusinessName,
		Currency:          settings.Currency,
		TotalOrders:       len(sales),
		Customers:         len(store.customers),
		LowStockThreshold: settings.LowStockLevel,
		LowStockProducts:  store.LowStockProducts(),
		OversoldProducts:  store.OversoldProducts(),
		RecentSales:       store.RecentSales(RecentSalesLimit),
		TopSellingItems:   topSelling(sales, 5),
	}

	revenue, today := decimal.Zero, decimal.Zero
	for _, sale := range sales {
		revenue = revenue.Add(decimal.NewFromFloat(sale.Total))
		if sameDate(sale.Timestamp, now) {
			today = today.Add(decimal.NewFromFloat(sale.Total))
			stats.TodayOrders++
		}
	}
	stats.TotalRevenue = revenue.InexactFloat64()
	stats.TodayRevenue = today.InexactFloat64()
	if stats.TotalOrders > 0 {
		stats.AverageTicket = revenue.Div(decimal.NewFromInt(int64(stats.TotalOrders))).InexactFloat64()
	}
	return stats
}

// topSelling ranks products by quantity sold, ties broken by revenue then id
func topSelling(sales []models.Sale, limit int) []TopSellingItem {
	byID := map[int64]*TopSellingItem{}
	for _, sale := range sales {
		for _, item := range sale.Items {
			t, ok := byID[item.ID]
			if !ok {
				t = &TopSellingItem{ProductID: item.ID, ProductName: item.Name}
				byID[item.ID] = t
			}
			t.Quantity += item.Qty
			t.TotalSales += item.LineTotal()
		}
	}

	items := make([]TopSellingItem, 0, len(byID))
	for _, t := range byID {
		items = append(items, *t)
	}
	slices.SortFunc(items, func(a, b TopSellingItem) int {
		switch {
		case a.Quantity != b.Quantity:
			return b.Quantity - a.Quantity
		case a.TotalSales > b.TotalSales:
			return -1
		case a.TotalSales < b.TotalSales:
			return 1
		default:
			return int(a.ProductID - b.ProductID)
		}
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
