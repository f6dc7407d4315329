package services

import (
	"testing"
	"time"

	"RetailPOS/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedSales records one oversold sale yesterday and two sales at fixedNow
func seedSales(t *testing.T) *Store {
	t.Helper()
	now := fixedNow.Add(-24 * time.Hour)
	store, _ := newTestStore(t, StoreOptions{Now: func() time.Time { return now }})

	_, err := store.FinalizeSale(SaleRequest{Items: []models.SaleItem{line(t, store, 7, 9)}})
	require.NoError(t, err)

	now = fixedNow
	_, err = store.FinalizeSale(SaleRequest{
		Items:         []models.SaleItem{line(t, store, 1, 2)},
		PaymentMethod: models.PaymentCard,
		OrderType:     models.OrderDelivery,
	})
	require.NoError(t, err)
	_, err = store.FinalizeSale(SaleRequest{Items: []models.SaleItem{line(t, store, 2, 1)}})
	require.NoError(t, err)
	return store
}

func TestBuildDashboard(t *testing.T) {
	store := seedSales(t)

	stats := BuildDashboard(store, fixedNow)

	assert.Equal(t, "Pork Shop Premium", stats.BusinessName)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 6141.8, stats.TotalRevenue)
	assert.InDelta(t, 6141.8/3, stats.AverageTicket, 1e-9)
	assert.Equal(t, 2, stats.TodayOrders)
	assert.Equal(t, 1519.4, stats.TodayRevenue)

	require.Len(t, stats.OversoldProducts, 1)
	assert.Equal(t, int64(7), stats.OversoldProducts[0].ID)
	assert.Equal(t, -1, stats.OversoldProducts[0].Stock)
	require.Len(t, stats.LowStockProducts, 1)
	assert.Equal(t, int64(7), stats.LowStockProducts[0].ID)

	require.Len(t, stats.RecentSales, 3)
	assert.Equal(t, fixedNow.Add(-24*time.Hour), stats.RecentSales[2].Timestamp)

	require.Len(t, stats.TopSellingItems, 3)
	assert.Equal(t, TopSellingItem{ProductID: 7, ProductName: "Pork Chops (kg)", Quantity: 9, TotalSales: 4320}, stats.TopSellingItems[0])
	assert.Equal(t, int64(1), stats.TopSellingItems[1].ProductID)
	assert.Equal(t, int64(2), stats.TopSellingItems[2].ProductID)
}

func TestDashboardServiceEmptyStore(t *testing.T) {
	store, _ := newTestStore(t, StoreOptions{})
	svc := NewDashboardService(NewSerial(store))

	stats := svc.GetDashboardStats()
	assert.Zero(t, stats.TotalOrders)
	assert.Zero(t, stats.AverageTicket)
	assert.Empty(t, stats.RecentSales)
	assert.Empty(t, stats.TopSellingItems)
	assert.Empty(t, stats.OversoldProducts)
	assert.Len(t, stats.LowStockProducts, 1, "pork chops start below the threshold")
}

func TestTopSellingLimit(t *testing.T) {
	var sales []models.Sale
	for id := int64(1); id <= 7; id++ {
		sales = append(sales, models.Sale{Items: []models.SaleItem{{Product: models.Product{ID: id, Price: 10}, Qty: 1}}})
	}

	top := topSelling(sales, 5)
	require.Len(t, top, 5)
	for i, item := range top {
		assert.Equal(t, int64(i+1), item.ProductID, "ties fall back to id order")
	}
}
