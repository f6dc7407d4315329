package services

import (
	"slices"
	"time"

	"RetailPOS/app/models"

	"github.com/shopspring/decimal"
)

// ProductDetail represents product sales detail
type ProductDetail struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Total       float64 `json:"total"`
}

// ReportData represents a daily report row
type ReportData struct {
	Date          string             `json:"date"`
	TotalSales    float64            `json:"total_sales"`
	TotalTax      float64            `json:"total_tax"`
	Orders        int                `json:"orders"`
	ItemsSold     int                `json:"items_sold"`
	AverageTicket float64            `json:"average_ticket"`
	ByPayment     map[string]float64 `json:"by_payment"`
	ByOrderType   map[string]float64 `json:"by_order_type"`
	Products      []ProductDetail    `json:"products"`
}

// BuildDailyReport summarizes the sales made on day's calendar date,
// compared in day's location. Products are ordered by revenue, highest first.
func BuildDailyReport(sales []models.Sale, day time.Time) ReportData {
	report := ReportData{
		Date:        day.Format(models.DateLayout),
		ByPayment:   map[string]float64{},
		ByOrderType: map[string]float64{},
		Products:    []ProductDetail{},
	}

	total, tax := decimal.Zero, decimal.Zero
	byPayment := map[string]decimal.Decimal{}
	byOrderType := map[string]decimal.Decimal{}
	products := map[int64]*ProductDetail{}
	var order []int64

	for _, sale := range sales {
		if !sameDate(sale.Timestamp, day) {
			continue
		}
		saleTotal := decimal.NewFromFloat(sale.Total)
		total = total.Add(saleTotal)
		tax = tax.Add(decimal.NewFromFloat(sale.Tax))
		byPayment[string(sale.PaymentMethod)] = byPayment[string(sale.PaymentMethod)].Add(saleTotal)
		byOrderType[string(sale.OrderType)] = byOrderType[string(sale.OrderType)].Add(saleTotal)
		report.Orders++

		for _, item := range sale.Items {
			report.ItemsSold += item.Qty
			p, ok := products[item.ID]
			if !ok {
				p = &ProductDetail{ProductName: item.Name}
				products[item.ID] = p
				order = append(order, item.ID)
			}
			p.Quantity += item.Qty
			p.Total += item.LineTotal()
		}
	}

	report.TotalSales = total.InexactFloat64()
	report.TotalTax = tax.InexactFloat64()
	if report.Orders > 0 {
		report.AverageTicket = total.Div(decimal.NewFromInt(int64(report.Orders))).InexactFloat64()
	}
	for k, v := range byPayment {
		report.ByPayment[k] = v.InexactFloat64()
	}
	for k, v := range byOrderType {
		report.ByOrderType[k] = v.InexactFloat64()
	}
	for _, id := range order {
		report.Products = append(report.Products, *products[id])
	}
	slices.SortStableFunc(report.Products, func(a, b ProductDetail) int {
		switch {
		case a.Total > b.Total:
			return -1
		case a.Total < b.Total:
			return 1
		}
		return 0
	})
	return report
}

// DailyReport summarizes the store's sales for day
func (s *Store) DailyReport(day time.Time) ReportData {
	return BuildDailyReport(s.sales, day)
}
