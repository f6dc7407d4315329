package api

import (
	"net/http"
	"strconv"
	"time"

	"RetailPOS/app/models"
	"RetailPOS/app/services"

	"github.com/labstack/echo/v4"
)

type saleLine struct {
	ProductID int64 `json:"product_id"`
	Qty       int   `json:"qty"`
}

type saleRequest struct {
	Items         []saleLine           `json:"items"`
	CustomerID    *int64               `json:"customer_id"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	OrderType     models.OrderType     `json:"order_type"`
	Currency      string               `json:"currency"`
	TaxRate       *float64             `json:"tax_rate"`
	Discount      float64              `json:"discount"`
}

type planRequest struct {
	Inputs map[string]float64 `json:"inputs"`
}

// dateParam parses ?date=YYYY-MM-DD in local time, falling back to the store clock
func (s *Server) dateParam(c echo.Context) (time.Time, bool, error) {
	raw := c.QueryParam("date")
	if raw == "" {
		now := services.Read(s.serial, func(store *services.Store) time.Time {
			return store.Options().Now()
		})
		return now, false, nil
	}
	day, err := time.ParseInLocation(models.DateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, true, badRequest("date must be YYYY-MM-DD")
	}
	return day, true, nil
}

func (s *Server) handleListSales(c echo.Context) error {
	day, filtered, err := s.dateParam(c)
	if err != nil {
		return err
	}
	sales := services.Read(s.serial, func(store *services.Store) []models.Sale {
		if filtered {
			return store.SalesOn(day)
		}
		return store.Sales()
	})
	return c.JSON(http.StatusOK, sales)
}

func (s *Server) handleGetSale(c echo.Context) error {
	sale, ok := s.saleByID(c.Param("id"))
	if !ok {
		return notFound("sale")
	}
	return c.JSON(http.StatusOK, sale)
}

func (s *Server) saleByID(id string) (models.Sale, bool) {
	return lookup(s, func(store *services.Store) (models.Sale, bool) {
		return store.GetSale(id)
	})
}

// handleCreateSale resolves each line against the live catalog and finalizes
// the sale. Currency defaults to the staff member's currency and the tax rate
// to the settings rate.
func (s *Server) handleCreateSale(c echo.Context) error {
	var req saleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	var sale models.Sale
	var missing string
	err := s.do(func(store *services.Store) error {
		items := make([]models.SaleItem, 0, len(req.Items))
		for _, line := range req.Items {
			p, ok := store.GetProduct(line.ProductID)
			if !ok {
				missing = "product " + strconv.FormatInt(line.ProductID, 10)
				return nil
			}
			items = append(items, models.SaleItem{Product: p, Qty: line.Qty})
		}

		settings := store.Settings()
		sr := services.SaleRequest{
			Items:         items,
			CustomerName:  services.WalkInCustomer,
			PaymentMethod: req.PaymentMethod,
			OrderType:     req.OrderType,
			Currency:      req.Currency,
			TaxRate:       settings.TaxRate,
			Discount:      req.Discount,
		}
		if req.TaxRate != nil {
			sr.TaxRate = *req.TaxRate
		}
		if sr.Currency == "" {
			if u := store.StaffUser(); u != nil {
				sr.Currency = u.Currency
			}
		}
		if req.CustomerID != nil {
			cust, ok := store.GetCustomer(*req.CustomerID)
			if !ok {
				missing = "customer"
				return nil
			}
			sr.Customer = &cust
		}

		var err error
		sale, err = store.FinalizeSale(sr)
		return err
	})
	if err != nil {
		return err
	}
	if missing != "" {
		return notFound(missing)
	}
	return c.JSON(http.StatusCreated, sale)
}

func (s *Server) handleReceiptQR(c echo.Context) error {
	sale, ok := s.saleByID(c.Param("id"))
	if !ok {
		return notFound("sale")
	}
	size, _ := strconv.Atoi(c.QueryParam("size"))
	png, err := services.ReceiptQR(sale, size)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

func (s *Server) handleReceiptText(c echo.Context) error {
	sale, ok := s.saleByID(c.Param("id"))
	if !ok {
		return notFound("sale")
	}
	name := services.Read(s.serial, func(store *services.Store) string {
		return store.Settings().BusinessName
	})
	return c.String(http.StatusOK, services.ReceiptText(sale, name))
}

func (s *Server) handleComputePlan(c echo.Context) error {
	var req planRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	recipes := services.Read(s.serial, (*services.Store).Recipes)
	return c.JSON(http.StatusOK, echo.Map{
		"items":  services.PlanItems(recipes, req.Inputs),
		"totals": services.Aggregate(recipes, req.Inputs),
	})
}

func (s *Server) handleImportSales(c echo.Context) error {
	var req planRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	type imported struct {
		inputs map[string]float64
		count  int
	}
	r := services.Read(s.serial, func(store *services.Store) imported {
		inputs, n := store.ImportTodaySales(req.Inputs)
		return imported{inputs, n}
	})
	return c.JSON(http.StatusOK, echo.Map{"inputs": r.inputs, "imported": r.count})
}

func (s *Server) handleListPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, services.Read(s.serial, (*services.Store).Plans))
}

func (s *Server) handleSavePlan(c echo.Context) error {
	var req planRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	var plan models.ProductionPlan
	err := s.do(func(store *services.Store) (err error) {
		plan, err = store.SavePlanFromInputs(req.Inputs)
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, plan)
}

func (s *Server) handleDashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, s.dashboard.GetDashboardStats())
}

func (s *Server) handleDailyReport(c echo.Context) error {
	day, _, err := s.dateParam(c)
	if err != nil {
		return err
	}
	report := services.Read(s.serial, func(store *services.Store) services.ReportData {
		return store.DailyReport(day)
	})
	return c.JSON(http.StatusOK, report)
}

func (s *Server) handleSyncReport(c echo.Context) error {
	if s.sheets == nil {
		return toHTTPError(services.ErrSheetsDisabled)
	}
	day, _, err := s.dateParam(c)
	if err != nil {
		return err
	}
	if err := s.sheets.SyncDay(c.Request().Context(), day); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, s.sheets.Status())
}
