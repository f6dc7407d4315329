package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"RetailPOS/app/config"
	"RetailPOS/app/metrics"
	"RetailPOS/app/models"
	"RetailPOS/app/services"
	ws "RetailPOS/app/websocket"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Options holds the collaborators of the HTTP server. Hub, Metrics and
// Sheets are optional.
type Options struct {
	Serial  *services.Serial
	Auth    config.AuthConfig
	Hub     *ws.Server
	Metrics *metrics.Metrics
	Sheets  *services.GoogleSheetsService
	Log     *zap.Logger
}

// Server is the REST adapter for the POS, storefront and admin UIs. Every
// handler reaches the store through the serial queue.
type Server struct {
	echo      *echo.Echo
	serial    *services.Serial
	dashboard *services.DashboardService
	tokens    *TokenIssuer
	hub       *ws.Server
	metrics   *metrics.Metrics
	sheets    *services.GoogleSheetsService
	log       *zap.Logger
}

// NewServer builds the echo instance and registers every route
func NewServer(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Auth.JWTSecret == "" {
		log.Warn("No JWT secret configured, using a random one for this run")
	}

	s := &Server{
		echo:      echo.New(),
		serial:    opts.Serial,
		dashboard: services.NewDashboardService(opts.Serial),
		tokens:    NewTokenIssuer(opts.Auth.JWTSecret, opts.Auth.TokenHours),
		hub:       opts.Hub,
		metrics:   opts.Metrics,
		sheets:    opts.Sheets,
		log:       log,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(requestID)
	e.Use(requestLogger(log))
	if s.metrics != nil {
		e.Use(s.metrics.Middleware())
	}

	s.routes()
	return s
}

// Echo exposes the router, mainly for tests
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) routes() {
	e := s.echo

	e.GET("/health", s.handleHealth)
	if s.metrics != nil {
		e.GET("/metrics", s.metrics.Handler())
	}
	if s.hub != nil {
		e.GET("/ws", echo.WrapHandler(http.HandlerFunc(s.hub.HandleWebSocket)))
	}

	api := e.Group("/api")
	api.POST("/staff/login", s.handleStaffLogin)

	staff := api.Group("", s.requireSession(KindStaff))
	manager := requireRole(models.RoleManager)

	staff.POST("/staff/logout", s.handleStaffLogout)
	staff.GET("/staff/me", s.handleStaffMe)

	staff.GET("/products", s.handleListProducts)
	staff.GET("/products/barcode/:code", s.handleProductByBarcode)
	staff.GET("/products/:id", s.handleGetProduct)
	staff.POST("/products", s.handleCreateProduct)
	staff.PUT("/products/:id", s.handleUpdateProduct)
	staff.DELETE("/products/:id", s.handleDeleteProduct)
	staff.GET("/categories", s.handleCategories)

	staff.GET("/customers", s.handleListCustomers)
	staff.GET("/customers/:id", s.handleGetCustomer)
	staff.GET("/customers/:id/tier", s.handleCustomerTier)
	staff.GET("/customers/:id/history", s.handleCustomerHistory)
	staff.POST("/customers", s.handleCreateCustomer)
	staff.PUT("/customers/:id", s.handleUpdateCustomer)
	staff.DELETE("/customers/:id", s.handleDeleteCustomer)

	staff.GET("/employees", s.handleListEmployees)
	staff.GET("/employees/roster", s.handleRoster)
	staff.GET("/employees/:id", s.handleGetEmployee)
	staff.POST("/employees", s.handleCreateEmployee, manager)
	staff.PUT("/employees/:id", s.handleUpdateEmployee, manager)
	staff.DELETE("/employees/:id", s.handleDeleteEmployee, manager)

	staff.GET("/recipes", s.handleListRecipes)
	staff.GET("/recipes/:id", s.handleGetRecipe)
	staff.PUT("/recipes/:id", s.handleUpdateRecipe)
	staff.PUT("/recipes/:id/link", s.handleLinkRecipe)

	staff.GET("/settings", s.handleGetSettings)
	staff.PUT("/settings", s.handleUpdateSettings, manager)

	staff.GET("/sales", s.handleListSales)
	staff.POST("/sales", s.handleCreateSale)
	staff.GET("/sales/:id", s.handleGetSale)
	staff.GET("/sales/:id/receipt.png", s.handleReceiptQR)
	staff.GET("/sales/:id/receipt.txt", s.handleReceiptText)

	staff.POST("/production/compute", s.handleComputePlan)
	staff.POST("/production/import", s.handleImportSales)
	staff.GET("/production/plans", s.handleListPlans)
	staff.POST("/production/plans", s.handleSavePlan)

	staff.GET("/dashboard", s.handleDashboard)
	staff.GET("/reports/daily", s.handleDailyReport)
	staff.POST("/reports/sync", s.handleSyncReport, manager)

	shop := api.Group("/shop")
	shop.POST("/register", s.handleShopRegister)
	shop.POST("/login", s.handleShopLogin)
	shop.GET("/catalog", s.handleCatalog)
	shop.GET("/cart", s.handleGetCart)
	shop.POST("/cart", s.handleAddToCart)
	shop.PATCH("/cart/:id", s.handleUpdateCartQty)
	shop.DELETE("/cart/:id", s.handleRemoveFromCart)
	shop.DELETE("/cart", s.handleClearCart)
	shop.POST("/checkout", s.handleCheckout)

	shopper := shop.Group("", s.requireSession(KindShopper))
	shopper.POST("/logout", s.handleShopLogout)
	shopper.GET("/me", s.handleShopMe)
}

// Start listens on addr until Stop is called
func (s *Server) Start(addr string) error {
	s.log.Info("HTTP server starting", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Stop shuts the server down, waiting up to five seconds for requests in flight
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("HTTP server stopping")
	return s.echo.Shutdown(ctx)
}

// do runs fn on the store and maps its error for the response
func (s *Server) do(fn func(*services.Store) error) error {
	if err := s.serial.Do(fn); err != nil {
		return toHTTPError(err)
	}
	return nil
}

type found[T any] struct {
	value T
	ok    bool
}

// lookup runs a two-valued store query on the serial queue
func lookup[T any](s *Server, fn func(*services.Store) (T, bool)) (T, bool) {
	r := services.Read(s.serial, func(store *services.Store) found[T] {
		v, ok := fn(store)
		return found[T]{value: v, ok: ok}
	})
	return r.value, r.ok
}

func (s *Server) handleHealth(c echo.Context) error {
	clients := 0
	if s.hub != nil {
		clients = s.hub.ClientCount()
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"clients": clients,
		"time":    time.Now(),
	})
}
