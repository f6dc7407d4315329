package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"RetailPOS/app/database"
	"RetailPOS/app/models"
	"RetailPOS/app/services"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "retail"

// Metrics holds the collectors of one process on a private registry
type Metrics struct {
	registry *prometheus.Registry

	// Request metrics
	RequestDuration *prometheus.HistogramVec
	APIRequests     *prometheus.CounterVec
	APIErrors       *prometheus.CounterVec

	// Business metrics
	SalesTotal       *prometheus.CounterVec
	RevenueTotal     *prometheus.CounterVec
	OversoldProducts prometheus.Gauge
}

// New registers every collector, plus the Go runtime and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		APIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "path"},
		),
		APIErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of API responses with status 400 or above",
			},
			[]string{"method", "path", "status"},
		),

		SalesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sales_total",
				Help:      "Finalized sales by order type",
			},
			[]string{"channel"},
		),
		RevenueTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "revenue_total",
				Help:      "Sum of sale totals by currency",
			},
			[]string{"currency"},
		),
		OversoldProducts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "oversold_products",
			Help:      "Number of products whose stock is below zero",
		}),
	}
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware tracks request counts, durations and error responses
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			method := c.Request().Method
			path := c.Path()

			m.APIRequests.WithLabelValues(method, path).Inc()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}
			code := strconv.Itoa(status)

			m.RequestDuration.WithLabelValues(method, path, code).Observe(time.Since(start).Seconds())
			if status >= http.StatusBadRequest {
				m.APIErrors.WithLabelValues(method, path, code).Inc()
			}
			return err
		}
	}
}

// RecordSale counts a finalized sale and its revenue
func (m *Metrics) RecordSale(sale models.Sale) {
	m.SalesTotal.WithLabelValues(string(sale.OrderType)).Inc()
	if sale.Total > 0 {
		m.RevenueTotal.WithLabelValues(sale.Currency).Add(sale.Total)
	}
}

// Observe wires the business metrics to store events. It must be called
// from the goroutine that owns the store.
func (m *Metrics) Observe(store *services.Store) {
	m.OversoldProducts.Set(float64(len(store.OversoldProducts())))

	store.OnSale(m.RecordSale)
	store.OnChange(func(change services.Change) {
		if change.Key == database.KeyProducts {
			m.OversoldProducts.Set(float64(len(store.OversoldProducts())))
		}
	})
}
