package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"RetailPOS/app/config"
	"RetailPOS/app/database"
	"RetailPOS/app/models"
	"RetailPOS/app/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	srv    *Server
	serial *services.Serial
}

func newTestEnv(t *testing.T, opts services.StoreOptions) *testEnv {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	store := services.NewStore(database.NewPort(database.NewMemoryKV(), nil), nil, opts)
	serial := services.NewSerial(store)
	srv := NewServer(Options{
		Serial: serial,
		Auth:   config.AuthConfig{JWTSecret: "test-secret", TokenHours: 1},
	})
	return &testEnv{srv: srv, serial: serial}
}

func (e *testEnv) request(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.Echo().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type tokenBody struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

func (e *testEnv) login(t *testing.T, name string, role models.Role) string {
	t.Helper()
	rec := e.request(t, http.MethodPost, "/api/staff/login", staffLoginRequest{Name: name, Role: role}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[tokenBody](t, rec).Token
}

func (e *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	rec := e.request(t, http.MethodPost, "/api/shop/register", registerRequest{
		Name: "Somchai", Email: email, Password: "secret",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[tokenBody](t, rec).Token
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})

	rec := env.request(t, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]any](t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestStaffRoutesRequireStaffToken(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})

	rec := env.request(t, http.MethodGet, "/api/products", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/products", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid or expired token", decode[map[string]string](t, rec)["error"])

	shopper := env.register(t, "somchai@example.com")
	rec = env.request(t, http.MethodGet, "/api/products", nil, shopper)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStaffSessionLifecycle(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})
	token := env.login(t, "Maria Santos", models.RoleManager)

	rec := env.request(t, http.MethodGet, "/api/staff/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[models.StaffUser](t, rec)
	assert.Equal(t, "Maria Santos", me.Name)
	assert.Equal(t, "฿", me.Currency)

	rec = env.request(t, http.MethodPost, "/api/staff/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/products", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "session has ended", decode[map[string]string](t, rec)["error"])
}

func TestStaffLoginValidation(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})

	rec := env.request(t, http.MethodPost, "/api/staff/login", staffLoginRequest{Name: " "}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/staff/login", staffLoginRequest{Name: "Bob", Role: "owner"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductCRUD(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})
	token := env.login(t, "Juan", models.RoleSales)

	price, stock := 99.0, 3
	rec := env.request(t, http.MethodPost, "/api/products", productRequest{Name: "Sausage", Price: &price, Stock: &stock}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Product](t, rec)
	assert.Equal(t, int64(9), created.ID)
	assert.Equal(t, "Fresh", created.Category)

	path := fmt.Sprintf("/api/products/%d", created.ID)
	price = 120
	rec = env.request(t, http.MethodPut, path, productRequest{Name: "Sausage", Price: &price, Stock: &stock}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, path, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 120.0, decode[models.Product](t, rec).Price)

	rec = env.request(t, http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.request(t, http.MethodGet, path, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product not found", decode[map[string]string](t, rec)["error"])
}

func TestProductValidationAndLookup(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})
	token := env.login(t, "Juan", models.RoleSales)

	rec := env.request(t, http.MethodPost, "/api/products", productRequest{Name: "No price"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/products/abc", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/products/barcode/885002", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), decode[models.Product](t, rec).ID)

	rec = env.request(t, http.MethodGet, "/api/products?category=Cooked", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Product](t, rec), 4)

	rec = env.request(t, http.MethodGet, "/api/categories", nil, token)
	assert.Equal(t, []string{"All", "Cooked", "Fresh"}, decode[[]string](t, rec))
}

func TestCreateSaleDecrementsStock(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})
	token := env.login(t, "Juan", models.RoleSales)

	rec := env.request(t, http.MethodPost, "/api/sales", saleRequest{
		Items:         []saleLine{{ProductID: 1, Qty: 2}},
		PaymentMethod: models.PaymentCard,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sale := decode[models.Sale](t, rec)
	assert.Equal(t, 963.0, sale.Total)
	assert.Equal(t, "฿", sale.Currency)
	assert.Equal(t, services.WalkInCustomer, sale.CustomerName)
	assert.Equal(t, models.OrderTakeout, sale.OrderType)

	rec = env.request(t, http.MethodGet, "/api/products/1", nil, token)
	assert.Equal(t, 48, decode[models.Product](t, rec).Stock)

	rec = env.request(t, http.MethodGet, "/api/sales/"+sale.ID, nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/sales?date=2024-06-15", nil, token)
	assert.Len(t, decode[[]models.Sale](t, rec), 1)
	rec = env.request(t, http.MethodGet, "/api/sales?date=2024-06-14", nil, token)
	assert.Empty(t, decode[[]models.Sale](t, rec))
}

func TestCreateSaleRejections(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})
	token := env.login(t, "Juan", models.RoleSales)

	rec := env.request(t, http.MethodPost, "/api/sales", saleRequest{
		Items: []saleLine{{ProductID: 1, Qty: 1}}, PaymentMethod: models.PaymentCrypto,
	}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/sales", saleRequest{
		Items: []saleLine{{ProductID: 1, Qty: 0}},
	}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/sales", saleRequest{
		Items: []saleLine{{ProductID: 99, Qty: 1}},
	}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/sales", nil, token)
	assert.Empty(t, decode[[]models.Sale](t, rec))
}

func TestStrictStockConflict(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{StrictStock: true})
	token := env.login(t, "Juan", models.RoleSales)

	rec := env.request(t, http.MethodPost, "/api/sales", saleRequest{
		Items: []saleLine{{ProductID: 7, Qty: 9}},
	}, token)

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, 7.0, body["product_id"])
	assert.Equal(t, 9.0, body["requested"])
	assert.Equal(t, 8.0, body["available"])
}

func TestSaleWithCustomerAccruesLoyalty(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{AccrueLoyalty: true})
	token := env.login(t, "Juan", models.RoleSales)

	rec := env.request(t, http.MethodPost, "/api/customers", customerRequest{Name: "Nok", Phone: "0812345678"}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cust := decode[customerResponse](t, rec)
	assert.Equal(t, "Bronze", cust.Tier)

	id := cust.ID
	rec = env.request(t, http.MethodPost, "/api/sales", saleRequest{
		Items: []saleLine{{ProductID: 1, Qty: 2}}, CustomerID: &id,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Nok", decode[models.Sale](t, rec).CustomerName)

	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/customers/%d/tier", id), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	tier := decode[map[string]any](t, rec)
	assert.Equal(t, 963.0, tier["points"])

	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/customers/%d/history", id), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[services.CustomerHistory](t, rec).Sales, 1)

	rec = env.request(t, http.MethodGet, "/api/customers/42/history", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateCustomerKeepsLoyaltyFields(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})
	token := env.login(t, "Juan", models.RoleSales)

	points := 1200
	rec := env.request(t, http.MethodPost, "/api/customers", customerRequest{Name: "Nok", Points: &points}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[customerResponse](t, rec).ID

	rec = env.request(t, http.MethodPut, fmt.Sprintf("/api/customers/%d", id), customerRequest{Name: "Nok P."}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[customerResponse](t, rec)
	assert.Equal(t, "Nok P.", updated.Name)
	assert.Equal(t, 1200, updated.Points)
	assert.Equal(t, "Silver", updated.Tier)

	rec = env.request(t, http.MethodPut, "/api/customers/42", customerRequest{Name: "Ghost"}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaffSetsCustomerPassword(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})
	token := env.login(t, "Juan", models.RoleSales)
	shopLogin := func(password string) int {
		return env.request(t, http.MethodPost, "/api/shop/login",
			shopLoginRequest{Email: "nok@example.com", Password: password}, "").Code
	}

	rec := env.request(t, http.MethodPost, "/api/customers",
		customerRequest{Name: "Nok", Email: "nok@example.com", Password: "first"}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "first")
	id := decode[customerResponse](t, rec).ID

	stored := services.Read(env.serial, func(store *services.Store) models.Customer {
		c, _ := store.GetCustomer(id)
		return c
	})
	assert.NotEmpty(t, stored.Password)
	assert.NotEqual(t, "first", stored.Password)
	assert.Equal(t, http.StatusOK, shopLogin("first"))

	rec = env.request(t, http.MethodPut, fmt.Sprintf("/api/customers/%d", id),
		customerRequest{Name: "Nok", Email: "nok@example.com"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, shopLogin("first"), "no password keeps the stored one")

	rec = env.request(t, http.MethodPut, fmt.Sprintf("/api/customers/%d", id),
		customerRequest{Name: "Nok", Email: "nok@example.com", Password: "second"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, shopLogin("first"))
	assert.Equal(t, http.StatusOK, shopLogin("second"))
}

func TestDeletingShopperEndsSession(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})
	staff := env.login(t, "Juan", models.RoleSales)
	shopper := env.register(t, "somchai@example.com")

	rec := env.request(t, http.MethodGet, "/api/shop/me", nil, shopper)
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode[customerResponse](t, rec).ID

	rec = env.request(t, http.MethodDelete, fmt.Sprintf("/api/customers/%d", id), nil, staff)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/shop/me", nil, shopper)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/shop/cart", cartAddRequest{ProductID: 1}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.request(t, http.MethodPost, "/api/shop/checkout", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sale := decode[models.Sale](t, rec)
	assert.Equal(t, services.GuestCustomer, sale.CustomerName)
	assert.Nil(t, sale.CustomerID)
}

func TestEmployeeMutationsNeedManager(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})
	sales := env.login(t, "Juan", models.RoleSales)

	rec := env.request(t, http.MethodPost, "/api/employees", employeeRequest{Name: "Lek"}, sales)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/employees/roster", nil, sales)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[services.RosterStats](t, rec).Total)

	manager := env.login(t, "Maria Santos", models.RoleManager)
	rec = env.request(t, http.MethodPost, "/api/employees", employeeRequest{Name: "Lek", Role: models.RoleCashier, Salary: 9000}, manager)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	e := decode[models.Employee](t, rec)
	assert.Equal(t, models.StatusActive, e.Status)

	rec = env.request(t, http.MethodPost, "/api/employees", employeeRequest{Name: "Lek", HireDate: "15/06/2024"}, manager)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodDelete, fmt.Sprintf("/api/employees/%d", e.ID), nil, manager)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSettingsUpdate(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})
	sales := env.login(t, "Juan", models.RoleSales)

	rec := env.request(t, http.MethodGet, "/api/settings", nil, sales)
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decode[models.Settings](t, rec)

	settings.AllowCrypto = true
	rec = env.request(t, http.MethodPut, "/api/settings", settings, sales)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	manager := env.login(t, "Maria Santos", models.RoleManager)
	rec = env.request(t, http.MethodPut, "/api/settings", settings, manager)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/sales", saleRequest{
		Items: []saleLine{{ProductID: 1, Qty: 1}}, PaymentMethod: models.PaymentCrypto,
	}, manager)
	assert.Equal(t, http.StatusCreated, rec.Code)

	settings.BusinessName = ""
	rec = env.request(t, http.MethodPut, "/api/settings", settings, manager)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecipeEndpoints(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})
	token := env.login(t, "Juan", models.RoleSales)

	rec := env.request(t, http.MethodPut, "/api/recipes/no1", recipeRequest{BaseChicken: 18, BasePork: 5}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 23.0, decode[models.Recipe](t, rec).TotalBase)

	rec = env.request(t, http.MethodPut, "/api/recipes/no1/link", linkRequest{ProductID: 5}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Recipe](t, rec).LinkedTo(5))

	rec = env.request(t, http.MethodPut, "/api/recipes/no1/link", linkRequest{ProductID: 99}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/recipes/no9", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductionEndpoints(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})
	token := env.login(t, "Juan", models.RoleSales)
	inputs := planRequest{Inputs: map[string]float64{"no1": 46}}

	rec := env.request(t, http.MethodPost, "/api/production/compute", inputs, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var computed struct {
		Totals models.PlanTotals `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &computed))
	assert.Equal(t, models.PlanTotals{Orders: 46, Batches: 2, Chicken: 40, Pork: 6}, computed.Totals)

	rec = env.request(t, http.MethodPost, "/api/production/plans", inputs, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/production/plans", planRequest{}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/production/plans", nil, token)
	assert.Len(t, decode[[]models.ProductionPlan](t, rec), 1)

	rec = env.request(t, http.MethodPost, "/api/sales", saleRequest{Items: []saleLine{{ProductID: 2, Qty: 3}}}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.request(t, http.MethodPost, "/api/production/import", planRequest{}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var imported struct {
		Inputs   map[string]float64 `json:"inputs"`
		Imported int                `json:"imported"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &imported))
	assert.Equal(t, 3.0, imported.Inputs["no2"])
}

func TestReceiptAndReports(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})
	token := env.login(t, "Juan", models.RoleSales)

	rec := env.request(t, http.MethodPost, "/api/sales", saleRequest{Items: []saleLine{{ProductID: 1, Qty: 2}}}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	sale := decode[models.Sale](t, rec)

	rec = env.request(t, http.MethodGet, "/api/sales/"+sale.ID+"/receipt.png?size=128", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = env.request(t, http.MethodGet, "/api/sales/"+sale.ID+"/receipt.txt", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Pork Shop Premium")

	rec = env.request(t, http.MethodGet, "/api/sales/missing/receipt.png", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/dashboard", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[services.DashboardStats](t, rec)
	assert.Equal(t, 1, dash.TodayOrders)

	rec = env.request(t, http.MethodGet, "/api/reports/daily?date=nope", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncWithoutSheets(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})
	manager := env.login(t, "Maria Santos", models.RoleManager)

	rec := env.request(t, http.MethodPost, "/api/reports/sync", nil, manager)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestShopperFlow(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})
	token := env.register(t, "Somchai@Example.com")

	rec := env.request(t, http.MethodGet, "/api/shop/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	me := decode[customerResponse](t, rec)
	assert.Equal(t, "somchai@example.com", me.Email)

	rec = env.request(t, http.MethodPost, "/api/shop/cart", cartAddRequest{ProductID: 1}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.request(t, http.MethodPatch, "/api/shop/cart/1", cartQtyRequest{Delta: 1}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[cartResponse](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Qty)
	assert.Equal(t, 963.0, cart.Totals.Total)

	rec = env.request(t, http.MethodPost, "/api/shop/checkout", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sale := decode[models.Sale](t, rec)
	assert.Equal(t, "Somchai", sale.CustomerName)
	assert.Equal(t, models.PaymentCard, sale.PaymentMethod)
	assert.Equal(t, models.OrderDelivery, sale.OrderType)

	rec = env.request(t, http.MethodGet, "/api/shop/cart", nil, "")
	assert.Empty(t, decode[cartResponse](t, rec).Items)

	rec = env.request(t, http.MethodPost, "/api/shop/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.request(t, http.MethodGet, "/api/shop/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/shop/login", shopLoginRequest{Email: "somchai@example.com", Password: "secret"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestShopRejections(t *testing.T) {
	env := newTestEnv(t, services.StoreOptions{})
	env.register(t, "somchai@example.com")

	rec := env.request(t, http.MethodPost, "/api/shop/register", registerRequest{
		Name: "Other", Email: "somchai@example.com", Password: "x",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/shop/register", registerRequest{Name: "NoPass", Email: "a@b.c"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/shop/login", shopLoginRequest{Email: "somchai@example.com", Password: "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/shop/checkout", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/shop/cart", cartAddRequest{ProductID: 99}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTokenExpiry(t *testing.T) {
	issuer := NewTokenIssuer("k", 1)
	issuer.now = func() time.Time { return fixedNow }
	token, err := issuer.Issue(Claims{Kind: KindStaff, Name: "Juan"})
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "Juan", claims.Name)

	issuer.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }
	_, err = issuer.Parse(token)
	assert.Error(t, err)

	_, err = NewTokenIssuer("other", 1).Parse(token)
	assert.Error(t, err)
}

func TestToHTTPError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: name", models.ErrMissingField), http.StatusBadRequest},
		{services.ErrEmptyPlan, http.StatusBadRequest},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrEmailTaken, http.StatusConflict},
		{&services.InsufficientStockError{ProductID: 1}, http.StatusConflict},
		{services.ErrSheetsDisabled, http.StatusServiceUnavailable},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(strings.ReplaceAll(tc.err.Error(), " ", "_"), func(t *testing.T) {
			assert.Equal(t, tc.code, toHTTPError(tc.err).Code)
		})
	}
}
