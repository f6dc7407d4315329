package api

import (
	"net/http"
	"time"

	"RetailPOS/app/models"
	"RetailPOS/app/security"
	"RetailPOS/app/services"

	"github.com/labstack/echo/v4"
)

type staffLoginRequest struct {
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
	Currency string      `json:"currency"`
}

type sessionResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

func (s *Server) handleStaffLogin(c echo.Context) error {
	var req staffLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	var user models.StaffUser
	err := s.do(func(store *services.Store) (err error) {
		user, err = store.LoginStaff(req.Name, req.Role, req.Currency)
		return err
	})
	if err != nil {
		return err
	}

	token, err := s.tokens.Issue(Claims{Kind: KindStaff, Name: user.Name, Role: user.Role})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, sessionResponse{Token: token, User: user})
}

func (s *Server) handleStaffLogout(c echo.Context) error {
	if err := s.do((*services.Store).LogoutStaff); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleStaffMe(c echo.Context) error {
	user := services.Read(s.serial, (*services.Store).StaffUser)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "session has ended")
	}
	return c.JSON(http.StatusOK, user)
}

// customerResponse never carries the password hash
type customerResponse struct {
	models.Customer
	Tier string `json:"tier"`
}

func newCustomerResponse(c models.Customer) customerResponse {
	c.Password = ""
	return customerResponse{Customer: c, Tier: services.TierOf(c.Points).Name}
}

func customerResponses(list []models.Customer) []customerResponse {
	out := make([]customerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, newCustomerResponse(c))
	}
	return out
}

type customerRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Notes    string `json:"notes"`
	Password string `json:"password"`
	Points   *int   `json:"points"`
}

// build validates the request and hashes the storefront password when one is sent
func (r customerRequest) build(id int64, registered time.Time) (models.Customer, error) {
	c, err := r.draft(id).Build(registered)
	if err != nil || r.Password == "" {
		return c, err
	}
	c.Password, err = security.HashPassword(r.Password)
	return c, err
}

func (r customerRequest) draft(id int64) models.CustomerDraft {
	return models.CustomerDraft{
		ID:       id,
		Name:     r.Name,
		Phone:    r.Phone,
		Email:    r.Email,
		Address:  r.Address,
		Notes:    r.Notes,
		Password: r.Password,
	}
}

func (s *Server) handleListCustomers(c echo.Context) error {
	list := services.Read(s.serial, func(store *services.Store) []models.Customer {
		return store.SearchCustomers(c.QueryParam("q"), c.QueryParam("tier"))
	})
	return c.JSON(http.StatusOK, customerResponses(list))
}

func (s *Server) handleGetCustomer(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	cust, ok := lookup(s, func(store *services.Store) (models.Customer, bool) {
		return store.GetCustomer(id)
	})
	if !ok {
		return notFound("customer")
	}
	return c.JSON(http.StatusOK, newCustomerResponse(cust))
}

func (s *Server) handleCustomerTier(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	cust, ok := lookup(s, func(store *services.Store) (models.Customer, bool) {
		return store.GetCustomer(id)
	})
	if !ok {
		return notFound("customer")
	}

	tier := services.TierOf(cust.Points)
	return c.JSON(http.StatusOK, echo.Map{
		"points":         cust.Points,
		"tier":           tier,
		"progress":       tier.Progress(cust.Points),
		"points_to_next": tier.PointsToNext(cust.Points),
	})
}

func (s *Server) handleCustomerHistory(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	var history services.CustomerHistory
	found := false
	_ = s.serial.Do(func(store *services.Store) error {
		if _, found = store.GetCustomer(id); found {
			history = store.HistoryOf(id)
		}
		return nil
	})
	if !found {
		return notFound("customer")
	}
	return c.JSON(http.StatusOK, history)
}

func (s *Server) handleCreateCustomer(c echo.Context) error {
	var req customerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	var cust models.Customer
	err := s.do(func(store *services.Store) error {
		built, err := req.build(0, store.Options().Now().UTC())
		if err != nil {
			return err
		}
		if req.Points != nil {
			built.Points = *req.Points
		}
		cust, err = store.AddCustomer(built)
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newCustomerResponse(cust))
}

// handleUpdateCustomer keeps the loyalty fields and registration date of the
// stored record unless points are sent explicitly
func (s *Server) handleUpdateCustomer(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req customerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	var cust models.Customer
	found := false
	err = s.do(func(store *services.Store) error {
		var current models.Customer
		if current, found = store.GetCustomer(id); !found {
			return nil
		}
		built, err := req.build(id, current.RegisteredDate)
		if err != nil {
			return err
		}
		built.Points = current.Points
		built.TotalPurchases = current.TotalPurchases
		if req.Points != nil {
			built.Points = *req.Points
		}
		if err := store.UpdateCustomer(built); err != nil {
			return err
		}
		cust, _ = store.GetCustomer(id)
		return nil
	})
	if err != nil {
		return err
	}
	if !found {
		return notFound("customer")
	}
	return c.JSON(http.StatusOK, newCustomerResponse(cust))
}

func (s *Server) handleDeleteCustomer(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := s.do(func(store *services.Store) error { return store.DeleteCustomer(id) }); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type employeeRequest struct {
	Name     string                `json:"name"`
	Role     models.Role           `json:"role"`
	Salary   float64               `json:"salary"`
	Status   models.EmployeeStatus `json:"status"`
	Phone    string                `json:"phone"`
	Address  string                `json:"address"`
	HireDate string                `json:"hire_date"`
}

func (r employeeRequest) draft(id int64) models.EmployeeDraft {
	return models.EmployeeDraft{
		ID:       id,
		Name:     r.Name,
		Role:     r.Role,
		Salary:   r.Salary,
		Status:   r.Status,
		Phone:    r.Phone,
		Address:  r.Address,
		HireDate: r.HireDate,
	}
}

func (s *Server) handleListEmployees(c echo.Context) error {
	list := services.Read(s.serial, func(store *services.Store) []models.Employee {
		return store.SearchEmployees(c.QueryParam("q"), models.Role(c.QueryParam("role")))
	})
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleRoster(c echo.Context) error {
	return c.JSON(http.StatusOK, services.Read(s.serial, (*services.Store).Roster))
}

func (s *Server) handleGetEmployee(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	e, ok := lookup(s, func(store *services.Store) (models.Employee, bool) {
		return store.GetEmployee(id)
	})
	if !ok {
		return notFound("employee")
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) handleCreateEmployee(c echo.Context) error {
	var req employeeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	e, err := req.draft(0).Build(time.Now().UTC())
	if err != nil {
		return toHTTPError(err)
	}

	err = s.do(func(store *services.Store) error {
		e, err = store.AddEmployee(e)
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}

func (s *Server) handleUpdateEmployee(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req employeeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	e, err := req.draft(id).Build(time.Now().UTC())
	if err != nil {
		return toHTTPError(err)
	}

	found := false
	err = s.do(func(store *services.Store) error {
		if _, found = store.GetEmployee(id); !found {
			return nil
		}
		return store.UpdateEmployee(e)
	})
	if err != nil {
		return err
	}
	if !found {
		return notFound("employee")
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) handleDeleteEmployee(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := s.do(func(store *services.Store) error { return store.DeleteEmployee(id) }); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
