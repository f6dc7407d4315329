package api

import (
	"net/http"

	"RetailPOS/app/models"
	"RetailPOS/app/services"

	"github.com/labstack/echo/v4"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

type shopLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type cartAddRequest struct {
	ProductID int64 `json:"product_id"`
}

type cartQtyRequest struct {
	Delta int `json:"delta"`
}

type cartResponse struct {
	Items  []models.CartItem `json:"items"`
	Totals services.Totals   `json:"totals"`
}

func (s *Server) shopperSession(c echo.Context, status int, cust models.Customer) error {
	token, err := s.tokens.Issue(Claims{Kind: KindShopper, Name: cust.Name, CustomerID: cust.ID})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(status, sessionResponse{Token: token, User: newCustomerResponse(cust)})
}

func (s *Server) handleShopRegister(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	var cust models.Customer
	err := s.do(func(store *services.Store) (err error) {
		cust, err = store.RegisterShopper(models.CustomerDraft{
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			Address:  req.Address,
			Password: req.Password,
		})
		return err
	})
	if err != nil {
		return err
	}
	return s.shopperSession(c, http.StatusCreated, cust)
}

func (s *Server) handleShopLogin(c echo.Context) error {
	var req shopLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	var cust models.Customer
	err := s.do(func(store *services.Store) (err error) {
		cust, err = store.LoginShopper(req.Email, req.Password)
		return err
	})
	if err != nil {
		return err
	}
	return s.shopperSession(c, http.StatusOK, cust)
}

func (s *Server) handleShopLogout(c echo.Context) error {
	if err := s.do((*services.Store).LogoutShopper); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleShopMe(c echo.Context) error {
	cust := services.Read(s.serial, (*services.Store).Shopper)
	if cust == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "session has ended")
	}
	return c.JSON(http.StatusOK, newCustomerResponse(*cust))
}

// handleCatalog is the public product listing, filtered like the POS grid
func (s *Server) handleCatalog(c echo.Context) error {
	products := services.Read(s.serial, func(store *services.Store) []models.Product {
		return store.SearchProducts(c.QueryParam("q"), c.QueryParam("category"))
	})
	return c.JSON(http.StatusOK, products)
}

func (s *Server) cart(c echo.Context, status int) error {
	resp := services.Read(s.serial, func(store *services.Store) cartResponse {
		return cartResponse{Items: store.Cart(), Totals: store.CartTotals()}
	})
	return c.JSON(status, resp)
}

func (s *Server) handleGetCart(c echo.Context) error {
	return s.cart(c, http.StatusOK)
}

func (s *Server) handleAddToCart(c echo.Context) error {
	var req cartAddRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	found := false
	err := s.do(func(store *services.Store) error {
		var p models.Product
		if p, found = store.GetProduct(req.ProductID); !found {
			return nil
		}
		return store.AddToCart(p)
	})
	if err != nil {
		return err
	}
	if !found {
		return notFound("product")
	}
	return s.cart(c, http.StatusOK)
}

func (s *Server) handleUpdateCartQty(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req cartQtyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.do(func(store *services.Store) error { return store.UpdateCartQty(id, req.Delta) }); err != nil {
		return err
	}
	return s.cart(c, http.StatusOK)
}

func (s *Server) handleRemoveFromCart(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := s.do(func(store *services.Store) error { return store.RemoveFromCart(id) }); err != nil {
		return err
	}
	return s.cart(c, http.StatusOK)
}

func (s *Server) handleClearCart(c echo.Context) error {
	if err := s.do((*services.Store).ClearCart); err != nil {
		return err
	}
	return s.cart(c, http.StatusOK)
}

func (s *Server) handleCheckout(c echo.Context) error {
	var sale models.Sale
	err := s.do(func(store *services.Store) (err error) {
		sale, err = store.CheckoutCart()
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sale)
}
