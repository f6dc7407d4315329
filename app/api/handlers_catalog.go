package api

import (
	"net/http"
	"strconv"
	"strings"

	"RetailPOS/app/models"
	"RetailPOS/app/services"

	"github.com/labstack/echo/v4"
)

type productRequest struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Price    *float64 `json:"price"`
	Stock    *int     `json:"stock"`
	Unit     string   `json:"unit"`
	Icon     string   `json:"icon"`
	Barcode  string   `json:"barcode"`
}

func (r productRequest) draft(id int64) models.ProductDraft {
	return models.ProductDraft{
		ID:       id,
		Name:     r.Name,
		Category: r.Category,
		Price:    r.Price,
		Stock:    r.Stock,
		Unit:     r.Unit,
		Icon:     r.Icon,
		Barcode:  r.Barcode,
	}
}

type recipeRequest struct {
	Name        string  `json:"name"`
	BaseChicken float64 `json:"base_chicken"`
	BasePork    float64 `json:"base_pork"`
}

type linkRequest struct {
	ProductID int64 `json:"product_id"`
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, badRequest("invalid id")
	}
	return id, nil
}

func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return badRequest("invalid request body")
	}
	return nil
}

func (s *Server) handleListProducts(c echo.Context) error {
	products := services.Read(s.serial, func(store *services.Store) []models.Product {
		return store.SearchProducts(c.QueryParam("q"), c.QueryParam("category"))
	})
	return c.JSON(http.StatusOK, products)
}

func (s *Server) handleGetProduct(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	p, ok := lookup(s, func(store *services.Store) (models.Product, bool) {
		return store.GetProduct(id)
	})
	if !ok {
		return notFound("product")
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleProductByBarcode(c echo.Context) error {
	p, ok := lookup(s, func(store *services.Store) (models.Product, bool) {
		return store.ProductByBarcode(strings.TrimSpace(c.Param("code")))
	})
	if !ok {
		return notFound("product")
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleCreateProduct(c echo.Context) error {
	var req productRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := req.draft(0).Build()
	if err != nil {
		return toHTTPError(err)
	}

	err = s.do(func(store *services.Store) error {
		p, err = store.AddProduct(p)
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleUpdateProduct(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req productRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := req.draft(id).Build()
	if err != nil {
		return toHTTPError(err)
	}

	found := false
	err = s.do(func(store *services.Store) error {
		if _, found = store.GetProduct(id); !found {
			return nil
		}
		return store.UpdateProduct(p)
	})
	if err != nil {
		return err
	}
	if !found {
		return notFound("product")
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeleteProduct(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := s.do(func(store *services.Store) error { return store.DeleteProduct(id) }); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, services.Read(s.serial, (*services.Store).Categories))
}

func (s *Server) handleListRecipes(c echo.Context) error {
	return c.JSON(http.StatusOK, services.Read(s.serial, (*services.Store).Recipes))
}

func (s *Server) handleGetRecipe(c echo.Context) error {
	r, ok := lookup(s, func(store *services.Store) (models.Recipe, bool) {
		return store.GetRecipe(c.Param("id"))
	})
	if !ok {
		return notFound("recipe")
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) handleUpdateRecipe(c echo.Context) error {
	var req recipeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.BaseChicken < 0 || req.BasePork < 0 {
		return toHTTPError(models.ErrInvalidValue)
	}

	var r models.Recipe
	found := false
	err := s.do(func(store *services.Store) error {
		if r, found = store.GetRecipe(c.Param("id")); !found {
			return nil
		}
		if name := strings.TrimSpace(req.Name); name != "" {
			r.Name = name
		}
		r.BaseChicken = req.BaseChicken
		r.BasePork = req.BasePork
		if err := store.UpdateRecipe(r); err != nil {
			return err
		}
		r, _ = store.GetRecipe(r.ID)
		return nil
	})
	if err != nil {
		return err
	}
	if !found {
		return notFound("recipe")
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) handleLinkRecipe(c echo.Context) error {
	var req linkRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	var r models.Recipe
	var missing string
	err := s.do(func(store *services.Store) error {
		if _, ok := store.GetRecipe(c.Param("id")); !ok {
			missing = "recipe"
			return nil
		}
		if _, ok := store.GetProduct(req.ProductID); !ok {
			missing = "product"
			return nil
		}
		if err := store.LinkRecipeProduct(c.Param("id"), req.ProductID); err != nil {
			return err
		}
		r, _ = store.GetRecipe(c.Param("id"))
		return nil
	})
	if err != nil {
		return err
	}
	if missing != "" {
		return notFound(missing)
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) handleGetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, services.Read(s.serial, (*services.Store).Settings))
}

func (s *Server) handleUpdateSettings(c echo.Context) error {
	var settings models.Settings
	if err := bind(c, &settings); err != nil {
		return err
	}
	if strings.TrimSpace(settings.BusinessName) == "" {
		return toHTTPError(models.ErrMissingField)
	}
	if settings.TaxRate < 0 || settings.LowStockLevel < 0 {
		return toHTTPError(models.ErrInvalidValue)
	}

	err := s.do(func(store *services.Store) error {
		return store.UpdateSettings(settings)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}
