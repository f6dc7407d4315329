package api

import (
	"errors"
	"net/http"

	"RetailPOS/app/models"
	"RetailPOS/app/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// toHTTPError maps domain errors onto status codes. Unknown errors are 500s
// with the cause kept as the internal error.
func toHTTPError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	var stock *services.InsufficientStockError
	switch {
	case errors.As(err, &stock):
		return echo.NewHTTPError(http.StatusConflict, echo.Map{
			"error":      stock.Error(),
			"product_id": stock.ProductID,
			"requested":  stock.Requested,
			"available":  stock.Available,
		}).SetInternal(err)
	case errors.Is(err, models.ErrMissingField),
		errors.Is(err, models.ErrInvalidValue),
		errors.Is(err, services.ErrPaymentNotAccepted),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrEmptyPlan):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, services.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error()).SetInternal(err)
	case errors.Is(err, services.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error()).SetInternal(err)
	case errors.Is(err, services.ErrSheetsDisabled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error()).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}

func notFound(what string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusNotFound, what+" not found")
}

func badRequest(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

// handleError writes every error as {"error": message}
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he := toHTTPError(err)
	if he.Code >= http.StatusInternalServerError {
		s.log.Error("Request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err))
	}

	body := he.Message
	if msg, ok := he.Message.(string); ok {
		body = echo.Map{"error": msg}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(he.Code)
	} else {
		err = c.JSON(he.Code, body)
	}
	if err != nil {
		s.log.Warn("Failed to write error response", zap.Error(err))
	}
}
