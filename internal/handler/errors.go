// Package handler exposes the POS commands over HTTP. Handlers stay thin:
// parse and validate the request shape, call one service operation, map the
// result or domain error to a response.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elgransazon/pos-backend/internal/model"
	"github.com/elgransazon/pos-backend/internal/repository"
)

// fail maps a domain error onto an HTTP response. The error taxonomy is
// stable: validation 400, missing 404, state and stock conflicts 409,
// anything unrecognized 500.
func fail(c echo.Context, err error) error {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error(), "field": ve.Field})
	}
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	}
	if errors.Is(err, model.ErrLastItem) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": err.Error(),
			"code":  "last_item",
		})
	}
	var stock *model.InsufficientStockError
	if errors.As(err, &stock) {
		out := make([]echo.Map, 0, len(stock.Shortfalls))
		for _, s := range stock.Shortfalls {
			out = append(out, echo.Map{
				"menu_item_id": s.MenuItemID,
				"menu_item":    s.MenuItemName,
				"ingredient":   s.Ingredient,
				"required":     s.Required.String(),
				"available":    s.Available.String(),
				"unit":         s.Unit,
			})
		}
		return c.JSON(http.StatusConflict, echo.Map{
			"error":      "insufficient stock",
			"code":       "insufficient_stock",
			"shortfalls": out,
		})
	}
	var tt *model.InsufficientTimeError
	if errors.As(err, &tt) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":            tt.Error(),
			"code":             "insufficient_time",
			"next_reservation": tt.NextReservation.Format("15:04"),
		})
	}
	var se *model.StateError
	if errors.As(err, &se) {
		return c.JSON(http.StatusConflict, echo.Map{"error": se.Error()})
	}
	if errors.Is(err, repository.ErrConflict) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	}
	c.Logger().Errorf("internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
