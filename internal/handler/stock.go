package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elgransazon/pos-backend/internal/repository"
	"github.com/elgransazon/pos-backend/internal/service"
)

// StockHandler exposes read-only ledger and menu views.
type StockHandler struct {
	Stock *service.StockService
	Ingr  *repository.IngredientRepo
	Menus *repository.MenuRepo
}

// NewStockHandler constructs a StockHandler.
func NewStockHandler(stock *service.StockService, ingr *repository.IngredientRepo, menus *repository.MenuRepo) *StockHandler {
	return &StockHandler{Stock: stock, Ingr: ingr, Menus: menus}
}

// ListIngredients handles GET /v1/ingredients.
func (h *StockHandler) ListIngredients(c echo.Context) error {
	list, err := h.Ingr.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	out := make([]echo.Map, 0, len(list))
	for i := range list {
		out = append(out, ingredientJSON(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"ingredients": out})
}

// LowStock handles GET /v1/ingredients/low-stock.
func (h *StockHandler) LowStock(c echo.Context) error {
	list, err := h.Stock.LowStock(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	out := make([]echo.Map, 0, len(list))
	for i := range list {
		out = append(out, ingredientJSON(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"ingredients": out})
}

// AvailableMenu handles GET /v1/menu: active dishes the ledger can still
// cover.
func (h *StockHandler) AvailableMenu(c echo.Context) error {
	list, err := h.Menus.ListAvailable(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	out := make([]echo.Map, 0, len(list))
	for i := range list {
		out = append(out, menuItemJSON(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"menu": out})
}
