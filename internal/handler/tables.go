package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elgransazon/pos-backend/internal/middleware"
	"github.com/elgransazon/pos-backend/internal/model"
	"github.com/elgransazon/pos-backend/internal/service"
)

// TableHandler exposes table occupancy commands.
type TableHandler struct {
	Tables *service.TableService
}

// NewTableHandler constructs a TableHandler.
func NewTableHandler(tables *service.TableService) *TableHandler {
	return &TableHandler{Tables: tables}
}

// List handles GET /v1/tables with an optional status filter.
func (h *TableHandler) List(c echo.Context) error {
	var (
		tables []model.RestaurantTable
		err    error
	)
	if status := c.QueryParam("status"); status != "" {
		tables, err = h.Tables.ListByStatus(c.Request().Context(), model.TableStatus(status))
	} else {
		tables, err = h.Tables.List(c.Request().Context())
	}
	if err != nil {
		return fail(c, err)
	}
	out := make([]echo.Map, 0, len(tables))
	for i := range tables {
		out = append(out, tableJSON(&tables[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": out})
}

// Availability handles GET /v1/tables/:id/availability: a read-only check
// whether the table could seat a party right now.
func (h *TableHandler) Availability(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	ok, err := h.Tables.CanBeOccupiedNow(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"table_id": id, "can_occupy": ok})
}

// MarkOccupied handles POST /v1/tables/:id/occupy: a walk-in party is seated
// without an order yet. Reserved tables get the time check against their
// next reservation.
func (h *TableHandler) MarkOccupied(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	t, err := h.Tables.MarkAsOccupied(c.Request().Context(), id, middleware.Staff(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, tableJSON(t))
}

// MarkAvailable handles POST /v1/tables/:id/free.
func (h *TableHandler) MarkAvailable(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	if err := h.Tables.MarkAsAvailable(c.Request().Context(), id, middleware.Staff(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// OutOfService handles POST /v1/tables/:id/out-of-service.
func (h *TableHandler) OutOfService(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	if err := h.Tables.SetOutOfService(c.Request().Context(), id, middleware.Staff(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ReturnToService handles POST /v1/tables/:id/return-to-service.
func (h *TableHandler) ReturnToService(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	if err := h.Tables.ReturnToService(c.Request().Context(), id, middleware.Staff(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
