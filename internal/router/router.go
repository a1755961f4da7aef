// Package router registers the HTTP routes and binds each command group to
// its capability gate.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/elgransazon/pos-backend/internal/handler"
	"github.com/elgransazon/pos-backend/internal/middleware"
	"github.com/elgransazon/pos-backend/internal/scope"
)

// RegisterRoutes registers routes that need no staff identity. Currently the
// health check only.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterOrders registers the order lifecycle under /v1/orders. Every route
// requires a staff identity; write routes are additionally gated by role
// capability.
func RegisterOrders(e *echo.Echo, h *handler.OrderHandler) {
	g := e.Group("/v1/orders")
	g.Use(middleware.Identity())

	// Reads are open to any authenticated staff member.
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/number/:number", h.GetByNumber)

	g.POST("", h.Create, middleware.Require(scope.CapOrderCreate))
	g.PUT("/:id", h.Update, middleware.Require(scope.CapOrderEdit))
	g.PATCH("/:id", h.UpdateDetails, middleware.Require(scope.CapOrderEdit))
	g.POST("/:id/items", h.AddItems, middleware.Require(scope.CapOrderCreate))
	g.PATCH("/:id/items/:itemID", h.UpdateItemQuantity, middleware.Require(scope.CapOrderEdit))
	g.DELETE("/:id/items/:itemID", h.DeleteItem, middleware.Require(scope.CapOrderEdit))
	g.POST("/:id/items/status", h.ChangeItemsStatus, middleware.Require(scope.CapOrderKitchen))
	g.POST("/:id/status", h.ChangeStatus, middleware.Require(scope.CapOrderKitchen, scope.CapOrderDeliver))
	g.POST("/:id/pay", h.Pay, middleware.Require(scope.CapOrderPay))
	g.POST("/:id/cancel", h.Cancel, middleware.Require(scope.CapOrderCancel))
	g.DELETE("/:id", h.Delete, middleware.Require(scope.CapOrderDelete))

	e.GET("/v1/reports/revenue/today", h.TodaysRevenue,
		middleware.Identity(), middleware.Require(scope.CapReportsView))
}

// RegisterTables registers table occupancy commands under /v1/tables.
func RegisterTables(e *echo.Echo, h *handler.TableHandler) {
	g := e.Group("/v1/tables")
	g.Use(middleware.Identity())

	g.GET("", h.List)
	g.GET("/:id/availability", h.Availability)
	g.POST("/:id/occupy", h.MarkOccupied, middleware.Require(scope.CapTableManage))
	g.POST("/:id/free", h.MarkAvailable, middleware.Require(scope.CapTableManage))
	g.POST("/:id/out-of-service", h.OutOfService, middleware.Require(scope.CapTableManage))
	g.POST("/:id/return-to-service", h.ReturnToService, middleware.Require(scope.CapTableManage))
}

// RegisterReservations registers the booking lifecycle under
// /v1/reservations.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler) {
	g := e.Group("/v1/reservations")
	g.Use(middleware.Identity())

	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, middleware.Require(scope.CapReservations))
	g.PATCH("/:id", h.Update, middleware.Require(scope.CapReservations))
	g.POST("/:id/check-in", h.CheckIn, middleware.Require(scope.CapReservations))
	g.POST("/:id/complete", h.Complete, middleware.Require(scope.CapReservations))
	g.POST("/:id/cancel", h.Cancel, middleware.Require(scope.CapReservations))
	g.POST("/:id/no-show", h.NoShow, middleware.Require(scope.CapReservations))
}

// RegisterStock registers the ledger and menu reads.
func RegisterStock(e *echo.Echo, h *handler.StockHandler) {
	e.GET("/v1/menu", h.AvailableMenu) // the menu is public

	g := e.Group("/v1/ingredients")
	g.Use(middleware.Identity(), middleware.Require(scope.CapStockView))
	g.GET("", h.ListIngredients)
	g.GET("/low-stock", h.LowStock)
}
