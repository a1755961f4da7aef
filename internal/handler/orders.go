package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/elgransazon/pos-backend/internal/middleware"
	"github.com/elgransazon/pos-backend/internal/model"
	"github.com/elgransazon/pos-backend/internal/repository"
	"github.com/elgransazon/pos-backend/internal/scope"
	"github.com/elgransazon/pos-backend/internal/service"
)

// OrderHandler exposes the order lifecycle commands.
type OrderHandler struct {
	Orders *service.OrderService
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{Orders: orders}
}

type itemRequest struct {
	MenuItemID uint64 `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Comments   string `json:"comments"`
}

func itemInputs(in []itemRequest) []service.OrderItemInput {
	out := make([]service.OrderItemInput, 0, len(in))
	for _, it := range in {
		out = append(out, service.OrderItemInput{
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			Comments:   it.Comments,
		})
	}
	return out
}

type createOrderRequest struct {
	Type               string        `json:"order_type"`
	CustomerName       string        `json:"customer_name"`
	CustomerPhone      string        `json:"customer_phone"`
	DeliveryAddress    string        `json:"delivery_address"`
	DeliveryReferences string        `json:"delivery_references"`
	TableID            *uint64       `json:"table_id"`
	CustomerID         *uint64       `json:"customer_id"`
	PaymentMethod      string        `json:"payment_method"`
	Tip                string        `json:"tip"`
	Items              []itemRequest `json:"items"`
}

// Create handles POST /v1/orders.
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	tip := decimal.Zero
	if req.Tip != "" {
		var err error
		if tip, err = decimal.NewFromString(req.Tip); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tip amount"})
		}
	}
	in := service.CreateOrderInput{
		Type:               model.OrderType(req.Type),
		CustomerName:       req.CustomerName,
		CustomerPhone:      req.CustomerPhone,
		DeliveryAddress:    req.DeliveryAddress,
		DeliveryReferences: req.DeliveryReferences,
		TableID:            req.TableID,
		CustomerID:         req.CustomerID,
		PaymentMethod:      model.PaymentMethod(req.PaymentMethod),
		Tip:                tip,
		Items:              itemInputs(req.Items),
	}
	o, err := h.Orders.Create(c.Request().Context(), in, middleware.Staff(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, orderJSON(o))
}

// Get handles GET /v1/orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	o, err := h.Orders.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, orderJSON(o))
}

// GetByNumber handles GET /v1/orders/number/:number.
func (h *OrderHandler) GetByNumber(c echo.Context) error {
	o, err := h.Orders.GetByNumber(c.Request().Context(), c.Param("number"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, orderJSON(o))
}

// List handles GET /v1/orders with optional status, type, table_id, active
// and date filters. date=today is a shorthand for the current day. Results
// are trimmed to what the caller's role may see.
func (h *OrderHandler) List(c echo.Context) error {
	var f repository.ListFilter
	f.Status = model.OrderStatus(c.QueryParam("status"))
	f.Type = model.OrderType(c.QueryParam("type"))
	if v := c.QueryParam("table_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table_id"})
		}
		f.TableID = id
	}
	if v := c.QueryParam("active"); v == "true" || v == "1" {
		f.Active = true
	}
	if v := c.QueryParam("date"); v != "" {
		var day time.Time
		if v == "today" {
			now := time.Now()
			day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		} else {
			var err error
			if day, err = time.ParseInLocation("2006-01-02", v, time.Local); err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
			}
		}
		f.From = day
		f.To = day.AddDate(0, 0, 1)
	}
	orders, err := h.Orders.List(c.Request().Context(), f)
	if err != nil {
		return fail(c, err)
	}
	role, staff := middleware.CurrentRole(c), middleware.Staff(c)
	out := make([]echo.Map, 0, len(orders))
	for i := range orders {
		if !scope.VisibleOrder(role, staff, &orders[i]) {
			continue
		}
		out = append(out, orderJSON(&orders[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": out})
}

type updateOrderRequest struct {
	CustomerName       string        `json:"customer_name"`
	CustomerPhone      string        `json:"customer_phone"`
	DeliveryAddress    string        `json:"delivery_address"`
	DeliveryReferences string        `json:"delivery_references"`
	TableID            *uint64       `json:"table_id"`
	PaymentMethod      string        `json:"payment_method"`
	Tip                string        `json:"tip"`
	Items              []itemRequest `json:"items"`
}

// Update handles PUT /v1/orders/:id: a wholesale rewrite of the order,
// item list and table assignment included.
func (h *OrderHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req updateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	tip := decimal.Zero
	if req.Tip != "" {
		if tip, err = decimal.NewFromString(req.Tip); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tip amount"})
		}
	}
	in := service.UpdateOrderInput{
		CustomerName:       req.CustomerName,
		CustomerPhone:      req.CustomerPhone,
		DeliveryAddress:    req.DeliveryAddress,
		DeliveryReferences: req.DeliveryReferences,
		TableID:            req.TableID,
		PaymentMethod:      model.PaymentMethod(req.PaymentMethod),
		Tip:                tip,
		Items:              itemInputs(req.Items),
	}
	o, err := h.Orders.Update(c.Request().Context(), id, in, middleware.Staff(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, orderJSON(o))
}

type updateDetailsRequest struct {
	CustomerName       *string `json:"customer_name"`
	CustomerPhone      *string `json:"customer_phone"`
	DeliveryAddress    *string `json:"delivery_address"`
	DeliveryReferences *string `json:"delivery_references"`
	PaymentMethod      *string `json:"payment_method"`
	Tip                *string `json:"tip"`
}

// UpdateDetails handles PATCH /v1/orders/:id.
func (h *OrderHandler) UpdateDetails(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req updateDetailsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	in := service.UpdateDetailsInput{
		CustomerName:       req.CustomerName,
		CustomerPhone:      req.CustomerPhone,
		DeliveryAddress:    req.DeliveryAddress,
		DeliveryReferences: req.DeliveryReferences,
	}
	if req.PaymentMethod != nil {
		pm := model.PaymentMethod(*req.PaymentMethod)
		in.PaymentMethod = &pm
	}
	if req.Tip != nil {
		tip, err := decimal.NewFromString(*req.Tip)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tip amount"})
		}
		in.Tip = &tip
	}
	o, err := h.Orders.UpdateDetails(c.Request().Context(), id, in, middleware.Staff(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, orderJSON(o))
}

type addItemsRequest struct {
	Items []itemRequest `json:"items"`
}

// AddItems handles POST /v1/orders/:id/items.
func (h *OrderHandler) AddItems(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req addItemsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	o, err := h.Orders.AddItems(c.Request().Context(), id, itemInputs(req.Items), middleware.Staff(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, orderJSON(o))
}

// UpdateItemQuantity handles PATCH /v1/orders/:id/items/:itemID.
func (h *OrderHandler) UpdateItemQuantity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	itemID, err := pathID(c, "itemID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	o, err := h.Orders.UpdateItemQuantity(c.Request().Context(), id, itemID, req.Quantity, middleware.Staff(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, orderJSON(o))
}

// DeleteItem handles DELETE /v1/orders/:id/items/:itemID.
func (h *OrderHandler) DeleteItem(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	itemID, err := pathID(c, "itemID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	o, err := h.Orders.DeleteItem(c.Request().Context(), id, itemID, middleware.Staff(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, orderJSON(o))
}

// ChangeStatus handles POST /v1/orders/:id/status.
func (h *OrderHandler) ChangeStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	o, err := h.Orders.ChangeStatus(c.Request().Context(), id, model.OrderStatus(req.Status), middleware.Staff(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, orderJSON(o))
}

// ChangeItemsStatus handles POST /v1/orders/:id/items/status.
func (h *OrderHandler) ChangeItemsStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req struct {
		ItemIDs []uint64 `json:"item_ids"`
		Status  string   `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	o, err := h.Orders.ChangeItemsStatus(c.Request().Context(), id, req.ItemIDs,
		model.OrderStatus(req.Status), middleware.Staff(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, orderJSON(o))
}

// Pay handles POST /v1/orders/:id/pay.
func (h *OrderHandler) Pay(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req struct {
		PaymentMethod string  `json:"payment_method"`
		Tip           *string `json:"tip"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	var tip *decimal.Decimal
	if req.Tip != nil {
		t, err := decimal.NewFromString(*req.Tip)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tip amount"})
		}
		tip = &t
	}
	o, err := h.Orders.Pay(c.Request().Context(), id, model.PaymentMethod(req.PaymentMethod), tip, middleware.Staff(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, orderJSON(o))
}

// Cancel handles POST /v1/orders/:id/cancel.
func (h *OrderHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.Bind(&req) // reason is optional
	o, err := h.Orders.Cancel(c.Request().Context(), id, req.Reason, middleware.Staff(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, orderJSON(o))
}

// Delete handles DELETE /v1/orders/:id. Only cancelled orders can go.
func (h *OrderHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	if err := h.Orders.Delete(c.Request().Context(), id, middleware.Staff(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// TodaysRevenue handles GET /v1/reports/revenue/today.
func (h *OrderHandler) TodaysRevenue(c echo.Context) error {
	total, err := h.Orders.TodaysRevenue(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"revenue": total.StringFixed(2)})
}

func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
