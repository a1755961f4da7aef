package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/elgransazon/pos-backend/internal/middleware"
	"github.com/elgransazon/pos-backend/internal/model"
	"github.com/elgransazon/pos-backend/internal/service"
)

// ReservationHandler exposes the booking lifecycle.
type ReservationHandler struct {
	Reservations *service.ReservationService
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(reservations *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Reservations: reservations}
}

type createReservationRequest struct {
	TableID         uint64 `json:"table_id"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerEmail   string `json:"customer_email"`
	Guests          int    `json:"guests"`
	Date            string `json:"date"` // YYYY-MM-DD
	Time            string `json:"time"` // HH:MM
	SpecialRequests string `json:"special_requests"`
}

// Create handles POST /v1/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	tod, err := parseClock(req.Time)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time, want HH:MM"})
	}
	res, err := h.Reservations.Create(c.Request().Context(), service.CreateReservationInput{
		TableID:         req.TableID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		Guests:          req.Guests,
		Date:            date,
		Time:            tod,
		SpecialRequests: req.SpecialRequests,
	}, middleware.Staff(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, reservationJSON(res))
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Reservations.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reservationJSON(res))
}

// List handles GET /v1/reservations. Without a date it returns every active
// reservation; with ?date=YYYY-MM-DD all reservations on that day.
func (h *ReservationHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	if v := c.QueryParam("date"); v != "" {
		date, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
		}
		list, err := h.Reservations.ListByDate(ctx, date)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, reservationsJSON(list))
	}
	list, err := h.Reservations.ListActive(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reservationsJSON(list))
}

type updateReservationRequest struct {
	CustomerName    *string `json:"customer_name"`
	CustomerPhone   *string `json:"customer_phone"`
	CustomerEmail   *string `json:"customer_email"`
	Guests          *int    `json:"guests"`
	Date            *string `json:"date"`
	Time            *string `json:"time"`
	SpecialRequests *string `json:"special_requests"`
}

// Update handles PATCH /v1/reservations/:id.
func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req updateReservationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	in := service.UpdateReservationInput{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		Guests:          req.Guests,
		SpecialRequests: req.SpecialRequests,
	}
	if req.Date != nil {
		date, err := time.ParseInLocation("2006-01-02", *req.Date, time.Local)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
		}
		in.Date = &date
	}
	if req.Time != nil {
		tod, err := parseClock(*req.Time)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time, want HH:MM"})
		}
		in.Time = &tod
	}
	res, err := h.Reservations.Update(c.Request().Context(), id, in, middleware.Staff(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reservationJSON(res))
}

// CheckIn handles POST /v1/reservations/:id/check-in.
func (h *ReservationHandler) CheckIn(c echo.Context) error {
	return h.lifecycle(c, h.Reservations.CheckIn)
}

// Complete handles POST /v1/reservations/:id/complete.
func (h *ReservationHandler) Complete(c echo.Context) error {
	return h.lifecycle(c, h.Reservations.Complete)
}

// Cancel handles POST /v1/reservations/:id/cancel.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	return h.lifecycle(c, h.Reservations.Cancel)
}

// NoShow handles POST /v1/reservations/:id/no-show.
func (h *ReservationHandler) NoShow(c echo.Context) error {
	return h.lifecycle(c, h.Reservations.MarkNoShow)
}

func (h *ReservationHandler) lifecycle(c echo.Context,
	op func(ctx context.Context, id uint64, actor string) (*model.Reservation, error)) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := op(c.Request().Context(), id, middleware.Staff(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reservationJSON(res))
}

func reservationsJSON(list []model.Reservation) echo.Map {
	out := make([]echo.Map, 0, len(list))
	for i := range list {
		out = append(out, reservationJSON(&list[i]))
	}
	return echo.Map{"reservations": out}
}

func parseClock(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("15:04", s, time.Local); err == nil {
		return t, nil
	}
	return time.ParseInLocation("15:04:05", s, time.Local)
}
