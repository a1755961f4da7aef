package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/elgransazon/pos-backend/internal/model"
	"github.com/elgransazon/pos-backend/internal/repository"
)

// ReservationService books tables and drives reservations through their
// lifecycle. The overlap window is the configured average consumption
// duration; two active reservations on one table closer than that are
// refused.
type ReservationService struct {
	db           *sql.DB
	reservations *repository.ReservationRepo
	tables       *repository.TableRepo
	settings     *repository.SettingsRepo
}

// NewReservationService wires the reservation service.
func NewReservationService(db *sql.DB, reservations *repository.ReservationRepo,
	tables *repository.TableRepo, settings *repository.SettingsRepo) *ReservationService {
	return &ReservationService{db: db, reservations: reservations, tables: tables, settings: settings}
}

// CreateReservationInput carries a booking request.
type CreateReservationInput struct {
	TableID         uint64
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	Guests          int
	Date            time.Time
	Time            time.Time
	SpecialRequests string
}

// Create books a table. The table row is locked before the overlap scan so a
// concurrent booking on the same table serializes behind this one. A
// same-day booking flips an AVAILABLE table to RESERVED immediately.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput, actor string) (*model.Reservation, error) {
	if in.CustomerName == "" {
		return nil, &model.ValidationError{Field: "customer_name", Reason: "customer name is required"}
	}
	if in.CustomerPhone == "" {
		return nil, &model.ValidationError{Field: "customer_phone", Reason: "customer phone is required"}
	}
	if in.Guests <= 0 {
		return nil, &model.ValidationError{Field: "guests", Reason: "guest count must be positive"}
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	res := &model.Reservation{
		TableID:         in.TableID,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		CustomerEmail:   in.CustomerEmail,
		Guests:          in.Guests,
		Date:            in.Date,
		Time:            in.Time,
		Status:          model.ReservationReserved,
		SpecialRequests: in.SpecialRequests,
		CreatedBy:       actor,
	}
	now := time.Now()
	start := res.StartAt()
	if start.Before(now) {
		return nil, &model.ValidationError{Field: "reservation_time", Reason: "reservation time is in the past"}
	}
	if !cfg.WithinBusinessHours(start) {
		return nil, &model.ValidationError{Field: "reservation_time", Reason: "reservation falls outside business hours"}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := s.tables.GetByIDTx(ctx, tx, in.TableID)
	if err != nil {
		return nil, err
	}
	if t.Status == model.TableOutOfService {
		return nil, &model.StateError{Entity: "table", Current: string(t.Status), Reason: "table is out of service"}
	}
	if t.Capacity < in.Guests {
		return nil, &model.ValidationError{Field: "guests", Reason: "party does not fit the table"}
	}
	if err := s.checkOverlapTx(ctx, tx, t.ID, res, 0, cfg); err != nil {
		return nil, err
	}

	if err := s.reservations.CreateTx(ctx, tx, res); err != nil {
		return nil, err
	}
	res.TableNumber = t.Number

	if sameDay(start, now) && t.Status == model.TableAvailable {
		t.Status = model.TableReserved
		t.UpdatedBy = actor
		if err := s.tables.UpdateStateTx(ctx, tx, t); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return res, nil
}

// checkOverlapTx scans the table's active reservations on the booking's date
// and refuses any start time closer than one window width. ignoreID skips
// the reservation being edited.
func (s *ReservationService) checkOverlapTx(ctx context.Context, tx *sql.Tx, tableID uint64,
	res *model.Reservation, ignoreID uint64, cfg *model.Settings) error {
	existing, err := s.reservations.ActiveForTableTx(ctx, tx, tableID, res.Date)
	if err != nil {
		return err
	}
	start := res.StartAt()
	width := cfg.AvgConsumption()
	for i := range existing {
		if existing[i].ID == ignoreID {
			continue
		}
		if model.Overlaps(start, existing[i].StartAt(), width) {
			return &model.StateError{
				Entity:  "reservation",
				Current: string(existing[i].Status),
				Reason:  "table already has a reservation within " + width.String() + " of that time",
			}
		}
	}
	return nil
}

// CheckIn seats the party of a reservation: the reservation goes OCCUPIED
// and the table's seated flag turns on.
func (s *ReservationService) CheckIn(ctx context.Context, reservationID uint64, actor string) (*model.Reservation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := s.reservations.GetByIDTx(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if !model.ValidReservationTransition(res.Status, model.ReservationOccupied) {
		return nil, &model.StateError{
			Entity:    "reservation",
			Current:   string(res.Status),
			Attempted: string(model.ReservationOccupied),
		}
	}

	t, err := s.tables.GetByIDTx(ctx, tx, res.TableID)
	if err != nil {
		return nil, err
	}
	// A reservation made for a later day may arrive before the table was
	// flipped to RESERVED.
	if t.Status == model.TableAvailable {
		t.Status = model.TableReserved
	}
	if err := t.SeatReserved(); err != nil {
		return nil, err
	}
	t.UpdatedBy = actor
	if err := s.tables.UpdateStateTx(ctx, tx, t); err != nil {
		return nil, err
	}

	res.Status = model.ReservationOccupied
	res.UpdatedBy = actor
	if err := s.reservations.UpdateTx(ctx, tx, res); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return res, nil
}

// Complete closes a seated reservation and releases the table. The table
// only returns to AVAILABLE when no other active reservation still claims
// it.
func (s *ReservationService) Complete(ctx context.Context, reservationID uint64, actor string) (*model.Reservation, error) {
	return s.finish(ctx, reservationID, model.ReservationCompleted, actor)
}

// Cancel withdraws a pending reservation.
func (s *ReservationService) Cancel(ctx context.Context, reservationID uint64, actor string) (*model.Reservation, error) {
	return s.finish(ctx, reservationID, model.ReservationCancelled, actor)
}

// MarkNoShow writes off a pending reservation whose party never arrived.
func (s *ReservationService) MarkNoShow(ctx context.Context, reservationID uint64, actor string) (*model.Reservation, error) {
	return s.finish(ctx, reservationID, model.ReservationNoShow, actor)
}

func (s *ReservationService) finish(ctx context.Context, reservationID uint64, final model.ReservationStatus, actor string) (*model.Reservation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := s.reservations.GetByIDTx(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if !model.ValidReservationTransition(res.Status, final) {
		return nil, &model.StateError{
			Entity:    "reservation",
			Current:   string(res.Status),
			Attempted: string(final),
		}
	}
	res.Status = final
	res.UpdatedBy = actor
	if err := s.reservations.UpdateTx(ctx, tx, res); err != nil {
		return nil, err
	}

	t, err := s.tables.GetByIDTx(ctx, tx, res.TableID)
	if err != nil {
		return nil, err
	}
	t.Free()
	if t.Status == model.TableReserved {
		remaining, err := s.reservations.ActiveForTableTx(ctx, tx, t.ID, res.Date)
		if err != nil {
			return nil, err
		}
		others := 0
		for i := range remaining {
			if remaining[i].ID != res.ID {
				others++
			}
		}
		if others == 0 {
			t.Status = model.TableAvailable
		}
	}
	t.UpdatedBy = actor
	if err := s.tables.UpdateStateTx(ctx, tx, t); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return res, nil
}

// UpdateReservationInput edits a pending reservation. Nil pointers leave a
// field untouched.
type UpdateReservationInput struct {
	CustomerName    *string
	CustomerPhone   *string
	CustomerEmail   *string
	Guests          *int
	Date            *time.Time
	Time            *time.Time
	SpecialRequests *string
}

// Update edits a reservation that is still RESERVED. Moving the slot re-runs
// the business-hours and overlap checks.
func (s *ReservationService) Update(ctx context.Context, reservationID uint64, in UpdateReservationInput, actor string) (*model.Reservation, error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := s.reservations.GetByIDTx(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if !res.Status.Editable() {
		return nil, &model.StateError{Entity: "reservation", Current: string(res.Status), Reason: "reservation can no longer be edited"}
	}

	if in.CustomerName != nil {
		res.CustomerName = *in.CustomerName
	}
	if in.CustomerPhone != nil {
		res.CustomerPhone = *in.CustomerPhone
	}
	if in.CustomerEmail != nil {
		res.CustomerEmail = *in.CustomerEmail
	}
	if in.SpecialRequests != nil {
		res.SpecialRequests = *in.SpecialRequests
	}
	if in.Guests != nil {
		if *in.Guests <= 0 {
			return nil, &model.ValidationError{Field: "guests", Reason: "guest count must be positive"}
		}
		res.Guests = *in.Guests
	}
	moved := false
	if in.Date != nil {
		res.Date = *in.Date
		moved = true
	}
	if in.Time != nil {
		res.Time = *in.Time
		moved = true
	}
	if moved || in.Guests != nil {
		t, err := s.tables.GetByIDTx(ctx, tx, res.TableID)
		if err != nil {
			return nil, err
		}
		if t.Capacity < res.Guests {
			return nil, &model.ValidationError{Field: "guests", Reason: "party does not fit the table"}
		}
		if moved {
			start := res.StartAt()
			if start.Before(time.Now()) {
				return nil, &model.ValidationError{Field: "reservation_time", Reason: "reservation time is in the past"}
			}
			if !cfg.WithinBusinessHours(start) {
				return nil, &model.ValidationError{Field: "reservation_time", Reason: "reservation falls outside business hours"}
			}
			if err := s.checkOverlapTx(ctx, tx, res.TableID, res, res.ID, cfg); err != nil {
				return nil, err
			}
		}
	}

	res.UpdatedBy = actor
	if err := s.reservations.UpdateTx(ctx, tx, res); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return res, nil
}

// GetByID loads one reservation.
func (s *ReservationService) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

// ListByDate returns all reservations on a date.
func (s *ReservationService) ListByDate(ctx context.Context, date time.Time) ([]model.Reservation, error) {
	return s.reservations.ListByDate(ctx, date)
}

// ListActive returns every reservation still holding a table.
func (s *ReservationService) ListActive(ctx context.Context) ([]model.Reservation, error) {
	return s.reservations.ListActive(ctx)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
