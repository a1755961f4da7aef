package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/elgransazon/pos-backend/internal/model"
	"github.com/elgransazon/pos-backend/internal/repository"
)

// TableService owns table occupancy. Orders call the Tx methods inside their
// own transaction; the standalone commands open one themselves.
type TableService struct {
	db           *sql.DB
	tables       *repository.TableRepo
	reservations *repository.ReservationRepo
	settings     *repository.SettingsRepo
}

// NewTableService wires the table service.
func NewTableService(db *sql.DB, tables *repository.TableRepo,
	reservations *repository.ReservationRepo, settings *repository.SettingsRepo) *TableService {
	return &TableService{db: db, tables: tables, reservations: reservations, settings: settings}
}

// OccupyForOrderTx claims a table for a new dine-in order inside the order's
// transaction. The table row is locked first, then:
//
//   - AVAILABLE tables become OCCUPIED,
//   - RESERVED, unseated tables get the seat-ahead time check against their
//     next reservation and turn the seated flag on,
//   - anything else is refused.
func (s *TableService) OccupyForOrderTx(ctx context.Context, tx *sql.Tx, tableID uint64, actor string, now time.Time, cfg *model.Settings) (*model.RestaurantTable, error) {
	t, err := s.tables.GetByIDTx(ctx, tx, tableID)
	if err != nil {
		return nil, err
	}
	if !t.AvailableForOrder() {
		return nil, &model.StateError{
			Entity:  "table",
			Current: string(t.Status),
			Reason:  "table is not available for a new order",
		}
	}
	switch t.Status {
	case model.TableAvailable:
		if err := t.Occupy(); err != nil {
			return nil, err
		}
	case model.TableReserved:
		next, err := s.reservations.NextForTableTx(ctx, tx, t.ID, now)
		if err != nil {
			return nil, err
		}
		if err := t.CanHostReservedAt(now, next, cfg.AvgConsumption()); err != nil {
			return nil, err
		}
		if err := t.SeatReserved(); err != nil {
			return nil, err
		}
	}
	t.UpdatedBy = actor
	if err := s.tables.UpdateStateTx(ctx, tx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// FreeTx releases a table when its order terminates. RESERVED tables keep
// the reservation and only drop the seated flag.
func (s *TableService) FreeTx(ctx context.Context, tx *sql.Tx, tableID uint64, actor string) error {
	t, err := s.tables.GetByIDTx(ctx, tx, tableID)
	if err != nil {
		return err
	}
	t.Free()
	t.UpdatedBy = actor
	return s.tables.UpdateStateTx(ctx, tx, t)
}

// MarkAsOccupied is the standalone walk-in command: staff seats a party
// without an order yet. Same rules as OccupyForOrderTx, in its own
// transaction.
func (s *TableService) MarkAsOccupied(ctx context.Context, tableID uint64, actor string) (*model.RestaurantTable, error) {
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

	t, err := s.OccupyForOrderTx(ctx, tx, tableID, actor, time.Now(), cfg)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return t, nil
}

// CanBeOccupiedNow answers, without changing anything, whether a party could
// be seated at the table right now. It applies the same checks as
// MarkAsOccupied and rolls its transaction back unconditionally.
func (s *TableService) CanBeOccupiedNow(ctx context.Context, tableID uint64) (bool, error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return false, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	t, err := s.tables.GetByIDTx(ctx, tx, tableID)
	if err != nil {
		return false, err
	}
	if !t.AvailableForOrder() {
		return false, nil
	}
	if t.Status == model.TableReserved {
		next, err := s.reservations.NextForTableTx(ctx, tx, t.ID, time.Now())
		if err != nil {
			return false, err
		}
		if err := t.CanHostReservedAt(time.Now(), next, cfg.AvgConsumption()); err != nil {
			return false, nil
		}
	}
	return true, nil
}

// MarkAsAvailable is the standalone release command, used when a party
// leaves without (or after) an order.
func (s *TableService) MarkAsAvailable(ctx context.Context, tableID uint64, actor string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := s.FreeTx(ctx, tx, tableID, actor); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SetOutOfService takes a table out of rotation, refusing while an order or
// seated party holds it.
func (s *TableService) SetOutOfService(ctx context.Context, tableID uint64, actor string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := s.tables.GetByIDTx(ctx, tx, tableID)
	if err != nil {
		return err
	}
	if t.Status == model.TableOccupied || t.Occupied {
		return &model.StateError{
			Entity:  "table",
			Current: string(t.Status),
			Reason:  "cannot take an occupied table out of service",
		}
	}
	t.Status = model.TableOutOfService
	t.Occupied = false
	t.UpdatedBy = actor
	if err := s.tables.UpdateStateTx(ctx, tx, t); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ReturnToService brings an OUT_OF_SERVICE table back as AVAILABLE.
func (s *TableService) ReturnToService(ctx context.Context, tableID uint64, actor string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := s.tables.GetByIDTx(ctx, tx, tableID)
	if err != nil {
		return err
	}
	if t.Status != model.TableOutOfService {
		return &model.StateError{
			Entity:    "table",
			Current:   string(t.Status),
			Attempted: string(model.TableAvailable),
			Reason:    "only out-of-service tables can be returned to service",
		}
	}
	t.Status = model.TableAvailable
	t.Occupied = false
	t.UpdatedBy = actor
	if err := s.tables.UpdateStateTx(ctx, tx, t); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// List returns all tables.
func (s *TableService) List(ctx context.Context) ([]model.RestaurantTable, error) {
	return s.tables.List(ctx)
}

// ListByStatus returns tables in one status.
func (s *TableService) ListByStatus(ctx context.Context, status model.TableStatus) ([]model.RestaurantTable, error) {
	return s.tables.ListByStatus(ctx, status)
}
