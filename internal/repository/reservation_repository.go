package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/elgransazon/pos-backend/internal/model"
)

// ReservationRepo persists table reservations. Overlap checks and the
// next-reservation lookup run inside the command transaction so a concurrent
// booking on the same table cannot slip between the check and the insert.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationCols = `r.id, r.table_id, t.table_number, r.customer_name, r.customer_phone,
	r.customer_email, r.guests, r.reservation_date, r.reservation_time, r.status,
	r.special_requests, r.created_by, r.updated_by, r.created_at, r.updated_at`

const reservationFrom = ` FROM reservations r JOIN restaurant_tables t ON t.id = r.table_id`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var res model.Reservation
	var email, requests, updatedBy sql.NullString
	var tod string // TIME columns arrive as "15:04:05", not time.Time
	err := row.Scan(&res.ID, &res.TableID, &res.TableNumber, &res.CustomerName, &res.CustomerPhone,
		&email, &res.Guests, &res.Date, &tod, &res.Status,
		&requests, &res.CreatedBy, &updatedBy, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	res.Time, err = parseTimeOfDay(tod)
	if err != nil {
		return nil, err
	}
	res.CustomerEmail = email.String
	res.SpecialRequests = requests.String
	res.UpdatedBy = updatedBy.String
	return &res, nil
}

func parseTimeOfDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation("15:04:05", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return t, nil
}

// CreateTx inserts a reservation and fills in the generated ID.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	out, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (table_id, customer_name, customer_phone, customer_email,
		   guests, reservation_date, reservation_time, status, special_requests,
		   created_by, updated_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		res.TableID, res.CustomerName, res.CustomerPhone, nullStr(res.CustomerEmail),
		res.Guests, res.Date, res.Time.Format("15:04:05"), res.Status, nullStr(res.SpecialRequests),
		res.CreatedBy, res.CreatedBy)
	if err != nil {
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// GetByID loads one reservation.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationCols+reservationFrom+` WHERE r.id = ?`, id)
	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	return res, err
}

// GetByIDTx loads one reservation with a row lock for the rest of the
// transaction.
func (r *ReservationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+reservationCols+reservationFrom+` WHERE r.id = ? FOR UPDATE`, id)
	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	return res, err
}

// NextForTableTx returns the table's nearest active reservation starting at
// or after now, or nil when none exists. Runs under the table's row lock
// during seat-ahead checks.
func (r *ReservationRepo) NextForTableTx(ctx context.Context, tx *sql.Tx, tableID uint64, now time.Time) (*model.Reservation, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+reservationCols+reservationFrom+`
		 WHERE r.table_id = ? AND r.status = ?
		   AND TIMESTAMP(r.reservation_date, r.reservation_time) >= ?
		 ORDER BY r.reservation_date, r.reservation_time
		 LIMIT 1`,
		tableID, model.ReservationReserved, now)
	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return res, err
}

// ActiveForTableTx lists the table's active reservations on one date, locked
// for the rest of the transaction. The overlap check walks these in memory
// because the window width comes from Settings, not the schema.
func (r *ReservationRepo) ActiveForTableTx(ctx context.Context, tx *sql.Tx, tableID uint64, date time.Time) ([]model.Reservation, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+reservationCols+reservationFrom+`
		 WHERE r.table_id = ? AND r.reservation_date = ? AND r.status IN (?, ?)
		 ORDER BY r.reservation_time FOR UPDATE`,
		tableID, date, model.ReservationReserved, model.ReservationOccupied)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// UpdateTx persists the editable reservation fields and status.
func (r *ReservationRepo) UpdateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	out, err := tx.ExecContext(ctx,
		`UPDATE reservations
		 SET table_id = ?, customer_name = ?, customer_phone = ?, customer_email = ?,
		     guests = ?, reservation_date = ?, reservation_time = ?, status = ?,
		     special_requests = ?, updated_by = ?, updated_at = NOW()
		 WHERE id = ?`,
		res.TableID, res.CustomerName, res.CustomerPhone, nullStr(res.CustomerEmail),
		res.Guests, res.Date, res.Time.Format("15:04:05"), res.Status,
		nullStr(res.SpecialRequests), res.UpdatedBy, res.ID)
	if err != nil {
		return err
	}
	if n, err := out.RowsAffected(); err == nil && n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM reservations WHERE id = ?)`, res.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrReservationNotFound
		}
	}
	return nil
}

// ListByDate returns all reservations on a date ordered by time.
func (r *ReservationRepo) ListByDate(ctx context.Context, date time.Time) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationCols+reservationFrom+`
		 WHERE r.reservation_date = ?
		 ORDER BY r.reservation_time, t.table_number`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// ListActive returns every reservation still holding a table, soonest first.
func (r *ReservationRepo) ListActive(ctx context.Context) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationCols+reservationFrom+`
		 WHERE r.status IN (?, ?)
		 ORDER BY r.reservation_date, r.reservation_time`,
		model.ReservationReserved, model.ReservationOccupied)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}
