package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/elgransazon/pos-backend/internal/model"
)

// SettingsRepo loads the single business-configuration row together with its
// payment method toggles and weekly hours. Commands read it as a snapshot;
// edits replace the child rows wholesale.
type SettingsRepo struct {
	db *sql.DB
}

// NewSettingsRepo returns a SettingsRepo bound to the given database.
func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Get loads the settings snapshot. ErrSettingsNotFound means the row was
// never seeded.
func (r *SettingsRepo) Get(ctx context.Context) (*model.Settings, error) {
	var s model.Settings
	var slogan, address, phone, email sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, restaurant_name, slogan, address, phone, email,
		        tax_rate, avg_consumption_mins, created_at, updated_at
		 FROM settings ORDER BY id LIMIT 1`).
		Scan(&s.ID, &s.RestaurantName, &slogan, &address, &phone, &email,
			&s.TaxRate, &s.AvgConsumptionMins, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Slogan = slogan.String
	s.Address = address.String
	s.Phone = phone.String
	s.Email = email.String

	s.PaymentMethods = make(map[model.PaymentMethod]bool)
	rows, err := r.db.QueryContext(ctx,
		`SELECT method, enabled FROM settings_payment_methods WHERE settings_id = ?`, s.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m model.PaymentMethod
		var enabled bool
		if err := rows.Scan(&m, &enabled); err != nil {
			return nil, err
		}
		s.PaymentMethods[m] = enabled
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hrows, err := r.db.QueryContext(ctx,
		`SELECT day_of_week, opens_at, closes_at, closed
		 FROM business_hours WHERE settings_id = ? ORDER BY day_of_week`, s.ID)
	if err != nil {
		return nil, err
	}
	defer hrows.Close()
	for hrows.Next() {
		var h model.BusinessHours
		var day int
		var opens, closes string // TIME columns arrive as strings
		if err := hrows.Scan(&day, &opens, &closes, &h.Closed); err != nil {
			return nil, err
		}
		if h.OpensAt, err = parseTimeOfDay(opens); err != nil {
			return nil, err
		}
		if h.ClosesAt, err = parseTimeOfDay(closes); err != nil {
			return nil, err
		}
		h.Day = time.Weekday(day)
		s.BusinessHours = append(s.BusinessHours, h)
	}
	if err := hrows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

// SeedDefault inserts the bootstrap configuration if no settings row exists
// yet. Safe to call on every startup.
func (r *SettingsRepo) SeedDefault(ctx context.Context) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM settings)`).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	def := model.DefaultSettings()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO settings (restaurant_name, tax_rate, avg_consumption_mins, created_at, updated_at)
		 VALUES (?, ?, ?, NOW(), NOW())`,
		def.RestaurantName, def.TaxRate, def.AvgConsumptionMins)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for method, enabled := range def.PaymentMethods {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings_payment_methods (settings_id, method, enabled) VALUES (?, ?, ?)`,
			id, method, enabled); err != nil {
			return err
		}
	}
	for _, h := range def.BusinessHours {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO business_hours (settings_id, day_of_week, opens_at, closes_at, closed)
			 VALUES (?, ?, ?, ?, ?)`,
			id, int(h.Day), h.OpensAt.Format("15:04:05"), h.ClosesAt.Format("15:04:05"), h.Closed); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
