package repository

import (
	"context"
	"database/sql"

	"github.com/elgransazon/pos-backend/internal/model"
)

// TableRepo persists restaurant tables. State changes always travel through
// UpdateStateTx inside the command transaction; GetByIDTx takes a row lock so
// two commands cannot race on one table.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableCols = `id, table_number, capacity, location, status, is_occupied,
	comments, created_by, updated_by, created_at, updated_at`

func scanTable(row interface{ Scan(...any) error }) (*model.RestaurantTable, error) {
	var t model.RestaurantTable
	var location, comments, createdBy, updatedBy sql.NullString
	err := row.Scan(&t.ID, &t.Number, &t.Capacity, &location, &t.Status, &t.Occupied,
		&comments, &createdBy, &updatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Location = location.String
	t.Comments = comments.String
	t.CreatedBy = createdBy.String
	t.UpdatedBy = updatedBy.String
	return &t, nil
}

// GetByID loads a table without locking.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.RestaurantTable, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tableCols+` FROM restaurant_tables WHERE id = ?`, id)
	t, err := scanTable(row)
	if err == sql.ErrNoRows {
		return nil, ErrTableNotFound
	}
	return t, err
}

// GetByIDTx loads a table with a row lock held for the rest of the
// transaction. Every command that mutates table state goes through here
// first, which serializes concurrent occupy/free/reserve calls per table.
func (r *TableRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.RestaurantTable, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+tableCols+` FROM restaurant_tables WHERE id = ? FOR UPDATE`, id)
	t, err := scanTable(row)
	if err == sql.ErrNoRows {
		return nil, ErrTableNotFound
	}
	return t, err
}

// List returns all tables ordered by table number.
func (r *TableRepo) List(ctx context.Context) ([]model.RestaurantTable, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tableCols+` FROM restaurant_tables ORDER BY table_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.RestaurantTable
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// ListByStatus returns tables in one status ordered by table number.
func (r *TableRepo) ListByStatus(ctx context.Context, status model.TableStatus) ([]model.RestaurantTable, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tableCols+` FROM restaurant_tables WHERE status = ? ORDER BY table_number`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.RestaurantTable
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// UpdateStateTx persists a table's status, seated flag and audit fields.
func (r *TableRepo) UpdateStateTx(ctx context.Context, tx *sql.Tx, t *model.RestaurantTable) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE restaurant_tables
		 SET status = ?, is_occupied = ?, updated_by = ?, updated_at = NOW()
		 WHERE id = ?`,
		t.Status, t.Occupied, t.UpdatedBy, t.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// The row may simply be unchanged; verify it exists before failing.
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM restaurant_tables WHERE id = ?)`, t.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrTableNotFound
		}
	}
	return nil
}
