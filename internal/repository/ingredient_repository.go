package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/elgransazon/pos-backend/internal/model"
)

// IngredientRepo is the stock ledger's persistence. Deduction is a guarded
// UPDATE so the balance can never go negative regardless of concurrent
// writers; the enclosing transaction makes multi-ingredient deductions
// all-or-nothing.
type IngredientRepo struct {
	db *sql.DB
}

// NewIngredientRepo returns an IngredientRepo bound to the given database.
func NewIngredientRepo(db *sql.DB) *IngredientRepo { return &IngredientRepo{db: db} }

const ingredientCols = `id, name, current_stock, min_stock, max_stock, unit, created_at, updated_at`

func scanIngredient(row interface{ Scan(...any) error }) (*model.Ingredient, error) {
	var ing model.Ingredient
	err := row.Scan(&ing.ID, &ing.Name, &ing.CurrentStock, &ing.MinStock,
		&ing.MaxStock, &ing.Unit, &ing.CreatedAt, &ing.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ing, nil
}

// GetByID loads a single ingredient.
func (r *IngredientRepo) GetByID(ctx context.Context, id uint64) (*model.Ingredient, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ingredientCols+` FROM ingredients WHERE id = ?`, id)
	ing, err := scanIngredient(row)
	if err == sql.ErrNoRows {
		return nil, ErrIngredientNotFound
	}
	return ing, err
}

// List returns all ingredients ordered by name.
func (r *IngredientRepo) List(ctx context.Context) ([]model.Ingredient, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+ingredientCols+` FROM ingredients ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ing)
	}
	return out, rows.Err()
}

// StockForTx loads current stock for a set of ingredients with row locks
// held until the transaction ends, serializing concurrent deductions against
// the same ingredients.
func (r *IngredientRepo) StockForTx(ctx context.Context, tx *sql.Tx, ids []uint64) (map[uint64]decimal.Decimal, error) {
	stock := make(map[uint64]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return stock, nil
	}
	args := make([]any, 0, len(ids))
	ph := make([]string, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
		ph = append(ph, "?")
	}
	q := `SELECT id, current_stock FROM ingredients WHERE id IN (` +
		strings.Join(ph, ",") + `) FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		var qty decimal.Decimal
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, err
		}
		stock[id] = qty
	}
	return stock, rows.Err()
}

// DeductTx subtracts qty from an ingredient's balance. The WHERE clause
// refuses the update when the balance would go negative; zero affected rows
// means either a missing ingredient or insufficient stock, distinguished by
// a follow-up existence check.
func (r *IngredientRepo) DeductTx(ctx context.Context, tx *sql.Tx, id uint64, qty decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE ingredients SET current_stock = current_stock - ?, updated_at = NOW()
		 WHERE id = ? AND current_stock >= ?`, qty, id, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM ingredients WHERE id = ?)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrIngredientNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

// ReturnTx adds qty back to an ingredient's balance. There is no upper bound;
// max_stock is advisory only.
func (r *IngredientRepo) ReturnTx(ctx context.Context, tx *sql.Tx, id uint64, qty decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE ingredients SET current_stock = current_stock + ?, updated_at = NOW()
		 WHERE id = ?`, qty, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrIngredientNotFound
	}
	return nil
}
