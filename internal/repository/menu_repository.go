package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/elgransazon/pos-backend/internal/model"
)

// MenuRepo loads menu items together with their recipes and maintains the
// derived availability flag. Catalog editing lives outside this core; the
// orchestrator only reads items and refreshes availability after stock moves.
type MenuRepo struct {
	db *sql.DB
}

// NewMenuRepo returns a MenuRepo bound to the given database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

const menuItemCols = `id, name, description, price, requires_preparation, active, available, created_at, updated_at`

// GetByID loads one menu item with its full recipe.
func (r *MenuRepo) GetByID(ctx context.Context, id uint64) (*model.MenuItem, error) {
	items, err := menuItemsByIDs(ctx, r.db, []uint64{id})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrMenuItemNotFound
	}
	return &items[0], nil
}

// GetByIDsTx loads a set of menu items with recipes inside a transaction.
// Every requested ID must exist; a missing one returns ErrMenuItemNotFound.
func (r *MenuRepo) GetByIDsTx(ctx context.Context, tx *sql.Tx, ids []uint64) (map[uint64]*model.MenuItem, error) {
	items, err := menuItemsByIDs(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]*model.MenuItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, ErrMenuItemNotFound
		}
	}
	return byID, nil
}

// ListAvailable returns active menu items currently marked available.
func (r *MenuRepo) ListAvailable(ctx context.Context) ([]model.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+menuItemCols+` FROM menu_items WHERE active = TRUE AND available = TRUE ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMenuItems(ctx, r.db, rows)
}

// querier abstracts *sql.DB and *sql.Tx so loaders work in either context.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func menuItemsByIDs(ctx context.Context, q querier, ids []uint64) ([]model.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(ids))
	ph := make([]string, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
		ph = append(ph, "?")
	}
	rows, err := q.QueryContext(ctx,
		`SELECT `+menuItemCols+` FROM menu_items WHERE id IN (`+strings.Join(ph, ",")+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMenuItems(ctx, q, rows)
}

func collectMenuItems(ctx context.Context, q querier, rows *sql.Rows) ([]model.MenuItem, error) {
	var items []model.MenuItem
	index := make(map[uint64]int)
	for rows.Next() {
		var m model.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Price,
			&m.RequiresPreparation, &m.Active, &m.Available, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		index[m.ID] = len(items)
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	args := make([]any, 0, len(items))
	ph := make([]string, 0, len(items))
	for _, m := range items {
		args = append(args, m.ID)
		ph = append(ph, "?")
	}
	recipeQ := `SELECT r.menu_item_id, r.ingredient_id, i.name, r.quantity, i.unit
	            FROM recipe_lines r
	            JOIN ingredients i ON i.id = r.ingredient_id
	            WHERE r.menu_item_id IN (` + strings.Join(ph, ",") + `)
	            ORDER BY r.menu_item_id, i.name`
	rrows, err := q.QueryContext(ctx, recipeQ, args...)
	if err != nil {
		return nil, err
	}
	defer rrows.Close()
	for rrows.Next() {
		var itemID uint64
		var line model.RecipeLine
		if err := rrows.Scan(&itemID, &line.IngredientID, &line.IngredientName,
			&line.Quantity, &line.Unit); err != nil {
			return nil, err
		}
		if idx, ok := index[itemID]; ok {
			items[idx].Recipe = append(items[idx].Recipe, line)
		}
	}
	return items, rrows.Err()
}

// UsingIngredientsTx loads every active menu item whose recipe consumes any
// of the given ingredients. The availability refresher uses it after stock
// moves to recompute the available flag for all affected dishes.
func (r *MenuRepo) UsingIngredientsTx(ctx context.Context, tx *sql.Tx, ingredientIDs []uint64) ([]model.MenuItem, error) {
	if len(ingredientIDs) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(ingredientIDs))
	ph := make([]string, 0, len(ingredientIDs))
	for _, id := range ingredientIDs {
		args = append(args, id)
		ph = append(ph, "?")
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT menu_item_id FROM recipe_lines
		 WHERE ingredient_id IN (`+strings.Join(ph, ",")+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return menuItemsByIDs(ctx, tx, ids)
}

// SetAvailabilityTx writes the derived available flag for a menu item.
func (r *MenuRepo) SetAvailabilityTx(ctx context.Context, tx *sql.Tx, id uint64, available bool) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE menu_items SET available = ?, updated_at = NOW() WHERE id = ?`, available, id)
	return err
}
