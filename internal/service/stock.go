// Package service orchestrates the POS commands: each exported operation
// runs as one database transaction that locks what it reads, mutates orders,
// stock and tables together, and publishes events only after the commit.
package service

import (
	"context"
	"database/sql"
	"log"

	"github.com/shopspring/decimal"

	"github.com/elgransazon/pos-backend/internal/model"
	"github.com/elgransazon/pos-backend/internal/repository"
)

// StockService is the ingredient ledger plus the derived menu availability.
// All methods run inside the caller's transaction; the all-or-nothing
// property of a multi-item deduction comes from that transaction.
type StockService struct {
	ingredients *repository.IngredientRepo
	menus       *repository.MenuRepo
}

// NewStockService wires the stock service to its repositories.
func NewStockService(ingredients *repository.IngredientRepo, menus *repository.MenuRepo) *StockService {
	return &StockService{ingredients: ingredients, menus: menus}
}

// CheckStockTx verifies that current stock covers every item in the batch,
// locking the involved ingredient rows for the rest of the transaction.
// Requirements are accumulated across items sharing an ingredient, and every
// shortfall is collected before failing so one retry can fix them all.
// Items whose menu entry has no recipe never constrain stock.
func (s *StockService) CheckStockTx(ctx context.Context, tx *sql.Tx, items []model.OrderItem) error {
	ids := ingredientIDs(items)
	if len(ids) == 0 {
		return nil
	}
	stock, err := s.ingredients.StockForTx(ctx, tx, ids)
	if err != nil {
		return err
	}

	// Walk items in order, draining the snapshot as requirements accumulate,
	// so the second dish sharing an ingredient sees what the first left.
	remaining := make(map[uint64]decimal.Decimal, len(stock))
	for id, qty := range stock {
		remaining[id] = qty
	}
	var shortfalls []model.StockShortfall
	for i := range items {
		m := items[i].MenuItem
		if m == nil || !m.HasRecipe() {
			continue
		}
		shortfalls = append(shortfalls, m.Shortfalls(items[i].Quantity, remaining)...)
		for id, need := range m.RequiredStock(items[i].Quantity) {
			remaining[id] = remaining[id].Sub(need)
		}
	}
	if len(shortfalls) > 0 {
		return &model.InsufficientStockError{Shortfalls: shortfalls}
	}
	return nil
}

// DeductForItemTx consumes the ingredients for one line item. The guarded
// UPDATE backs up CheckStockTx: even if a snapshot went stale the balance can
// never cross zero, the transaction aborts instead.
func (s *StockService) DeductForItemTx(ctx context.Context, tx *sql.Tx, it *model.OrderItem) error {
	if it.MenuItem == nil || !it.MenuItem.HasRecipe() {
		return nil
	}
	for id, qty := range it.MenuItem.RequiredStock(it.Quantity) {
		if err := s.ingredients.DeductTx(ctx, tx, id, qty); err != nil {
			return err
		}
	}
	return nil
}

// ReturnForItemTx credits the ingredients of one line item back to the
// ledger. Callers decide, via model.StockReturnMode, whether a return happens
// at all.
func (s *StockService) ReturnForItemTx(ctx context.Context, tx *sql.Tx, it *model.OrderItem) error {
	if it.MenuItem == nil || !it.MenuItem.HasRecipe() {
		return nil
	}
	for id, qty := range it.MenuItem.RequiredStock(it.Quantity) {
		if err := s.ingredients.ReturnTx(ctx, tx, id, qty); err != nil {
			return err
		}
	}
	return nil
}

// RefreshAvailabilityTx recomputes the available flag of every menu item
// touching the given ingredients. Called after any stock mutation, inside the
// same transaction, so the menu never advertises a dish the ledger cannot
// cover.
func (s *StockService) RefreshAvailabilityTx(ctx context.Context, tx *sql.Tx, ingredients []uint64) error {
	menus, err := s.menus.UsingIngredientsTx(ctx, tx, ingredients)
	if err != nil {
		return err
	}
	for i := range menus {
		m := &menus[i]
		ids := make([]uint64, 0, len(m.Recipe))
		for _, line := range m.Recipe {
			ids = append(ids, line.IngredientID)
		}
		stock, err := s.ingredients.StockForTx(ctx, tx, ids)
		if err != nil {
			return err
		}
		available := m.HasEnoughStock(1, stock)
		if available != m.Available {
			if err := s.menus.SetAvailabilityTx(ctx, tx, m.ID, available); err != nil {
				return err
			}
			log.Printf("stock: menu item %q availability -> %t", m.Name, available)
		}
	}
	return nil
}

// LowStock lists ingredients at or under their minimum threshold.
func (s *StockService) LowStock(ctx context.Context) ([]model.Ingredient, error) {
	all, err := s.ingredients.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Ingredient
	for i := range all {
		if all[i].LowStock() {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// ingredientIDs collects the distinct ingredient IDs across all item recipes
// in stable first-seen order.
func ingredientIDs(items []model.OrderItem) []uint64 {
	seen := make(map[uint64]bool)
	var ids []uint64
	for i := range items {
		m := items[i].MenuItem
		if m == nil {
			continue
		}
		for _, line := range m.Recipe {
			if !seen[line.IngredientID] {
				seen[line.IngredientID] = true
				ids = append(ids, line.IngredientID)
			}
		}
	}
	return ids
}
