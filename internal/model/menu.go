package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is a sellable catalog entry. Available is derived from current
// ingredient stock and refreshed after every stock mutation; it is never set
// by hand. RequiresPreparation decides whether the item passes through the
// kitchen or auto-advances straight to READY.
type MenuItem struct {
	ID                  uint64
	Name                string
	Description         string
	Price               decimal.Decimal
	RequiresPreparation bool
	Active              bool
	Available           bool
	Recipe              []RecipeLine
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RecipeLine names one ingredient consumed per unit sold.
type RecipeLine struct {
	IngredientID   uint64
	IngredientName string
	Quantity       decimal.Decimal // per unit sold
	Unit           string
}

// HasRecipe reports whether the item consumes any ingredients at all. Items
// without a recipe (bottled drinks bought ready-made) never run out through
// the ledger.
func (m *MenuItem) HasRecipe() bool { return len(m.Recipe) > 0 }

// RequiredStock returns the total ingredient quantities needed to sell qty
// units, keyed by ingredient ID.
func (m *MenuItem) RequiredStock(qty int) map[uint64]decimal.Decimal {
	req := make(map[uint64]decimal.Decimal, len(m.Recipe))
	n := decimal.NewFromInt(int64(qty))
	for _, line := range m.Recipe {
		req[line.IngredientID] = req[line.IngredientID].Add(line.Quantity.Mul(n))
	}
	return req
}

// HasEnoughStock reports whether stock (current quantity by ingredient ID)
// covers qty units of this item across the whole recipe.
func (m *MenuItem) HasEnoughStock(qty int, stock map[uint64]decimal.Decimal) bool {
	if !m.HasRecipe() {
		return true
	}
	for id, need := range m.RequiredStock(qty) {
		if stock[id].LessThan(need) {
			return false
		}
	}
	return true
}

// Shortfalls returns one StockShortfall per recipe line that stock cannot
// cover for qty units. An empty result means the item is fully coverable.
func (m *MenuItem) Shortfalls(qty int, stock map[uint64]decimal.Decimal) []StockShortfall {
	var out []StockShortfall
	n := decimal.NewFromInt(int64(qty))
	for _, line := range m.Recipe {
		need := line.Quantity.Mul(n)
		have := stock[line.IngredientID]
		if have.LessThan(need) {
			out = append(out, StockShortfall{
				MenuItemID:   m.ID,
				MenuItemName: m.Name,
				IngredientID: line.IngredientID,
				Ingredient:   line.IngredientName,
				Required:     need,
				Available:    have,
				Unit:         line.Unit,
			})
		}
	}
	return out
}
