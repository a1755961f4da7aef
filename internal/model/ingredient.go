package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient is one stocked raw material. CurrentStock is the ledger balance
// and must never go negative; the deduct primitive in the repository enforces
// that at the SQL level. MaxStock is advisory only, MinStock drives low-stock
// reporting.
type Ingredient struct {
	ID           uint64
	Name         string
	CurrentStock decimal.Decimal
	MinStock     decimal.Decimal
	MaxStock     decimal.Decimal
	Unit         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OutOfStock reports whether the ledger balance is zero (or below, which the
// store never allows).
func (i *Ingredient) OutOfStock() bool {
	return i.CurrentStock.LessThanOrEqual(decimal.Zero)
}

// LowStock reports whether the balance has fallen to or under the minimum
// threshold.
func (i *Ingredient) LowStock() bool {
	return !i.MinStock.IsZero() && i.CurrentStock.LessThanOrEqual(i.MinStock)
}
