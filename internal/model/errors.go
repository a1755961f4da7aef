package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrLastItem signals that a plain item delete was attempted on the only
// remaining line of an order. The caller must cancel the whole order instead;
// handlers translate this into a distinct response so the UI can offer that.
var ErrLastItem = errors.New("order has a single item left: cancel the order instead of deleting it")

// ValidationError reports malformed or incomplete input. It is always raised
// before any mutation takes place.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// StateError reports an operation that is illegal in the entity's current
// state: a forbidden status transition, a terminal order, a table that cannot
// be occupied. Current and attempted state are kept so callers can explain
// the conflict to a user.
type StateError struct {
	Entity    string // "order", "order item", "table", "reservation"
	Current   string
	Attempted string
	Reason    string
}

func (e *StateError) Error() string {
	msg := fmt.Sprintf("%s in state %s", e.Entity, e.Current)
	if e.Attempted != "" {
		msg += " cannot transition to " + e.Attempted
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// StockShortfall describes one short ingredient for one requested menu item.
type StockShortfall struct {
	MenuItemID   uint64
	MenuItemName string
	IngredientID uint64
	Ingredient   string
	Required     decimal.Decimal
	Available    decimal.Decimal
	Unit         string
}

func (s StockShortfall) String() string {
	return fmt.Sprintf("%s: need %s %s of %s, have %s",
		s.MenuItemName, s.Required, s.Unit, s.Ingredient, s.Available)
}

// InsufficientStockError reports every shortfall found across an entire
// multi-item, multi-ingredient request, not just the first, so a single retry
// can fix all problems at once. Nothing is deducted when it is returned.
type InsufficientStockError struct {
	Shortfalls []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, s.String())
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

// InsufficientTimeError is returned when seating a reserved table now would
// run past the table's next reservation today.
type InsufficientTimeError struct {
	TableNumber     int
	NextReservation time.Time
	EstimatedEnd    time.Time
}

func (e *InsufficientTimeError) Error() string {
	return fmt.Sprintf("table %d cannot be seated: estimated end %s runs past the %s reservation",
		e.TableNumber, e.EstimatedEnd.Format("15:04"), e.NextReservation.Format("15:04"))
}
