// Package repository implements persistence for the POS core over
// database/sql. Methods suffixed Tx run inside a caller-owned transaction;
// the service layer opens one transaction per command and commits or rolls
// back the whole mutation set. Sentinel errors below let the upper layers
// distinguish failure classes without string matching.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is wrapped by the entity-specific sentinels; errors.Is against
// it catches any missing-resource case.
var ErrNotFound = errors.New("not found")

var (
	ErrOrderNotFound       = fmt.Errorf("order %w", ErrNotFound)
	ErrOrderItemNotFound   = fmt.Errorf("order item %w", ErrNotFound)
	ErrTableNotFound       = fmt.Errorf("table %w", ErrNotFound)
	ErrMenuItemNotFound    = fmt.Errorf("menu item %w", ErrNotFound)
	ErrIngredientNotFound  = fmt.Errorf("ingredient %w", ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("reservation %w", ErrNotFound)
	ErrSettingsNotFound    = fmt.Errorf("settings row %w", ErrNotFound)
)

// ErrConflict is returned when an insert or update collides with existing
// state, such as a duplicate order number or table number. Handlers translate
// it into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInsufficientStock is returned by the deduct primitive when the balance
// would go negative. The guarded UPDATE leaves the row untouched in that
// case.
var ErrInsufficientStock = errors.New("insufficient stock")

// isDuplicateKey reports whether err is a MySQL unique-constraint violation
// (error 1062).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
