package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the aggregate root for a customer order. Monetary fields are
// fixed-point decimals; TaxRate is snapshotted from Settings at creation so
// later configuration changes do not rewrite history.
//
// Exactly one non-terminal order may exist per table at any time; the
// repository enforces that with a row-locked lookup before a table is
// assigned.
type Order struct {
	ID          uint64
	OrderNumber string // ORD-YYYYMMDD-NNN, unique
	Type        OrderType
	Status      OrderStatus

	CustomerName       string
	CustomerPhone      string
	DeliveryAddress    string
	DeliveryReferences string
	TableID            *uint64
	CustomerID         *uint64

	PaymentMethod PaymentMethod
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal // percentage snapshot, e.g. 16.00
	TaxAmount     decimal.Decimal
	Tip           decimal.Decimal
	Total         decimal.Decimal

	Items []OrderItem

	CreatedBy  string
	UpdatedBy  string
	PreparedBy string // set when the order reaches READY
	PaidBy     string // set when the order reaches PAID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderItem is one line of an order. UnitPrice is copied from the menu at
// add-time and never follows later catalog price changes. Items carry their
// own status and may be ahead of or behind the aggregate order status.
type OrderItem struct {
	ID         uint64
	OrderID    uint64
	MenuItemID uint64
	MenuItem   *MenuItem // loaded alongside for status/stock decisions
	Quantity   int
	UnitPrice  decimal.Decimal
	Subtotal   decimal.Decimal
	Status     OrderStatus
	IsNew      bool // added after the order was first created
	Comments   string
	PreparedBy string
	AddedAt    time.Time
}

// CalculateSubtotal refreshes the line subtotal from quantity and the price
// snapshot.
func (it *OrderItem) CalculateSubtotal() {
	it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// RequiresPreparation reports whether the underlying menu item needs kitchen
// work. Items without a loaded menu item are treated as preparation-requiring
// so that nothing is silently skipped past the chef.
func (it *OrderItem) RequiresPreparation() bool {
	if it.MenuItem == nil {
		return true
	}
	return it.MenuItem.RequiresPreparation
}

// RecalculateAmounts recomputes subtotal, tax and total from the current item
// list. Tax is subtotal x rate / 100 rounded half-up to 2 decimals.
func (o *Order) RecalculateAmounts() {
	sub := decimal.Zero
	for i := range o.Items {
		sub = sub.Add(o.Items[i].Subtotal)
	}
	o.Subtotal = sub
	o.TaxAmount = sub.Mul(o.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	o.Total = o.Subtotal.Add(o.TaxAmount)
}

// RecomputeStatus derives the aggregate order status from the item statuses
// using the weakest-link rule: the order is only as advanced as its
// least-advanced remaining item. preparedBy is the chef who accepted the
// order, if any; once a chef owns it, freshly added PENDING items do not
// bounce the order back to PENDING (they belong to the same chef).
func RecomputeStatus(items []OrderItem, preparedBy string) OrderStatus {
	if len(items) == 0 {
		return StatusPending
	}

	var pending, inPrep, ready, delivered int
	for i := range items {
		switch items[i].Status {
		case StatusPending:
			pending++
		case StatusInPreparation:
			inPrep++
		case StatusReady:
			ready++
		case StatusDelivered:
			delivered++
		}
	}
	total := len(items)

	switch {
	case delivered == total:
		return StatusDelivered
	case ready == total:
		return StatusReady
	case pending == total:
		return StatusPending
	}

	if preparedBy != "" && inPrep > 0 {
		return StatusInPreparation
	}

	// A pending item that needs the kitchen keeps the whole order waiting for
	// a chef, even when auto-advanced beverages are already READY.
	for i := range items {
		if items[i].Status == StatusPending && items[i].RequiresPreparation() {
			return StatusPending
		}
	}

	if inPrep > 0 {
		return StatusInPreparation
	}
	if ready > 0 {
		return StatusReady
	}
	return StatusPending
}

// AllSkipPreparation reports whether every item can bypass the kitchen, which
// lets the whole order auto-advance from PENDING straight to READY.
func AllSkipPreparation(items []OrderItem) bool {
	if len(items) == 0 {
		return false
	}
	for i := range items {
		if items[i].RequiresPreparation() {
			return false
		}
	}
	return true
}

// ReturnMode classifies how deducted stock is handed back when an item is
// removed or its order cancelled.
type ReturnMode int

const (
	// ReturnAutomatic re-credits stock without human involvement.
	ReturnAutomatic ReturnMode = iota
	// ReturnManual flags the item for staff reconciliation: a chef touched
	// it, so the ingredients may already be physically consumed.
	ReturnManual
	// ReturnForbidden marks items that cannot be removed at all.
	ReturnForbidden
)

// StockReturnMode decides the stock-return policy for a single item:
//
//	PENDING                       -> automatic (never touched)
//	READY, no preparation needed  -> automatic (auto-advanced, never touched)
//	READY, preparation needed     -> manual (a chef plated it)
//	IN_PREPARATION                -> manual
//	DELIVERED                     -> forbidden (cannot be deleted at all)
func StockReturnMode(it *OrderItem) ReturnMode {
	switch it.Status {
	case StatusPending:
		return ReturnAutomatic
	case StatusReady:
		if !it.RequiresPreparation() {
			return ReturnAutomatic
		}
		return ReturnManual
	case StatusDelivered:
		return ReturnForbidden
	}
	return ReturnManual
}

// HoldsTable reports whether the order claimed its table when it was opened.
// Only dine-in orders occupy tables; a takeout order may reference a table
// without holding it, and releasing one on its behalf would pull an occupied
// table out from under the seated party.
func (o *Order) HoldsTable() bool {
	return o.Type == DineIn && o.TableID != nil
}

// HasDeliveredItems reports whether any line item already reached DELIVERED.
// An order with delivered items can never be cancelled as a whole, even when
// later additions dragged its aggregate status back to an earlier state.
func (o *Order) HasDeliveredItems() bool {
	for i := range o.Items {
		if o.Items[i].Status == StatusDelivered {
			return true
		}
	}
	return false
}

// CanAcceptNewItems reports whether more items may be appended. Seated
// DINE_IN customers can keep ordering until the bill is paid; TAKEOUT and
// DELIVERY close once the order leaves the counter.
func CanAcceptNewItems(typ OrderType, status OrderStatus) bool {
	switch typ {
	case DineIn:
		switch status {
		case StatusPending, StatusInPreparation, StatusReady, StatusDelivered:
			return true
		}
	case Takeout, Delivery:
		switch status {
		case StatusPending, StatusInPreparation, StatusReady:
			return true
		}
	}
	return false
}

// ValidateCustomerInfo enforces the per-type contact requirements:
// DELIVERY needs name, phone and address; TAKEOUT needs name and phone;
// DINE_IN needs nothing.
func ValidateCustomerInfo(o *Order) error {
	switch o.Type {
	case Delivery:
		if strings.TrimSpace(o.CustomerName) == "" {
			return &ValidationError{Field: "customer_name", Reason: "customer name is required for delivery orders"}
		}
		if strings.TrimSpace(o.CustomerPhone) == "" {
			return &ValidationError{Field: "customer_phone", Reason: "customer phone is required for delivery orders"}
		}
		if strings.TrimSpace(o.DeliveryAddress) == "" {
			return &ValidationError{Field: "delivery_address", Reason: "delivery address is required for delivery orders"}
		}
	case Takeout:
		if strings.TrimSpace(o.CustomerName) == "" {
			return &ValidationError{Field: "customer_name", Reason: "customer name is required for takeout orders"}
		}
		if strings.TrimSpace(o.CustomerPhone) == "" {
			return &ValidationError{Field: "customer_phone", Reason: "customer phone is required for takeout orders"}
		}
	}
	return nil
}

// NormalizeTable applies the table rules per order type: DINE_IN requires a
// table, DELIVERY must not carry one (it is silently cleared, the caller logs
// a warning), TAKEOUT may have either. Returns true when a table reference
// was dropped.
func NormalizeTable(o *Order) (cleared bool, err error) {
	switch o.Type {
	case DineIn:
		if o.TableID == nil {
			return false, &ValidationError{Field: "table_id", Reason: "a table is required for dine-in orders"}
		}
	case Delivery:
		if o.TableID != nil {
			o.TableID = nil
			return true, nil
		}
	}
	return false, nil
}
