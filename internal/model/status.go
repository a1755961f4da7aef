// Package model holds the pure domain types and state machines of the POS
// core: orders and their line items, tables, reservations, menu recipes and
// ingredient stock. Nothing in this package touches the database; the
// repository and service layers orchestrate persistence around it.
package model

// OrderType governs table and customer-field requirements for an order.
type OrderType string

const (
	DineIn   OrderType = "DINE_IN"
	Takeout  OrderType = "TAKEOUT"
	Delivery OrderType = "DELIVERY"
)

// Valid reports whether t is one of the known order types.
func (t OrderType) Valid() bool {
	switch t {
	case DineIn, Takeout, Delivery:
		return true
	}
	return false
}

// OrderStatus is used both for the order aggregate and for individual line
// items. Items may lag or lead the aggregate; the aggregate is recomputed
// from its items with RecomputeStatus.
type OrderStatus string

const (
	StatusPending       OrderStatus = "PENDING"
	StatusInPreparation OrderStatus = "IN_PREPARATION"
	StatusReady         OrderStatus = "READY"
	StatusOnTheWay      OrderStatus = "ON_THE_WAY" // DELIVERY orders only
	StatusDelivered     OrderStatus = "DELIVERED"
	StatusCancelled     OrderStatus = "CANCELLED"
	StatusPaid          OrderStatus = "PAID"
)

// Rank orders the progress states for "further along" comparisons. Terminal
// states CANCELLED and PAID have no rank and return -1.
func (s OrderStatus) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInPreparation:
		return 1
	case StatusReady:
		return 2
	case StatusOnTheWay:
		return 3
	case StatusDelivered:
		return 4
	}
	return -1
}

// Terminal reports whether the status admits no further mutation of the
// order: once PAID or CANCELLED the order is read-only.
func (s OrderStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// CanBeCancelled reports whether an order in this status may still be
// cancelled. ON_THE_WAY, DELIVERED, PAID and CANCELLED cannot.
func (s OrderStatus) CanBeCancelled() bool {
	switch s {
	case StatusPending, StatusInPreparation, StatusReady:
		return true
	}
	return false
}

// ValidNextStatuses returns the set of statuses an order of the given type
// may transition to from cur. DELIVERY orders pass through ON_THE_WAY between
// READY and DELIVERED; everyone else goes straight to DELIVERED.
func ValidNextStatuses(cur OrderStatus, typ OrderType) []OrderStatus {
	switch cur {
	case StatusPending:
		return []OrderStatus{StatusInPreparation}
	case StatusInPreparation:
		return []OrderStatus{StatusReady}
	case StatusReady:
		if typ == Delivery {
			return []OrderStatus{StatusOnTheWay}
		}
		return []OrderStatus{StatusDelivered}
	case StatusOnTheWay:
		return []OrderStatus{StatusDelivered}
	case StatusDelivered:
		return []OrderStatus{StatusPaid}
	}
	// PAID and CANCELLED are terminal.
	return nil
}

// IsValidTransition reports whether from -> to is a legal order-level
// transition for the given order type. Cancellation is handled separately by
// CanBeCancelled and is not part of the forward chain.
func IsValidTransition(from, to OrderStatus, typ OrderType) bool {
	for _, s := range ValidNextStatuses(from, typ) {
		if s == to {
			return true
		}
	}
	return false
}

// PaymentMethod identifies how an order is (to be) paid. Which methods are
// accepted at any moment comes from Settings.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentTransfer   PaymentMethod = "TRANSFER"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentTransfer:
		return true
	}
	return false
}
