// Package scope defines the staff roles and the capability matrix deciding
// which role may run which command. Identity arrives from the gateway as
// plain headers; this package only interprets it.
package scope

import "github.com/elgransazon/pos-backend/internal/model"

// Role is a staff role as asserted by the upstream gateway.
type Role string

const (
	RoleWaiter   Role = "WAITER"
	RoleChef     Role = "CHEF"
	RoleCashier  Role = "CASHIER"
	RoleDelivery Role = "DELIVERY"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleWaiter, RoleChef, RoleCashier, RoleDelivery, RoleAdmin:
		return true
	}
	return false
}

// Capability names one guarded command group.
type Capability string

const (
	CapOrderCreate   Capability = "order:create"    // open orders, add items
	CapOrderEdit     Capability = "order:edit"      // edit details, quantities, delete items
	CapOrderKitchen  Capability = "order:kitchen"   // move items through preparation
	CapOrderDeliver  Capability = "order:deliver"   // ON_THE_WAY / DELIVERED moves
	CapOrderPay      Capability = "order:pay"       // settle and free the table
	CapOrderCancel   Capability = "order:cancel"    // cancel orders
	CapOrderDelete   Capability = "order:delete"    // purge cancelled orders
	CapTableManage   Capability = "table:manage"    // occupy, free, service state
	CapReservations  Capability = "reservation:rw"  // book and drive reservations
	CapStockView     Capability = "stock:view"      // ledger and low-stock reports
	CapReportsView   Capability = "report:view"     // revenue and order listings
)

// matrix maps each role to its capabilities. Admin is handled in Allows.
var matrix = map[Role]map[Capability]bool{
	RoleWaiter: {
		CapOrderCreate:  true,
		CapOrderEdit:    true,
		CapOrderCancel:  true,
		CapTableManage:  true,
		CapReservations: true,
		CapStockView:    true,
	},
	RoleChef: {
		CapOrderKitchen: true,
		CapStockView:    true,
	},
	RoleCashier: {
		CapOrderPay:     true,
		CapOrderCancel:  true,
		CapReportsView:  true,
		CapReservations: true,
	},
	RoleDelivery: {
		CapOrderDeliver: true,
	},
}

// Allows reports whether the role may exercise the capability. Admin may do
// everything.
func Allows(r Role, cap Capability) bool {
	if r == RoleAdmin {
		return true
	}
	return matrix[r][cap]
}

// VisibleOrder reports whether a staff member should see an order in
// listings. Commands stay guarded by the capability matrix; this only trims
// what each role is shown: waiters see their own orders, chefs see orders
// with at least one kitchen item, couriers see delivery orders that reached
// the pass.
func VisibleOrder(r Role, staff string, o *model.Order) bool {
	switch r {
	case RoleWaiter:
		return o.CreatedBy == staff
	case RoleChef:
		for i := range o.Items {
			if o.Items[i].RequiresPreparation() {
				return true
			}
		}
		return false
	case RoleDelivery:
		if o.Type != model.Delivery {
			return false
		}
		switch o.Status {
		case model.StatusReady, model.StatusOnTheWay, model.StatusDelivered, model.StatusPaid:
			return true
		}
		return false
	}
	return true
}
