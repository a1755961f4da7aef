package scope

import (
	"testing"

	"github.com/elgransazon/pos-backend/internal/model"
)

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleWaiter, RoleChef, RoleCashier, RoleDelivery, RoleAdmin} {
		if !r.Valid() {
			t.Errorf("%s should be valid", r)
		}
	}
	for _, r := range []Role{"", "MANAGER", "waiter"} {
		if r.Valid() {
			t.Errorf("%q should not be valid", r)
		}
	}
}

func TestAllows(t *testing.T) {
	tests := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleWaiter, CapOrderCreate, true},
		{RoleWaiter, CapOrderEdit, true},
		{RoleWaiter, CapOrderCancel, true},
		{RoleWaiter, CapTableManage, true},
		{RoleWaiter, CapReservations, true},
		{RoleWaiter, CapOrderKitchen, false},
		{RoleWaiter, CapOrderPay, false},
		{RoleWaiter, CapOrderDelete, false},

		{RoleChef, CapOrderKitchen, true},
		{RoleChef, CapStockView, true},
		{RoleChef, CapOrderCreate, false},
		{RoleChef, CapOrderPay, false},

		{RoleCashier, CapOrderPay, true},
		{RoleCashier, CapOrderCancel, true},
		{RoleCashier, CapReportsView, true},
		{RoleCashier, CapOrderKitchen, false},

		{RoleDelivery, CapOrderDeliver, true},
		{RoleDelivery, CapOrderCreate, false},
		{RoleDelivery, CapStockView, false},

		{Role("INTERN"), CapOrderCreate, false},
		{Role(""), CapStockView, false},
	}
	for _, tt := range tests {
		if got := Allows(tt.role, tt.cap); got != tt.want {
			t.Errorf("Allows(%s, %s) = %t, want %t", tt.role, tt.cap, got, tt.want)
		}
	}
}

func TestAdminAllowsEverything(t *testing.T) {
	caps := []Capability{
		CapOrderCreate, CapOrderEdit, CapOrderKitchen, CapOrderDeliver,
		CapOrderPay, CapOrderCancel, CapOrderDelete,
		CapTableManage, CapReservations, CapStockView, CapReportsView,
	}
	for _, c := range caps {
		if !Allows(RoleAdmin, c) {
			t.Errorf("admin denied %s", c)
		}
	}
}

func TestVisibleOrder(t *testing.T) {
	prep := &model.MenuItem{Name: "Hamburguesa", RequiresPreparation: true}
	drink := &model.MenuItem{Name: "Refresco"}

	kitchen := &model.Order{
		Type:      model.DineIn,
		Status:    model.StatusPending,
		CreatedBy: "maria",
		Items:     []model.OrderItem{{MenuItem: prep}, {MenuItem: drink}},
	}
	barOnly := &model.Order{
		Type:      model.DineIn,
		Status:    model.StatusReady,
		CreatedBy: "pedro",
		Items:     []model.OrderItem{{MenuItem: drink}},
	}
	courierReady := &model.Order{
		Type:      model.Delivery,
		Status:    model.StatusReady,
		CreatedBy: "maria",
		Items:     []model.OrderItem{{MenuItem: prep}},
	}
	courierPending := &model.Order{
		Type:      model.Delivery,
		Status:    model.StatusPending,
		CreatedBy: "maria",
		Items:     []model.OrderItem{{MenuItem: prep}},
	}

	tests := []struct {
		name  string
		role  Role
		staff string
		order *model.Order
		want  bool
	}{
		{"waiter sees own order", RoleWaiter, "maria", kitchen, true},
		{"waiter does not see others", RoleWaiter, "maria", barOnly, false},
		{"chef sees kitchen orders", RoleChef, "carlos", kitchen, true},
		{"chef skips bar-only orders", RoleChef, "carlos", barOnly, false},
		{"courier sees ready deliveries", RoleDelivery, "luis", courierReady, true},
		{"courier waits for the pass", RoleDelivery, "luis", courierPending, false},
		{"courier never sees dine-in", RoleDelivery, "luis", kitchen, false},
		{"cashier sees everything", RoleCashier, "ana", barOnly, true},
		{"admin sees everything", RoleAdmin, "root", courierPending, true},
	}
	for _, tt := range tests {
		if got := VisibleOrder(tt.role, tt.staff, tt.order); got != tt.want {
			t.Errorf("%s: VisibleOrder = %v, want %v", tt.name, got, tt.want)
		}
	}
}
