package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func prepItem(status OrderStatus) OrderItem {
	return OrderItem{
		Status:   status,
		MenuItem: &MenuItem{RequiresPreparation: true},
	}
}

func drinkItem(status OrderStatus) OrderItem {
	return OrderItem{
		Status:   status,
		MenuItem: &MenuItem{RequiresPreparation: false},
	}
}

func TestRecomputeStatus(t *testing.T) {
	tests := []struct {
		name       string
		items      []OrderItem
		preparedBy string
		want       OrderStatus
	}{
		{"no items", nil, "", StatusPending},
		{"all pending", []OrderItem{prepItem(StatusPending), prepItem(StatusPending)}, "", StatusPending},
		{"all ready", []OrderItem{prepItem(StatusReady), drinkItem(StatusReady)}, "chef", StatusReady},
		{"all delivered", []OrderItem{prepItem(StatusDelivered), prepItem(StatusDelivered)}, "chef", StatusDelivered},
		{
			"chef owns order, new pending item does not bounce it back",
			[]OrderItem{prepItem(StatusInPreparation), prepItem(StatusPending)},
			"chef",
			StatusInPreparation,
		},
		{
			"no chef yet, pending kitchen item keeps order pending",
			[]OrderItem{drinkItem(StatusReady), prepItem(StatusPending)},
			"",
			StatusPending,
		},
		{
			"drinks ready, dish delivered, nothing waiting",
			[]OrderItem{drinkItem(StatusReady), prepItem(StatusDelivered)},
			"chef",
			StatusReady,
		},
		{
			"mixed in-preparation without explicit owner",
			[]OrderItem{prepItem(StatusInPreparation), drinkItem(StatusReady)},
			"",
			StatusInPreparation,
		},
		{
			"pending drink only holds nothing back",
			[]OrderItem{drinkItem(StatusPending), drinkItem(StatusReady)},
			"",
			StatusReady,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecomputeStatus(tt.items, tt.preparedBy); got != tt.want {
				t.Fatalf("RecomputeStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRecalculateAmounts(t *testing.T) {
	o := &Order{
		TaxRate: decimal.RequireFromString("16"),
		Items: []OrderItem{
			{Subtotal: decimal.RequireFromString("125.50")},
			{Subtotal: decimal.RequireFromString("74.25")},
		},
	}
	o.RecalculateAmounts()

	if got := o.Subtotal.String(); got != "199.75" {
		t.Errorf("subtotal = %s, want 199.75", got)
	}
	// 199.75 * 16% = 31.96 exactly.
	if got := o.TaxAmount.String(); got != "31.96" {
		t.Errorf("tax = %s, want 31.96", got)
	}
	if got := o.Total.String(); got != "231.71" {
		t.Errorf("total = %s, want 231.71", got)
	}
}

func TestRecalculateAmountsRoundsHalfUp(t *testing.T) {
	o := &Order{
		TaxRate: decimal.RequireFromString("16"),
		Items:   []OrderItem{{Subtotal: decimal.RequireFromString("10.03")}},
	}
	o.RecalculateAmounts()
	// 10.03 * 0.16 = 1.6048 -> 1.60
	if got := o.TaxAmount.String(); got != "1.6" {
		t.Errorf("tax = %s, want 1.6", got)
	}

	o.Items = []OrderItem{{Subtotal: decimal.RequireFromString("10.47")}}
	o.RecalculateAmounts()
	// 10.47 * 0.16 = 1.6752 -> 1.68
	if got := o.TaxAmount.String(); got != "1.68" {
		t.Errorf("tax = %s, want 1.68", got)
	}
}

func TestCalculateSubtotal(t *testing.T) {
	it := OrderItem{Quantity: 3, UnitPrice: decimal.RequireFromString("45.90")}
	it.CalculateSubtotal()
	if got := it.Subtotal.String(); got != "137.7" {
		t.Errorf("subtotal = %s, want 137.7", got)
	}
}

func TestStockReturnMode(t *testing.T) {
	tests := []struct {
		name string
		item OrderItem
		want ReturnMode
	}{
		{"pending returns automatically", prepItem(StatusPending), ReturnAutomatic},
		{"ready without preparation returns automatically", drinkItem(StatusReady), ReturnAutomatic},
		{"ready with preparation needs manual return", prepItem(StatusReady), ReturnManual},
		{"in preparation needs manual return", prepItem(StatusInPreparation), ReturnManual},
		{"delivered is forbidden", prepItem(StatusDelivered), ReturnForbidden},
		{"missing menu item treated as preparation-requiring", OrderItem{Status: StatusReady}, ReturnManual},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := tt.item
			if got := StockReturnMode(&it); got != tt.want {
				t.Fatalf("StockReturnMode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanAcceptNewItems(t *testing.T) {
	tests := []struct {
		typ    OrderType
		status OrderStatus
		want   bool
	}{
		{DineIn, StatusPending, true},
		{DineIn, StatusDelivered, true},
		{DineIn, StatusPaid, false},
		{DineIn, StatusCancelled, false},
		{Takeout, StatusReady, true},
		{Takeout, StatusDelivered, false},
		{Delivery, StatusInPreparation, true},
		{Delivery, StatusOnTheWay, false},
		{Delivery, StatusDelivered, false},
	}
	for _, tt := range tests {
		if got := CanAcceptNewItems(tt.typ, tt.status); got != tt.want {
			t.Errorf("CanAcceptNewItems(%s, %s) = %t, want %t", tt.typ, tt.status, got, tt.want)
		}
	}
}

func TestValidateCustomerInfo(t *testing.T) {
	tests := []struct {
		name    string
		order   Order
		wantErr bool
	}{
		{"dine-in needs nothing", Order{Type: DineIn}, false},
		{"takeout needs name and phone", Order{Type: Takeout, CustomerName: "Ana", CustomerPhone: "555"}, false},
		{"takeout missing phone", Order{Type: Takeout, CustomerName: "Ana"}, true},
		{"delivery complete", Order{Type: Delivery, CustomerName: "Ana", CustomerPhone: "555", DeliveryAddress: "Calle 1"}, false},
		{"delivery missing address", Order{Type: Delivery, CustomerName: "Ana", CustomerPhone: "555"}, true},
		{"whitespace does not count", Order{Type: Takeout, CustomerName: "  ", CustomerPhone: "555"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCustomerInfo(&tt.order)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCustomerInfo() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeTable(t *testing.T) {
	table := uint64(4)

	o := &Order{Type: DineIn}
	if _, err := NormalizeTable(o); err == nil {
		t.Error("dine-in without a table should fail")
	}

	o = &Order{Type: Delivery, TableID: &table}
	cleared, err := NormalizeTable(o)
	if err != nil {
		t.Fatalf("NormalizeTable() error = %v", err)
	}
	if !cleared || o.TableID != nil {
		t.Error("delivery order should have its table reference dropped")
	}

	o = &Order{Type: Takeout, TableID: &table}
	cleared, err = NormalizeTable(o)
	if err != nil || cleared {
		t.Errorf("takeout may keep its table, got cleared=%t err=%v", cleared, err)
	}
}

func TestHasDeliveredItems(t *testing.T) {
	o := &Order{Items: []OrderItem{prepItem(StatusReady), prepItem(StatusDelivered)}}
	if !o.HasDeliveredItems() {
		t.Error("expected delivered item to be detected")
	}
	o = &Order{Items: []OrderItem{prepItem(StatusReady)}}
	if o.HasDeliveredItems() {
		t.Error("no delivered items present")
	}
}

func TestAllSkipPreparation(t *testing.T) {
	if AllSkipPreparation(nil) {
		t.Error("empty item list should not skip preparation")
	}
	if AllSkipPreparation([]OrderItem{drinkItem(StatusPending), prepItem(StatusPending)}) {
		t.Error("mixed items should not skip preparation")
	}
	if !AllSkipPreparation([]OrderItem{drinkItem(StatusPending), drinkItem(StatusPending)}) {
		t.Error("all drinks should skip preparation")
	}
}

func TestHoldsTable(t *testing.T) {
	table := uint64(4)
	tests := []struct {
		name string
		typ  OrderType
		tbl  *uint64
		want bool
	}{
		{"dine-in with table", DineIn, &table, true},
		{"dine-in without table", DineIn, nil, false},
		{"takeout referencing a table", Takeout, &table, false},
		{"delivery", Delivery, nil, false},
	}
	for _, tt := range tests {
		o := &Order{Type: tt.typ, TableID: tt.tbl}
		if got := o.HoldsTable(); got != tt.want {
			t.Errorf("%s: HoldsTable = %v, want %v", tt.name, got, tt.want)
		}
	}
}
