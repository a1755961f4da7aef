package queue

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/elgransazon/pos-backend/internal/model"
)

func sampleOrder() *model.Order {
	tableID := uint64(4)
	return &model.Order{
		ID:          17,
		OrderNumber: "ORD-20260828-003",
		Type:        model.DineIn,
		Status:      model.StatusPending,
		TableID:     &tableID,
		Items: []model.OrderItem{
			{
				MenuItemID: 1,
				Quantity:   2,
				UnitPrice:  decimal.NewFromInt(85),
				Status:     model.StatusPending,
				Comments:   "sin cebolla",
				MenuItem:   &model.MenuItem{ID: 1, Name: "Hamburguesa"},
			},
			{
				MenuItemID: 2,
				Quantity:   1,
				UnitPrice:  decimal.NewFromInt(30),
				Status:     model.StatusReady,
			},
		},
	}
}

func TestOrderCreated(t *testing.T) {
	o := sampleOrder()
	ev := OrderCreated(o, "maria")

	if ev.Kind != EventOrderCreated {
		t.Errorf("kind = %s, want %s", ev.Kind, EventOrderCreated)
	}
	if ev.OrderNumber != o.OrderNumber || ev.OrderID != o.ID {
		t.Errorf("event does not identify the order: %+v", ev)
	}
	if ev.Actor != "maria" {
		t.Errorf("actor = %s", ev.Actor)
	}
	if ev.TableID == nil || *ev.TableID != 4 {
		t.Error("table id not carried over")
	}
	if len(ev.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(ev.Items))
	}
	if ev.Items[0].Name != "Hamburguesa" || ev.Items[0].Quantity != 2 || ev.Items[0].Comments != "sin cebolla" {
		t.Errorf("unexpected first item: %+v", ev.Items[0])
	}
	// Items without a loaded menu record still produce an entry.
	if ev.Items[1].MenuItemID != 2 || ev.Items[1].Name != "" {
		t.Errorf("unexpected second item: %+v", ev.Items[1])
	}
	if ev.OccurredAt == "" {
		t.Error("occurred_at not set")
	}
}

func TestOrderStatusChanged(t *testing.T) {
	o := sampleOrder()
	o.Status = model.StatusInPreparation
	ev := OrderStatusChanged(o, model.StatusPending, "carlos")

	if ev.Kind != EventOrderStatusChanged {
		t.Errorf("kind = %s", ev.Kind)
	}
	if ev.PrevStatus != string(model.StatusPending) || ev.Status != string(model.StatusInPreparation) {
		t.Errorf("statuses = %s -> %s", ev.PrevStatus, ev.Status)
	}
	if !strings.Contains(ev.Message, "PENDING -> IN_PREPARATION") {
		t.Errorf("message = %q", ev.Message)
	}
}

func TestOrderItemsAdded(t *testing.T) {
	o := sampleOrder()
	added := o.Items[1:]
	ev := OrderItemsAdded(o, added, "maria")

	if ev.Kind != EventOrderItemsAdded {
		t.Errorf("kind = %s", ev.Kind)
	}
	if len(ev.Items) != 1 || ev.Items[0].MenuItemID != 2 {
		t.Errorf("only the new items should be listed: %+v", ev.Items)
	}
}

func TestOrderCancelled(t *testing.T) {
	o := sampleOrder()
	ev := OrderCancelled(o, "customer left", "carlos")

	if ev.Kind != EventOrderCancelled {
		t.Errorf("kind = %s", ev.Kind)
	}
	if ev.Message != "customer left" {
		t.Errorf("message = %q", ev.Message)
	}
}

func TestOrderDeleted(t *testing.T) {
	o := sampleOrder()
	ev := OrderDeleted(o, "admin")

	if ev.Kind != EventOrderDeleted {
		t.Errorf("kind = %s", ev.Kind)
	}
	if ev.Actor != "admin" {
		t.Errorf("actor = %s", ev.Actor)
	}
	if ev.Message != "order ORD-20260828-003 deleted" {
		t.Errorf("message = %q", ev.Message)
	}
}

func TestFormatLine(t *testing.T) {
	o := sampleOrder()
	ev := OrderCreated(o, "maria")
	line := formatLine(ev)

	for _, want := range []string{
		"order.created",
		"order=ORD-20260828-003",
		"type=DINE_IN",
		"table=4",
		"by=maria",
		"2x Hamburguesa (PENDING)",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line missing %q: %s", want, line)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("line should end with a newline")
	}

	// Takeaway orders carry no table.
	o.TableID = nil
	line = formatLine(OrderCreated(o, "maria"))
	if !strings.Contains(line, "table=-") {
		t.Errorf("missing table placeholder: %s", line)
	}
}
