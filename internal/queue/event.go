// Package queue defines the order event payloads exchanged over the message
// broker and the kitchen-side consumer that turns them into a work log.
package queue

import (
	"fmt"
	"time"

	"github.com/elgransazon/pos-backend/internal/model"
)

// Queue name shared by publisher and consumer. Durable; messages persist
// across broker restarts.
const OrderEventsQueue = "order.events"

// Event kinds.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderItemsAdded    = "order.items_added"
	EventOrderCancelled     = "order.cancelled"
	EventOrderDeleted       = "order.deleted"
)

// OrderEvent is published after a command transaction commits. It carries
// enough detail for the kitchen display and downstream analytics without a
// database round trip.
type OrderEvent struct {
	Kind        string      `json:"kind"`
	OrderID     uint64      `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	OrderType   string      `json:"order_type"`
	Status      string      `json:"status"`
	PrevStatus  string      `json:"prev_status,omitempty"`
	TableID     *uint64     `json:"table_id,omitempty"`
	Actor       string      `json:"actor"`
	Items       []EventItem `json:"items,omitempty"`
	Message     string      `json:"message,omitempty"`
	OccurredAt  string      `json:"occurred_at"`
}

// EventItem summarizes one order line inside an event.
type EventItem struct {
	MenuItemID uint64 `json:"menu_item_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	Status     string `json:"status"`
	Comments   string `json:"comments,omitempty"`
}

func eventItems(items []model.OrderItem) []EventItem {
	out := make([]EventItem, 0, len(items))
	for i := range items {
		ev := EventItem{
			MenuItemID: items[i].MenuItemID,
			Quantity:   items[i].Quantity,
			Status:     string(items[i].Status),
			Comments:   items[i].Comments,
		}
		if items[i].MenuItem != nil {
			ev.Name = items[i].MenuItem.Name
		}
		out = append(out, ev)
	}
	return out
}

func newOrderEvent(kind string, o *model.Order, actor string) OrderEvent {
	return OrderEvent{
		Kind:        kind,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		OrderType:   string(o.Type),
		Status:      string(o.Status),
		TableID:     o.TableID,
		Actor:       actor,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}
}

// OrderCreated builds the event for a freshly created order, items included.
func OrderCreated(o *model.Order, actor string) OrderEvent {
	ev := newOrderEvent(EventOrderCreated, o, actor)
	ev.Items = eventItems(o.Items)
	return ev
}

// OrderStatusChanged builds the event for an aggregate status move.
func OrderStatusChanged(o *model.Order, prev model.OrderStatus, actor string) OrderEvent {
	ev := newOrderEvent(EventOrderStatusChanged, o, actor)
	ev.PrevStatus = string(prev)
	ev.Message = fmt.Sprintf("order %s moved %s -> %s", o.OrderNumber, prev, o.Status)
	return ev
}

// OrderItemsAdded builds the event for items appended to an existing order.
// Only the new items are listed.
func OrderItemsAdded(o *model.Order, added []model.OrderItem, actor string) OrderEvent {
	ev := newOrderEvent(EventOrderItemsAdded, o, actor)
	ev.Items = eventItems(added)
	return ev
}

// OrderCancelled builds the cancellation event. reason is free text from the
// operator.
func OrderCancelled(o *model.Order, reason, actor string) OrderEvent {
	ev := newOrderEvent(EventOrderCancelled, o, actor)
	ev.Message = reason
	return ev
}

// OrderDeleted builds the event for a cancelled order purged from history.
func OrderDeleted(o *model.Order, actor string) OrderEvent {
	ev := newOrderEvent(EventOrderDeleted, o, actor)
	ev.Message = fmt.Sprintf("order %s deleted", o.OrderNumber)
	return ev
}
