package model

import "testing"

func TestValidNextStatuses(t *testing.T) {
	tests := []struct {
		name string
		cur  OrderStatus
		typ  OrderType
		want []OrderStatus
	}{
		{"pending goes to preparation", StatusPending, DineIn, []OrderStatus{StatusInPreparation}},
		{"preparation goes to ready", StatusInPreparation, Takeout, []OrderStatus{StatusReady}},
		{"ready dine-in goes to delivered", StatusReady, DineIn, []OrderStatus{StatusDelivered}},
		{"ready takeout goes to delivered", StatusReady, Takeout, []OrderStatus{StatusDelivered}},
		{"ready delivery goes on the way", StatusReady, Delivery, []OrderStatus{StatusOnTheWay}},
		{"on the way goes to delivered", StatusOnTheWay, Delivery, []OrderStatus{StatusDelivered}},
		{"delivered goes to paid", StatusDelivered, DineIn, []OrderStatus{StatusPaid}},
		{"paid is terminal", StatusPaid, DineIn, nil},
		{"cancelled is terminal", StatusCancelled, Delivery, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidNextStatuses(tt.cur, tt.typ)
			if len(got) != len(tt.want) {
				t.Fatalf("ValidNextStatuses(%s, %s) = %v, want %v", tt.cur, tt.typ, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ValidNextStatuses(%s, %s) = %v, want %v", tt.cur, tt.typ, got, tt.want)
				}
			}
		})
	}
}

func TestIsValidTransition(t *testing.T) {
	// A dine-in order must never pass through ON_THE_WAY.
	if IsValidTransition(StatusReady, StatusOnTheWay, DineIn) {
		t.Error("dine-in READY -> ON_THE_WAY should be invalid")
	}
	// A delivery order must not skip ON_THE_WAY.
	if IsValidTransition(StatusReady, StatusDelivered, Delivery) {
		t.Error("delivery READY -> DELIVERED should be invalid")
	}
	if !IsValidTransition(StatusReady, StatusOnTheWay, Delivery) {
		t.Error("delivery READY -> ON_THE_WAY should be valid")
	}
	// No skipping forward.
	if IsValidTransition(StatusPending, StatusReady, DineIn) {
		t.Error("PENDING -> READY should be invalid at the order level")
	}
	// No moving backward.
	if IsValidTransition(StatusReady, StatusInPreparation, DineIn) {
		t.Error("READY -> IN_PREPARATION should be invalid")
	}
}

func TestCanBeCancelled(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   bool
	}{
		{StatusPending, true},
		{StatusInPreparation, true},
		{StatusReady, true},
		{StatusOnTheWay, false},
		{StatusDelivered, false},
		{StatusPaid, false},
		{StatusCancelled, false},
	}
	for _, tt := range tests {
		if got := tt.status.CanBeCancelled(); got != tt.want {
			t.Errorf("%s.CanBeCancelled() = %t, want %t", tt.status, got, tt.want)
		}
	}
}

func TestRank(t *testing.T) {
	order := []OrderStatus{StatusPending, StatusInPreparation, StatusReady, StatusOnTheWay, StatusDelivered}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Errorf("%s should rank below %s", order[i-1], order[i])
		}
	}
	if StatusPaid.Rank() != -1 || StatusCancelled.Rank() != -1 {
		t.Error("terminal statuses should have no rank")
	}
}
