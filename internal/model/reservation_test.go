package model

import (
	"testing"
	"time"
)

func TestOverlaps(t *testing.T) {
	width := 120 * time.Minute
	at := func(hour, min int) time.Time {
		return time.Date(2026, 8, 28, hour, min, 0, 0, time.Local)
	}

	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		want bool
	}{
		{"identical start", at(19, 0), at(19, 0), true},
		{"second starts inside first", at(19, 0), at(20, 0), true},
		{"first starts inside second", at(20, 30), at(19, 0), true},
		{"back to back exactly one width apart", at(19, 0), at(21, 0), false},
		{"well separated", at(12, 0), at(20, 0), false},
		{"one minute short of clearing", at(19, 0), at(20, 59), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b, width); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %t, want %t",
					tt.a.Format("15:04"), tt.b.Format("15:04"), got, tt.want)
			}
		})
	}
}

func TestValidReservationTransition(t *testing.T) {
	tests := []struct {
		from ReservationStatus
		to   ReservationStatus
		want bool
	}{
		{ReservationReserved, ReservationOccupied, true},
		{ReservationReserved, ReservationCancelled, true},
		{ReservationReserved, ReservationNoShow, true},
		{ReservationReserved, ReservationCompleted, false},
		{ReservationOccupied, ReservationCompleted, true},
		{ReservationOccupied, ReservationCancelled, false},
		{ReservationOccupied, ReservationNoShow, false},
		{ReservationCompleted, ReservationOccupied, false},
		{ReservationCancelled, ReservationReserved, false},
		{ReservationNoShow, ReservationReserved, false},
	}
	for _, tt := range tests {
		if got := ValidReservationTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("ValidReservationTransition(%s, %s) = %t, want %t", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestReservationStatusActive(t *testing.T) {
	active := []ReservationStatus{ReservationReserved, ReservationOccupied}
	done := []ReservationStatus{ReservationCompleted, ReservationCancelled, ReservationNoShow}
	for _, s := range active {
		if !s.Active() {
			t.Errorf("%s should be active", s)
		}
	}
	for _, s := range done {
		if s.Active() {
			t.Errorf("%s should not be active", s)
		}
	}
	if !ReservationReserved.Editable() {
		t.Error("RESERVED should be editable")
	}
	if ReservationOccupied.Editable() {
		t.Error("OCCUPIED should not be editable")
	}
}

func TestStartAt(t *testing.T) {
	res := Reservation{
		Date: time.Date(2026, 8, 28, 0, 0, 0, 0, time.Local),
		Time: time.Date(0, 1, 1, 20, 30, 0, 0, time.Local),
	}
	got := res.StartAt()
	want := time.Date(2026, 8, 28, 20, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("StartAt() = %s, want %s", got, want)
	}
}
