package model

import (
	"errors"
	"testing"
	"time"
)

func TestTableStateValid(t *testing.T) {
	tests := []struct {
		status   TableStatus
		occupied bool
		want     bool
	}{
		{TableAvailable, false, true},
		{TableAvailable, true, false},
		{TableOccupied, false, true},
		{TableOccupied, true, false},
		{TableReserved, false, true},
		{TableReserved, true, true},
		{TableOutOfService, false, true},
		{TableOutOfService, true, false},
	}
	for _, tt := range tests {
		table := RestaurantTable{Status: tt.status, Occupied: tt.occupied}
		if got := table.StateValid(); got != tt.want {
			t.Errorf("StateValid(%s, occupied=%t) = %t, want %t", tt.status, tt.occupied, got, tt.want)
		}
	}
}

func TestOccupy(t *testing.T) {
	table := RestaurantTable{Status: TableAvailable}
	if err := table.Occupy(); err != nil {
		t.Fatalf("Occupy() error = %v", err)
	}
	if table.Status != TableOccupied || table.Occupied {
		t.Errorf("after Occupy: status=%s occupied=%t", table.Status, table.Occupied)
	}

	for _, status := range []TableStatus{TableOccupied, TableReserved, TableOutOfService} {
		table := RestaurantTable{Status: status}
		if err := table.Occupy(); err == nil {
			t.Errorf("Occupy() on %s table should fail", status)
		}
	}
}

func TestSeatReserved(t *testing.T) {
	table := RestaurantTable{Status: TableReserved}
	if err := table.SeatReserved(); err != nil {
		t.Fatalf("SeatReserved() error = %v", err)
	}
	if table.Status != TableReserved || !table.Occupied {
		t.Errorf("after SeatReserved: status=%s occupied=%t", table.Status, table.Occupied)
	}
	if err := table.SeatReserved(); err == nil {
		t.Error("seating an already seated table should fail")
	}
	avail := RestaurantTable{Status: TableAvailable}
	if err := avail.SeatReserved(); err == nil {
		t.Error("SeatReserved() on an available table should fail")
	}
}

func TestFree(t *testing.T) {
	// A seated reserved table only drops the flag.
	table := RestaurantTable{Status: TableReserved, Occupied: true}
	table.Free()
	if table.Status != TableReserved || table.Occupied {
		t.Errorf("freed reserved table: status=%s occupied=%t", table.Status, table.Occupied)
	}

	// An occupied table returns to available.
	table = RestaurantTable{Status: TableOccupied}
	table.Free()
	if table.Status != TableAvailable {
		t.Errorf("freed occupied table: status=%s", table.Status)
	}

	// Out of service is untouched.
	table = RestaurantTable{Status: TableOutOfService}
	table.Free()
	if table.Status != TableOutOfService {
		t.Errorf("freeing an out-of-service table changed it to %s", table.Status)
	}
}

func reservationAt(day time.Time, hour, min int) *Reservation {
	return &Reservation{
		Date: time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()),
		Time: time.Date(0, 1, 1, hour, min, 0, 0, day.Location()),
	}
}

func TestCanHostReservedAt(t *testing.T) {
	table := RestaurantTable{Number: 5, Status: TableReserved}
	now := time.Date(2026, 8, 28, 18, 0, 0, 0, time.Local)

	// No upcoming reservation.
	if err := table.CanHostReservedAt(now, nil, 90*time.Minute); err != nil {
		t.Errorf("nil reservation should always pass, got %v", err)
	}

	// Reservation tomorrow never conflicts.
	tomorrow := reservationAt(now.AddDate(0, 0, 1), 18, 30)
	if err := table.CanHostReservedAt(now, tomorrow, 12*time.Hour); err != nil {
		t.Errorf("next-day reservation should pass, got %v", err)
	}

	// Seating at 19:50 with a 20:00 reservation and 90 minute average visits
	// runs until 21:20 and must be refused.
	now = time.Date(2026, 8, 28, 19, 50, 0, 0, time.Local)
	tonight := reservationAt(now, 20, 0)
	err := table.CanHostReservedAt(now, tonight, 90*time.Minute)
	if err == nil {
		t.Fatal("seating should be refused")
	}
	var ite *InsufficientTimeError
	if !errors.As(err, &ite) {
		t.Fatalf("want InsufficientTimeError, got %T", err)
	}
	if ite.TableNumber != 5 {
		t.Errorf("error names table %d, want 5", ite.TableNumber)
	}

	// Seating at 18:00 leaves enough room before the 20:00 reservation.
	now = time.Date(2026, 8, 28, 18, 0, 0, 0, time.Local)
	if err := table.CanHostReservedAt(now, reservationAt(now, 20, 0), 90*time.Minute); err != nil {
		t.Errorf("18:00 seating should pass, got %v", err)
	}

	// Ending exactly at the reservation start is allowed.
	now = time.Date(2026, 8, 28, 18, 30, 0, 0, time.Local)
	if err := table.CanHostReservedAt(now, reservationAt(now, 20, 0), 90*time.Minute); err != nil {
		t.Errorf("exact-fit seating should pass, got %v", err)
	}
}
