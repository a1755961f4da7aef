package model

import "time"

// TableStatus is the primary state of a restaurant table.
type TableStatus string

const (
	TableAvailable    TableStatus = "AVAILABLE"
	TableOccupied     TableStatus = "OCCUPIED"
	TableReserved     TableStatus = "RESERVED"
	TableOutOfService TableStatus = "OUT_OF_SERVICE"
)

// RestaurantTable combines the status enum with the orthogonal Occupied flag.
// The flag is meaningful only while RESERVED and means "currently seated
// ahead of (or despite) the reservation record". All mutations go through the
// methods below so the illegal pairs {AVAILABLE,true} and {OCCUPIED,true} are
// never constructed.
type RestaurantTable struct {
	ID        uint64
	Number    int
	Capacity  int
	Location  string
	Status    TableStatus
	Occupied  bool
	Comments  string
	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StateValid reports whether the status/flag pair is one of the legal
// combinations. Only RESERVED may carry Occupied=true.
func (t *RestaurantTable) StateValid() bool {
	if t.Occupied {
		return t.Status == TableReserved
	}
	switch t.Status {
	case TableAvailable, TableOccupied, TableReserved, TableOutOfService:
		return true
	}
	return false
}

// AvailableForOrder reports whether a new order may take this table: either
// plainly AVAILABLE, or RESERVED with nobody seated yet (the time check for
// that case happens in CanHostReservedAt).
func (t *RestaurantTable) AvailableForOrder() bool {
	return t.Status == TableAvailable || (t.Status == TableReserved && !t.Occupied)
}

// Occupy transitions an AVAILABLE table to OCCUPIED. The Occupied flag stays
// false; it is unused in this status. Reserved tables must go through
// SeatReserved instead because seating them is time-sensitive.
func (t *RestaurantTable) Occupy() error {
	if t.Status != TableAvailable {
		return &StateError{Entity: "table", Current: string(t.Status), Attempted: string(TableOccupied)}
	}
	t.Status = TableOccupied
	t.Occupied = false
	return nil
}

// SeatReserved marks a RESERVED table as currently seated. The status stays
// RESERVED because the reservation record still owns the table; only the
// flag flips. The caller is responsible for the next-reservation time check.
func (t *RestaurantTable) SeatReserved() error {
	if t.Status != TableReserved {
		return &StateError{Entity: "table", Current: string(t.Status), Reason: "only a reserved table can be seated ahead of its reservation"}
	}
	if t.Occupied {
		return &StateError{Entity: "table", Current: string(t.Status), Reason: "table is already seated"}
	}
	t.Occupied = true
	return nil
}

// Free releases the table when its order ends. A RESERVED table only drops
// the seated flag (the reservation still owns it); an OCCUPIED table returns
// to AVAILABLE. Other states are left untouched.
func (t *RestaurantTable) Free() {
	switch t.Status {
	case TableReserved:
		t.Occupied = false
	case TableOccupied:
		t.Status = TableAvailable
		t.Occupied = false
	}
}

// CanHostReservedAt validates that seating this reserved table at now leaves
// room before its next reservation. next is the table's nearest future
// active reservation or nil. Reservations on a later day never conflict;
// for one today, now + avgConsumption must not run past its start time.
func (t *RestaurantTable) CanHostReservedAt(now time.Time, next *Reservation, avgConsumption time.Duration) error {
	if next == nil {
		return nil
	}
	start := next.StartAt()
	ny, nm, nd := now.Date()
	ry, rm, rd := start.Date()
	if ny != ry || nm != rm || nd != rd {
		return nil
	}
	estimatedEnd := now.Add(avgConsumption)
	if estimatedEnd.After(start) {
		return &InsufficientTimeError{
			TableNumber:     t.Number,
			NextReservation: start,
			EstimatedEnd:    estimatedEnd,
		}
	}
	return nil
}
