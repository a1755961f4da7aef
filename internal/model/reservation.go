package model

import "time"

// ReservationStatus tracks a reservation through its lifetime.
type ReservationStatus string

const (
	ReservationReserved  ReservationStatus = "RESERVED"  // waiting for the guests
	ReservationOccupied  ReservationStatus = "OCCUPIED"  // guests arrived and are seated
	ReservationCompleted ReservationStatus = "COMPLETED" // guests finished and left
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationNoShow    ReservationStatus = "NO_SHOW"
)

// Active reports whether the reservation still holds its table.
func (s ReservationStatus) Active() bool {
	return s == ReservationReserved || s == ReservationOccupied
}

// Editable reports whether the reservation details may still change.
func (s ReservationStatus) Editable() bool { return s == ReservationReserved }

// ValidReservationTransition enumerates the legal status moves: a pending
// reservation can be seated, cancelled or written off as a no-show; a seated
// one can only complete.
func ValidReservationTransition(from, to ReservationStatus) bool {
	switch from {
	case ReservationReserved:
		return to == ReservationOccupied || to == ReservationCancelled || to == ReservationNoShow
	case ReservationOccupied:
		return to == ReservationCompleted
	}
	return false
}

// Reservation books a table for a date and time. Its window width is the
// system-wide average consumption duration; two active reservations on one
// table must never overlap within that width.
type Reservation struct {
	ID              uint64
	TableID         uint64
	TableNumber     int
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	Guests          int
	Date            time.Time // date component only, local midnight
	Time            time.Time // time-of-day component
	Status          ReservationStatus
	SpecialRequests string
	CreatedBy       string
	UpdatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StartAt combines the date and time-of-day into a single instant.
func (r *Reservation) StartAt() time.Time {
	return time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(),
		r.Time.Hour(), r.Time.Minute(), r.Time.Second(), 0, r.Date.Location())
}

// Overlaps reports whether two reservation windows on the same day collide,
// where each window is width wide. Touching endpoints do not overlap, so
// back-to-back slots exactly one width apart are allowed.
func Overlaps(a, b time.Time, width time.Duration) bool {
	return a.Before(b.Add(width)) && b.Before(a.Add(width))
}
