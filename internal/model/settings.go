package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settings is the restaurant-wide business configuration. It is loaded as an
// immutable snapshot at the start of each command; nothing in the core writes
// through it. The default row is seeded explicitly at bootstrap.
type Settings struct {
	ID                 uint64
	RestaurantName     string
	Slogan             string
	Address            string
	Phone              string
	Email              string
	TaxRate            decimal.Decimal // percentage, 0..100
	AvgConsumptionMins int             // minutes a party occupies a table, 30..480
	PaymentMethods     map[PaymentMethod]bool
	BusinessHours      []BusinessHours
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// BusinessHours is the opening window for one weekday.
type BusinessHours struct {
	Day      time.Weekday
	OpensAt  time.Time // time-of-day component
	ClosesAt time.Time
	Closed   bool
}

// AvgConsumption returns the average table occupancy as a duration.
func (s *Settings) AvgConsumption() time.Duration {
	return time.Duration(s.AvgConsumptionMins) * time.Minute
}

// PaymentMethodEnabled reports whether the given method is currently
// accepted. Unknown methods are disabled.
func (s *Settings) PaymentMethodEnabled(m PaymentMethod) bool {
	return s.PaymentMethods[m]
}

// HoursFor returns the business hours for a weekday, or nil when the
// restaurant is closed that day.
func (s *Settings) HoursFor(day time.Weekday) *BusinessHours {
	for i := range s.BusinessHours {
		if s.BusinessHours[i].Day == day && !s.BusinessHours[i].Closed {
			return &s.BusinessHours[i]
		}
	}
	return nil
}

// WithinBusinessHours reports whether a reservation starting at t fits the
// opening window of its weekday: at or after opening, and early enough that
// an average visit ends by closing time.
func (s *Settings) WithinBusinessHours(t time.Time) bool {
	h := s.HoursFor(t.Weekday())
	if h == nil {
		return false
	}
	open := atTimeOfDay(t, h.OpensAt)
	close := atTimeOfDay(t, h.ClosesAt)
	latestStart := close.Add(-s.AvgConsumption())
	return !t.Before(open) && !t.After(latestStart)
}

func atTimeOfDay(day, tod time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		tod.Hour(), tod.Minute(), tod.Second(), 0, day.Location())
}

// DefaultSettings is the bootstrap configuration seeded when the settings
// table is empty: 120 minute average visits, transfer payments disabled,
// open every day from noon to eleven.
func DefaultSettings() *Settings {
	s := &Settings{
		RestaurantName:     "El Gran Sazón",
		TaxRate:            decimal.NewFromInt(16),
		AvgConsumptionMins: 120,
		PaymentMethods: map[PaymentMethod]bool{
			PaymentCash:       true,
			PaymentCreditCard: true,
			PaymentDebitCard:  true,
			PaymentTransfer:   false,
		},
	}
	opens := time.Date(0, 1, 1, 12, 0, 0, 0, time.Local)
	closes := time.Date(0, 1, 1, 23, 0, 0, 0, time.Local)
	for day := time.Sunday; day <= time.Saturday; day++ {
		s.BusinessHours = append(s.BusinessHours, BusinessHours{Day: day, OpensAt: opens, ClosesAt: closes})
	}
	return s
}
