package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func clock(hour, min int) time.Time {
	return time.Date(0, 1, 1, hour, min, 0, 0, time.Local)
}

func openSettings() *Settings {
	s := DefaultSettings()
	s.BusinessHours = []BusinessHours{
		{Day: time.Friday, OpensAt: clock(12, 0), ClosesAt: clock(23, 0)},
		{Day: time.Saturday, OpensAt: clock(12, 0), ClosesAt: clock(23, 0)},
		{Day: time.Sunday, Closed: true},
	}
	return s
}

func TestWithinBusinessHours(t *testing.T) {
	s := openSettings() // 120 minute average visit, latest start 21:00

	friday := func(hour, min int) time.Time {
		return time.Date(2026, 8, 28, hour, min, 0, 0, time.Local)
	}
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before opening", friday(11, 59), false},
		{"at opening", friday(12, 0), true},
		{"mid afternoon", friday(17, 30), true},
		{"latest possible start", friday(21, 0), true},
		{"too close to closing", friday(21, 1), false},
		{"after closing", friday(23, 30), false},
		{"closed day", time.Date(2026, 8, 30, 14, 0, 0, 0, time.Local), false},
		{"day without hours configured", time.Date(2026, 8, 31, 14, 0, 0, 0, time.Local), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.WithinBusinessHours(tt.at); got != tt.want {
				t.Errorf("WithinBusinessHours(%s) = %t, want %t", tt.at.Format("Mon 15:04"), got, tt.want)
			}
		})
	}
}

func TestHoursFor(t *testing.T) {
	s := openSettings()
	if h := s.HoursFor(time.Friday); h == nil || h.OpensAt.Hour() != 12 {
		t.Errorf("HoursFor(Friday) = %+v", h)
	}
	if h := s.HoursFor(time.Sunday); h != nil {
		t.Error("closed day should return nil hours")
	}
	if h := s.HoursFor(time.Monday); h != nil {
		t.Error("unconfigured day should return nil hours")
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if !s.TaxRate.Equal(decimal.NewFromInt(16)) {
		t.Errorf("default tax rate = %s, want 16", s.TaxRate)
	}
	if s.AvgConsumption() != 120*time.Minute {
		t.Errorf("default average consumption = %s, want 2h", s.AvgConsumption())
	}
	if !s.PaymentMethodEnabled(PaymentCash) || !s.PaymentMethodEnabled(PaymentCreditCard) {
		t.Error("cash and credit card should be enabled by default")
	}
	if s.PaymentMethodEnabled(PaymentTransfer) {
		t.Error("transfers should be disabled by default")
	}
	if s.PaymentMethodEnabled(PaymentMethod("CRYPTO")) {
		t.Error("unknown methods must be disabled")
	}
	if len(s.BusinessHours) != 7 {
		t.Fatalf("default hours cover %d days, want 7", len(s.BusinessHours))
	}
	for _, h := range s.BusinessHours {
		if h.Closed || h.OpensAt.Hour() != 12 || h.ClosesAt.Hour() != 23 {
			t.Errorf("unexpected default hours for %s: %+v", h.Day, h)
		}
	}
}
