package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/elgransazon/pos-backend/internal/model"
)

func TestSameTable(t *testing.T) {
	four, alsoFour, five := uint64(4), uint64(4), uint64(5)
	tests := []struct {
		name string
		a, b *uint64
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs set", nil, &four, false},
		{"set vs nil", &four, nil, false},
		{"same table", &four, &alsoFour, true},
		{"different tables", &four, &five, false},
	}
	for _, tt := range tests {
		if got := sameTable(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: sameTable = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// The update command refuses malformed input before touching the database,
// so a zero service is enough to exercise the guards.
func TestUpdateRejectsBadInput(t *testing.T) {
	s := &OrderService{}
	ctx := context.Background()

	tests := []struct {
		name  string
		in    UpdateOrderInput
		field string
	}{
		{
			"no items",
			UpdateOrderInput{},
			"items",
		},
		{
			"zero quantity",
			UpdateOrderInput{Items: []OrderItemInput{{MenuItemID: 1, Quantity: 0}}},
			"quantity",
		},
		{
			"negative tip",
			UpdateOrderInput{
				Tip:   decimal.NewFromInt(-5),
				Items: []OrderItemInput{{MenuItemID: 1, Quantity: 1}},
			},
			"tip",
		},
	}
	for _, tt := range tests {
		_, err := s.Update(ctx, 1, tt.in, "maria")
		var ve *model.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: err = %v, want validation error", tt.name, err)
			continue
		}
		if ve.Field != tt.field {
			t.Errorf("%s: field = %s, want %s", tt.name, ve.Field, tt.field)
		}
	}
}
