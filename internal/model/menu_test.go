package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func burgerItem() *MenuItem {
	return &MenuItem{
		ID:   1,
		Name: "Hamburguesa",
		Recipe: []RecipeLine{
			{IngredientID: 10, IngredientName: "Carne", Quantity: dec("0.2"), Unit: "kg"},
			{IngredientID: 11, IngredientName: "Pan", Quantity: dec("1"), Unit: "pz"},
			{IngredientID: 12, IngredientName: "Queso", Quantity: dec("0.05"), Unit: "kg"},
		},
	}
}

func TestRequiredStock(t *testing.T) {
	req := burgerItem().RequiredStock(3)
	want := map[uint64]string{10: "0.6", 11: "3", 12: "0.15"}
	if len(req) != len(want) {
		t.Fatalf("got %d ingredients, want %d", len(req), len(want))
	}
	for id, exp := range want {
		if !req[id].Equal(dec(exp)) {
			t.Errorf("ingredient %d: required %s, want %s", id, req[id], exp)
		}
	}
}

func TestRequiredStockRepeatedIngredient(t *testing.T) {
	// Two recipe lines naming the same ingredient accumulate.
	item := &MenuItem{Recipe: []RecipeLine{
		{IngredientID: 10, Quantity: dec("0.1")},
		{IngredientID: 10, Quantity: dec("0.15")},
	}}
	req := item.RequiredStock(2)
	if !req[10].Equal(dec("0.5")) {
		t.Errorf("required %s, want 0.5", req[10])
	}
}

func TestHasEnoughStock(t *testing.T) {
	item := burgerItem()
	tests := []struct {
		name  string
		qty   int
		stock map[uint64]decimal.Decimal
		want  bool
	}{
		{
			"plenty of everything",
			2,
			map[uint64]decimal.Decimal{10: dec("5"), 11: dec("20"), 12: dec("1")},
			true,
		},
		{
			"exactly enough",
			2,
			map[uint64]decimal.Decimal{10: dec("0.4"), 11: dec("2"), 12: dec("0.1")},
			true,
		},
		{
			"one ingredient short",
			2,
			map[uint64]decimal.Decimal{10: dec("0.4"), 11: dec("1"), 12: dec("0.1")},
			false,
		},
		{
			"ingredient missing from stock map",
			1,
			map[uint64]decimal.Decimal{10: dec("5"), 11: dec("20")},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := item.HasEnoughStock(tt.qty, tt.stock); got != tt.want {
				t.Errorf("HasEnoughStock(%d) = %t, want %t", tt.qty, got, tt.want)
			}
		})
	}
}

func TestHasEnoughStockNoRecipe(t *testing.T) {
	item := &MenuItem{ID: 2, Name: "Refresco"}
	if item.HasRecipe() {
		t.Fatal("item without recipe lines reports HasRecipe")
	}
	if !item.HasEnoughStock(100, nil) {
		t.Error("items without a recipe never run out")
	}
}

func TestShortfalls(t *testing.T) {
	item := burgerItem()
	stock := map[uint64]decimal.Decimal{10: dec("0.3"), 11: dec("10"), 12: dec("0.02")}

	got := item.Shortfalls(2, stock)
	if len(got) != 2 {
		t.Fatalf("got %d shortfalls, want 2", len(got))
	}
	first := got[0]
	if first.IngredientID != 10 || !first.Required.Equal(dec("0.4")) || !first.Available.Equal(dec("0.3")) {
		t.Errorf("unexpected first shortfall: %+v", first)
	}
	if first.MenuItemName != "Hamburguesa" || first.Unit != "kg" {
		t.Errorf("shortfall missing context fields: %+v", first)
	}
	second := got[1]
	if second.IngredientID != 12 || !second.Required.Equal(dec("0.1")) {
		t.Errorf("unexpected second shortfall: %+v", second)
	}

	if sf := item.Shortfalls(1, map[uint64]decimal.Decimal{10: dec("5"), 11: dec("5"), 12: dec("5")}); len(sf) != 0 {
		t.Errorf("fully covered item reported %d shortfalls", len(sf))
	}
}
