package service_test

import (
	"testing"
	"time"

	"github.com/saadjs/macrolog/internal/nutrition"
	"github.com/saadjs/macrolog/internal/service"
)

var lunch = time.Date(2026, 3, 4, 12, 15, 0, 0, time.Local)

func TestLogFoodLocalByPiece(t *testing.T) {
	sqldb := newTestDB(t)
	u := newTestUser(t, sqldb, "Alex")
	breast, ok := nutrition.LookupReference("Chicken Breast")
	if !ok {
		t.Fatalf("expected chicken breast in the reference table")
	}

	res, err := service.LogFood(sqldb, service.LogFoodInput{UserID: u.ID, Source: nutrition.LocalSource(breast), Quantity: 1, Unit: "piece", LoggedAt: lunch})
	if err != nil {
		t.Fatalf("log food: %v", err)
	}
	if res.Entry.Nutrients.Calories != 287 || res.Entry.Unit != "piece" || res.Entry.Quantity != 1 {
		t.Fatalf("unexpected entry %+v", res.Entry)
	}
	if res.Learned {
		t.Fatalf("reference foods are not remembered")
	}

	res, err = service.LogFood(sqldb, service.LogFoodInput{UserID: u.ID, Source: nutrition.LocalSource(breast), LoggedAt: lunch})
	if err != nil {
		t.Fatalf("log default quantity: %v", err)
	}
	if res.Entry.Nutrients.Calories != 165 || res.Entry.Quantity != 100 || res.Entry.Unit != "g" {
		t.Fatalf("expected 100 g default, got %+v", res.Entry)
	}
}

func TestLogFoodBarcodePer100gIsRemembered(t *testing.T) {
	sqldb := newTestDB(t)
	u := newTestUser(t, sqldb, "Alex")
	src := nutrition.BarcodeSource("Granola", "Oat Co", "3017620422003",
		map[string]any{"energy-kcal_100g": 400.0, "proteins_100g": 10.0, "sodium_100g": 0.2}, 0)

	res, err := service.LogFood(sqldb, service.LogFoodInput{UserID: u.ID, Source: src, Quantity: 50, Unit: "g", LoggedAt: lunch})
	if err != nil {
		t.Fatalf("log barcode: %v", err)
	}
	n := res.Entry.Nutrients
	if n.Calories != 200 || n.Protein != 5 || n.Sodium != 100 {
		t.Fatalf("unexpected scaled nutrients %+v", n)
	}
	if !res.Learned || res.Basis != nutrition.BasisPer100g {
		t.Fatalf("expected per-100g scan to be remembered, got %+v", res)
	}
	if _, err := service.LogFood(sqldb, service.LogFoodInput{UserID: u.ID, Source: src, LoggedAt: lunch}); err != nil {
		t.Fatalf("log again: %v", err)
	}

	products, err := service.ListLearnedProducts(sqldb, u.ID, "gran", 0)
	if err != nil {
		t.Fatalf("list learned: %v", err)
	}
	if len(products) != 1 || products[0].UsageCount != 2 || products[0].Per100g.Sodium != 200 {
		t.Fatalf("unexpected learned products %+v", products)
	}
}

func TestLogFoodLabelNeedsANameToBeRemembered(t *testing.T) {
	sqldb := newTestDB(t)
	u := newTestUser(t, sqldb, "Alex")
	text := "Calories 250\nProtein 5g\n"

	for i := 0; i < 2; i++ {
		res, err := service.LogFood(sqldb, service.LogFoodInput{UserID: u.ID, Source: nutrition.ParseLabelText(text), LoggedAt: lunch})
		if err != nil {
			t.Fatalf("log unnamed label: %v", err)
		}
		if res.Learned || res.Entry.Name != nutrition.ScannedLabelName {
			t.Fatalf("expected unnamed label to be logged but not remembered, got %+v", res)
		}
	}

	named := nutrition.ParseLabelText(text)
	named.Name = "Trail Mix"
	res, err := service.LogFood(sqldb, service.LogFoodInput{UserID: u.ID, Source: named, LoggedAt: lunch})
	if err != nil {
		t.Fatalf("log named label: %v", err)
	}
	if !res.Learned {
		t.Fatalf("expected named label to be remembered")
	}

	products, err := service.ListLearnedProducts(sqldb, u.ID, "", 0)
	if err != nil {
		t.Fatalf("list learned: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Trail Mix" {
		t.Fatalf("expected only the named label in history, got %+v", products)
	}
}

func TestLogFoodBarcodePerServing(t *testing.T) {
	sqldb := newTestDB(t)
	u := newTestUser(t, sqldb, "Alex")
	nutriments := map[string]any{"energy-kcal_serving": 120.0, "proteins_serving": 3.0}

	withWeight := nutrition.BarcodeSource("Crackers", "", "12345678", nutriments, 30)
	res, err := service.LogFood(sqldb, service.LogFoodInput{UserID: u.ID, Source: withWeight, Quantity: 2, Unit: "serving", LoggedAt: lunch})
	if err != nil {
		t.Fatalf("log by serving: %v", err)
	}
	if res.Entry.Nutrients.Calories != 240 || res.Learned || res.Basis != nutrition.BasisPerServing {
		t.Fatalf("unexpected per-serving result %+v", res)
	}

	res, err = service.LogFood(sqldb, service.LogFoodInput{UserID: u.ID, Source: withWeight, Quantity: 45, Unit: "g", LoggedAt: lunch})
	if err != nil {
		t.Fatalf("log by grams: %v", err)
	}
	if res.Entry.Nutrients.Calories != 180 || res.Entry.Unit != "g" {
		t.Fatalf("expected 45 g of a 30 g serving to be 180 kcal, got %+v", res.Entry)
	}

	noWeight := nutrition.BarcodeSource("Crackers", "", "12345678", nutriments, 0)
	if _, err := service.LogFood(sqldb, service.LogFoodInput{UserID: u.ID, Source: noWeight, Quantity: 45, Unit: "g", LoggedAt: lunch}); err == nil {
		t.Fatalf("expected grams without a serving weight to fail")
	}
	res, err = service.LogFood(sqldb, service.LogFoodInput{UserID: u.ID, Source: noWeight, LoggedAt: lunch})
	if err != nil {
		t.Fatalf("log default serving: %v", err)
	}
	if res.Entry.Nutrients.Calories != 120 || res.Entry.Quantity != 1 {
		t.Fatalf("expected one serving by default, got %+v", res.Entry)
	}
}

func TestLogFoodManualIsStoredAsLogged(t *testing.T) {
	sqldb := newTestDB(t)
	u := newTestUser(t, sqldb, "Alex")
	src := nutrition.ManualSource("Leftovers", "", map[string]any{"calories": "612.4", "protein": 30.04, "fats": "n/a"})

	res, err := service.LogFood(sqldb, service.LogFoodInput{UserID: u.ID, Source: src, Quantity: 3, Unit: "kg", LoggedAt: lunch, Date: "2026-03-03"})
	if err != nil {
		t.Fatalf("log manual: %v", err)
	}
	n := res.Entry.Nutrients
	if n.Calories != 612 || n.Protein != 30 || n.Fats != 0 {
		t.Fatalf("unexpected manual nutrients %+v", n)
	}
	if res.Entry.Quantity != 1 || res.Entry.Unit != "serving" || res.Entry.Date != "2026-03-03" {
		t.Fatalf("expected manual entry as one serving on the given date, got %+v", res.Entry)
	}
	if res.Learned {
		t.Fatalf("manual entries are not remembered")
	}
}

func TestLogFoodRejectsBadInput(t *testing.T) {
	sqldb := newTestDB(t)
	u := newTestUser(t, sqldb, "Alex")
	egg, _ := nutrition.LookupReference("egg")

	cases := []service.LogFoodInput{
		{UserID: "", Source: nutrition.LocalSource(egg)},
		{UserID: u.ID, Source: nutrition.RawSource{Kind: nutrition.KindLocal}},
		{UserID: u.ID, Source: nutrition.RawSource{Kind: "fax", Name: "x"}},
		{UserID: u.ID, Source: nutrition.LocalSource(egg), Quantity: 2, Unit: "cup"},
		{UserID: u.ID, Source: nutrition.LocalSource(egg), Quantity: 2, Unit: "handful"},
		{UserID: u.ID, Source: nutrition.LocalSource(egg), Quantity: -1, Unit: "g"},
	}
	for i, in := range cases {
		if _, err := service.LogFood(sqldb, in); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}
