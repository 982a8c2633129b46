package service_test

import (
	"errors"
	"testing"

	"github.com/saadjs/macrolog/internal/nutrition"
	"github.com/saadjs/macrolog/internal/service"
)

func TestResolveSource(t *testing.T) {
	sqldb := newTestDB(t)
	u := newTestUser(t, sqldb, "Alex")
	if err := service.UpsertLearnedProduct(sqldb, u.ID, "Trail Mix", "Acme", nutrition.NutrientRecord{Calories: 250, Protein: 5}); err != nil {
		t.Fatalf("remember product: %v", err)
	}

	src, err := service.ResolveSource(sqldb, u.ID, service.SourceRequest{Staple: "Egg"})
	if err != nil || src.Kind != nutrition.KindManual || nutrition.Normalize(src).Calories != 78 {
		t.Fatalf("unexpected staple source %+v %v", src, err)
	}

	src, err = service.ResolveSource(sqldb, u.ID, service.SourceRequest{Reference: "salmon"})
	if err != nil || src.Kind != nutrition.KindLocal || src.PieceWeight() != 150 {
		t.Fatalf("unexpected reference source %+v %v", src, err)
	}

	src, err = service.ResolveSource(sqldb, u.ID, service.SourceRequest{History: " trail MIX "})
	if err != nil || src.Kind != nutrition.KindHistory || src.Brand != "Acme" {
		t.Fatalf("unexpected history source %+v %v", src, err)
	}
	if got := nutrition.Normalize(src); got.Calories != 250 || got.Protein != 5 {
		t.Fatalf("history source should round trip per-100g values, got %+v", got)
	}

	src, err = service.ResolveSource(sqldb, u.ID, service.SourceRequest{LabelText: "Calories 120\nProtein 4g\n"})
	if err != nil || src.Kind != nutrition.KindOCR || nutrition.Normalize(src).Calories != 120 {
		t.Fatalf("unexpected label source %+v %v", src, err)
	}

	raw := nutrition.ManualSource("Soup", "", map[string]any{"calories": 90.0})
	src, err = service.ResolveSource(sqldb, u.ID, service.SourceRequest{Raw: &raw})
	if err != nil || src.Name != "Soup" {
		t.Fatalf("unexpected raw source %+v %v", src, err)
	}

	for _, req := range []service.SourceRequest{{Staple: "caviar"}, {Reference: "caviar"}, {History: "trail"}} {
		if _, err := service.ResolveSource(sqldb, u.ID, req); !errors.Is(err, service.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for %+v, got %v", req, err)
		}
	}
	if _, err := service.ResolveSource(sqldb, u.ID, service.SourceRequest{}); err == nil || errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected a plain error for an empty request, got %v", err)
	}
}
