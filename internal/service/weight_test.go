package service_test

import (
	"math"
	"testing"
	"time"

	"github.com/saadjs/macrolog/internal/service"
)

func TestWaterTotalsPerDay(t *testing.T) {
	sqldb := newTestDB(t)
	u := newTestUser(t, sqldb, "Alex")
	day := time.Date(2026, 3, 4, 9, 0, 0, 0, time.Local)

	inputs := []service.AddWaterInput{
		{UserID: u.ID, Amount: 16, LoggedAt: day},
		{UserID: u.ID, Amount: 1, Unit: "cup", LoggedAt: day.Add(2 * time.Hour)},
		{UserID: u.ID, Amount: 10, LoggedAt: day.Add(24 * time.Hour)},
	}
	for _, in := range inputs {
		if _, err := service.AddWater(sqldb, in); err != nil {
			t.Fatalf("add water: %v", err)
		}
	}
	total, err := service.WaterTotal(sqldb, u.ID, "2026-03-04")
	if err != nil {
		t.Fatalf("water total: %v", err)
	}
	if math.Abs(total-24) > 1e-9 {
		t.Fatalf("expected 24 oz, got %v", total)
	}
	if _, err := service.AddWater(sqldb, service.AddWaterInput{UserID: u.ID, Amount: 1, Unit: "kg"}); err == nil {
		t.Fatalf("expected mass unit to be rejected")
	}
}

func TestWeightsNewestFirst(t *testing.T) {
	sqldb := newTestDB(t)
	u := newTestUser(t, sqldb, "Alex")
	day := time.Date(2026, 3, 1, 7, 0, 0, 0, time.Local)

	if _, err := service.AddWeight(sqldb, service.AddWeightInput{UserID: u.ID, Weight: 180, Unit: "lb", LoggedAt: day}); err != nil {
		t.Fatalf("add weight: %v", err)
	}
	if _, err := service.AddWeight(sqldb, service.AddWeightInput{UserID: u.ID, Weight: 81, LoggedAt: day.Add(48 * time.Hour)}); err != nil {
		t.Fatalf("add weight: %v", err)
	}
	logs, err := service.ListWeights(sqldb, u.ID, 10)
	if err != nil {
		t.Fatalf("list weights: %v", err)
	}
	if len(logs) != 2 || logs[0].WeightKg != 81 || logs[1].Date != "2026-03-01" {
		t.Fatalf("unexpected weights %+v", logs)
	}
	if math.Abs(logs[1].WeightKg-81.64656) > 1e-6 {
		t.Fatalf("expected 180 lb stored as kg, got %v", logs[1].WeightKg)
	}
	if _, err := service.AddWeight(sqldb, service.AddWeightInput{UserID: u.ID, Weight: 0}); err == nil {
		t.Fatalf("expected zero weight to fail")
	}
}

func TestWeightReminderDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(-d)
		return &v
	}
	cases := []struct {
		last *time.Time
		want bool
	}{
		{nil, false},
		{&time.Time{}, false},
		{at(time.Hour), false},
		{at(7 * 24 * time.Hour), false},
		{at(6*24*time.Hour + time.Hour), false},
		{at(7*24*time.Hour + time.Minute), true},
		{at(30 * 24 * time.Hour), true},
		{at(-8 * 24 * time.Hour), true},
		{at(-2 * 24 * time.Hour), false},
	}
	for i, tc := range cases {
		if got := service.WeightReminderDue(tc.last, now); got != tc.want {
			t.Fatalf("case %d: WeightReminderDue = %v, want %v", i, got, tc.want)
		}
	}
}
