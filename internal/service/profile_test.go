package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/saadjs/macrolog/internal/nutrition"
	"github.com/saadjs/macrolog/internal/service"
)

func maintainProfile() nutrition.Profile {
	return nutrition.Profile{WeightKg: 70, HeightCm: 175, Age: 30, Sex: "Male", ActivityFactor: 1.2, Goal: nutrition.GoalMaintain}
}

func TestUpdateProfileStoresTargets(t *testing.T) {
	sqldb := newTestDB(t)
	u := newTestUser(t, sqldb, "Alex")

	if _, err := service.GetProfile(sqldb, u.ID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected no profile yet, got %v", err)
	}
	sp, err := service.UpdateProfile(sqldb, u.ID, maintainProfile())
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	want := nutrition.Targets{Calories: 1979, Protein: 148, Carbs: 198, Fats: 66}
	if sp.Targets != want {
		t.Fatalf("expected %+v, got %+v", want, sp.Targets)
	}
	if sp.Profile.Sex != "male" || sp.WaterGoalOz != 93 {
		t.Fatalf("unexpected stored profile %+v", sp)
	}

	lose := maintainProfile()
	lose.Goal = nutrition.GoalLose
	sp, err = service.UpdateProfile(sqldb, u.ID, lose)
	if err != nil {
		t.Fatalf("update profile again: %v", err)
	}
	if sp.Targets.Calories != 1479 {
		t.Fatalf("expected lose target 1479, got %d", sp.Targets.Calories)
	}

	weights, err := service.ListWeights(sqldb, u.ID, 0)
	if err != nil {
		t.Fatalf("list weights: %v", err)
	}
	if len(weights) != 2 || weights[0].WeightKg != 70 {
		t.Fatalf("expected each profile save to record a weigh-in, got %+v", weights)
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	sqldb := newTestDB(t)
	u := newTestUser(t, sqldb, "Alex")

	bad := []func(p *nutrition.Profile){
		func(p *nutrition.Profile) { p.WeightKg = 0 },
		func(p *nutrition.Profile) { p.HeightCm = -1 },
		func(p *nutrition.Profile) { p.Age = 0 },
		func(p *nutrition.Profile) { p.ActivityFactor = 0 },
		func(p *nutrition.Profile) { p.Sex = "other" },
		func(p *nutrition.Profile) { p.Goal = "bulk" },
	}
	for i, mutate := range bad {
		p := maintainProfile()
		mutate(&p)
		if _, err := service.UpdateProfile(sqldb, u.ID, p); err == nil {
			t.Fatalf("case %d: expected invalid profile to fail", i)
		}
	}
}

func TestDaySummaryFallsBackToDefaults(t *testing.T) {
	sqldb := newTestDB(t)
	u := newTestUser(t, sqldb, "Alex")
	egg, _ := nutrition.LookupReference("egg")
	if _, err := service.LogFood(sqldb, service.LogFoodInput{UserID: u.ID, Source: nutrition.LocalSource(egg), Quantity: 2, Unit: "piece", LoggedAt: lunch}); err != nil {
		t.Fatalf("log egg: %v", err)
	}

	s, err := service.DaySummary(sqldb, u.ID, "2026-03-04")
	if err != nil {
		t.Fatalf("day summary: %v", err)
	}
	if s.HasProfile || s.Targets != nutrition.DefaultTargets || s.WaterGoalOz != nutrition.DefaultWaterGoalOz {
		t.Fatalf("expected default targets, got %+v", s)
	}
	if len(s.Entries) != 1 || s.Totals.Calories != 155 || s.Remaining.Calories != 1845 {
		t.Fatalf("unexpected totals %+v remaining %+v", s.Totals, s.Remaining)
	}
	if s.WeightReminder || s.LastWeightKg != nil {
		t.Fatalf("expected no reminder without weigh-ins, got %+v", s)
	}
}

func TestDaySummaryWithProfile(t *testing.T) {
	sqldb := newTestDB(t)
	u := newTestUser(t, sqldb, "Alex")
	if _, err := service.UpdateProfile(sqldb, u.ID, maintainProfile()); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	today := time.Now().Format(time.DateOnly)
	if _, err := service.AddWater(sqldb, service.AddWaterInput{UserID: u.ID, Amount: 20}); err != nil {
		t.Fatalf("add water: %v", err)
	}

	s, err := service.DaySummary(sqldb, u.ID, today)
	if err != nil {
		t.Fatalf("day summary: %v", err)
	}
	if !s.HasProfile || s.Targets.Calories != 1979 || s.Remaining.Protein != 148 {
		t.Fatalf("unexpected targets %+v remaining %+v", s.Targets, s.Remaining)
	}
	if s.WaterOz != 20 || s.WaterGoalOz != 93 {
		t.Fatalf("unexpected water %v/%d", s.WaterOz, s.WaterGoalOz)
	}
	if s.WeightReminder || s.LastWeightKg == nil || *s.LastWeightKg != 70 {
		t.Fatalf("expected the profile weigh-in to satisfy the reminder, got %+v", s)
	}

	if _, err := service.DaySummary(sqldb, u.ID, "yesterday"); err == nil {
		t.Fatalf("expected invalid date to fail")
	}
}
