package model

import (
	"time"

	"github.com/saadjs/macrolog/internal/nutrition"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// StoredProfile is a saved profile together with the targets computed from it.
type StoredProfile struct {
	UserID      string            `json:"user_id"`
	Profile     nutrition.Profile `json:"profile"`
	Targets     nutrition.Targets `json:"targets"`
	WaterGoalOz int               `json:"water_goal_oz"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type WaterLog struct {
	ID       int64     `json:"id"`
	UserID   string    `json:"user_id"`
	AmountOz float64   `json:"amount_oz"`
	Date     string    `json:"date"`
	LoggedAt time.Time `json:"logged_at"`
}

type WeightLog struct {
	ID       int64     `json:"id"`
	UserID   string    `json:"user_id"`
	WeightKg float64   `json:"weight_kg"`
	Date     string    `json:"date"`
	LoggedAt time.Time `json:"logged_at"`
}

// LearnedProduct is a per-100g product remembered from an earlier scan.
type LearnedProduct struct {
	ID         int64                    `json:"id"`
	UserID     string                   `json:"user_id"`
	Name       string                   `json:"name"`
	Brand      string                   `json:"brand,omitempty"`
	Per100g    nutrition.NutrientRecord `json:"per_100g"`
	UsageCount int                      `json:"usage_count"`
	LastUsedAt *time.Time               `json:"last_used_at,omitempty"`
}

// DaySummary is the dashboard view of one day.
type DaySummary struct {
	UserID         string                   `json:"user_id"`
	Date           string                   `json:"date"`
	Entries        []nutrition.LoggedEntry  `json:"entries"`
	Totals         nutrition.NutrientRecord `json:"totals"`
	Targets        nutrition.Targets        `json:"targets"`
	Remaining      nutrition.Remaining      `json:"remaining"`
	HasProfile     bool                     `json:"has_profile"`
	WaterOz        float64                  `json:"water_oz"`
	WaterGoalOz    int                      `json:"water_goal_oz"`
	WeightReminder bool                     `json:"weight_reminder"`
	LastWeightKg   *float64                 `json:"last_weight_kg,omitempty"`
}
