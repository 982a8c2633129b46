package service

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/saadjs/macrolog/internal/nutrition"
)

// nowFunc is swapped in tests that depend on the wall clock.
var nowFunc = time.Now

func validateNonNegativeFloat(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return invalidf("%s must be a finite number", name)
	}
	if value < 0 {
		return invalidf("%s must be >= 0", name)
	}
	return nil
}

func validatePositiveFloat(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return invalidf("%s must be > 0", name)
	}
	return nil
}

// ErrNotFound marks lookups that matched nothing.
var ErrNotFound = errors.New("not found")

// ErrInvalid marks input the caller has to correct.
var ErrInvalid = errors.New("invalid input")

// ErrUpstream marks failures of the remote food database.
var ErrUpstream = errors.New("food database unavailable")

type inputError struct{ msg string }

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Unwrap() error { return ErrInvalid }

// invalidf builds an error that matches ErrInvalid and reads as its message.
func invalidf(format string, args ...any) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return invalidf("user id is required")
	}
	return nil
}

// parseDate validates a YYYY-MM-DD date and returns it unchanged.
func parseDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if _, err := time.ParseInLocation(time.DateOnly, value, time.Local); err != nil {
		return "", invalidf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return value, nil
}

// formatStamp stores instants as UTC RFC3339 so text comparison orders them.
func formatStamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseStamp(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t.Local(), nil
}

// nutrientColumns lists the stored nutrient columns in NutrientRecord field
// order. entries and learned_products share them.
const nutrientColumns = `calories, protein_g, carbs_g, fat_g, fiber_g, sugar_g, sodium_mg, potassium_mg, calcium_mg, iron_mg, magnesium_mg, zinc_mg, vitamin_a, vitamin_c, vitamin_d, vitamin_b12`

const nutrientPlaceholders = `?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?`

const nutrientAssignments = `calories = ?, protein_g = ?, carbs_g = ?, fat_g = ?, fiber_g = ?, sugar_g = ?, sodium_mg = ?, potassium_mg = ?, calcium_mg = ?, iron_mg = ?, magnesium_mg = ?, zinc_mg = ?, vitamin_a = ?, vitamin_c = ?, vitamin_d = ?, vitamin_b12 = ?`

func nutrientArgs(r nutrition.NutrientRecord) []any {
	return []any{r.Calories, r.Protein, r.Carbs, r.Fats, r.Fiber, r.Sugar, r.Sodium, r.Potassium, r.Calcium, r.Iron, r.Magnesium, r.Zinc, r.VitA, r.VitC, r.VitD, r.VitB12}
}

func nutrientDest(r *nutrition.NutrientRecord) []any {
	return []any{&r.Calories, &r.Protein, &r.Carbs, &r.Fats, &r.Fiber, &r.Sugar, &r.Sodium, &r.Potassium, &r.Calcium, &r.Iron, &r.Magnesium, &r.Zinc, &r.VitA, &r.VitC, &r.VitD, &r.VitB12}
}

func validateNutrients(r nutrition.NutrientRecord) error {
	names := []string{"calories", "protein", "carbs", "fats", "fiber", "sugar", "sodium", "potassium", "calcium", "iron", "magnesium", "zinc", "vitamin A", "vitamin C", "vitamin D", "vitamin B12"}
	for i, v := range nutrientArgs(r) {
		if err := validateNonNegativeFloat(names[i], v.(float64)); err != nil {
			return err
		}
	}
	return nil
}
