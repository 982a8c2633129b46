package nutrition

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoggedEntry is one food log row. Nutrients are already scaled to the
// amount eaten.
type LoggedEntry struct {
	ID         int64          `json:"id"`
	UserID     string         `json:"user_id"`
	Name       string         `json:"name"`
	Brand      string         `json:"brand,omitempty"`
	SourceKind Kind           `json:"source_kind"`
	Quantity   float64        `json:"quantity"`
	Unit       string         `json:"unit"`
	Nutrients  NutrientRecord `json:"nutrients"`
	Date       string         `json:"date"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Aggregate sums every nutrient across entries. Sums are exact decimal
// additions, so the result does not depend on entry order.
func Aggregate(entries []LoggedEntry) NutrientRecord {
	sums := make([]decimal.Decimal, len(fields))
	for i := range entries {
		r := sanitize(entries[i].Nutrients)
		for j, f := range fields {
			sums[j] = sums[j].Add(decimal.NewFromFloat(*f.pointer(&r)))
		}
	}
	var out NutrientRecord
	for j, f := range fields {
		*f.pointer(&out) = sums[j].InexactFloat64()
	}
	return out
}

// Remaining is target minus intake for calories and macros. Values go
// negative once a target is exceeded.
type Remaining struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

func RemainingFor(t Targets, totals NutrientRecord) Remaining {
	sub := func(target int, eaten float64) float64 {
		return decimal.NewFromInt(int64(target)).Sub(decimal.NewFromFloat(eaten)).InexactFloat64()
	}
	return Remaining{
		Calories: sub(t.Calories, totals.Calories),
		Protein:  sub(t.Protein, totals.Protein),
		Carbs:    sub(t.Carbs, totals.Carbs),
		Fats:     sub(t.Fats, totals.Fats),
	}
}
