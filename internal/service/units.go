package service

import (
	"math"
	"strings"

	"github.com/saadjs/macrolog/internal/nutrition"
)

type unitKind string

const (
	unitKindMass   unitKind = "mass"
	unitKindVolume unitKind = "volume"
	unitKindPiece  unitKind = "piece"
)

type unitDef struct {
	kind       unitKind
	toBaseUnit float64
}

var unitTable = map[string]unitDef{
	// mass (base = g)
	"mg":  {kind: unitKindMass, toBaseUnit: 0.001},
	"g":   {kind: unitKindMass, toBaseUnit: 1},
	"kg":  {kind: unitKindMass, toBaseUnit: 1000},
	"oz":  {kind: unitKindMass, toBaseUnit: 28.349523125},
	"lb":  {kind: unitKindMass, toBaseUnit: 453.59237},
	"lbs": {kind: unitKindMass, toBaseUnit: 453.59237},

	// volume (base = ml), for water
	"ml":    {kind: unitKindVolume, toBaseUnit: 1},
	"l":     {kind: unitKindVolume, toBaseUnit: 1000},
	"cup":   {kind: unitKindVolume, toBaseUnit: 236.5882365},
	"fl-oz": {kind: unitKindVolume, toBaseUnit: 29.5735295625},

	// counted units; the multiplier is the piece weight of the food
	"pc":      {kind: unitKindPiece, toBaseUnit: 1},
	"piece":   {kind: unitKindPiece, toBaseUnit: 1},
	"serving": {kind: unitKindPiece, toBaseUnit: 1},
}

var unitAliases = map[string]string{
	"gram":     "g",
	"grams":    "g",
	"pcs":      "pc",
	"pieces":   "piece",
	"servings": "serving",
}

func normalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if alias, ok := unitAliases[u]; ok {
		return alias
	}
	return u
}

// resolveQuantity maps a logged amount to the scaler's mode. Mass units are
// converted to grams; counted units keep the amount as a piece count.
func resolveQuantity(amount float64, unit string) (float64, nutrition.UnitMode, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, "", invalidf("quantity must be > 0")
	}
	u := normalizeUnit(unit)
	if u == "" {
		u = "g"
	}
	def, ok := unitTable[u]
	if !ok {
		return 0, "", invalidf("unsupported unit %q", unit)
	}
	switch def.kind {
	case unitKindMass:
		return amount * def.toBaseUnit, nutrition.UnitGrams, nil
	case unitKindPiece:
		return amount, nutrition.UnitPiece, nil
	default:
		return 0, "", invalidf("unit %q is a volume; log food by mass or piece", unit)
	}
}

// toFluidOunces converts a drink amount. Bare "oz" means fluid ounces here.
func toFluidOunces(amount float64, unit string) (float64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, invalidf("water amount must be > 0")
	}
	u := normalizeUnit(unit)
	if u == "" || u == "oz" {
		u = "fl-oz"
	}
	def, ok := unitTable[u]
	if !ok || def.kind != unitKindVolume {
		return 0, invalidf("invalid water unit %q (use oz, ml, l or cup)", unit)
	}
	return amount * def.toBaseUnit / unitTable["fl-oz"].toBaseUnit, nil
}

func convertWeightToKg(value float64, unit string) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0, invalidf("weight must be > 0")
	}
	switch normalizeUnit(unit) {
	case "", "kg":
		return value, nil
	case "lb", "lbs":
		return nutrition.LbsToKg(value), nil
	default:
		return 0, invalidf("invalid weight unit %q (use kg or lb)", unit)
	}
}
