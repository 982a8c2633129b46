package nutrition

import "github.com/shopspring/decimal"

// UnitMode is how a logged quantity is expressed.
type UnitMode string

const (
	UnitGrams UnitMode = "grams"
	UnitPiece UnitMode = "piece"
)

// Scale sizes a per-100g record to the logged amount. In piece mode the
// quantity is multiplied by pieceWeightGrams; when the piece weight is unknown
// the record is taken as already sized and only rounded. A non-positive or
// non-finite quantity yields the zero record.
func Scale(r NutrientRecord, quantity float64, mode UnitMode, pieceWeightGrams float64) NutrientRecord {
	if !finite(quantity) || quantity <= 0 {
		return NutrientRecord{}
	}
	if mode == UnitPiece {
		if !finite(pieceWeightGrams) || pieceWeightGrams <= 0 {
			return scaleBy(r, decimal.NewFromInt(1))
		}
		grams := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(pieceWeightGrams))
		return scaleBy(r, grams.Div(decimal.NewFromInt(100)))
	}
	return scaleBy(r, decimal.NewFromFloat(quantity).Div(decimal.NewFromInt(100)))
}

// ScaleServings sizes a per-serving record by a number of servings.
func ScaleServings(r NutrientRecord, servings float64) NutrientRecord {
	if !finite(servings) || servings <= 0 {
		return NutrientRecord{}
	}
	return scaleBy(r, decimal.NewFromFloat(servings))
}

func scaleBy(r NutrientRecord, ratio decimal.Decimal) NutrientRecord {
	r = sanitize(r)
	var out NutrientRecord
	for _, f := range fields {
		v := decimal.NewFromFloat(*f.pointer(&r)).Mul(ratio).Round(f.places)
		*f.pointer(&out) = v.InexactFloat64()
	}
	return out
}

// Round applies the display precision of each field without scaling.
func Round(r NutrientRecord) NutrientRecord {
	return scaleBy(r, decimal.NewFromInt(1))
}
