package nutrition

import "math"

// NutrientRecord is the canonical nutrient set. Energy is kcal, macros are
// grams, minerals are milligrams. Vitamins keep whatever unit the source used.
type NutrientRecord struct {
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fats      float64 `json:"fats"`
	Fiber     float64 `json:"fiber"`
	Sugar     float64 `json:"sugar"`
	Sodium    float64 `json:"sodium"`
	Potassium float64 `json:"potassium"`
	Calcium   float64 `json:"calcium"`
	Iron      float64 `json:"iron"`
	Magnesium float64 `json:"magnesium"`
	Zinc      float64 `json:"zinc"`
	VitA      float64 `json:"vitA"`
	VitC      float64 `json:"vitC"`
	VitD      float64 `json:"vitD"`
	VitB12    float64 `json:"vitB12"`
}

type field struct {
	name    string
	keys    []string
	places  int32
	pointer func(r *NutrientRecord) *float64
}

// fields drives normalization, scaling and summing. keys are source key stems
// tried in order; the canonical name is always the last resort.
var fields = []field{
	{name: "calories", keys: []string{"energy-kcal", "calories"}, places: 0, pointer: func(r *NutrientRecord) *float64 { return &r.Calories }},
	{name: "protein", keys: []string{"proteins", "protein"}, places: 1, pointer: func(r *NutrientRecord) *float64 { return &r.Protein }},
	{name: "carbs", keys: []string{"carbohydrates", "carbs"}, places: 1, pointer: func(r *NutrientRecord) *float64 { return &r.Carbs }},
	{name: "fats", keys: []string{"fat", "fats"}, places: 1, pointer: func(r *NutrientRecord) *float64 { return &r.Fats }},
	{name: "fiber", keys: []string{"fiber"}, places: 1, pointer: func(r *NutrientRecord) *float64 { return &r.Fiber }},
	{name: "sugar", keys: []string{"sugars", "sugar"}, places: 1, pointer: func(r *NutrientRecord) *float64 { return &r.Sugar }},
	{name: "sodium", keys: []string{"sodium"}, places: 1, pointer: func(r *NutrientRecord) *float64 { return &r.Sodium }},
	{name: "potassium", keys: []string{"potassium"}, places: 1, pointer: func(r *NutrientRecord) *float64 { return &r.Potassium }},
	{name: "calcium", keys: []string{"calcium"}, places: 1, pointer: func(r *NutrientRecord) *float64 { return &r.Calcium }},
	{name: "iron", keys: []string{"iron"}, places: 2, pointer: func(r *NutrientRecord) *float64 { return &r.Iron }},
	{name: "magnesium", keys: []string{"magnesium"}, places: 1, pointer: func(r *NutrientRecord) *float64 { return &r.Magnesium }},
	{name: "zinc", keys: []string{"zinc"}, places: 2, pointer: func(r *NutrientRecord) *float64 { return &r.Zinc }},
	{name: "vitA", keys: []string{"vitamin-a"}, places: 2, pointer: func(r *NutrientRecord) *float64 { return &r.VitA }},
	{name: "vitC", keys: []string{"vitamin-c"}, places: 2, pointer: func(r *NutrientRecord) *float64 { return &r.VitC }},
	{name: "vitD", keys: []string{"vitamin-d"}, places: 2, pointer: func(r *NutrientRecord) *float64 { return &r.VitD }},
	{name: "vitB12", keys: []string{"vitamin-b12"}, places: 2, pointer: func(r *NutrientRecord) *float64 { return &r.VitB12 }},
}

// Map returns the record keyed by canonical field names. Sources built from
// it resolve through the bare-key fallback of Normalize.
func (r NutrientRecord) Map() map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.name] = *f.pointer(&r)
	}
	return out
}

// IsZero reports whether every field is zero.
func (r NutrientRecord) IsZero() bool {
	return r == NutrientRecord{}
}

// sanitize forces every field to a finite, non-negative value.
func sanitize(r NutrientRecord) NutrientRecord {
	for _, f := range fields {
		p := f.pointer(&r)
		if !finite(*p) || *p < 0 {
			*p = 0
		}
	}
	return r
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
