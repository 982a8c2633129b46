package nutrition

const QuickLogBrand = "Quick Log"

// Staple is a one-tap food. Its values describe one serving as eaten.
type Staple struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Nutrients NutrientRecord `json:"nutrients"`
}

var staples = []Staple{
	{ID: "coffee", Name: "Coffee", Nutrients: NutrientRecord{Calories: 5}},
	{ID: "egg", Name: "1 Egg", Nutrients: NutrientRecord{Calories: 78, Protein: 6, Carbs: 0.6, Fats: 5}},
	{ID: "shake", Name: "Protein Shake", Nutrients: NutrientRecord{Calories: 150, Protein: 30, Carbs: 3, Fats: 2}},
	{ID: "banana", Name: "Banana", Nutrients: NutrientRecord{Calories: 105, Protein: 1, Carbs: 27, Fats: 0.4}},
	{ID: "oats", Name: "Oatmeal", Nutrients: NutrientRecord{Calories: 150, Protein: 5, Carbs: 27, Fats: 3}},
	{ID: "toast", Name: "Toast", Nutrients: NutrientRecord{Calories: 80, Protein: 3, Carbs: 15, Fats: 1}},
}

func Staples() []Staple {
	out := make([]Staple, len(staples))
	copy(out, staples)
	return out
}

func StapleByID(id string) (Staple, bool) {
	for _, s := range staples {
		if s.ID == NormalizeTerm(id) {
			return s, true
		}
	}
	return Staple{}, false
}

// Source returns the staple as a manual source, already sized.
func (s Staple) Source() RawSource {
	return ManualSource(s.Name, QuickLogBrand, s.Nutrients.Map())
}
