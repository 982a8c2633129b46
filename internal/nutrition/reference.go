package nutrition

import (
	"sort"
	"strings"
)

func food(name string, calories, protein, carbs, fats, pieceWeight float64) StaticFoodEntry {
	return StaticFoodEntry{
		Name:             name,
		PieceWeightGrams: pieceWeight,
		Per100g:          NutrientRecord{Calories: calories, Protein: protein, Carbs: carbs, Fats: fats},
	}
}

// referenceFoods is the built-in table, per 100g with a typical piece weight.
var referenceFoods = []StaticFoodEntry{
	food("chicken breast", 165, 31, 0, 3.6, 174),
	food("ground beef (80/20)", 254, 17, 0, 20, 113),
	food("ground turkey", 189, 25, 0, 10, 113),
	food("egg", 155, 13, 1.1, 11, 50),
	food("egg white", 52, 11, 0.7, 0.2, 33),
	food("salmon", 208, 20, 0, 13, 150),
	food("tilapia", 128, 26, 0, 3, 150),
	food("bacon", 541, 37, 1.4, 42, 8),
	food("greek yogurt (plain)", 59, 10, 3.6, 0.4, 170),
	food("apple", 52, 0.3, 14, 0.2, 182),
	food("banana", 89, 1.1, 23, 0.3, 118),
	food("blueberries", 57, 0.7, 14, 0.3, 148),
	food("strawberries", 32, 0.7, 7.7, 0.3, 12),
	food("avocado", 160, 2, 9, 15, 200),
	food("orange", 47, 0.9, 12, 0.1, 131),
	food("broccoli", 34, 2.8, 7, 0.4, 91),
	food("spinach", 23, 2.9, 3.6, 0.4, 30),
	food("potato", 77, 2, 17, 0.1, 213),
	food("sweet potato", 86, 1.6, 20, 0.1, 130),
	food("carrot", 41, 0.9, 10, 0.2, 61),
	food("white rice (cooked)", 130, 2.7, 28, 0.3, 186),
	food("brown rice (cooked)", 111, 2.6, 23, 0.9, 195),
	food("oats (dry)", 389, 16.9, 66, 6.9, 40),
	food("bread (white)", 265, 9, 49, 3.2, 25),
	food("bread (whole wheat)", 247, 13, 41, 3.4, 28),
	food("pasta (cooked)", 158, 5.8, 31, 0.9, 140),
	food("tortilla (flour)", 297, 8, 50, 8, 45),
	food("peanut butter", 588, 25, 20, 50, 16),
	food("butter", 717, 0.9, 0.1, 81, 14),
	food("olive oil", 884, 0, 0, 100, 14),
	food("almonds", 579, 21, 22, 50, 1),
	food("cheese (cheddar)", 403, 25, 1.3, 33, 28),
}

var referenceIndex = func() map[string]StaticFoodEntry {
	idx := make(map[string]StaticFoodEntry, len(referenceFoods))
	for _, f := range referenceFoods {
		idx[f.Name] = f
	}
	return idx
}()

// LookupReference finds a built-in food by name, ignoring case.
func LookupReference(name string) (StaticFoodEntry, bool) {
	f, ok := referenceIndex[NormalizeTerm(name)]
	return f, ok
}

// SearchReference returns built-in foods matching term: prefix matches first,
// then substring matches, each group alphabetical.
func SearchReference(term string, limit int) []StaticFoodEntry {
	term = NormalizeTerm(term)
	if term == "" {
		return nil
	}
	var prefix, contains []StaticFoodEntry
	for _, f := range referenceFoods {
		switch {
		case strings.HasPrefix(f.Name, term):
			prefix = append(prefix, f)
		case strings.Contains(f.Name, term):
			contains = append(contains, f)
		}
	}
	byName := func(list []StaticFoodEntry) {
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}
	byName(prefix)
	byName(contains)
	out := append(prefix, contains...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ReferenceFoods returns a copy of the built-in table.
func ReferenceFoods() []StaticFoodEntry {
	out := make([]StaticFoodEntry, len(referenceFoods))
	copy(out, referenceFoods)
	return out
}
