package nutrition

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	ScannedLabelName  = "Scanned Label"
	ScannedLabelBrand = "Camera OCR"
)

var labelNumber = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// labelKeywords maps a nutriment key to the words that identify its line.
// Sodium is printed in mg on labels and stays that way.
var labelKeywords = []struct {
	key      string
	keywords []string
}{
	{"energy-kcal_100g", []string{"calories", "energy", "kcal"}},
	{"proteins_100g", []string{"protein"}},
	{"carbohydrates_100g", []string{"carbohydrate", "total carb", "carbs"}},
	{"fat_100g", []string{"total fat", "fat", "lipids"}},
	{"fiber_100g", []string{"fiber", "dietary fiber"}},
	{"sodium_100g", []string{"sodium"}},
	{"sugars_100g", []string{"sugars", "total sugars"}},
	{"calcium_100g", []string{"calcium"}},
	{"iron_100g", []string{"iron"}},
}

// ParseLabelText reads decoded label text. For each nutrient the first line
// mentioning one of its keywords supplies the first number on that line.
func ParseLabelText(text string) RawSource {
	lines := strings.Split(strings.ToLower(text), "\n")
	nutriments := make(map[string]any, len(labelKeywords))
	for _, k := range labelKeywords {
		nutriments[k.key] = firstNumber(lines, k.keywords)
	}
	return OCRSource(ScannedLabelName, ScannedLabelBrand, nutriments)
}

func firstNumber(lines []string, keywords []string) float64 {
	for _, line := range lines {
		for _, kw := range keywords {
			if !strings.Contains(line, kw) {
				continue
			}
			m := labelNumber.FindString(line)
			if m == "" {
				return 0
			}
			v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
			if err != nil {
				return 0
			}
			return v
		}
	}
	return 0
}
