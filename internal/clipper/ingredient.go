package clipper

import (
	"regexp"
	"strconv"
	"strings"
)

// IngredientLine is a free-text ingredient split into quantity and name.
type IngredientLine struct {
	Amount float64 // grams or millilitres; 0 when the line has no quantity
	Unit   string
	Name   string
}

var ingredientLine = regexp.MustCompile(`^\s*(\d+(?:[.,]\d+)?(?:/\d+)?)\s*([a-zA-Z]+\b)?\.?\s*(?:of\s+)?(.*)$`)

// unitGrams maps kitchen units to grams (or ml for liquids).
var unitGrams = map[string]float64{
	"g": 1, "gr": 1, "gram": 1, "grams": 1,
	"kg": 1000,
	"ml": 1,
	"l":  1000, "litre": 1000, "liter": 1000,
	"tbsp": 15, "tablespoon": 15, "tablespoons": 15,
	"tsp": 5, "teaspoon": 5, "teaspoons": 5,
	"cup": 240, "cups": 240,
}

// ParseIngredientLine reads lines such as "200 g rice" or "1/2 cup milk".
// Quantities without a known unit are kept as counts.
func ParseIngredientLine(line string) IngredientLine {
	line = strings.TrimSpace(line)
	m := ingredientLine.FindStringSubmatch(line)
	if m == nil {
		return IngredientLine{Name: line}
	}
	qty := parseQuantity(m[1])
	unit := strings.ToLower(m[2])
	name := strings.TrimSpace(m[3])

	factor, known := unitGrams[unit]
	if !known {
		// not a unit, just the first word of the name
		if m[2] != "" {
			name = strings.TrimSpace(m[2] + " " + name)
		}
		return IngredientLine{Amount: qty, Name: name}
	}
	return IngredientLine{Amount: qty * factor, Unit: unit, Name: name}
}

func parseQuantity(s string) float64 {
	s = strings.ReplaceAll(s, ",", ".")
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0
		}
		return n / d
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
