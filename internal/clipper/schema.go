package clipper

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fromJSONLD returns the first schema.org Recipe found in the document's
// JSON-LD blocks, or nil.
func fromJSONLD(doc *goquery.Document) *Draft {
	var found *Draft
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		if obj := findRecipe(data); obj != nil {
			found = draftFromSchema(obj)
			return false
		}
		return true
	})
	return found
}

func findRecipe(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if r := findRecipe(item); r != nil {
				return r
			}
		}
	case map[string]any:
		if isRecipeType(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			return findRecipe(graph)
		}
	}
	return nil
}

func isRecipeType(v any) bool {
	for _, s := range stringsOf(v) {
		if s == "Recipe" {
			return true
		}
	}
	return false
}

func draftFromSchema(obj map[string]any) *Draft {
	d := &Draft{
		Name:         strings.TrimSpace(firstString(obj["name"])),
		Introduction: strings.TrimSpace(firstString(obj["description"])),
		Image:        imageURL(obj["image"]),
		ActiveTime:   ParseISODuration(firstString(obj["prepTime"])),
		ServingSize:  parseYield(obj["recipeYield"]),
		Ingredients:  stringsOf(obj["recipeIngredient"]),
		Directions:   instructions(obj["recipeInstructions"]),
	}
	d.TotalTime = ParseISODuration(firstString(obj["totalTime"]))
	if d.TotalTime == 0 {
		d.TotalTime = d.ActiveTime + ParseISODuration(firstString(obj["cookTime"]))
	}
	return d
}

// stringsOf flattens a string or an array of strings.
func stringsOf(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, stringsOf(item)...)
		}
		return out
	}
	return nil
}

func firstString(v any) string {
	if s := stringsOf(v); len(s) > 0 {
		return s[0]
	}
	return ""
}

func imageURL(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if u := imageURL(item); u != "" {
				return u
			}
		}
	case map[string]any:
		return firstString(t["url"])
	}
	return ""
}

// instructions accepts plain text, a list of strings, HowToStep objects and
// HowToSection objects wrapping steps.
func instructions(v any) []string {
	switch t := v.(type) {
	case string:
		var out []string
		for _, line := range strings.Split(t, "\n") {
			if s := strings.TrimSpace(line); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, instructions(item)...)
		}
		return out
	case map[string]any:
		if items, ok := t["itemListElement"]; ok {
			return instructions(items)
		}
		if text := strings.TrimSpace(firstString(t["text"])); text != "" {
			return []string{text}
		}
		if name := strings.TrimSpace(firstString(t["name"])); name != "" {
			return []string{name}
		}
	}
	return nil
}

var firstNumber = regexp.MustCompile(`\d+`)

func parseYield(v any) int {
	switch t := v.(type) {
	case float64:
		if t >= 1 {
			return int(t)
		}
	case string:
		if m := firstNumber.FindString(t); m != "" {
			if n, err := strconv.Atoi(m); err == nil && n >= 1 {
				return n
			}
		}
	case []any:
		for _, item := range t {
			if n := parseYield(item); n > 1 {
				return n
			}
		}
	}
	return 1
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseISODuration converts an ISO-8601 duration such as "PT1H30M" into
// whole minutes. Unparseable input yields 0.
func ParseISODuration(s string) int {
	m := isoDuration.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0
	}
	num := func(i int) float64 {
		if m[i] == "" {
			return 0
		}
		f, _ := strconv.ParseFloat(m[i], 64)
		return f
	}
	return int(math.Round(num(1)*24*60 + num(2)*60 + num(3) + num(4)/60))
}
