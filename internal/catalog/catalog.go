// Package catalog holds the shared reference data recipes are built from:
// occasions, ingredient types and ingredients.
package catalog

import (
	"errors"
	"time"

	"tasteal/internal/recipe"
)

var (
	// ErrNotFound is returned for unknown catalog entries.
	ErrNotFound = errors.New("catalog entry not found")
	// ErrInvalid wraps validation failures of catalog entries.
	ErrInvalid = errors.New("invalid catalog entry")
)

// Occasion is a festive period recipes can be tagged with. StartDay and
// EndDay are days of the year; a range with StartDay > EndDay wraps over the
// new year.
type Occasion struct {
	ID          int64  `json:"id" toml:"-"`
	Name        string `json:"name" toml:"name"`
	Description string `json:"description" toml:"description"`
	Image       string `json:"image" toml:"image"`
	StartDay    int    `json:"start_day" toml:"start_day"`
	EndDay      int    `json:"end_day" toml:"end_day"`
	IsLunar     bool   `json:"is_lunar" toml:"is_lunar"`
}

// Contains reports whether t falls inside the occasion.
func (o Occasion) Contains(t time.Time) bool {
	d := t.YearDay()
	if o.StartDay <= o.EndDay {
		return d >= o.StartDay && d <= o.EndDay
	}
	return d >= o.StartDay || d <= o.EndDay
}

// IngredientType groups ingredients in the pantry and the grocery list.
type IngredientType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Ingredient is a catalog ingredient with nutrition per 100 units.
type Ingredient struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Image     string           `json:"image"`
	TypeID    int64            `json:"type_id"`
	TypeName  string           `json:"type_name"`
	IsLiquid  bool             `json:"is_liquid"`
	Ratio     float64          `json:"ratio"`
	Nutrition recipe.Nutrition `json:"nutrition_info"`
}
