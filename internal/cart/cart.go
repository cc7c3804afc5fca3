// Package cart keeps the recipes an account intends to cook and the extra
// ingredients it wants to buy, and turns both into a grocery list.
package cart

import (
	"errors"
	"math"
	"sort"
)

var (
	// ErrNotFound is returned for cart entries that do not belong to the account.
	ErrNotFound = errors.New("cart item not found")
	// ErrInvalid wraps validation failures.
	ErrInvalid = errors.New("invalid cart item")
	// ErrRecipeNotFound is returned when the recipe does not exist or is
	// private to another account.
	ErrRecipeNotFound = errors.New("recipe not found")
)

// Cart is a recipe in an account's cart, cooked for ServingSize people.
type Cart struct {
	ID             int64  `json:"id"`
	AccountID      string `json:"account_id"`
	RecipeID       int64  `json:"recipe_id"`
	RecipeName     string `json:"recipe_name"`
	RecipeImage    string `json:"recipe_image"`
	RecipeServings int    `json:"recipe_serving_size"`
	ServingSize    int    `json:"serving_size"`
}

// PersonalItem is an ingredient added to the cart by hand.
type PersonalItem struct {
	ID           int64   `json:"id"`
	AccountID    string  `json:"account_id"`
	IngredientID int64   `json:"ingredient_id"`
	Name         string  `json:"name"`
	Amount       float64 `json:"amount"`
	IsBought     bool    `json:"is_bought"`
}

// Line is one ingredient requirement before aggregation.
type Line struct {
	IngredientID int64
	Name         string
	TypeName     string
	IsLiquid     bool
	Amount       float64
}

// GroceryRow is the aggregated need for one ingredient.
type GroceryRow struct {
	IngredientID int64   `json:"ingredient_id"`
	Name         string  `json:"name"`
	TypeName     string  `json:"type_name"`
	IsLiquid     bool    `json:"is_liquid"`
	Required     float64 `json:"required"`
	InPantry     float64 `json:"in_pantry"`
	ToBuy        float64 `json:"to_buy"`
}

// Unit is the measuring unit of the row's amounts.
func (g GroceryRow) Unit() string {
	if g.IsLiquid {
		return "ml"
	}
	return "g"
}

// ScaleAmount converts an amount written for recipeServings into one for
// servings.
func ScaleAmount(amount float64, recipeServings, servings int) float64 {
	if recipeServings < 1 {
		recipeServings = 1
	}
	return amount * float64(servings) / float64(recipeServings)
}

// BuildGroceryList merges lines per ingredient and subtracts what the pantry
// already holds. Rows are ordered by type, then name.
func BuildGroceryList(lines []Line, pantry map[int64]float64) []GroceryRow {
	byID := make(map[int64]*GroceryRow)
	var order []int64
	for _, l := range lines {
		row, ok := byID[l.IngredientID]
		if !ok {
			row = &GroceryRow{IngredientID: l.IngredientID, Name: l.Name, TypeName: l.TypeName, IsLiquid: l.IsLiquid}
			byID[l.IngredientID] = row
			order = append(order, l.IngredientID)
		}
		row.Required += l.Amount
	}

	rows := make([]GroceryRow, 0, len(order))
	for _, id := range order {
		row := byID[id]
		row.Required = round2(row.Required)
		row.InPantry = pantry[id]
		row.ToBuy = round2(math.Max(0, row.Required-row.InPantry))
		rows = append(rows, *row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TypeName != rows[j].TypeName {
			return rows[i].TypeName < rows[j].TypeName
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
