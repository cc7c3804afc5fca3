package recipe

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a recipe or comment does not exist.
	ErrNotFound = errors.New("recipe not found")
	// ErrForbidden is returned when an account touches another author's data.
	ErrForbidden = errors.New("not the author")
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid recipe")
)

// Nutrition holds nutrient amounts; per 100 units on ingredients, per
// serving on recipes.
type Nutrition struct {
	Calories      float64 `json:"calories"`
	Fat           float64 `json:"fat"`
	Carbohydrates float64 `json:"carbohydrates"`
	Protein       float64 `json:"protein"`
	Fiber         float64 `json:"fiber"`
	Sugars        float64 `json:"sugars"`
	Sodium        float64 `json:"sodium"`
}

// Scale multiplies every nutrient by f.
func (n Nutrition) Scale(f float64) Nutrition {
	return Nutrition{
		Calories:      n.Calories * f,
		Fat:           n.Fat * f,
		Carbohydrates: n.Carbohydrates * f,
		Protein:       n.Protein * f,
		Fiber:         n.Fiber * f,
		Sugars:        n.Sugars * f,
		Sodium:        n.Sodium * f,
	}
}

// Add sums two nutrition records.
func (n Nutrition) Add(o Nutrition) Nutrition {
	return Nutrition{
		Calories:      n.Calories + o.Calories,
		Fat:           n.Fat + o.Fat,
		Carbohydrates: n.Carbohydrates + o.Carbohydrates,
		Protein:       n.Protein + o.Protein,
		Fiber:         n.Fiber + o.Fiber,
		Sugars:        n.Sugars + o.Sugars,
		Sodium:        n.Sodium + o.Sodium,
	}
}

// Ingredient is one ingredient line of a recipe.
type Ingredient struct {
	IngredientID int64     `json:"ingredient_id"`
	Name         string    `json:"name"`
	Amount       float64   `json:"amount"`
	Note         string    `json:"note,omitempty"`
	IsLiquid     bool      `json:"is_liquid"`
	Nutrition    Nutrition `json:"nutrition_info"`
}

// Direction is one step of a recipe.
type Direction struct {
	Step      int    `json:"step"`
	Direction string `json:"direction"`
	Image     string `json:"image,omitempty"`
}

// Recipe is a full recipe as stored.
type Recipe struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Rating       float64      `json:"rating"`
	Image        string       `json:"image"`
	TotalTime    int          `json:"total_time"`
	ActiveTime   int          `json:"active_time"`
	ServingSize  int          `json:"serving_size"`
	Introduction string       `json:"introduction"`
	AuthorNote   string       `json:"author_note"`
	IsPrivate    bool         `json:"is_private"`
	Author       string       `json:"author"`
	CreatedAt    time.Time    `json:"created_at"`
	Ingredients  []Ingredient `json:"ingredients"`
	Directions   []Direction  `json:"directions"`
	Occasions    []int64      `json:"occasions"`
}

// Card is the listing projection of a recipe.
type Card struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Rating      float64   `json:"rating"`
	Image       string    `json:"image"`
	TotalTime   int       `json:"total_time"`
	ServingSize int       `json:"serving_size"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
}

// Comment is a remark left on a recipe.
type Comment struct {
	ID        int64     `json:"id"`
	RecipeID  int64     `json:"recipe_id"`
	AccountID string    `json:"account_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Keyword is a search suggestion with how many recipes use it.
type Keyword struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// SearchFilter narrows Search. Zero values disable a criterion.
type SearchFilter struct {
	Text               string  `json:"text"`
	IncludeIngredients []int64 `json:"ingredient_ids"`
	ExcludeIngredients []int64 `json:"except_ingredient_ids"`
	Occasions          []int64 `json:"occasion_ids"`
	MaxTotalTime       int     `json:"max_total_time"`
	Page               int     `json:"page"`
	PageSize           int     `json:"page_size"`
}

// Validate checks a recipe before it is stored.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if r.ServingSize < 1 {
		return fmt.Errorf("%w: serving size must be at least 1", ErrInvalid)
	}
	if r.TotalTime < 0 || r.ActiveTime < 0 {
		return fmt.Errorf("%w: times must not be negative", ErrInvalid)
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("%w: at least one ingredient is required", ErrInvalid)
	}
	seen := make(map[int64]struct{}, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if ing.IngredientID <= 0 {
			return fmt.Errorf("%w: ingredient id is required", ErrInvalid)
		}
		if ing.Amount <= 0 {
			return fmt.Errorf("%w: amount of ingredient %d must be positive", ErrInvalid, ing.IngredientID)
		}
		if _, dup := seen[ing.IngredientID]; dup {
			return fmt.Errorf("%w: ingredient %d listed twice", ErrInvalid, ing.IngredientID)
		}
		seen[ing.IngredientID] = struct{}{}
	}
	return nil
}

// NutritionPerServing sums the ingredients' nutrition, scaled from the
// per-100-units reference to the listed amount, and divides by servings.
func NutritionPerServing(r Recipe) Nutrition {
	var total Nutrition
	for _, ing := range r.Ingredients {
		total = total.Add(ing.Nutrition.Scale(ing.Amount / 100))
	}
	servings := r.ServingSize
	if servings < 1 {
		servings = 1
	}
	return total.Scale(1 / float64(servings))
}

// Page normalises paging input into LIMIT/OFFSET.
func Page(page, pageSize int) (limit, offset int) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 12
	}
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}
