// Package testutil holds fixtures shared by repository tests. It talks to the
// schema with raw SQL so domain packages can import it from their tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"tasteal/internal/database"
)

// OpenDB creates a migrated SQLite database inside t.TempDir().
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "tasteal.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db.SQL
}

// Nutrition is the per-100-units nutrition of a fixture ingredient.
type Nutrition struct {
	Calories, Fat, Carbohydrates, Protein float64
}

// InsertIngredientType creates an ingredient type and returns its id.
func InsertIngredientType(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO ingredient_types (name) VALUES (?)`, name)
	if err != nil {
		t.Fatalf("insert ingredient type: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// InsertIngredient creates an ingredient of the given type and returns its id.
func InsertIngredient(t *testing.T, db *sql.DB, name string, typeID int64, n Nutrition) int64 {
	t.Helper()
	res, err := db.Exec(`
		INSERT INTO ingredients (name, search_name, type_id, calories, fat, carbohydrates, protein)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, name, typeID, n.Calories, n.Fat, n.Carbohydrates, n.Protein)
	if err != nil {
		t.Fatalf("insert ingredient: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// RecipeIngredient is an ingredient line of a fixture recipe.
type RecipeIngredient struct {
	IngredientID int64
	Amount       float64
}

// InsertRecipe creates a recipe with the given ingredients and returns its id.
func InsertRecipe(t *testing.T, db *sql.DB, name, author string, servings int, ingredients ...RecipeIngredient) int64 {
	t.Helper()
	res, err := db.Exec(`
		INSERT INTO recipes (name, search_name, serving_size, author, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		name, name, servings, author, database.FormatTime(time.Now()))
	if err != nil {
		t.Fatalf("insert recipe: %v", err)
	}
	id, _ := res.LastInsertId()
	for _, ing := range ingredients {
		if _, err := db.Exec(`INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount) VALUES (?, ?, ?)`,
			id, ing.IngredientID, ing.Amount); err != nil {
			t.Fatalf("insert recipe ingredient: %v", err)
		}
	}
	return id
}

// InsertAccount creates an account row.
func InsertAccount(t *testing.T, db *sql.DB, uid, name string) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO accounts (uid, name, created_at) VALUES (?, ?, ?)`,
		uid, name, database.FormatTime(time.Now())); err != nil {
		t.Fatalf("insert account: %v", err)
	}
}

// InsertOccasion creates an occasion spanning the given days of the year.
func InsertOccasion(t *testing.T, db *sql.DB, name string, startDay, endDay int) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO occasions (name, start_day, end_day) VALUES (?, ?, ?)`, name, startDay, endDay)
	if err != nil {
		t.Fatalf("insert occasion: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// MakePrivate hides a recipe from every account but its author.
func MakePrivate(t *testing.T, db *sql.DB, recipeID int64) {
	t.Helper()
	if _, err := db.Exec(`UPDATE recipes SET is_private = 1 WHERE id = ?`, recipeID); err != nil {
		t.Fatalf("make recipe private: %v", err)
	}
}
