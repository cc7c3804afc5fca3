package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasteal/internal/database"
	"tasteal/internal/textutil"
)

const selectIngredients = `
	SELECT i.id, i.name, i.image, i.type_id, t.name, i.is_liquid, i.ratio,
	       i.calories, i.fat, i.carbohydrates, i.protein, i.fiber, i.sugars, i.sodium
	FROM ingredients i
	JOIN ingredient_types t ON t.id = i.type_id`

// Repository is a database-backed repository for catalog data.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// ListOccasions returns every occasion ordered by start day.
func (r *Repository) ListOccasions(ctx context.Context) ([]Occasion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, image, start_day, end_day, is_lunar
		FROM occasions ORDER BY start_day, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list occasions: %w", err)
	}
	defer rows.Close()

	occasions := []Occasion{}
	for rows.Next() {
		var (
			o     Occasion
			lunar int
		)
		if err := rows.Scan(&o.ID, &o.Name, &o.Description, &o.Image, &o.StartDay, &o.EndDay, &lunar); err != nil {
			return nil, fmt.Errorf("failed to scan occasion: %w", err)
		}
		o.IsLunar = lunar != 0
		occasions = append(occasions, o)
	}
	return occasions, rows.Err()
}

// CurrentOccasions returns the occasions that contain t.
func (r *Repository) CurrentOccasions(ctx context.Context, t time.Time) ([]Occasion, error) {
	all, err := r.ListOccasions(ctx)
	if err != nil {
		return nil, err
	}
	current := []Occasion{}
	for _, o := range all {
		if o.Contains(t) {
			current = append(current, o)
		}
	}
	return current, nil
}

// UpsertOccasion creates or updates an occasion by name.
func (r *Repository) UpsertOccasion(ctx context.Context, o *Occasion) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO occasions (name, description, image, start_day, end_day, is_lunar)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			description = excluded.description, image = excluded.image,
			start_day = excluded.start_day, end_day = excluded.end_day, is_lunar = excluded.is_lunar
		RETURNING id`,
		o.Name, o.Description, o.Image, o.StartDay, o.EndDay, database.BoolToInt(o.IsLunar)).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("failed to save occasion %q: %w", o.Name, err)
	}
	return nil
}

// ListIngredientTypes returns every ingredient type by name.
func (r *Repository) ListIngredientTypes(ctx context.Context) ([]IngredientType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM ingredient_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredient types: %w", err)
	}
	defer rows.Close()

	types := []IngredientType{}
	for rows.Next() {
		var it IngredientType
		if err := rows.Scan(&it.ID, &it.Name); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient type: %w", err)
		}
		types = append(types, it)
	}
	return types, rows.Err()
}

// EnsureIngredientType returns the id of the named type, creating it if needed.
func (r *Repository) EnsureIngredientType(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: ingredient type name is required", ErrInvalid)
	}
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO ingredient_types (name) VALUES (?)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name
		RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save ingredient type %q: %w", name, err)
	}
	return id, nil
}

// ListIngredients returns ingredients whose name contains query, ignoring
// case and diacritics. A typeID of 0 matches every type.
func (r *Repository) ListIngredients(ctx context.Context, query string, typeID int64) ([]Ingredient, error) {
	var (
		where []string
		args  []any
	)
	if q := textutil.Normalize(query); q != "" {
		where = append(where, "i.search_name LIKE ?")
		args = append(args, "%"+q+"%")
	}
	if typeID > 0 {
		where = append(where, "i.type_id = ?")
		args = append(args, typeID)
	}
	q := selectIngredients
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	rows, err := r.db.QueryContext(ctx, q+" ORDER BY i.name", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	ings := []Ingredient{}
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		ings = append(ings, ing)
	}
	return ings, rows.Err()
}

// GetIngredient loads one ingredient.
func (r *Repository) GetIngredient(ctx context.Context, id int64) (Ingredient, error) {
	ing, err := scanIngredient(r.db.QueryRowContext(ctx, selectIngredients+` WHERE i.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Ingredient{}, ErrNotFound
	}
	return ing, err
}

// UpsertIngredient creates or updates an ingredient by name.
func (r *Repository) UpsertIngredient(ctx context.Context, ing *Ingredient) error {
	if strings.TrimSpace(ing.Name) == "" {
		return fmt.Errorf("%w: ingredient name is required", ErrInvalid)
	}
	if ing.TypeID <= 0 {
		return fmt.Errorf("%w: ingredient type is required", ErrInvalid)
	}
	if ing.Ratio == 0 {
		ing.Ratio = 1
	}
	n := ing.Nutrition
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO ingredients (name, search_name, image, type_id, is_liquid, ratio,
		                         calories, fat, carbohydrates, protein, fiber, sugars, sodium)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			search_name = excluded.search_name, image = excluded.image, type_id = excluded.type_id,
			is_liquid = excluded.is_liquid, ratio = excluded.ratio,
			calories = excluded.calories, fat = excluded.fat, carbohydrates = excluded.carbohydrates,
			protein = excluded.protein, fiber = excluded.fiber, sugars = excluded.sugars, sodium = excluded.sodium
		RETURNING id`,
		ing.Name, textutil.Normalize(ing.Name), ing.Image, ing.TypeID, database.BoolToInt(ing.IsLiquid), ing.Ratio,
		n.Calories, n.Fat, n.Carbohydrates, n.Protein, n.Fiber, n.Sugars, n.Sodium).Scan(&ing.ID)
	if err != nil {
		return fmt.Errorf("failed to save ingredient %q: %w", ing.Name, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIngredient(s scanner) (Ingredient, error) {
	var (
		ing    Ingredient
		liquid int
		n      = &ing.Nutrition
	)
	err := s.Scan(&ing.ID, &ing.Name, &ing.Image, &ing.TypeID, &ing.TypeName, &liquid, &ing.Ratio,
		&n.Calories, &n.Fat, &n.Carbohydrates, &n.Protein, &n.Fiber, &n.Sugars, &n.Sodium)
	if errors.Is(err, sql.ErrNoRows) {
		return Ingredient{}, err
	}
	if err != nil {
		return Ingredient{}, fmt.Errorf("failed to scan ingredient: %w", err)
	}
	ing.IsLiquid = liquid != 0
	return ing, nil
}
