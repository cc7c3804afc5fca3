package recipe

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

const selectCards = `
	SELECT r.id, r.name, r.rating, r.image, r.total_time, r.serving_size, r.author, r.created_at
	FROM recipes r`

// Repository is a database-backed repository for recipes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Create validates and stores a recipe with its ingredients, directions and
// occasions in one transaction. Directions are renumbered from 1.
func (r *Repository) Create(ctx context.Context, rec *Recipe) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO recipes (name, search_name, image, total_time, active_time, serving_size,
			                     introduction, author_note, is_private, author, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			strings.TrimSpace(rec.Name), textutil.Normalize(rec.Name), rec.Image, rec.TotalTime, rec.ActiveTime,
			rec.ServingSize, rec.Introduction, rec.AuthorNote, database.BoolToInt(rec.IsPrivate),
			rec.Author, database.FormatTime(rec.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert recipe: %w", err)
		}
		if rec.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read recipe id: %w", err)
		}

		for _, ing := range rec.Ingredients {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount, note) VALUES (?, ?, ?, ?)`,
				rec.ID, ing.IngredientID, ing.Amount, ing.Note); err != nil {
				return fmt.Errorf("failed to insert ingredient %d: %w", ing.IngredientID, err)
			}
		}
		for i := range rec.Directions {
			rec.Directions[i].Step = i + 1
			d := rec.Directions[i]
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO recipe_directions (recipe_id, step, direction, image) VALUES (?, ?, ?, ?)`,
				rec.ID, d.Step, d.Direction, d.Image); err != nil {
				return fmt.Errorf("failed to insert direction %d: %w", d.Step, err)
			}
		}
		for _, occ := range rec.Occasions {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO recipe_occasions (recipe_id, occasion_id) VALUES (?, ?)`,
				rec.ID, occ); err != nil {
				return fmt.Errorf("failed to link occasion %d: %w", occ, err)
			}
		}
		return nil
	})
	if err != nil {
		rec.ID = 0
		return 0, err
	}
	return rec.ID, nil
}

// Get loads a full recipe.
func (r *Repository) Get(ctx context.Context, id int64) (*Recipe, error) {
	var (
		rec       Recipe
		private   int
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, rating, image, total_time, active_time, serving_size,
		       introduction, author_note, is_private, author, created_at
		FROM recipes WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Name, &rec.Rating, &rec.Image, &rec.TotalTime, &rec.ActiveTime, &rec.ServingSize,
			&rec.Introduction, &rec.AuthorNote, &private, &rec.Author, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}
	rec.IsPrivate = private != 0
	if rec.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}

	if rec.Ingredients, err = r.ingredients(ctx, id); err != nil {
		return nil, err
	}
	if rec.Directions, err = r.directions(ctx, id); err != nil {
		return nil, err
	}
	if rec.Occasions, err = r.occasions(ctx, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) ingredients(ctx context.Context, recipeID int64) ([]Ingredient, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.name, ri.amount, ri.note, i.is_liquid,
		       i.calories, i.fat, i.carbohydrates, i.protein, i.fiber, i.sugars, i.sodium
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = ?
		ORDER BY i.name`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients of recipe %d: %w", recipeID, err)
	}
	defer rows.Close()

	ings := []Ingredient{}
	for rows.Next() {
		var (
			ing    Ingredient
			liquid int
			n      = &ing.Nutrition
		)
		if err := rows.Scan(&ing.IngredientID, &ing.Name, &ing.Amount, &ing.Note, &liquid,
			&n.Calories, &n.Fat, &n.Carbohydrates, &n.Protein, &n.Fiber, &n.Sugars, &n.Sodium); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ing.IsLiquid = liquid != 0
		ings = append(ings, ing)
	}
	return ings, rows.Err()
}

func (r *Repository) directions(ctx context.Context, recipeID int64) ([]Direction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT step, direction, image FROM recipe_directions WHERE recipe_id = ? ORDER BY step`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list directions of recipe %d: %w", recipeID, err)
	}
	defer rows.Close()

	dirs := []Direction{}
	for rows.Next() {
		var d Direction
		if err := rows.Scan(&d.Step, &d.Direction, &d.Image); err != nil {
			return nil, fmt.Errorf("failed to scan direction: %w", err)
		}
		dirs = append(dirs, d)
	}
	return dirs, rows.Err()
}

func (r *Repository) occasions(ctx context.Context, recipeID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT occasion_id FROM recipe_occasions WHERE recipe_id = ? ORDER BY occasion_id`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list occasions of recipe %d: %w", recipeID, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan occasion: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// List returns one page of public recipes in id order.
func (r *Repository) List(ctx context.Context, page, pageSize int) ([]Card, error) {
	limit, offset := Page(page, pageSize)
	rows, err := r.db.QueryContext(ctx, selectCards+`
		WHERE r.is_private = 0 ORDER BY r.id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return scanCards(rows)
}

// ListNewest returns the most recently created public recipes.
func (r *Repository) ListNewest(ctx context.Context, limit int) ([]Card, error) {
	rows, err := r.db.QueryContext(ctx, selectCards+`
		WHERE r.is_private = 0 ORDER BY r.created_at DESC, r.id DESC LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list newest recipes: %w", err)
	}
	return scanCards(rows)
}

// ListTrending returns the best rated public recipes.
func (r *Repository) ListTrending(ctx context.Context, limit int) ([]Card, error) {
	rows, err := r.db.QueryContext(ctx, selectCards+`
		WHERE r.is_private = 0 ORDER BY r.rating DESC, r.id LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list trending recipes: %w", err)
	}
	return scanCards(rows)
}

// ListByAuthor returns an author's recipes. Private ones are included only
// when the author is asking.
func (r *Repository) ListByAuthor(ctx context.Context, author string, includePrivate bool) ([]Card, error) {
	q := selectCards + ` WHERE r.author = ?`
	if !includePrivate {
		q += ` AND r.is_private = 0`
	}
	rows, err := r.db.QueryContext(ctx, q+` ORDER BY r.created_at DESC, r.id DESC`, author)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes of %s: %w", author, err)
	}
	return scanCards(rows)
}

// Search returns public recipes matching every criterion set in f.
func (r *Repository) Search(ctx context.Context, f SearchFilter) ([]Card, error) {
	var (
		where = []string{"r.is_private = 0"}
		args  []any
	)
	if text := textutil.Normalize(f.Text); text != "" {
		where = append(where, "r.search_name LIKE ?")
		args = append(args, "%"+text+"%")
	}
	if f.MaxTotalTime > 0 {
		where = append(where, "r.total_time <= ?")
		args = append(args, f.MaxTotalTime)
	}
	if len(f.IncludeIngredients) > 0 {
		ph, ids := database.InArgs(f.IncludeIngredients)
		where = append(where, `(SELECT COUNT(DISTINCT ri.ingredient_id) FROM recipe_ingredients ri
			WHERE ri.recipe_id = r.id AND ri.ingredient_id IN (`+ph+`)) = ?`)
		args = append(append(args, ids...), countDistinct(f.IncludeIngredients))
	}
	if len(f.ExcludeIngredients) > 0 {
		ph, ids := database.InArgs(f.ExcludeIngredients)
		where = append(where, `NOT EXISTS (SELECT 1 FROM recipe_ingredients ri
			WHERE ri.recipe_id = r.id AND ri.ingredient_id IN (`+ph+`))`)
		args = append(args, ids...)
	}
	if len(f.Occasions) > 0 {
		ph, ids := database.InArgs(f.Occasions)
		where = append(where, `EXISTS (SELECT 1 FROM recipe_occasions ro
			WHERE ro.recipe_id = r.id AND ro.occasion_id IN (`+ph+`))`)
		args = append(args, ids...)
	}

	limit, offset := Page(f.Page, f.PageSize)
	q := selectCards + " WHERE " + strings.Join(where, " AND ") + " ORDER BY r.rating DESC, r.id LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	return scanCards(rows)
}

// Delete removes a recipe owned by author.
func (r *Repository) Delete(ctx context.Context, id int64, author string) error {
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT author FROM recipes WHERE id = ?`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get recipe %d: %w", id, err)
	}
	if owner != author {
		return ErrForbidden
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	return nil
}

// Keywords returns the ingredient names used by the most public recipes.
func (r *Repository) Keywords(ctx context.Context, limit int) ([]Keyword, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.name, COUNT(*) AS uses
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		JOIN recipes r ON r.id = ri.recipe_id
		WHERE r.is_private = 0
		GROUP BY i.id
		ORDER BY uses DESC, i.name
		LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	defer rows.Close()

	kws := []Keyword{}
	for rows.Next() {
		var k Keyword
		if err := rows.Scan(&k.Word, &k.Count); err != nil {
			return nil, fmt.Errorf("failed to scan keyword: %w", err)
		}
		kws = append(kws, k)
	}
	return kws, rows.Err()
}

// Rate records an account's rating and returns the recipe's new average.
func (r *Repository) Rate(ctx context.Context, recipeID int64, accountID string, rating float64) (float64, error) {
	if rating < 1 || rating > 5 {
		return 0, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalid)
	}

	var avg float64
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes WHERE id = ?`, recipeID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check recipe %d: %w", recipeID, err)
		}
		if exists == 0 {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ratings (recipe_id, account_id, rating) VALUES (?, ?, ?)
			ON CONFLICT (recipe_id, account_id) DO UPDATE SET rating = excluded.rating`,
			recipeID, accountID, rating); err != nil {
			return fmt.Errorf("failed to save rating: %w", err)
		}
		if err := tx.QueryRowContext(ctx,
			`SELECT AVG(rating) FROM ratings WHERE recipe_id = ?`, recipeID).Scan(&avg); err != nil {
			return fmt.Errorf("failed to average ratings: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE recipes SET rating = ? WHERE id = ?`, avg, recipeID); err != nil {
			return fmt.Errorf("failed to update rating of recipe %d: %w", recipeID, err)
		}
		return nil
	})
	return avg, err
}

// AddComment stores a comment on a recipe.
func (r *Repository) AddComment(ctx context.Context, c *Comment) error {
	c.Comment = strings.TrimSpace(c.Comment)
	if c.Comment == "" {
		return fmt.Errorf("%w: comment must not be empty", ErrInvalid)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (recipe_id, account_id, comment, created_at) VALUES (?, ?, ?, ?)`,
		c.RecipeID, c.AccountID, c.Comment, database.FormatTime(c.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return ErrNotFound
		}
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

// ListComments returns a recipe's comments, oldest first.
func (r *Repository) ListComments(ctx context.Context, recipeID int64) ([]Comment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, recipe_id, account_id, comment, created_at
		FROM comments WHERE recipe_id = ? ORDER BY created_at, id`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of recipe %d: %w", recipeID, err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var (
			c       Comment
			created string
		)
		if err := rows.Scan(&c.ID, &c.RecipeID, &c.AccountID, &c.Comment, &created); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		if c.CreatedAt, err = database.ParseTime(created); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// DeleteComment removes a comment written by accountID.
func (r *Repository) DeleteComment(ctx context.Context, id int64, accountID string) error {
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT account_id FROM comments WHERE id = ?`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get comment %d: %w", id, err)
	}
	if owner != accountID {
		return ErrForbidden
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", id, err)
	}
	return nil
}

func scanCards(rows *sql.Rows) ([]Card, error) {
	defer rows.Close()

	cards := []Card{}
	for rows.Next() {
		var (
			c       Card
			created string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Rating, &c.Image, &c.TotalTime, &c.ServingSize, &c.Author, &created); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		t, err := database.ParseTime(created)
		if err != nil {
			return nil, err
		}
		c.CreatedAt = t
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}
	return cards, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 10
	}
	return limit
}

func countDistinct(ids []int64) int {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}
