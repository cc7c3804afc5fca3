package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasteal/internal/database"
)

// Repository handles persistence of carts and personal cart items.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new cart repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// ListByAccount returns the account's carts with their recipe data.
func (r *Repository) ListByAccount(ctx context.Context, accountID string) ([]Cart, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.account_id, c.recipe_id, r.name, r.image, r.serving_size, c.serving_size
		FROM carts c
		JOIN recipes r ON r.id = c.recipe_id
		WHERE c.account_id = ?
		ORDER BY c.id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list carts: %w", err)
	}
	defer rows.Close()

	carts := []Cart{}
	for rows.Next() {
		var c Cart
		if err := rows.Scan(&c.ID, &c.AccountID, &c.RecipeID, &c.RecipeName, &c.RecipeImage,
			&c.RecipeServings, &c.ServingSize); err != nil {
			return nil, fmt.Errorf("failed to scan cart: %w", err)
		}
		carts = append(carts, c)
	}
	return carts, rows.Err()
}

// Add puts a recipe in the cart, or changes its serving size when it is
// already there. Private recipes of other accounts are reported as
// ErrRecipeNotFound.
func (r *Repository) Add(ctx context.Context, accountID string, recipeID int64, servingSize int) (int64, error) {
	if servingSize < 1 {
		return 0, fmt.Errorf("%w: serving size must be at least 1", ErrInvalid)
	}
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO carts (account_id, recipe_id, serving_size)
		SELECT ?, id, ? FROM recipes WHERE id = ? AND (is_private = 0 OR author = ?)
		ON CONFLICT (account_id, recipe_id) DO UPDATE SET serving_size = excluded.serving_size
		RETURNING id`, accountID, servingSize, recipeID, accountID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrRecipeNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to add recipe %d to cart: %w", recipeID, err)
	}
	return id, nil
}

// UpdateServingSize changes how many people a cart entry is cooked for.
func (r *Repository) UpdateServingSize(ctx context.Context, accountID string, id int64, servingSize int) error {
	if servingSize < 1 {
		return fmt.Errorf("%w: serving size must be at least 1", ErrInvalid)
	}
	return r.execOne(ctx, `UPDATE carts SET serving_size = ? WHERE id = ? AND account_id = ?`,
		servingSize, id, accountID)
}

// Delete removes one cart entry.
func (r *Repository) Delete(ctx context.Context, accountID string, id int64) error {
	return r.execOne(ctx, `DELETE FROM carts WHERE id = ? AND account_id = ?`, id, accountID)
}

// DeleteAll empties the account's cart, personal items included.
func (r *Repository) DeleteAll(ctx context.Context, accountID string) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE account_id = ?`, accountID); err != nil {
			return fmt.Errorf("failed to clear carts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM personal_cart_items WHERE account_id = ?`, accountID); err != nil {
			return fmt.Errorf("failed to clear personal cart items: %w", err)
		}
		return nil
	})
}

// ListPersonal returns the account's hand-added items.
func (r *Repository) ListPersonal(ctx context.Context, accountID string) ([]PersonalItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.account_id, p.ingredient_id, i.name, p.amount, p.is_bought
		FROM personal_cart_items p
		JOIN ingredients i ON i.id = p.ingredient_id
		WHERE p.account_id = ?
		ORDER BY p.id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list personal cart items: %w", err)
	}
	defer rows.Close()

	items := []PersonalItem{}
	for rows.Next() {
		var (
			it     PersonalItem
			bought int
		)
		if err := rows.Scan(&it.ID, &it.AccountID, &it.IngredientID, &it.Name, &it.Amount, &bought); err != nil {
			return nil, fmt.Errorf("failed to scan personal cart item: %w", err)
		}
		it.IsBought = bought != 0
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddPersonal stores a hand-added item and sets its id.
func (r *Repository) AddPersonal(ctx context.Context, it *PersonalItem) error {
	if it.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalid)
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO personal_cart_items (account_id, ingredient_id, amount, is_bought) VALUES (?, ?, ?, ?)`,
		it.AccountID, it.IngredientID, it.Amount, database.BoolToInt(it.IsBought))
	if err != nil {
		return fmt.Errorf("failed to add personal cart item: %w", err)
	}
	it.ID, err = res.LastInsertId()
	return err
}

// UpdatePersonal changes the amount and bought flag of a hand-added item.
func (r *Repository) UpdatePersonal(ctx context.Context, accountID string, id int64, amount float64, bought bool) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalid)
	}
	return r.execOne(ctx, `UPDATE personal_cart_items SET amount = ?, is_bought = ? WHERE id = ? AND account_id = ?`,
		amount, database.BoolToInt(bought), id, accountID)
}

// DeletePersonal removes a hand-added item.
func (r *Repository) DeletePersonal(ctx context.Context, accountID string, id int64) error {
	return r.execOne(ctx, `DELETE FROM personal_cart_items WHERE id = ? AND account_id = ?`, id, accountID)
}

// GroceryList aggregates every cart recipe, scaled to the cart's serving
// size, with the unbought personal items, net of the account's pantry.
func (r *Repository) GroceryList(ctx context.Context, accountID string) ([]GroceryRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.name, t.name, i.is_liquid, ri.amount, r.serving_size, c.serving_size
		FROM carts c
		JOIN recipes r ON r.id = c.recipe_id
		JOIN recipe_ingredients ri ON ri.recipe_id = r.id
		JOIN ingredients i ON i.id = ri.ingredient_id
		JOIN ingredient_types t ON t.id = i.type_id
		WHERE c.account_id = ?
		UNION ALL
		SELECT i.id, i.name, t.name, i.is_liquid, p.amount, 1, 1
		FROM personal_cart_items p
		JOIN ingredients i ON i.id = p.ingredient_id
		JOIN ingredient_types t ON t.id = i.type_id
		WHERE p.account_id = ? AND p.is_bought = 0`, accountID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load grocery lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var (
			l                         Line
			liquid, recipeServ, servs int
		)
		if err := rows.Scan(&l.IngredientID, &l.Name, &l.TypeName, &liquid, &l.Amount, &recipeServ, &servs); err != nil {
			return nil, fmt.Errorf("failed to scan grocery line: %w", err)
		}
		l.IsLiquid = liquid != 0
		l.Amount = ScaleAmount(l.Amount, recipeServ, servs)
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate grocery lines: %w", err)
	}

	pantry, err := r.pantryAmounts(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return BuildGroceryList(lines, pantry), nil
}

func (r *Repository) pantryAmounts(ctx context.Context, accountID string) (map[int64]float64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ingredient_id, amount FROM pantry_items WHERE account_id = ?`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pantry: %w", err)
	}
	defer rows.Close()

	amounts := make(map[int64]float64)
	for rows.Next() {
		var (
			id     int64
			amount float64
		)
		if err := rows.Scan(&id, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan pantry item: %w", err)
		}
		amounts[id] = amount
	}
	return amounts, rows.Err()
}

func (r *Repository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to write cart: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
