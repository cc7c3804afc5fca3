package pantry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository is a database-backed repository for pantry items.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// List returns the account's pantry.
func (r *Repository) List(ctx context.Context, accountID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.account_id, p.ingredient_id, i.name, i.type_id, p.amount
		FROM pantry_items p
		JOIN ingredients i ON i.id = p.ingredient_id
		WHERE p.account_id = ?
		ORDER BY i.name`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pantry of %s: %w", accountID, err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.AccountID, &it.IngredientID, &it.Name, &it.TypeID, &it.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan pantry item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Get loads one pantry item of the account.
func (r *Repository) Get(ctx context.Context, accountID string, id int64) (Item, error) {
	var it Item
	err := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.account_id, p.ingredient_id, i.name, i.type_id, p.amount
		FROM pantry_items p
		JOIN ingredients i ON i.id = p.ingredient_id
		WHERE p.id = ? AND p.account_id = ?`, id, accountID).
		Scan(&it.ID, &it.AccountID, &it.IngredientID, &it.Name, &it.TypeID, &it.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("failed to get pantry item %d: %w", id, err)
	}
	return it, nil
}

// Upsert adds an ingredient to the pantry, or replaces its amount when it is
// already stocked. It returns the stored item.
func (r *Repository) Upsert(ctx context.Context, accountID string, ingredientID int64, amount float64) (Item, error) {
	if amount < 0 {
		return Item{}, fmt.Errorf("%w: amount must not be negative", ErrInvalid)
	}
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO pantry_items (account_id, ingredient_id, amount) VALUES (?, ?, ?)
		ON CONFLICT (account_id, ingredient_id) DO UPDATE SET amount = excluded.amount
		RETURNING id`, accountID, ingredientID, amount).Scan(&id)
	if err != nil {
		return Item{}, fmt.Errorf("failed to save pantry item: %w", err)
	}
	return r.Get(ctx, accountID, id)
}

// UpdateAmount changes the stocked amount of an item.
func (r *Repository) UpdateAmount(ctx context.Context, accountID string, id int64, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalid)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE pantry_items SET amount = ? WHERE id = ? AND account_id = ?`,
		amount, id, accountID)
	if err != nil {
		return fmt.Errorf("failed to update pantry item %d: %w", id, err)
	}
	return expectOne(res)
}

// Delete removes an item from the pantry.
func (r *Repository) Delete(ctx context.Context, accountID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pantry_items WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete pantry item %d: %w", id, err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
