package planner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tasteal/internal/database"
)

const selectPlanItems = `
	SELECT p.id, p.account_id, p.plan_date, p.item_order,
	       r.id, r.name, r.image, r.total_time, r.serving_size
	FROM plan_items p
	JOIN recipes r ON r.id = p.recipe_id`

// Repository is a database-backed repository for plan items.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// ListByAccount returns every plan item of an account.
func (r *Repository) ListByAccount(ctx context.Context, accountID string) ([]PlanItem, error) {
	rows, err := r.db.QueryContext(ctx, selectPlanItems+`
		WHERE p.account_id = ?
		ORDER BY p.plan_date, p.item_order, p.id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan items for account %s: %w", accountID, err)
	}
	return scanPlanItems(rows)
}

// ListByAccountBetween returns the items of an account between two days, inclusive.
func (r *Repository) ListByAccountBetween(ctx context.Context, accountID string, from, to time.Time) ([]PlanItem, error) {
	rows, err := r.db.QueryContext(ctx, selectPlanItems+`
		WHERE p.account_id = ? AND p.plan_date BETWEEN ? AND ?
		ORDER BY p.plan_date, p.item_order, p.id`, accountID, DateKey(from), DateKey(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list plan items for account %s: %w", accountID, err)
	}
	return scanPlanItems(rows)
}

// ListByDate returns the items of every account planned on one day.
func (r *Repository) ListByDate(ctx context.Context, date time.Time) ([]PlanItem, error) {
	rows, err := r.db.QueryContext(ctx, selectPlanItems+`
		WHERE p.plan_date = ?
		ORDER BY p.account_id, p.item_order, p.id`, DateKey(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list plan items for %s: %w", DateKey(date), err)
	}
	return scanPlanItems(rows)
}

// RecipeRef loads the card data of a recipe accountID may see: a public one
// or one of its own.
func (r *Repository) RecipeRef(ctx context.Context, accountID string, recipeID int64) (RecipeRef, error) {
	var ref RecipeRef
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, image, total_time, serving_size FROM recipes
		WHERE id = ? AND (is_private = 0 OR author = ?)`, recipeID, accountID).
		Scan(&ref.ID, &ref.Name, &ref.Image, &ref.TotalTime, &ref.ServingSize)
	if errors.Is(err, sql.ErrNoRows) {
		return RecipeRef{}, ErrRecipeNotFound
	}
	if err != nil {
		return RecipeRef{}, fmt.Errorf("failed to get recipe %d: %w", recipeID, err)
	}
	return ref, nil
}

// ApplyChanges writes a changeset for one account in a single transaction
// and returns the ids assigned to inserted items, in Upserts order.
func (r *Repository) ApplyChanges(ctx context.Context, accountID string, cs Changeset) ([]int64, error) {
	var inserted []int64
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, id := range cs.Deletes {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM plan_items WHERE id = ? AND account_id = ?`, id, accountID); err != nil {
				return fmt.Errorf("failed to delete plan item %d: %w", id, err)
			}
		}

		for _, it := range cs.Upserts {
			if it.ID != 0 {
				if _, err := tx.ExecContext(ctx,
					`UPDATE plan_items SET plan_date = ?, item_order = ? WHERE id = ? AND account_id = ?`,
					it.DateKey(), it.Order, it.ID, accountID); err != nil {
					return fmt.Errorf("failed to update plan item %d: %w", it.ID, err)
				}
				continue
			}

			res, err := tx.ExecContext(ctx,
				`INSERT INTO plan_items (account_id, recipe_id, plan_date, item_order) VALUES (?, ?, ?, ?)`,
				accountID, it.Recipe.ID, it.DateKey(), it.Order)
			if err != nil {
				return fmt.Errorf("failed to insert plan item: %w", err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to read plan item id: %w", err)
			}
			inserted = append(inserted, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

func scanPlanItems(rows *sql.Rows) ([]PlanItem, error) {
	defer rows.Close()

	var items []PlanItem
	for rows.Next() {
		var (
			it   PlanItem
			date string
		)
		if err := rows.Scan(&it.ID, &it.Plan.AccountID, &date, &it.Order,
			&it.Recipe.ID, &it.Recipe.Name, &it.Recipe.Image, &it.Recipe.TotalTime, &it.Recipe.ServingSize); err != nil {
			return nil, fmt.Errorf("failed to scan plan item: %w", err)
		}
		d, err := ParseDateKey(date)
		if err != nil {
			return nil, fmt.Errorf("plan item %d has invalid date %q: %w", it.ID, date, err)
		}
		it.Plan.Date = d
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plan items: %w", err)
	}
	return items, nil
}
