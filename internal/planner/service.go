package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrPlanItemNotFound is returned for ids that do not belong to the account.
	ErrPlanItemNotFound = errors.New("plan item not found")
	// ErrRecipeNotFound is returned when adding an unknown recipe.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrDuplicateRecipe is returned when a move would place a recipe twice on
	// the same day and the caller did not confirm it.
	ErrDuplicateRecipe = errors.New("recipe already planned on the destination day")
)

// Store is the persistence the Service relies on.
type Store interface {
	ListByAccount(ctx context.Context, accountID string) ([]PlanItem, error)
	ListByAccountBetween(ctx context.Context, accountID string, from, to time.Time) ([]PlanItem, error)
	RecipeRef(ctx context.Context, accountID string, recipeID int64) (RecipeRef, error)
	ApplyChanges(ctx context.Context, accountID string, cs Changeset) ([]int64, error)
}

// NutritionSource reports the calories of one serving of a recipe.
type NutritionSource interface {
	CaloriesPerServing(ctx context.Context, recipeID int64) (float64, error)
}

// Service owns an account's meal plan. Every mutation runs through the pure
// board functions and persists only the rows they changed.
type Service struct {
	store     Store
	nutrition NutritionSource
	logger    *zap.Logger

	mu    sync.Mutex
	locks map[string]*accountLock
}

// accountLock is dropped from Service.locks once nobody holds or waits on it.
type accountLock struct {
	mu   sync.Mutex
	refs int
}

// NewService creates a new Service.
func NewService(store Store, nutrition NutritionSource, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		nutrition: nutrition,
		logger:    logger.Named("planner"),
		locks:     make(map[string]*accountLock),
	}
}

// lock serialises read-modify-write cycles on one account's plan.
func (s *Service) lock(accountID string) func() {
	s.mu.Lock()
	l, ok := s.locks[accountID]
	if !ok {
		l = &accountLock{}
		s.locks[accountID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, accountID)
		}
		s.mu.Unlock()
	}
}

// Week returns the seven planner columns of the week at offset from now.
func (s *Service) Week(ctx context.Context, accountID string, now time.Time, offset int) ([]WeekDate, error) {
	start, end := WeekBounds(now, offset)
	items, err := s.store.ListByAccountBetween(ctx, accountID, start, end)
	if err != nil {
		return nil, err
	}
	return WeekDates(now, offset, items), nil
}

// List returns the whole plan of an account ordered by day and position.
func (s *Service) List(ctx context.Context, accountID string) ([]PlanItem, error) {
	items, err := s.store.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return NewBoard(items).Flatten(), nil
}

// Add schedules a recipe at the end of a day.
func (s *Service) Add(ctx context.Context, accountID string, recipeID int64, date time.Time) (PlanItem, error) {
	ref, err := s.store.RecipeRef(ctx, accountID, recipeID)
	if err != nil {
		return PlanItem{}, err
	}

	unlock := s.lock(accountID)
	defer unlock()

	before, err := s.store.ListByAccountBetween(ctx, accountID, date, date)
	if err != nil {
		return PlanItem{}, err
	}

	item := PlanItem{Plan: Plan{AccountID: accountID, Date: Day(date)}, Recipe: ref}
	after := AppendItem(before, item)

	ids, err := s.store.ApplyChanges(ctx, accountID, Diff(before, after))
	if err != nil {
		return PlanItem{}, fmt.Errorf("failed to add recipe %d to plan: %w", recipeID, err)
	}

	added := after[len(after)-1]
	if len(ids) > 0 {
		added.ID = ids[len(ids)-1]
	}
	s.logger.Debug("plan item added",
		zap.String("account", accountID), zap.Int64("recipe", recipeID),
		zap.String("date", added.DateKey()), zap.Int("order", added.Order))
	return added, nil
}

// Remove deletes an item and closes the gap in its day.
func (s *Service) Remove(ctx context.Context, accountID string, id int64) error {
	unlock := s.lock(accountID)
	defer unlock()

	before, err := s.store.ListByAccount(ctx, accountID)
	if err != nil {
		return err
	}

	after, ok := RemoveItem(before, id)
	if !ok {
		return ErrPlanItemNotFound
	}

	if _, err := s.store.ApplyChanges(ctx, accountID, Diff(before, after)); err != nil {
		return fmt.Errorf("failed to remove plan item %d: %w", id, err)
	}
	return nil
}

// MoveResult is what a move left behind on the affected days.
type MoveResult struct {
	Outcome MoveOutcome `json:"-"`
	Status  string      `json:"status"`
	From    []PlanItem  `json:"from"`
	To      []PlanItem  `json:"to"`
}

// Move applies a drag-and-drop and persists the renumbered day(s).
// allowDuplicate answers the duplicate-recipe confirmation.
func (s *Service) Move(ctx context.Context, accountID string, mv Move, allowDuplicate bool) (MoveResult, error) {
	unlock := s.lock(accountID)
	defer unlock()

	before, err := s.store.ListByAccount(ctx, accountID)
	if err != nil {
		return MoveResult{}, err
	}

	confirm := NeverConfirm
	if allowDuplicate {
		confirm = AlwaysConfirm
	}

	after, outcome := ApplyMove(before, mv, confirm)
	switch outcome {
	case MoveCancelled:
		return MoveResult{Outcome: outcome, Status: outcome.String()}, ErrDuplicateRecipe
	case MoveIgnored:
		s.logger.Debug("move ignored", zap.String("account", accountID), zap.Int64("item", mv.ID))
	case MoveApplied:
		if _, err := s.store.ApplyChanges(ctx, accountID, Diff(before, after)); err != nil {
			return MoveResult{}, fmt.Errorf("failed to persist move of plan item %d: %w", mv.ID, err)
		}
	}

	board := NewBoard(after)
	res := MoveResult{Outcome: outcome, Status: outcome.String(), From: board.Day(mv.From), To: board.Day(mv.To)}
	return res, nil
}

// DayCalories sums one serving of every recipe planned on a day.
func (s *Service) DayCalories(ctx context.Context, accountID string, date time.Time) (float64, []PlanItem, error) {
	items, err := s.store.ListByAccountBetween(ctx, accountID, date, date)
	if err != nil {
		return 0, nil, err
	}

	var total float64
	for _, it := range items {
		kcal, err := s.nutrition.CaloriesPerServing(ctx, it.Recipe.ID)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to get calories of recipe %d: %w", it.Recipe.ID, err)
		}
		total += kcal
	}
	return total, NewBoard(items).Day(date), nil
}
