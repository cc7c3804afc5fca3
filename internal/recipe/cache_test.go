package recipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGetter struct {
	calls int
	rec   Recipe
}

func (g *countingGetter) Get(_ context.Context, id int64) (*Recipe, error) {
	g.calls++
	if id != g.rec.ID {
		return nil, ErrNotFound
	}
	rec := g.rec
	return &rec, nil
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	src := &countingGetter{rec: Recipe{
		ID:          1,
		Name:        "Pho",
		ServingSize: 2,
		Ingredients: []Ingredient{{Amount: 200, Nutrition: Nutrition{Calories: 100}}},
	}}
	c := NewCache(src)

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Pho", got.Name)

	got.Name = "changed"
	again, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Pho", again.Name)
	assert.Equal(t, 1, src.calls)

	kcal, err := c.CaloriesPerServing(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, kcal)
	assert.Equal(t, 1, src.calls)

	c.Invalidate(1)
	assert.Zero(t, c.Len())
	_, err = c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)

	_, err = c.Get(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, c.Len())
}

// blockingGetter returns rec once release is closed.
type blockingGetter struct {
	started chan struct{}
	release chan struct{}
	rec     Recipe
}

func (g *blockingGetter) Get(context.Context, int64) (*Recipe, error) {
	close(g.started)
	<-g.release
	rec := g.rec
	return &rec, nil
}

func TestCache_InvalidateDuringLoad(t *testing.T) {
	src := &blockingGetter{
		started: make(chan struct{}),
		release: make(chan struct{}),
		rec:     Recipe{ID: 1, Rating: 5},
	}
	c := NewCache(src)

	done := make(chan error, 1)
	go func() {
		_, err := c.Get(context.Background(), 1)
		done <- err
	}()
	<-src.started
	c.Invalidate(1)
	close(src.release)
	require.NoError(t, <-done)

	assert.Zero(t, c.Len(), "a load that overlaps an invalidation is not cached")
}

func TestNutritionPerServing(t *testing.T) {
	rec := Recipe{
		ServingSize: 4,
		Ingredients: []Ingredient{
			{Amount: 200, Nutrition: Nutrition{Calories: 100, Protein: 10}},
			{Amount: 50, Nutrition: Nutrition{Calories: 400, Fat: 20}},
		},
	}
	got := NutritionPerServing(rec)
	assert.Equal(t, Nutrition{Calories: 100, Protein: 5, Fat: 2.5}, got)

	rec.ServingSize = 0
	assert.Equal(t, 400.0, NutritionPerServing(rec).Calories)
}
