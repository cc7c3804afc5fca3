package recipe

import (
	"context"
	"sync"
)

// Getter loads a full recipe.
type Getter interface {
	Get(ctx context.Context, id int64) (*Recipe, error)
}

// Cache wraps a Getter and keeps loaded recipes in memory until they are
// invalidated. Returned recipes share slices with the cache and must be
// treated as read-only.
type Cache struct {
	src   Getter
	mu    sync.Mutex
	items map[int64]*Recipe
	// gen counts invalidations; a load that overlaps one is not stored.
	gen uint64
}

// NewCache creates a new Cache in front of src.
func NewCache(src Getter) *Cache {
	return &Cache{src: src, items: make(map[int64]*Recipe)}
}

// Get returns the cached recipe or loads it from the source.
func (c *Cache) Get(ctx context.Context, id int64) (*Recipe, error) {
	c.mu.Lock()
	rec, ok := c.items[id]
	gen := c.gen
	c.mu.Unlock()
	if ok {
		cp := *rec
		return &cp, nil
	}

	rec, err := c.src.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.items[id] = rec
	}
	c.mu.Unlock()

	cp := *rec
	return &cp, nil
}

// Invalidate drops one recipe from the cache.
func (c *Cache) Invalidate(id int64) {
	c.mu.Lock()
	delete(c.items, id)
	c.gen++
	c.mu.Unlock()
}

// Len reports how many recipes are cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// CaloriesPerServing reports the calories of one serving of a recipe.
func (c *Cache) CaloriesPerServing(ctx context.Context, id int64) (float64, error) {
	rec, err := c.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return NutritionPerServing(*rec).Calories, nil
}
