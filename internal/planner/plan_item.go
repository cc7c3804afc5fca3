package planner

import (
	"cmp"
	"slices"
	"time"
)

// Plan identifies the calendar day a PlanItem belongs to.
type Plan struct {
	AccountID string    `json:"account_id"`
	Date      time.Time `json:"date"`
}

// RecipeRef is the slice of a recipe the planner needs to render a card.
type RecipeRef struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	TotalTime   int    `json:"total_time"`
	ServingSize int    `json:"serving_size"`
}

// PlanItem is a recipe scheduled on a day, positioned by Order (1-based)
// among the items of the same day.
type PlanItem struct {
	ID     int64     `json:"id"`
	Order  int       `json:"order"`
	Plan   Plan      `json:"plan"`
	Recipe RecipeRef `json:"recipe"`
}

// DateKey returns the bucket key of the item.
func (p PlanItem) DateKey() string {
	return DateKey(p.Plan.Date)
}

// Day truncates t to midnight UTC of its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey formats the UTC calendar day of t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ParseDateKey is the inverse of DateKey.
func ParseDateKey(key string) (time.Time, error) {
	return time.Parse("2006-01-02", key)
}

// Board is the plan grouped by day: date key -> items ordered by position.
// It is always derived from the flat list, never stored.
type Board map[string][]PlanItem

// NewBoard groups items by day and sorts every bucket by order, breaking
// ties by id. The items are copied.
func NewBoard(items []PlanItem) Board {
	b := make(Board)
	for _, it := range items {
		k := it.DateKey()
		b[k] = append(b[k], it)
	}
	for _, day := range b {
		sortDay(day)
	}
	return b
}

// Day returns the ordered bucket for the calendar day of t.
func (b Board) Day(t time.Time) []PlanItem {
	return b[DateKey(t)]
}

// Keys returns the date keys in chronological order.
func (b Board) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Flatten returns every item ordered by day, then position.
func (b Board) Flatten() []PlanItem {
	var out []PlanItem
	for _, k := range b.Keys() {
		out = append(out, b[k]...)
	}
	return out
}

// Contiguous reports whether every bucket is numbered 1..n in position order.
func (b Board) Contiguous() bool {
	for _, day := range b {
		for i, it := range day {
			if it.Order != i+1 {
				return false
			}
		}
	}
	return true
}

func sortDay(day []PlanItem) {
	slices.SortStableFunc(day, func(a, b PlanItem) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// renumber rewrites Order to match position.
func renumber(day []PlanItem) {
	for i := range day {
		day[i].Order = i + 1
	}
}

// dayOf copies the items of one day out of a flat list, sorted by order.
func dayOf(items []PlanItem, key string) []PlanItem {
	var day []PlanItem
	for _, it := range items {
		if it.DateKey() == key {
			day = append(day, it)
		}
	}
	sortDay(day)
	return day
}

// replaceDays keeps every item outside the given days in its original
// position and appends the replacement buckets in argument order.
func replaceDays(items []PlanItem, days ...dayBucket) []PlanItem {
	affected := make(map[string]struct{}, len(days))
	for _, d := range days {
		affected[d.key] = struct{}{}
	}

	out := make([]PlanItem, 0, len(items)+1)
	for _, it := range items {
		if _, ok := affected[it.DateKey()]; !ok {
			out = append(out, it)
		}
	}
	for _, d := range days {
		out = append(out, d.items...)
	}
	return out
}

type dayBucket struct {
	key   string
	items []PlanItem
}
