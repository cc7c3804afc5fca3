// Package pantry tracks the ingredients an account already has at home.
package pantry

import (
	"errors"
	"sort"
	"strings"

	"tasteal/internal/catalog"
	"tasteal/internal/textutil"
)

var (
	// ErrNotFound is returned for pantry items that do not belong to the account.
	ErrNotFound = errors.New("pantry item not found")
	// ErrInvalid wraps validation failures.
	ErrInvalid = errors.New("invalid pantry item")
)

// Item is an ingredient amount kept in an account's pantry.
type Item struct {
	ID           int64   `json:"id"`
	AccountID    string  `json:"account_id"`
	IngredientID int64   `json:"ingredient_id"`
	Name         string  `json:"name"`
	TypeID       int64   `json:"type_id"`
	Amount       float64 `json:"amount"`
}

// Group is the pantry content of one ingredient type.
type Group struct {
	Type  catalog.IngredientType `json:"type"`
	Items []Item                 `json:"ingredients"`
}

// GroupItems buckets items under their type. Items are filtered by a
// case and diacritics insensitive name query, sorted by name, and groups
// are ordered by item count, largest first.
func GroupItems(items []Item, types []catalog.IngredientType, query string) []Group {
	q := textutil.Normalize(query)
	groups := make([]Group, len(types))
	index := make(map[int64]int, len(types))
	for i, t := range types {
		groups[i] = Group{Type: t, Items: []Item{}}
		index[t.ID] = i
	}

	for _, it := range items {
		i, ok := index[it.TypeID]
		if !ok {
			continue
		}
		if q != "" && !strings.Contains(textutil.Normalize(it.Name), q) {
			continue
		}
		groups[i].Items = append(groups[i].Items, it)
	}

	for _, g := range groups {
		sort.SliceStable(g.Items, func(a, b int) bool { return g.Items[a].Name < g.Items[b].Name })
	}
	sort.SliceStable(groups, func(a, b int) bool { return len(groups[a].Items) > len(groups[b].Items) })
	return groups
}
