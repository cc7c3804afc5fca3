package planner

import (
	"slices"
	"time"
)

// Move describes a drag-and-drop of one plan item.
type Move struct {
	ID        int64     `json:"id"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	FromIndex int       `json:"from_index"`
	ToIndex   int       `json:"to_index"`
}

// MoveOutcome tells the caller what ApplyMove did.
type MoveOutcome int

const (
	// MoveIgnored means the drop was a no-op or malformed; the input is returned as is.
	MoveIgnored MoveOutcome = iota
	// MoveApplied means the affected day(s) were rewritten.
	MoveApplied
	// MoveCancelled means the duplicate-recipe guard was declined.
	MoveCancelled
)

func (o MoveOutcome) String() string {
	switch o {
	case MoveApplied:
		return "applied"
	case MoveCancelled:
		return "cancelled"
	default:
		return "ignored"
	}
}

// ConfirmFunc is asked whether moving an item onto a day that already holds
// the same recipe should go ahead. existing is the item already there.
type ConfirmFunc func(moving, existing PlanItem) bool

// AlwaysConfirm accepts every duplicate.
func AlwaysConfirm(PlanItem, PlanItem) bool { return true }

// NeverConfirm declines every duplicate.
func NeverConfirm(PlanItem, PlanItem) bool { return false }

func (m Move) malformed() bool {
	return m.ID == 0 || m.From.IsZero() || m.To.IsZero() || m.FromIndex < 0 || m.ToIndex < 0
}

// ApplyMove returns the plan after moving one item. Only the source and
// destination days are rebuilt and renumbered 1..n; every other entry is
// carried over untouched. The input slice is never modified.
//
// The item must sit at FromIndex of the source day's order-sorted bucket;
// anything else is treated as a stale or malformed drop and ignored. A nil
// confirm declines duplicates.
func ApplyMove(items []PlanItem, mv Move, confirm ConfirmFunc) ([]PlanItem, MoveOutcome) {
	if mv.malformed() {
		return items, MoveIgnored
	}

	fromKey, toKey := DateKey(mv.From), DateKey(mv.To)
	if fromKey == toKey && mv.FromIndex == mv.ToIndex {
		return items, MoveIgnored
	}

	src := dayOf(items, fromKey)
	if mv.FromIndex >= len(src) || src[mv.FromIndex].ID != mv.ID {
		return items, MoveIgnored
	}
	moving := src[mv.FromIndex]
	src = slices.Delete(src, mv.FromIndex, mv.FromIndex+1)

	if fromKey == toKey {
		src = slices.Insert(src, clampIndex(mv.ToIndex, len(src)), moving)
		renumber(src)
		return replaceDays(items, dayBucket{fromKey, src}), MoveApplied
	}

	dst := dayOf(items, toKey)
	for _, existing := range dst {
		if existing.Recipe.ID != moving.Recipe.ID {
			continue
		}
		if confirm == nil || !confirm(moving, existing) {
			return items, MoveCancelled
		}
		break
	}

	moving.Plan.Date = Day(mv.To)
	dst = slices.Insert(dst, clampIndex(mv.ToIndex, len(dst)), moving)
	renumber(src)
	renumber(dst)
	return replaceDays(items, dayBucket{fromKey, src}, dayBucket{toKey, dst}), MoveApplied
}

// RemoveItem drops the item with the given id and renumbers its day.
func RemoveItem(items []PlanItem, id int64) ([]PlanItem, bool) {
	idx := slices.IndexFunc(items, func(it PlanItem) bool { return it.ID == id })
	if idx < 0 {
		return items, false
	}
	key := items[idx].DateKey()

	day := slices.DeleteFunc(dayOf(items, key), func(it PlanItem) bool { return it.ID == id })
	renumber(day)
	return replaceDays(items, dayBucket{key, day}), true
}

// AppendItem places item at the end of its day. Its Order becomes n+1 and
// the rest of the day is renumbered 1..n.
func AppendItem(items []PlanItem, item PlanItem) []PlanItem {
	key := item.DateKey()
	item.Plan.Date = Day(item.Plan.Date)

	day := append(dayOf(items, key), item)
	renumber(day)
	return replaceDays(items, dayBucket{key, day})
}

func clampIndex(i, n int) int {
	if i > n {
		return n
	}
	return i
}
