package planner

import "time"

// WeekDate is one column of the planner: a labelled day and its items.
type WeekDate struct {
	Label     string     `json:"label"`
	Date      time.Time  `json:"date"`
	PlanItems []PlanItem `json:"plan_items"`
}

var weekdayLabels = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekBounds returns the Monday and Sunday (UTC days) of the week containing
// now, shifted by offset weeks.
func WeekBounds(now time.Time, offset int) (time.Time, time.Time) {
	today := Day(now)
	wd := int(today.Weekday())
	delta := 1 - wd
	if wd == 0 {
		delta = -6
	}
	start := today.AddDate(0, 0, delta+7*offset)
	return start, start.AddDate(0, 0, 6)
}

// WeekDates lays items out over the seven days of the requested week. Items
// outside the week are ignored.
func WeekDates(now time.Time, offset int, items []PlanItem) []WeekDate {
	start, _ := WeekBounds(now, offset)
	board := NewBoard(items)

	week := make([]WeekDate, 7)
	for i := range week {
		day := start.AddDate(0, 0, i)
		planItems := board.Day(day)
		if planItems == nil {
			planItems = []PlanItem{}
		}
		week[i] = WeekDate{Label: weekdayLabels[i], Date: day, PlanItems: planItems}
	}
	return week
}

// Changeset is the persistence work implied by going from one plan to another.
type Changeset struct {
	// Upserts are new items (ID 0) and items whose day or order changed.
	Upserts []PlanItem
	// Deletes are ids present before and absent after.
	Deletes []int64
}

// Empty reports whether nothing needs to be written.
func (c Changeset) Empty() bool {
	return len(c.Upserts) == 0 && len(c.Deletes) == 0
}

// Diff computes the rows to write to turn before into after.
func Diff(before, after []PlanItem) Changeset {
	prev := make(map[int64]PlanItem, len(before))
	for _, it := range before {
		prev[it.ID] = it
	}

	var cs Changeset
	seen := make(map[int64]struct{}, len(after))
	for _, it := range after {
		if it.ID == 0 {
			cs.Upserts = append(cs.Upserts, it)
			continue
		}
		seen[it.ID] = struct{}{}
		old, ok := prev[it.ID]
		if !ok || old.Order != it.Order || old.DateKey() != it.DateKey() {
			cs.Upserts = append(cs.Upserts, it)
		}
	}
	for _, it := range before {
		if _, ok := seen[it.ID]; !ok {
			cs.Deletes = append(cs.Deletes, it.ID)
		}
	}
	return cs
}
