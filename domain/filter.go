package domain

import (
	"sort"
	"strings"
)

// FilterAll disables the category or priority predicate.
const FilterAll = 0

// FilterState holds the filter options a task list view can apply. All
// active predicates combine with logical AND.
type FilterState struct {
	SearchQuery   string
	Category      int // FilterAll or a category id
	Priority      int // FilterAll or a priority level
	ShowCompleted bool
}

// DefaultFilterState returns the state used before the user touches any
// filter control: no search, everything visible.
func DefaultFilterState() FilterState {
	return FilterState{Category: FilterAll, Priority: FilterAll, ShowCompleted: true}
}

// MatchesSearch reports whether the task matches a case-insensitive
// substring query on its title or description. An empty query matches
// every task.
func MatchesSearch(t Task, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

// Matches reports whether the task passes every active predicate.
func (f FilterState) Matches(t Task) bool {
	if !MatchesSearch(t, f.SearchQuery) {
		return false
	}
	if f.Category != FilterAll && t.Category != f.Category {
		return false
	}
	if f.Priority != FilterAll && t.Priority != f.Priority {
		return false
	}
	if !f.ShowCompleted && t.Completed {
		return false
	}
	return true
}

// ApplyFilters returns the tasks matching every active predicate, in
// canonical display order. The input slice is left untouched.
func ApplyFilters(tasks []Task, f FilterState) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	SortForDisplay(out)
	return out
}

// SortForDisplay applies the canonical display order: priority descending,
// then due date ascending. The sort is stable, so ties keep their relative
// input order.
func SortForDisplay(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Priority != tasks[j].Priority {
			return tasks[i].Priority > tasks[j].Priority
		}
		return tasks[i].DueDate.Before(tasks[j].DueDate)
	})
}

// SortByOrder applies the manual display order, lowest first. Stable, so
// tasks sharing an order value keep their relative input order.
func SortByOrder(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Order < tasks[j].Order
	})
}
