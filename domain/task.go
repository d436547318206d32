package domain

import "time"

// Task priority levels. Higher values sort first in display order.
const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

// Task represents a single to-do item as seen by every consumer of the
// data-access layer. Raw store records are reconciled into this shape by the
// record package; nothing past that boundary deals with divergent field names.
type Task struct {
	ID          int       `json:"id"`
	Name        string    `json:"name,omitempty"`
	Tags        string    `json:"tags,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    int       `json:"category"`
	Priority    int       `json:"priority"`
	DueDate     time.Time `json:"dueDate"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	Order       int       `json:"order"`
}

// DueDay returns the task's due date truncated to its UTC calendar day.
func (t Task) DueDay() time.Time { return Day(t.DueDate) }

// Day truncates a timestamp to its UTC calendar day.
func Day(ts time.Time) time.Time {
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidPriority reports whether p is one of the three recognized levels.
func ValidPriority(p int) bool { return p >= PriorityLow && p <= PriorityHigh }

// NewTask carries the fields accepted when creating a task. Order is optional;
// when nil the task is appended to the end of the collection.
type NewTask struct {
	Name        string    `json:"name,omitempty"`
	Tags        string    `json:"tags,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    int       `json:"category"`
	Priority    int       `json:"priority"`
	DueDate     time.Time `json:"dueDate"`
	Order       *int      `json:"order,omitempty"`
}

// TaskPatch carries a partial update. Nil fields are left untouched on the
// stored record; the task id itself is never part of a patch.
type TaskPatch struct {
	Name        *string    `json:"name,omitempty"`
	Tags        *string    `json:"tags,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Category    *int       `json:"category,omitempty"`
	Priority    *int       `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	Order       *int       `json:"order,omitempty"`
}

// Empty reports whether the patch carries no fields at all.
func (p TaskPatch) Empty() bool {
	return p.Name == nil && p.Tags == nil && p.Title == nil && p.Description == nil &&
		p.Category == nil && p.Priority == nil && p.DueDate == nil &&
		p.Completed == nil && p.Order == nil
}
