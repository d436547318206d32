package domain

// DefaultCategoryColor is the accent applied when a category is created
// without an explicit color.
const DefaultCategoryColor = "#5B4CFF"

// Category groups tasks for display. TaskCount is derived from the task
// collection on every read and is never trusted from the store.
type Category struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Tags      string `json:"tags,omitempty"`
	Color     string `json:"color"`
	TaskCount int    `json:"taskCount"`
}

// NewCategory carries the fields accepted when creating a category.
type NewCategory struct {
	Name  string `json:"name"`
	Tags  string `json:"tags,omitempty"`
	Color string `json:"color,omitempty"`
}

// CategoryPatch carries a partial update; nil fields are left untouched.
type CategoryPatch struct {
	Name  *string `json:"name,omitempty"`
	Tags  *string `json:"tags,omitempty"`
	Color *string `json:"color,omitempty"`
}

// Empty reports whether the patch carries no fields at all.
func (p CategoryPatch) Empty() bool {
	return p.Name == nil && p.Tags == nil && p.Color == nil
}
