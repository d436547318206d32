package record

import (
	"fmt"
	"time"

	"taskdeck/domain"
)

// The record schema grew two spellings for a couple of fields: the display
// name appears as "Name" or "name" and the due date as "due_date" or
// "dueDate" depending on which generation of client wrote the record. This
// codec is the single place that reconciliation happens; the first populated
// variant wins, schema-native spelling first. Services and views only ever
// see the canonical domain shapes.

func firstPresent(r Record, keys ...string) any {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v
	}
	return nil
}

// DecodeTask converts a raw store record into the canonical task shape,
// normalizing field names and numeric types.
func DecodeTask(r Record) (domain.Task, error) {
	id, ok := AsInt(firstPresent(r, "Id", "id"))
	if !ok {
		return domain.Task{}, fmt.Errorf("task record missing id: %v", r)
	}
	t := domain.Task{
		ID:          id,
		Name:        AsString(firstPresent(r, "Name", "name")),
		Tags:        AsString(firstPresent(r, "Tags", "tags")),
		Title:       AsString(r["title"]),
		Description: AsString(r["description"]),
	}
	if v, ok := AsInt(r["category"]); ok {
		t.Category = v
	}
	if v, ok := AsInt(r["priority"]); ok {
		t.Priority = v
	}
	if v, ok := AsTime(firstPresent(r, "due_date", "dueDate")); ok {
		t.DueDate = v
	}
	if v, ok := AsBool(r["completed"]); ok {
		t.Completed = v
	}
	if v, ok := AsTime(firstPresent(r, "created_at", "createdAt")); ok {
		t.CreatedAt = v
	}
	if v, ok := AsInt(r["order"]); ok {
		t.Order = v
	}
	return t, nil
}

// DecodeTasks converts a fetched record list, preserving its order.
func DecodeTasks(recs []Record) ([]domain.Task, error) {
	tasks := make([]domain.Task, 0, len(recs))
	for _, r := range recs {
		t, err := DecodeTask(r)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// DecodeCategory converts a raw store record into the canonical category
// shape. TaskCount is deliberately not read from the stored task_count
// field; callers recompute it from the task collection.
func DecodeCategory(r Record) (domain.Category, error) {
	id, ok := AsInt(firstPresent(r, "Id", "id"))
	if !ok {
		return domain.Category{}, fmt.Errorf("category record missing id: %v", r)
	}
	return domain.Category{
		ID:    id,
		Name:  AsString(firstPresent(r, "Name", "name")),
		Tags:  AsString(firstPresent(r, "Tags", "tags")),
		Color: AsString(r["color"]),
	}, nil
}

// DecodeCategories converts a fetched record list, preserving its order.
func DecodeCategories(recs []Record) ([]domain.Category, error) {
	cats := make([]domain.Category, 0, len(recs))
	for _, r := range recs {
		c, err := DecodeCategory(r)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, nil
}

// EncodeNewTask renders a creation payload in the store's canonical field
// names. Due dates are written as ISO-8601 instants; the display name falls
// back to the title the way every client of this schema has always done.
func EncodeNewTask(t domain.NewTask, order int, createdAt time.Time) Record {
	name := t.Name
	if name == "" {
		name = t.Title
	}
	return Record{
		"Name":        name,
		"Tags":        t.Tags,
		"title":       t.Title,
		"description": t.Description,
		"category":    t.Category,
		"priority":    t.Priority,
		"due_date":    t.DueDate.UTC().Format(time.RFC3339),
		"completed":   false,
		"created_at":  createdAt.UTC().Format(time.RFC3339),
		"order":       order,
	}
}

// EncodeTaskPatch renders a partial update carrying only the fields present
// in the patch, plus the id of the target record.
func EncodeTaskPatch(id int, p domain.TaskPatch) Record {
	r := Record{"Id": id}
	if p.Name != nil {
		r["Name"] = *p.Name
	}
	if p.Tags != nil {
		r["Tags"] = *p.Tags
	}
	if p.Title != nil {
		r["title"] = *p.Title
	}
	if p.Description != nil {
		r["description"] = *p.Description
	}
	if p.Category != nil {
		r["category"] = *p.Category
	}
	if p.Priority != nil {
		r["priority"] = *p.Priority
	}
	if p.DueDate != nil {
		r["due_date"] = p.DueDate.UTC().Format(time.RFC3339)
	}
	if p.Completed != nil {
		r["completed"] = *p.Completed
	}
	if p.Order != nil {
		r["order"] = *p.Order
	}
	return r
}

// EncodeNewCategory renders a category creation payload. Color falls back
// to the standard accent and the stored task_count starts at zero.
func EncodeNewCategory(c domain.NewCategory) Record {
	color := c.Color
	if color == "" {
		color = domain.DefaultCategoryColor
	}
	return Record{
		"Name":       c.Name,
		"Tags":       c.Tags,
		"color":      color,
		"task_count": 0,
	}
}

// EncodeCategoryPatch renders a partial category update.
func EncodeCategoryPatch(id int, p domain.CategoryPatch) Record {
	r := Record{"Id": id}
	if p.Name != nil {
		r["Name"] = *p.Name
	}
	if p.Tags != nil {
		r["Tags"] = *p.Tags
	}
	if p.Color != nil {
		r["color"] = *p.Color
	}
	return r
}
