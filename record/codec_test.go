package record

import (
	"testing"
	"time"

	"taskdeck/domain"
)

func TestDecodeTaskCanonicalFields(t *testing.T) {
	got, err := DecodeTask(Record{
		"Id": float64(7), "Name": "Report", "Tags": "work",
		"title": "Report", "description": "numbers", "category": float64(2),
		"priority": float64(3), "due_date": "2024-01-05T10:00:00Z",
		"completed": true, "created_at": "2024-01-01T00:00:00Z", "order": float64(4),
	})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.ID != 7 || got.Name != "Report" || got.Category != 2 || got.Priority != 3 {
		t.Fatalf("unexpected task: %+v", got)
	}
	if !got.Completed || got.Order != 4 {
		t.Fatalf("unexpected task: %+v", got)
	}
	if got.DueDate != time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected due date: %v", got.DueDate)
	}
}

func TestDecodeTaskNormalizesFieldVariants(t *testing.T) {
	got, err := DecodeTask(Record{
		"id": "9", "name": "Alt", "title": "Alt",
		"dueDate": "2024-02-01", "createdAt": "2024-01-15T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.ID != 9 || got.Name != "Alt" {
		t.Fatalf("lowercase variants not picked up: %+v", got)
	}
	if got.DueDate != time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("dueDate variant not parsed: %v", got.DueDate)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("createdAt variant not parsed")
	}
}

func TestDecodeTaskSchemaSpellingWins(t *testing.T) {
	got, err := DecodeTask(Record{
		"Id": 1, "Name": "Canonical", "name": "Legacy", "title": "x",
		"due_date": "2024-03-01T00:00:00Z", "dueDate": "2024-04-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Name != "Canonical" {
		t.Fatalf(`want "Canonical", got %q`, got.Name)
	}
	if got.DueDate.Month() != time.March {
		t.Fatalf("due_date should win over dueDate, got %v", got.DueDate)
	}
}

func TestDecodeTaskEmptyVariantFallsThrough(t *testing.T) {
	got, err := DecodeTask(Record{"Id": 1, "Name": "", "name": "Fallback", "title": "x"})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Name != "Fallback" {
		t.Fatalf(`empty Name should fall through, got %q`, got.Name)
	}
}

func TestDecodeTaskMissingID(t *testing.T) {
	if _, err := DecodeTask(Record{"title": "no id"}); err == nil {
		t.Fatal("expected error for record without id")
	}
}

func TestDecodeTaskNumericStrings(t *testing.T) {
	got, err := DecodeTask(Record{"Id": 1, "title": "x", "category": "5", "priority": "2", "order": "3"})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Category != 5 || got.Priority != 2 || got.Order != 3 {
		t.Fatalf("string numerics not coerced: %+v", got)
	}
}

func TestEncodeNewTaskDefaults(t *testing.T) {
	created := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	r := EncodeNewTask(domain.NewTask{
		Title: "Report", Category: 1, Priority: 3,
		DueDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}, 6, created)
	if r["Name"] != "Report" {
		t.Fatalf("Name should fall back to title, got %v", r["Name"])
	}
	if r["completed"] != false {
		t.Fatal("new tasks must start incomplete")
	}
	if r["order"] != 6 {
		t.Fatalf("order not applied: %v", r["order"])
	}
	if r["created_at"] != "2024-01-10T12:00:00Z" {
		t.Fatalf("created_at not rendered: %v", r["created_at"])
	}
	if r["due_date"] != "2024-01-15T00:00:00Z" {
		t.Fatalf("due_date not rendered: %v", r["due_date"])
	}
}

func TestEncodeTaskPatchOnlyPresentFields(t *testing.T) {
	title := "New title"
	completed := true
	r := EncodeTaskPatch(4, domain.TaskPatch{Title: &title, Completed: &completed})
	if len(r) != 3 {
		t.Fatalf("patch should carry id plus two fields, got %v", r)
	}
	if r["Id"] != 4 || r["title"] != "New title" || r["completed"] != true {
		t.Fatalf("unexpected patch: %v", r)
	}
}

func TestDecodeCategoryIgnoresStoredCount(t *testing.T) {
	got, err := DecodeCategory(Record{"Id": 2, "Name": "Work", "color": "#5B4CFF", "task_count": float64(42)})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.TaskCount != 0 {
		t.Fatalf("stored task_count must not be trusted, got %d", got.TaskCount)
	}
	if got.Name != "Work" || got.Color != "#5B4CFF" {
		t.Fatalf("unexpected category: %+v", got)
	}
}

func TestEncodeNewCategoryColorDefault(t *testing.T) {
	r := EncodeNewCategory(domain.NewCategory{Name: "Errands"})
	if r["color"] != domain.DefaultCategoryColor {
		t.Fatalf("missing color should default, got %v", r["color"])
	}
	if r["task_count"] != 0 {
		t.Fatal("new categories start with zero stored count")
	}
	r = EncodeNewCategory(domain.NewCategory{Name: "Errands", Color: "#123456"})
	if r["color"] != "#123456" {
		t.Fatalf("explicit color overridden: %v", r["color"])
	}
}

func TestAsTimeFormats(t *testing.T) {
	if ts, ok := AsTime("2024-01-02T10:30:00Z"); !ok || ts.Hour() != 10 {
		t.Fatalf("RFC3339 parse failed: %v %v", ts, ok)
	}
	if ts, ok := AsTime("2024-01-02"); !ok || !ts.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("bare date parse failed: %v %v", ts, ok)
	}
	if _, ok := AsTime(""); ok {
		t.Fatal("empty string parsed as time")
	}
	if _, ok := AsTime("yesterday"); ok {
		t.Fatal("garbage parsed as time")
	}
}
