package domain

import (
	"reflect"
	"testing"
	"time"
)

func date(day int) time.Time {
	return time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC)
}

func sampleTasks() []Task {
	return []Task{
		{ID: 1, Title: "Write report", Description: "quarterly numbers", Category: 1, Priority: PriorityHigh, DueDate: date(10), Order: 0},
		{ID: 2, Title: "Buy groceries", Description: "milk and eggs", Category: 2, Priority: PriorityLow, DueDate: date(8), Order: 1},
		{ID: 3, Title: "Review code", Description: "report feedback", Category: 1, Priority: PriorityMedium, DueDate: date(9), Completed: true, Order: 2},
		{ID: 4, Title: "Plan trip", Description: "", Category: 2, Priority: PriorityHigh, DueDate: date(7), Order: 3},
	}
}

func TestApplyFiltersDefaultKeepsEverything(t *testing.T) {
	tasks := sampleTasks()
	got := ApplyFilters(tasks, DefaultFilterState())
	if len(got) != len(tasks) {
		t.Fatalf("expected %d tasks, got %d", len(tasks), len(got))
	}
}

func TestApplyFiltersCombinesWithAnd(t *testing.T) {
	tasks := sampleTasks()
	f := FilterState{SearchQuery: "report", Category: 1, Priority: PriorityHigh, ShowCompleted: true}
	got := ApplyFilters(tasks, f)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only task 1, got %+v", got)
	}
}

func TestApplyFiltersHidesCompleted(t *testing.T) {
	f := DefaultFilterState()
	f.ShowCompleted = false
	got := ApplyFilters(sampleTasks(), f)
	for _, task := range got {
		if task.Completed {
			t.Fatalf("completed task %d leaked through", task.ID)
		}
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 incomplete tasks, got %d", len(got))
	}
}

func TestMatchesSearchIsCaseInsensitive(t *testing.T) {
	task := Task{Title: "Write Report", Description: "Numbers from Finance"}
	for _, q := range []string{"report", "REPORT", "  finance  ", ""} {
		if !MatchesSearch(task, q) {
			t.Fatalf("expected query %q to match", q)
		}
	}
	if MatchesSearch(task, "groceries") {
		t.Fatal("unrelated query matched")
	}
}

func TestFilterOrderIndependence(t *testing.T) {
	tasks := sampleTasks()
	f := FilterState{Category: 1, ShowCompleted: false}
	g := FilterState{ShowCompleted: false, Category: 1}
	if !reflect.DeepEqual(ApplyFilters(tasks, f), ApplyFilters(tasks, g)) {
		t.Fatal("predicate order changed the result set")
	}
}

func TestSortForDisplayPriorityThenDueDate(t *testing.T) {
	tasks := sampleTasks()
	SortForDisplay(tasks)
	wantIDs := []int{4, 1, 3, 2}
	for i, want := range wantIDs {
		if tasks[i].ID != want {
			t.Fatalf("position %d: want task %d, got %d", i, want, tasks[i].ID)
		}
	}
}

func TestSortForDisplayIsStable(t *testing.T) {
	same := date(15)
	tasks := []Task{
		{ID: 10, Priority: PriorityMedium, DueDate: same},
		{ID: 11, Priority: PriorityMedium, DueDate: same},
		{ID: 12, Priority: PriorityMedium, DueDate: same},
	}
	SortForDisplay(tasks)
	if tasks[0].ID != 10 || tasks[1].ID != 11 || tasks[2].ID != 12 {
		t.Fatalf("equal tasks were reordered: %+v", tasks)
	}
}

func TestSortByOrder(t *testing.T) {
	tasks := []Task{{ID: 1, Order: 2}, {ID: 2, Order: 0}, {ID: 3, Order: 1}}
	SortByOrder(tasks)
	if tasks[0].ID != 2 || tasks[1].ID != 3 || tasks[2].ID != 1 {
		t.Fatalf("unexpected manual order: %+v", tasks)
	}
}

func TestApplyFiltersDoesNotMutateInput(t *testing.T) {
	tasks := sampleTasks()
	before := append([]Task(nil), tasks...)
	ApplyFilters(tasks, FilterState{Priority: PriorityHigh, ShowCompleted: true})
	if !reflect.DeepEqual(tasks, before) {
		t.Fatal("input slice was mutated")
	}
}

func TestDayTruncation(t *testing.T) {
	ts := time.Date(2024, time.March, 10, 22, 15, 0, 0, time.UTC)
	if got := Day(ts); !got.Equal(date(10)) {
		t.Fatalf("want %v, got %v", date(10), got)
	}
}

func TestValidPriority(t *testing.T) {
	for p, want := range map[int]bool{0: false, 1: true, 2: true, 3: true, 4: false} {
		if got := ValidPriority(p); got != want {
			t.Fatalf("ValidPriority(%d) = %v, want %v", p, got, want)
		}
	}
}

func TestTaskPatchEmpty(t *testing.T) {
	if !(TaskPatch{}).Empty() {
		t.Fatal("zero patch should be empty")
	}
	title := "x"
	if (TaskPatch{Title: &title}).Empty() {
		t.Fatal("patch with a field should not be empty")
	}
}
