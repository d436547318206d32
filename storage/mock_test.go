package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskdeck/domain"
	"taskdeck/record"
)

func seedTables() map[string][]record.Record {
	return map[string][]record.Record{
		record.TableTasks: {
			{"Id": 1, "Name": "A", "title": "A", "category": 1, "priority": 3,
				"due_date": "2024-01-01T00:00:00Z", "completed": false, "order": 0},
			{"Id": 2, "Name": "B", "title": "B", "category": 2, "priority": 1,
				"due_date": "2024-01-03T00:00:00Z", "completed": false, "order": 1},
			{"Id": 5, "Name": "C", "title": "C", "category": 1, "priority": 2,
				"due_date": "2024-01-02T00:00:00Z", "completed": true, "order": 2},
		},
		record.TableCategories: {
			{"Id": 1, "Name": "Work", "color": "#5B4CFF", "task_count": 0},
		},
	}
}

func TestMockFetchFiltersAndSorts(t *testing.T) {
	m := NewMockStoreFrom(seedTables())
	recs, err := m.FetchRecords(context.Background(), record.TableTasks, record.Query{
		Where:   []record.Condition{{FieldName: "completed", Operator: record.OpEqualTo, Values: []any{"false"}}},
		OrderBy: []record.SortSpec{{FieldName: "due_date", SortType: record.SortDesc}},
	})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if id, _ := record.AsInt(recs[0]["Id"]); id != 2 {
		t.Fatalf("descending due_date sort broken: %v", recs)
	}
}

func TestMockFetchReturnsClones(t *testing.T) {
	m := NewMockStoreFrom(seedTables())
	recs, err := m.FetchRecords(context.Background(), record.TableTasks, record.Query{})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	recs[0]["title"] = "mutated"
	again, _ := m.FetchRecords(context.Background(), record.TableTasks, record.Query{})
	for _, r := range again {
		if r["title"] == "mutated" {
			t.Fatal("caller mutation leaked into the store")
		}
	}
}

func TestMockGetRecordByIDMiss(t *testing.T) {
	m := NewMockStoreFrom(seedTables())
	rec, err := m.GetRecordByID(context.Background(), record.TableTasks, 99, record.Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Fatalf("miss should return nil, got %v", rec)
	}
}

func TestMockCreateAssignsDenseIDs(t *testing.T) {
	m := NewMockStoreFrom(seedTables())
	created, err := m.CreateRecords(context.Background(), record.TableTasks, []record.Record{
		{"title": "new one"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// Highest seeded id is 5, so the next assigned id is 6.
	if id, _ := record.AsInt(created[0]["Id"]); id != 6 {
		t.Fatalf("want id 6, got %v", created[0]["Id"])
	}
}

func TestMockUpdateMergesFields(t *testing.T) {
	m := NewMockStoreFrom(seedTables())
	updated, err := m.UpdateRecords(context.Background(), record.TableTasks, []record.Record{
		{"Id": 1, "completed": true},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated[0]["completed"] != true {
		t.Fatalf("field not merged: %v", updated[0])
	}
	if updated[0]["title"] != "A" {
		t.Fatalf("unrelated field lost: %v", updated[0])
	}
}

func TestMockUpdateMissingIDPartialBatch(t *testing.T) {
	m := NewMockStoreFrom(seedTables())
	_, err := m.UpdateRecords(context.Background(), record.TableTasks, []record.Record{
		{"Id": 1, "order": 9},
		{"Id": 99, "order": 10},
	})
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("want NotFoundError, got %v", err)
	}
	// The record before the failure stays merged; the batch is not atomic.
	rec, _ := m.GetRecordByID(context.Background(), record.TableTasks, 1, record.Query{})
	if got, _ := record.AsInt(rec["order"]); got != 9 {
		t.Fatalf("prior merge rolled back, order = %v", rec["order"])
	}
}

func TestMockDelete(t *testing.T) {
	m := NewMockStoreFrom(seedTables())
	if err := m.DeleteRecords(context.Background(), record.TableTasks, []int{2}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	rec, _ := m.GetRecordByID(context.Background(), record.TableTasks, 2, record.Query{})
	if rec != nil {
		t.Fatal("record still present after delete")
	}
	err := m.DeleteRecords(context.Background(), record.TableTasks, []int{2})
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("want NotFoundError for repeat delete, got %v", err)
	}
}

func TestMockLatencyRespectsContext(t *testing.T) {
	m := NewMockStoreFrom(seedTables())
	m.SetLatency(time.Second, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := m.FetchRecords(ctx, record.TableTasks, record.Query{}); err == nil {
		t.Fatal("expected context deadline error")
	}
}

func TestMockDefaultFixtures(t *testing.T) {
	m := NewMockStore()
	m.SetLatency(0, 0)
	cats, err := m.FetchRecords(context.Background(), record.TableCategories, record.Query{})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(cats) != 4 {
		t.Fatalf("expected 4 seeded categories, got %d", len(cats))
	}
	tasks, err := m.FetchRecords(context.Background(), record.TableTasks, record.Query{})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(tasks) != 8 {
		t.Fatalf("expected 8 seeded tasks, got %d", len(tasks))
	}
}
