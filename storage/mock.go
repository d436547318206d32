package storage

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"taskdeck/domain"
	"taskdeck/record"
)

// Default artificial latency range for the mock store, chosen to exercise
// loading-state UI the way a real network round-trip would.
const (
	mockMinDelay = 150 * time.Millisecond
	mockMaxDelay = 400 * time.Millisecond
)

// MockStore is an in-process record store for offline development and
// tests. It evaluates the full predicate language of the record protocol
// over seeded tables and adds artificial per-call latency. The store owns
// its tables outright; nothing outside the service layer mutates them.
type MockStore struct {
	mu       sync.Mutex
	tables   map[string][]record.Record
	nextID   map[string]int
	minDelay time.Duration
	maxDelay time.Duration
}

// NewMockStore returns a store seeded with the development fixtures and the
// default latency range.
func NewMockStore() *MockStore {
	m := NewMockStoreFrom(fixtureTables())
	m.minDelay = mockMinDelay
	m.maxDelay = mockMaxDelay
	return m
}

// NewMockStoreFrom returns a store over the given tables with no artificial
// latency. The seed records are cloned, never aliased.
func NewMockStoreFrom(tables map[string][]record.Record) *MockStore {
	m := &MockStore{
		tables: map[string][]record.Record{},
		nextID: map[string]int{},
	}
	for table, recs := range tables {
		next := 1
		for _, r := range recs {
			m.tables[table] = append(m.tables[table], cloneRecord(r))
			if id, ok := record.AsInt(r["Id"]); ok && id >= next {
				next = id + 1
			}
		}
		m.nextID[table] = next
	}
	return m
}

// SetLatency overrides the artificial latency range. Zero disables it.
func (m *MockStore) SetLatency(min, max time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if max < min {
		max = min
	}
	m.minDelay, m.maxDelay = min, max
}

func (m *MockStore) sleep(ctx context.Context) error {
	m.mu.Lock()
	min, max := m.minDelay, m.maxDelay
	m.mu.Unlock()
	if max <= 0 {
		return nil
	}
	d := min
	if spread := max - min; spread > 0 {
		d += time.Duration(rand.Int63n(int64(spread)))
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FetchRecords implements record.Client.
func (m *MockStore) FetchRecords(ctx context.Context, table string, q record.Query) ([]record.Record, error) {
	if err := m.sleep(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []record.Record{}
	for _, r := range m.tables[table] {
		if record.Matches(r, q) {
			out = append(out, cloneRecord(r))
		}
	}
	record.ApplySort(out, q.OrderBy)
	return out, nil
}

// GetRecordByID implements record.Client. A miss returns (nil, nil).
func (m *MockStore) GetRecordByID(ctx context.Context, table string, id int, _ record.Query) (record.Record, error) {
	if err := m.sleep(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx := m.indexOf(table, id); idx >= 0 {
		return cloneRecord(m.tables[table][idx]), nil
	}
	return nil, nil
}

// CreateRecords implements record.Client, assigning dense integer ids.
func (m *MockStore) CreateRecords(ctx context.Context, table string, recs []record.Record) ([]record.Record, error) {
	if err := m.sleep(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]record.Record, 0, len(recs))
	for _, r := range recs {
		stored := cloneRecord(r)
		stored["Id"] = m.nextID[table]
		m.nextID[table]++
		m.tables[table] = append(m.tables[table], stored)
		out = append(out, cloneRecord(stored))
	}
	return out, nil
}

// UpdateRecords implements record.Client with field-level merges. The batch
// is applied in order and stops at the first missing id; records merged
// before the failure stay merged.
func (m *MockStore) UpdateRecords(ctx context.Context, table string, recs []record.Record) ([]record.Record, error) {
	if err := m.sleep(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]record.Record, 0, len(recs))
	for _, r := range recs {
		id, ok := record.AsInt(r["Id"])
		if !ok {
			return nil, &domain.StoreError{Op: "update " + table, Message: "record missing Id"}
		}
		idx := m.indexOf(table, id)
		if idx < 0 {
			return nil, &domain.NotFoundError{Table: table, ID: id}
		}
		stored := m.tables[table][idx]
		for k, v := range r {
			if k == "Id" {
				continue
			}
			stored[k] = v
		}
		out = append(out, cloneRecord(stored))
	}
	return out, nil
}

// DeleteRecords implements record.Client. Deletions before a missing id
// stay applied.
func (m *MockStore) DeleteRecords(ctx context.Context, table string, ids []int) error {
	if err := m.sleep(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		idx := m.indexOf(table, id)
		if idx < 0 {
			return &domain.NotFoundError{Table: table, ID: id}
		}
		m.tables[table] = append(m.tables[table][:idx], m.tables[table][idx+1:]...)
	}
	return nil
}

// indexOf must be called with the mutex held.
func (m *MockStore) indexOf(table string, id int) int {
	for i, r := range m.tables[table] {
		if got, ok := record.AsInt(r["Id"]); ok && got == id {
			return i
		}
	}
	return -1
}

func cloneRecord(r record.Record) record.Record {
	out := make(record.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
