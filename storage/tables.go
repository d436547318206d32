package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/bytedance/sonic"

	"taskdeck/domain"
	"taskdeck/record"
)

// Every record lives in one partition per table; the collections here are
// small, per-user working sets, and a single partition keeps listing cheap.
const recordsPartition = "records"

// Tables is a record.Client backed by Azure Table Storage. Equality on the
// partition key is pushed down to the service; the rest of the query's
// predicate language is evaluated locally over the fetched partition.
type Tables struct {
	clients map[string]*aztables.Client

	mu     sync.Mutex
	nextID map[string]int
}

// NewTables creates a Tables client from the given connection string and
// per-record-table Azure table names.
func NewTables(connStr, tasksTable, categoriesTable string) (*Tables, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return &Tables{
		clients: map[string]*aztables.Client{
			record.TableTasks:      svc.NewClient(tasksTable),
			record.TableCategories: svc.NewClient(categoriesTable),
		},
		nextID: map[string]int{},
	}, nil
}

func (t *Tables) client(table string) (*aztables.Client, error) {
	c, ok := t.clients[table]
	if !ok {
		return nil, &domain.StoreError{Op: "table " + table, Message: "unknown table"}
	}
	return c, nil
}

// FetchRecords implements record.Client.
func (t *Tables) FetchRecords(ctx context.Context, table string, q record.Query) ([]record.Record, error) {
	recs, err := t.listPartition(ctx, table)
	if err != nil {
		return nil, err
	}
	out := recs[:0]
	for _, r := range recs {
		if record.Matches(r, q) {
			out = append(out, r)
		}
	}
	record.ApplySort(out, q.OrderBy)
	return out, nil
}

// GetRecordByID implements record.Client. A missing entity is a lookup
// miss, not an error.
func (t *Tables) GetRecordByID(ctx context.Context, table string, id int, _ record.Query) (record.Record, error) {
	c, err := t.client(table)
	if err != nil {
		return nil, err
	}
	ent, err := c.GetEntity(ctx, recordsPartition, strconv.Itoa(id), nil)
	if err != nil {
		if isTableNotFound(err) {
			return nil, nil
		}
		return nil, &domain.StoreError{Op: "get " + table, Message: err.Error(), Err: err}
	}
	return decodeTableEntity(ent.Value)
}

// CreateRecords implements record.Client, assigning the next dense id per
// table.
func (t *Tables) CreateRecords(ctx context.Context, table string, recs []record.Record) ([]record.Record, error) {
	c, err := t.client(table)
	if err != nil {
		return nil, err
	}
	out := make([]record.Record, 0, len(recs))
	for _, r := range recs {
		id, err := t.claimID(ctx, table)
		if err != nil {
			return nil, err
		}
		payload, err := encodeTableEntity(id, r)
		if err != nil {
			return nil, &domain.StoreError{Op: "create " + table, Message: "encode entity", Err: err}
		}
		if _, err := c.AddEntity(ctx, payload, nil); err != nil {
			return nil, &domain.StoreError{Op: "create " + table, Message: err.Error(), Err: err}
		}
		stored := cloneRecord(r)
		stored["Id"] = id
		out = append(out, stored)
	}
	return out, nil
}

// UpdateRecords implements record.Client via native merge-mode entity
// updates. Entities merged before a failure stay merged.
func (t *Tables) UpdateRecords(ctx context.Context, table string, recs []record.Record) ([]record.Record, error) {
	c, err := t.client(table)
	if err != nil {
		return nil, err
	}
	out := make([]record.Record, 0, len(recs))
	for _, r := range recs {
		id, ok := record.AsInt(r["Id"])
		if !ok {
			return nil, &domain.StoreError{Op: "update " + table, Message: "record missing Id"}
		}
		payload, err := encodeTableEntity(id, r)
		if err != nil {
			return nil, &domain.StoreError{Op: "update " + table, Message: "encode entity", Err: err}
		}
		et := azcore.ETagAny
		_, err = c.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{IfMatch: &et, UpdateMode: aztables.UpdateModeMerge})
		if err != nil {
			if isTableNotFound(err) {
				return nil, &domain.NotFoundError{Table: table, ID: id}
			}
			return nil, &domain.StoreError{Op: "update " + table, Message: err.Error(), Err: err}
		}
		merged, err := t.GetRecordByID(ctx, table, id, record.Query{})
		if err != nil {
			return nil, err
		}
		if merged != nil {
			out = append(out, merged)
		}
	}
	return out, nil
}

// DeleteRecords implements record.Client. Entities removed before a failure
// stay removed.
func (t *Tables) DeleteRecords(ctx context.Context, table string, ids []int) error {
	c, err := t.client(table)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := c.DeleteEntity(ctx, recordsPartition, strconv.Itoa(id), nil); err != nil {
			if isTableNotFound(err) {
				return &domain.NotFoundError{Table: table, ID: id}
			}
			return &domain.StoreError{Op: "delete " + table, Message: err.Error(), Err: err}
		}
	}
	return nil
}

func (t *Tables) listPartition(ctx context.Context, table string) ([]record.Record, error) {
	c, err := t.client(table)
	if err != nil {
		return nil, err
	}
	filter := fmt.Sprintf("PartitionKey eq '%s'", recordsPartition)
	pager := c.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	recs := []record.Record{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, &domain.StoreError{Op: "fetch " + table, Message: err.Error(), Err: err}
		}
		for _, raw := range resp.Entities {
			rec, err := decodeTableEntity(raw)
			if err != nil {
				return nil, err
			}
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

// claimID reserves the next record id for a table, scanning the partition
// once to discover the current maximum.
func (t *Tables) claimID(ctx context.Context, table string) (int, error) {
	t.mu.Lock()
	next, known := t.nextID[table]
	t.mu.Unlock()
	if !known {
		recs, err := t.listPartition(ctx, table)
		if err != nil {
			return 0, err
		}
		next = 1
		for _, r := range recs {
			if id, ok := record.AsInt(r["Id"]); ok && id >= next {
				next = id + 1
			}
		}
	}
	t.mu.Lock()
	if cur, ok := t.nextID[table]; ok && cur > next {
		next = cur
	}
	t.nextID[table] = next + 1
	t.mu.Unlock()
	return next, nil
}

func encodeTableEntity(id int, r record.Record) ([]byte, error) {
	ent := map[string]any{
		"PartitionKey": recordsPartition,
		"RowKey":       strconv.Itoa(id),
	}
	for k, v := range r {
		if k == "Id" {
			continue
		}
		ent[k] = v
	}
	return sonic.Marshal(ent)
}

func decodeTableEntity(data []byte) (record.Record, error) {
	var raw map[string]any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, &domain.StoreError{Op: "decode entity", Message: "malformed entity", Err: err}
	}
	rec := record.Record{}
	for k, v := range raw {
		switch k {
		case "PartitionKey", "RowKey", "Timestamp":
			continue
		}
		if isODataKey(k) {
			continue
		}
		rec[k] = v
	}
	rk, _ := raw["RowKey"].(string)
	id, err := strconv.Atoi(rk)
	if err != nil {
		return nil, &domain.StoreError{Op: "decode entity", Message: "non-numeric row key " + rk}
	}
	rec["Id"] = id
	return rec, nil
}

func isODataKey(k string) bool {
	return strings.Contains(k, "odata")
}

func isTableNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == 404
}
