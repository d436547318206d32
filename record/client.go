package record

import "context"

// Client is the surface the task and category services use to reach a
// record store, remote or in-process. Implementations translate these calls
// into the store's envelope protocol and surface store-reported failures as
// domain.StoreError.
type Client interface {
	// FetchRecords returns every record of the table matching the query,
	// sorted per its OrderBy specification.
	FetchRecords(ctx context.Context, table string, q Query) ([]Record, error)
	// GetRecordByID returns one record, or (nil, nil) when the id is absent.
	GetRecordByID(ctx context.Context, table string, id int, q Query) (Record, error)
	// CreateRecords persists new records and returns them with their
	// store-assigned ids.
	CreateRecords(ctx context.Context, table string, recs []Record) ([]Record, error)
	// UpdateRecords merges each record's fields into the stored record named
	// by its "Id" key. The batch is not atomic: records already applied when
	// a later one fails stay applied, and the first failure is reported.
	UpdateRecords(ctx context.Context, table string, recs []Record) ([]Record, error)
	// DeleteRecords removes the records with the given ids.
	DeleteRecords(ctx context.Context, table string, ids []int) error
}
