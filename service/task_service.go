// Package service implements the task and category contracts the UI layer
// consumes, translating view-level intents (today, overdue, search, reorder)
// into the record store's query language.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"taskdeck/domain"
	"taskdeck/record"
)

// taskFields is the projection every task fetch requests.
var taskFields = record.Fields(
	"Name", "Tags", "title", "description", "category",
	"priority", "due_date", "completed", "created_at", "order",
)

// TaskService owns all reads and writes of the task collection.
type TaskService struct {
	store record.Client
	log   *log.Logger

	// now supplies "today" for the day-level derived queries.
	now func() time.Time
}

// NewTaskService creates a TaskService over the given store.
func NewTaskService(store record.Client, logger *log.Logger) *TaskService {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &TaskService{store: store, log: logger, now: time.Now}
}

// GetAll returns every task in manual display order.
func (s *TaskService) GetAll(ctx context.Context) ([]domain.Task, error) {
	q := record.Query{
		Fields:  taskFields,
		OrderBy: []record.SortSpec{{FieldName: "order", SortType: record.SortAsc}},
	}
	recs, err := s.store.FetchRecords(ctx, record.TableTasks, q)
	if err != nil {
		return nil, s.fail("fetch tasks", err)
	}
	return record.DecodeTasks(recs)
}

// GetByID returns one task, or nil when the id is absent.
func (s *TaskService) GetByID(ctx context.Context, id int) (*domain.Task, error) {
	rec, err := s.store.GetRecordByID(ctx, record.TableTasks, id, record.Query{Fields: taskFields})
	if err != nil {
		return nil, s.fail("fetch task", err)
	}
	if rec == nil {
		return nil, nil
	}
	t, err := record.DecodeTask(rec)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByCategory returns the tasks of one category in manual display order.
func (s *TaskService) GetByCategory(ctx context.Context, categoryID int) ([]domain.Task, error) {
	q := record.Query{
		Fields: taskFields,
		Where: []record.Condition{
			{FieldName: "category", Operator: record.OpEqualTo, Values: []any{categoryID}},
		},
		OrderBy: []record.SortSpec{{FieldName: "order", SortType: record.SortAsc}},
	}
	recs, err := s.store.FetchRecords(ctx, record.TableTasks, q)
	if err != nil {
		return nil, s.fail("fetch tasks by category", err)
	}
	return record.DecodeTasks(recs)
}

// GetTodayTasks returns every incomplete task due today or earlier, highest
// priority first. The result intentionally overlaps GetOverdueTasks: the
// today view composes its overdue and due-today sections from the two
// queries without double-filtering.
func (s *TaskService) GetTodayTasks(ctx context.Context) ([]domain.Task, error) {
	q := record.Query{
		Fields: taskFields,
		WhereGroups: []record.ConditionGroup{{
			Operator: record.GroupAnd,
			SubGroups: []record.SubGroup{
				{Conditions: []record.Condition{
					{FieldName: "due_date", Operator: record.OpLessThanOrEqualTo, Values: []any{s.today()}},
				}},
				{Conditions: []record.Condition{
					{FieldName: "completed", Operator: record.OpEqualTo, Values: []any{"false"}},
				}},
			},
		}},
		OrderBy: []record.SortSpec{
			{FieldName: "priority", SortType: record.SortDesc},
			{FieldName: "due_date", SortType: record.SortAsc},
		},
	}
	recs, err := s.store.FetchRecords(ctx, record.TableTasks, q)
	if err != nil {
		return nil, s.fail("fetch today tasks", err)
	}
	return record.DecodeTasks(recs)
}

// GetOverdueTasks returns every incomplete task whose due day is strictly
// before today, earliest first.
func (s *TaskService) GetOverdueTasks(ctx context.Context) ([]domain.Task, error) {
	q := record.Query{
		Fields: taskFields,
		WhereGroups: []record.ConditionGroup{{
			Operator: record.GroupAnd,
			SubGroups: []record.SubGroup{
				{Conditions: []record.Condition{
					{FieldName: "due_date", Operator: record.OpLessThan, Values: []any{s.today()}},
				}},
				{Conditions: []record.Condition{
					{FieldName: "completed", Operator: record.OpEqualTo, Values: []any{"false"}},
				}},
			},
		}},
		OrderBy: []record.SortSpec{{FieldName: "due_date", SortType: record.SortAsc}},
	}
	recs, err := s.store.FetchRecords(ctx, record.TableTasks, q)
	if err != nil {
		return nil, s.fail("fetch overdue tasks", err)
	}
	return record.DecodeTasks(recs)
}

// Search returns tasks whose title or description contains the query,
// case-insensitively, sorted like the today view.
func (s *TaskService) Search(ctx context.Context, query string) ([]domain.Task, error) {
	q := record.Query{
		Fields: taskFields,
		WhereGroups: []record.ConditionGroup{{
			Operator: record.GroupOr,
			SubGroups: []record.SubGroup{
				{Conditions: []record.Condition{
					{FieldName: "title", Operator: record.OpContains, Values: []any{query}},
				}},
				{Conditions: []record.Condition{
					{FieldName: "description", Operator: record.OpContains, Values: []any{query}},
				}},
			},
		}},
		OrderBy: []record.SortSpec{
			{FieldName: "priority", SortType: record.SortDesc},
			{FieldName: "due_date", SortType: record.SortAsc},
		},
	}
	recs, err := s.store.FetchRecords(ctx, record.TableTasks, q)
	if err != nil {
		return nil, s.fail("search tasks", err)
	}
	return record.DecodeTasks(recs)
}

// Create validates and persists a new task. Completed starts false,
// CreatedAt is set once here, and Order defaults to the current collection
// size so new tasks land at the end of the manual order.
func (s *TaskService) Create(ctx context.Context, nt domain.NewTask) (*domain.Task, error) {
	if strings.TrimSpace(nt.Title) == "" {
		return nil, &domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if nt.Category <= 0 {
		return nil, &domain.ValidationError{Field: "category", Reason: "must reference a category"}
	}
	if !domain.ValidPriority(nt.Priority) {
		return nil, &domain.ValidationError{Field: "priority", Reason: "must be 1, 2 or 3"}
	}
	if nt.DueDate.IsZero() {
		return nil, &domain.ValidationError{Field: "dueDate", Reason: "must be set"}
	}

	order := 0
	if nt.Order != nil {
		order = *nt.Order
	} else {
		existing, err := s.store.FetchRecords(ctx, record.TableTasks, record.Query{Fields: record.Fields("order")})
		if err != nil {
			return nil, s.fail("count tasks", err)
		}
		order = len(existing)
	}

	rec := record.EncodeNewTask(nt, order, s.now())
	created, err := s.store.CreateRecords(ctx, record.TableTasks, []record.Record{rec})
	if err != nil {
		return nil, s.fail("create task", err)
	}
	if len(created) == 0 {
		return nil, &domain.StoreError{Op: "create task", Message: "store returned no record"}
	}
	t, err := record.DecodeTask(created[0])
	if err != nil {
		return nil, err
	}
	s.log.WithFields(log.Fields{"task": t.ID, "category": t.Category}).Debug("task created")
	return &t, nil
}

// Update merges the patch into the stored task. The id itself is never
// modified. A missing id fails with NotFoundError.
func (s *TaskService) Update(ctx context.Context, id int, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Priority != nil && !domain.ValidPriority(*patch.Priority) {
		return nil, &domain.ValidationError{Field: "priority", Reason: "must be 1, 2 or 3"}
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, &domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, &domain.NotFoundError{Table: record.TableTasks, ID: id}
	}

	updated, err := s.store.UpdateRecords(ctx, record.TableTasks, []record.Record{record.EncodeTaskPatch(id, patch)})
	if err != nil {
		return nil, s.fail("update task", err)
	}
	if len(updated) == 0 {
		return nil, &domain.StoreError{Op: "update task", Message: "store returned no record"}
	}
	t, err := record.DecodeTask(updated[0])
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a task. A missing id fails with NotFoundError.
func (s *TaskService) Delete(ctx context.Context, id int) error {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return &domain.NotFoundError{Table: record.TableTasks, ID: id}
	}
	if err := s.store.DeleteRecords(ctx, record.TableTasks, []int{id}); err != nil {
		return s.fail("delete task", err)
	}
	return nil
}

// Reorder persists each task's order as its zero-based position in ids. The
// batch is not atomic at the store; callers treat any failure as total
// failure (see ReorderCoordinator).
func (s *TaskService) Reorder(ctx context.Context, ids []int) error {
	recs := make([]record.Record, len(ids))
	for i, id := range ids {
		recs[i] = record.Record{"Id": id, "order": i}
	}
	if _, err := s.store.UpdateRecords(ctx, record.TableTasks, recs); err != nil {
		return s.fail("reorder tasks", err)
	}
	s.log.WithField("count", len(ids)).Debug("task order persisted")
	return nil
}

// today renders the current UTC calendar day for due-date predicates.
func (s *TaskService) today() string {
	return s.now().UTC().Format("2006-01-02")
}

// fail logs a store failure with context and normalizes it into the error
// taxonomy without swallowing the original message.
func (s *TaskService) fail(op string, err error) error {
	s.log.WithFields(log.Fields{"op": op, "error": err}).Error("store call failed")
	return storeFailure(op, err)
}

// storeFailure passes taxonomy errors through untouched and wraps anything
// else as a StoreError carrying the underlying message verbatim.
func storeFailure(op string, err error) error {
	var se *domain.StoreError
	var nf *domain.NotFoundError
	if errors.As(err, &se) || errors.As(err, &nf) {
		return err
	}
	return &domain.StoreError{Op: op, Message: err.Error(), Err: err}
}
