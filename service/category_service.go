package service

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"taskdeck/domain"
	"taskdeck/record"
)

var categoryFields = record.Fields("Name", "Tags", "color", "task_count")

// categoryAggregators mirrors what the record service is asked alongside a
// category fetch. The stored task_count and the aggregation result are both
// treated as hints only; counts are always recomputed from the task
// collection below.
var categoryAggregators = []record.Aggregator{{
	ID: "TaskCounts",
	Fields: []record.AggregateField{
		{Field: record.FieldName{Name: "Id"}, Function: "Count", Alias: "Count"},
	},
	Table:   record.TableRef{Name: record.TableTasks},
	GroupBy: []string{"category"},
}}

// CategoryService owns all reads and writes of the category collection.
type CategoryService struct {
	store record.Client
	log   *log.Logger
}

// NewCategoryService creates a CategoryService over the given store.
func NewCategoryService(store record.Client, logger *log.Logger) *CategoryService {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &CategoryService{store: store, log: logger}
}

// GetAll returns every category with TaskCount computed from the current
// task collection. Counts are recomputed on every call.
func (s *CategoryService) GetAll(ctx context.Context) ([]domain.Category, error) {
	recs, err := s.store.FetchRecords(ctx, record.TableCategories, record.Query{
		Fields:      categoryFields,
		Aggregators: categoryAggregators,
	})
	if err != nil {
		return nil, s.fail("fetch categories", err)
	}
	cats, err := record.DecodeCategories(recs)
	if err != nil {
		return nil, err
	}
	counts, err := s.taskCounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cats {
		cats[i].TaskCount = counts[cats[i].ID]
	}
	return cats, nil
}

// GetByID returns one category with a freshly computed TaskCount, or nil
// when the id is absent.
func (s *CategoryService) GetByID(ctx context.Context, id int) (*domain.Category, error) {
	rec, err := s.store.GetRecordByID(ctx, record.TableCategories, id, record.Query{Fields: categoryFields})
	if err != nil {
		return nil, s.fail("fetch category", err)
	}
	if rec == nil {
		return nil, nil
	}
	cat, err := record.DecodeCategory(rec)
	if err != nil {
		return nil, err
	}
	counts, err := s.taskCounts(ctx)
	if err != nil {
		return nil, err
	}
	cat.TaskCount = counts[cat.ID]
	return &cat, nil
}

// Create validates and persists a new category. Color defaults to the
// standard accent; the new category starts with zero tasks.
func (s *CategoryService) Create(ctx context.Context, nc domain.NewCategory) (*domain.Category, error) {
	if strings.TrimSpace(nc.Name) == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	created, err := s.store.CreateRecords(ctx, record.TableCategories, []record.Record{record.EncodeNewCategory(nc)})
	if err != nil {
		return nil, s.fail("create category", err)
	}
	if len(created) == 0 {
		return nil, &domain.StoreError{Op: "create category", Message: "store returned no record"}
	}
	cat, err := record.DecodeCategory(created[0])
	if err != nil {
		return nil, err
	}
	s.log.WithField("category", cat.ID).Debug("category created")
	return &cat, nil
}

// Update merges the patch into the stored category; the id is never
// modified. A missing id fails with NotFoundError.
func (s *CategoryService) Update(ctx context.Context, id int, patch domain.CategoryPatch) (*domain.Category, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	cur, err := s.store.GetRecordByID(ctx, record.TableCategories, id, record.Query{Fields: categoryFields})
	if err != nil {
		return nil, s.fail("fetch category", err)
	}
	if cur == nil {
		return nil, &domain.NotFoundError{Table: record.TableCategories, ID: id}
	}
	updated, err := s.store.UpdateRecords(ctx, record.TableCategories, []record.Record{record.EncodeCategoryPatch(id, patch)})
	if err != nil {
		return nil, s.fail("update category", err)
	}
	if len(updated) == 0 {
		return nil, &domain.StoreError{Op: "update category", Message: "store returned no record"}
	}
	cat, err := record.DecodeCategory(updated[0])
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// Delete removes a category and returns the removed entity. Tasks keep
// their category references; orphaned references are tolerated by the views.
func (s *CategoryService) Delete(ctx context.Context, id int) (*domain.Category, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, &domain.NotFoundError{Table: record.TableCategories, ID: id}
	}
	if err := s.store.DeleteRecords(ctx, record.TableCategories, []int{id}); err != nil {
		return nil, s.fail("delete category", err)
	}
	return cur, nil
}

// taskCounts joins against the full task collection and counts tasks per
// category id.
func (s *CategoryService) taskCounts(ctx context.Context) (map[int]int, error) {
	recs, err := s.store.FetchRecords(ctx, record.TableTasks, record.Query{Fields: record.Fields("category")})
	if err != nil {
		return nil, s.fail("count tasks", err)
	}
	counts := make(map[int]int, len(recs))
	for _, r := range recs {
		if cid, ok := record.AsInt(r["category"]); ok {
			counts[cid]++
		}
	}
	return counts, nil
}

func (s *CategoryService) fail(op string, err error) error {
	s.log.WithFields(log.Fields{"op": op, "error": err}).Error("store call failed")
	return storeFailure(op, err)
}
