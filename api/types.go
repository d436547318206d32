package api

import (
	"context"

	"taskdeck/domain"
)

// Tasks is the task data surface the handlers expose to the UI layer.
type Tasks interface {
	GetAll(ctx context.Context) ([]domain.Task, error)
	GetByID(ctx context.Context, id int) (*domain.Task, error)
	GetByCategory(ctx context.Context, categoryID int) ([]domain.Task, error)
	GetTodayTasks(ctx context.Context) ([]domain.Task, error)
	GetOverdueTasks(ctx context.Context) ([]domain.Task, error)
	Search(ctx context.Context, query string) ([]domain.Task, error)
	Create(ctx context.Context, nt domain.NewTask) (*domain.Task, error)
	Update(ctx context.Context, id int, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id int) error
	Reorder(ctx context.Context, ids []int) error
}

// Categories is the category data surface the handlers expose.
type Categories interface {
	GetAll(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id int) (*domain.Category, error)
	Create(ctx context.Context, nc domain.NewCategory) (*domain.Category, error)
	Update(ctx context.Context, id int, patch domain.CategoryPatch) (*domain.Category, error)
	Delete(ctx context.Context, id int) (*domain.Category, error)
}

// Authenticator is implemented by types able to extract user IDs from
// Authorization headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}
