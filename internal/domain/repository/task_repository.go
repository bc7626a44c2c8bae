package repository

import (
	"context"

	"github.com/taskflow/taskflow-api/internal/domain/entity"
)

// TaskRepository defines ownership-scoped task persistence. Every method
// that addresses a single task filters by (id, userID) jointly; ErrNotFound
// covers both a missing row and a row owned by someone else.
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	GetByOwner(ctx context.Context, id, userID string) (*entity.Task, error)
	ListByOwner(ctx context.Context, userID string) ([]entity.Task, error)
	Update(ctx context.Context, t *entity.Task) error
	UpdateStatus(ctx context.Context, id, userID string, status entity.TaskStatus) (*entity.Task, error)
	Delete(ctx context.Context, id, userID string) error
}
