package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/taskflow/taskflow-api/internal/domain/entity"
	repo "github.com/taskflow/taskflow-api/internal/domain/repository"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidStatus = errors.New("invalid task status")
)

// TaskService implements the ownership contract: every operation resolves
// the caller's user record from the session email first, then runs a store
// operation scoped by (task id, user id) jointly. A task that does not exist
// and a task owned by someone else are the same ErrTaskNotFound.
type TaskService struct {
	Tasks  repo.TaskRepository
	Users  repo.UserRepository
	Logger *logrus.Logger
}

func NewTaskService(tasks repo.TaskRepository, users repo.UserRepository, logger *logrus.Logger) *TaskService {
	return &TaskService{Tasks: tasks, Users: users, Logger: logger}
}

// resolveOwner maps the session email to the owning user record. Resolution
// is side-effect-free and runs before any mutation.
func (s *TaskService) resolveOwner(ctx context.Context, email string) (*entity.User, error) {
	if email == "" {
		return nil, ErrUserNotFound
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// checkID rejects malformed task ids up front; they can never match a row,
// so they are reported exactly like a missing one.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrTaskNotFound
	}
	return nil
}

// List returns all tasks owned by the caller, most recent first.
func (s *TaskService) List(ctx context.Context, email string) ([]entity.Task, error) {
	owner, err := s.resolveOwner(ctx, email)
	if err != nil {
		return nil, err
	}
	tasks, err := s.Tasks.ListByOwner(ctx, owner.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", owner.ID).Error("list tasks failed")
		}
		return nil, err
	}
	return tasks, nil
}

type CreateTaskInput struct {
	Title       string
	Description string
}

// Create inserts a task owned by the caller. Status always starts PENDING
// and the owner is bound server-side, never taken from the request.
func (s *TaskService) Create(ctx context.Context, email string, in CreateTaskInput) (*entity.Task, error) {
	owner, err := s.resolveOwner(ctx, email)
	if err != nil {
		return nil, err
	}
	t := &entity.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      entity.StatusPending,
		UserID:      owner.ID,
	}
	if err := s.Tasks.Create(ctx, t); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", owner.ID).Error("create task failed")
		}
		return nil, err
	}
	return t, nil
}

// Get fetches one task under the combined (id, owner) filter.
func (s *TaskService) Get(ctx context.Context, email, taskID string) (*entity.Task, error) {
	owner, err := s.resolveOwner(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := checkID(taskID); err != nil {
		return nil, err
	}
	t, err := s.Tasks.GetByOwner(ctx, taskID, owner.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

type UpdateTaskInput struct {
	Title       string
	Description string
	Status      *entity.TaskStatus
}

// Update replaces title and description; status is applied only when the
// request carried one, otherwise the stored value is kept.
func (s *TaskService) Update(ctx context.Context, email, taskID string, in UpdateTaskInput) (*entity.Task, error) {
	owner, err := s.resolveOwner(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := checkID(taskID); err != nil {
		return nil, err
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	t, err := s.Tasks.GetByOwner(ctx, taskID, owner.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	t.Title = in.Title
	t.Description = in.Description
	if in.Status != nil {
		t.Status = *in.Status
	}

	if err := s.Tasks.Update(ctx, t); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("task_id", taskID).Error("update task failed")
		}
		return nil, err
	}
	return t, nil
}

// UpdateStatus applies a status-only patch after the same ownership check.
func (s *TaskService) UpdateStatus(ctx context.Context, email, taskID string, status entity.TaskStatus) (*entity.Task, error) {
	owner, err := s.resolveOwner(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := checkID(taskID); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	t, err := s.Tasks.UpdateStatus(ctx, taskID, owner.ID, status)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("task_id", taskID).Error("patch task failed")
		}
		return nil, err
	}
	return t, nil
}

// Delete removes the task permanently. No tombstone, no recovery.
func (s *TaskService) Delete(ctx context.Context, email, taskID string) error {
	owner, err := s.resolveOwner(ctx, email)
	if err != nil {
		return err
	}
	if err := checkID(taskID); err != nil {
		return err
	}
	if err := s.Tasks.Delete(ctx, taskID, owner.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTaskNotFound
		}
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("task_id", taskID).Error("delete task failed")
		}
		return err
	}
	return nil
}
