package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/models"
	"github.com/taskdeck/taskdeck/repositories"
	"go.uber.org/zap"
)

// TaskService handles task CRUD scoped to the owning account
type TaskService struct {
	tasks  repositories.TaskRepository
	logger *zap.Logger
}

// NewTaskService creates a new task service
func NewTaskService(tasks repositories.TaskRepository, logger *zap.Logger) *TaskService {
	return &TaskService{
		tasks:  tasks,
		logger: logger,
	}
}

// Create adds a task owned by the given account
func (s *TaskService) Create(ctx context.Context, accountID uuid.UUID, title, description string, completed bool) (*models.Task, error) {
	task := models.NewTask(accountID, title, description, completed)
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, WrapInternal("failed to create task", err)
	}

	s.logger.Debug("task created",
		zap.String("task_id", task.ID.String()),
		zap.String("account_id", accountID.String()))
	return task, nil
}

// List returns the account's tasks, newest first
func (s *TaskService) List(ctx context.Context, accountID uuid.UUID) ([]*models.Task, error) {
	tasks, err := s.tasks.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, WrapInternal("failed to list tasks", err)
	}
	return tasks, nil
}

// Search returns the account's tasks whose title contains the keyword
func (s *TaskService) Search(ctx context.Context, accountID uuid.UUID, keyword string) ([]*models.Task, error) {
	tasks, err := s.tasks.SearchByTitle(ctx, accountID, keyword)
	if err != nil {
		return nil, WrapInternal("failed to search tasks", err)
	}
	return tasks, nil
}

// Get retrieves a single task, enforcing ownership
func (s *TaskService) Get(ctx context.Context, accountID, taskID uuid.UUID) (*models.Task, error) {
	return s.getOwned(ctx, accountID, taskID)
}

// Update replaces a task's mutable fields, enforcing ownership
func (s *TaskService) Update(ctx context.Context, accountID, taskID uuid.UUID, title, description string, completed bool) (*models.Task, error) {
	task, err := s.getOwned(ctx, accountID, taskID)
	if err != nil {
		return nil, err
	}

	task.Apply(title, description, completed)
	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, WrapInternal("failed to update task", err)
	}

	s.logger.Debug("task updated", zap.String("task_id", task.ID.String()))
	return task, nil
}

// Delete removes a task, enforcing ownership
func (s *TaskService) Delete(ctx context.Context, accountID, taskID uuid.UUID) error {
	if _, err := s.getOwned(ctx, accountID, taskID); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTaskNotFound
		}
		return WrapInternal("failed to delete task", err)
	}

	s.logger.Debug("task deleted", zap.String("task_id", taskID.String()))
	return nil
}

// getOwned fetches a task and verifies it belongs to the account. A task
// owned by someone else is reported as forbidden, not hidden; the IDs are
// random UUIDs so existence is not a meaningful leak.
func (s *TaskService) getOwned(ctx context.Context, accountID, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, WrapInternal("failed to get task", err)
	}

	if task.AccountID != accountID {
		return nil, ErrAccessDenied
	}
	return task, nil
}
