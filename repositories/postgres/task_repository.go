package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/models"
	"github.com/taskdeck/taskdeck/repositories"
	"go.uber.org/zap"
)

// TaskRepository implements the repositories.TaskRepository interface
type TaskRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB, logger *zap.Logger) repositories.TaskRepository {
	return &TaskRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new task
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, account_id, title, description, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		task.ID,
		task.AccountID,
		task.Title,
		task.Description,
		task.Completed,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	r.logger.Debug("task created",
		zap.String("id", task.ID.String()),
		zap.String("account_id", task.AccountID.String()))
	return nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `
		SELECT id, account_id, title, description, completed, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	task := &models.Task{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.AccountID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)

	if err != nil {
		if terr := translateError(err); errors.Is(terr, repositories.ErrNotFound) {
			return nil, terr
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// GetByAccountID retrieves all tasks for an account, newest first
func (r *TaskRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.Task, error) {
	query := `
		SELECT id, account_id, title, description, completed, created_at, updated_at
		FROM tasks
		WHERE account_id = $1
		ORDER BY created_at DESC
	`
	return r.queryTasks(ctx, query, accountID)
}

// SearchByTitle retrieves an account's tasks whose title contains the keyword
func (r *TaskRepository) SearchByTitle(ctx context.Context, accountID uuid.UUID, keyword string) ([]*models.Task, error) {
	query := `
		SELECT id, account_id, title, description, completed, created_at, updated_at
		FROM tasks
		WHERE account_id = $1 AND title ILIKE '%' || $2 || '%'
		ORDER BY created_at DESC
	`
	return r.queryTasks(ctx, query, accountID, keyword)
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]*models.Task, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{}
		err := rows.Scan(
			&task.ID,
			&task.AccountID,
			&task.Title,
			&task.Description,
			&task.Completed,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// Update updates a task
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $2,
		    description = $3,
		    completed = $4,
		    updated_at = $5
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Completed,
		task.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return repositories.ErrNotFound
	}

	r.logger.Debug("task updated", zap.String("id", task.ID.String()))
	return nil
}

// Delete removes a task
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return repositories.ErrNotFound
	}

	r.logger.Debug("task deleted", zap.String("id", id.String()))
	return nil
}
