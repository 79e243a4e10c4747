package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/models"
	"github.com/taskdeck/taskdeck/repositories"
	"go.uber.org/zap"
)

func TestTaskCreate_SetsOwner(t *testing.T) {
	tasks := new(MockTaskRepository)
	tasks.On("Create", mock.Anything, mock.AnythingOfType("*models.Task")).Return(nil)

	owner := uuid.New()
	svc := NewTaskService(tasks, zap.NewNop())
	task, err := svc.Create(context.Background(), owner, "buy milk", "two liters", false)

	require.NoError(t, err)
	assert.Equal(t, owner, task.AccountID)
	assert.Equal(t, "buy milk", task.Title)
	assert.False(t, task.Completed)
	tasks.AssertExpectations(t)
}

func TestTaskGet_NotFound(t *testing.T) {
	tasks := new(MockTaskRepository)
	taskID := uuid.New()
	tasks.On("GetByID", mock.Anything, taskID).Return(nil, repositories.ErrNotFound)

	svc := NewTaskService(tasks, zap.NewNop())
	_, err := svc.Get(context.Background(), uuid.New(), taskID)

	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskGet_WrongOwner(t *testing.T) {
	task := models.NewTask(uuid.New(), "private", "", false)
	tasks := new(MockTaskRepository)
	tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

	svc := NewTaskService(tasks, zap.NewNop())
	_, err := svc.Get(context.Background(), uuid.New(), task.ID)

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestTaskUpdate_AppliesFields(t *testing.T) {
	owner := uuid.New()
	task := models.NewTask(owner, "old title", "old desc", false)

	tasks := new(MockTaskRepository)
	tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	tasks.On("Update", mock.Anything, task).Return(nil)

	svc := NewTaskService(tasks, zap.NewNop())
	updated, err := svc.Update(context.Background(), owner, task.ID, "new title", "new desc", true)

	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, "new desc", updated.Description)
	assert.True(t, updated.Completed)
	tasks.AssertExpectations(t)
}

func TestTaskUpdate_WrongOwnerNeverWrites(t *testing.T) {
	task := models.NewTask(uuid.New(), "private", "", false)
	tasks := new(MockTaskRepository)
	tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

	svc := NewTaskService(tasks, zap.NewNop())
	_, err := svc.Update(context.Background(), uuid.New(), task.ID, "hijacked", "", true)

	assert.ErrorIs(t, err, ErrAccessDenied)
	tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTaskDelete_WrongOwnerNeverDeletes(t *testing.T) {
	task := models.NewTask(uuid.New(), "private", "", false)
	tasks := new(MockTaskRepository)
	tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

	svc := NewTaskService(tasks, zap.NewNop())
	err := svc.Delete(context.Background(), uuid.New(), task.ID)

	assert.ErrorIs(t, err, ErrAccessDenied)
	tasks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestTaskList_Empty(t *testing.T) {
	owner := uuid.New()
	tasks := new(MockTaskRepository)
	tasks.On("GetByAccountID", mock.Anything, owner).Return([]*models.Task{}, nil)

	svc := NewTaskService(tasks, zap.NewNop())
	listed, err := svc.List(context.Background(), owner)

	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestTaskSearch_PassesKeyword(t *testing.T) {
	owner := uuid.New()
	match := models.NewTask(owner, "buy milk", "", false)
	tasks := new(MockTaskRepository)
	tasks.On("SearchByTitle", mock.Anything, owner, "milk").Return([]*models.Task{match}, nil)

	svc := NewTaskService(tasks, zap.NewNop())
	found, err := svc.Search(context.Background(), owner, "milk")

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, match.ID, found[0].ID)
}
