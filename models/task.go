package models

import (
	"time"

	"github.com/google/uuid"
)

// Task represents a single to-do item owned by an account
type Task struct {
	ID          uuid.UUID `json:"id" db:"id"`
	AccountID   uuid.UUID `json:"account_id" db:"account_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Completed   bool      `json:"completed" db:"completed"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Task model
func (Task) TableName() string {
	return "tasks"
}

// NewTask creates a new Task owned by the given account
func NewTask(accountID uuid.UUID, title, description string, completed bool) *Task {
	now := time.Now()
	return &Task{
		ID:          uuid.New(),
		AccountID:   accountID,
		Title:       title,
		Description: description,
		Completed:   completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply replaces the mutable fields and bumps the update timestamp
func (t *Task) Apply(title, description string, completed bool) {
	t.Title = title
	t.Description = description
	t.Completed = completed
	t.UpdatedAt = time.Now()
}
