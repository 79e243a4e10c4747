package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a uniqueness
	// constraint. Callers racing on first-time creation treat it as a
	// signal to retry the lookup path, not as a fatal error.
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager executes a function within a database transaction.
// The function receives a context carrying the transaction; repository
// calls made with that context run inside it. Commits on success, rolls
// back on error.
type TransactionManager interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AccountRepository handles account persistence
type AccountRepository interface {
	// Create inserts a new account
	Create(ctx context.Context, account *models.Account) error

	// GetByID retrieves an account by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)

	// GetByEmail retrieves an account by email
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// ExistsByEmail reports whether an account with the email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByUsername reports whether an account with the username exists
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Update updates an account's mutable fields
	Update(ctx context.Context, account *models.Account) error

	// Delete removes an account; owned external identities and tasks
	// cascade at the database level
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExternalIdentityRepository handles external identity links
type ExternalIdentityRepository interface {
	// Create inserts a new identity link
	Create(ctx context.Context, identity *models.ExternalIdentity) error

	// GetByProviderSubject retrieves a link by its unique
	// (provider, subject_id) pair
	GetByProviderSubject(ctx context.Context, provider models.Provider, subjectID string) (*models.ExternalIdentity, error)

	// GetByAccountID retrieves all links owned by an account
	GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.ExternalIdentity, error)
}

// TaskRepository handles task persistence
type TaskRepository interface {
	// Create inserts a new task
	Create(ctx context.Context, task *models.Task) error

	// GetByID retrieves a task by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)

	// GetByAccountID retrieves all tasks for an account, newest first
	GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.Task, error)

	// SearchByTitle retrieves an account's tasks whose title contains
	// the keyword
	SearchByTitle(ctx context.Context, accountID uuid.UUID, keyword string) ([]*models.Task, error)

	// Update updates a task
	Update(ctx context.Context, task *models.Task) error

	// Delete removes a task
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Accounts   AccountRepository
	Identities ExternalIdentityRepository
	Tasks      TaskRepository
}
