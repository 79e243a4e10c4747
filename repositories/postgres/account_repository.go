package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/taskdeck/taskdeck/models"
	"github.com/taskdeck/taskdeck/repositories"
	"go.uber.org/zap"
)

// AccountRepository implements the repositories.AccountRepository interface
type AccountRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB, logger *zap.Logger) repositories.AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, username, email, password_hash, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		pq.StringArray(account.Roles),
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		if terr := translateError(err); errors.Is(terr, repositories.ErrDuplicate) {
			return terr
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	r.logger.Debug("account created",
		zap.String("id", account.ID.String()),
		zap.String("email", account.Email))
	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `
		SELECT id, username, email, password_hash, roles, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT id, username, email, password_hash, roles, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`
	return r.getOne(ctx, query, email)
}

func (r *AccountRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.Account, error) {
	executor := GetExecutor(ctx, r.db)
	account := &models.Account{}
	var roles pq.StringArray

	err := executor.QueryRowContext(ctx, query, arg).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&roles,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if terr := translateError(err); errors.Is(terr, repositories.ErrNotFound) {
			return nil, terr
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	account.Roles = roles
	return account, nil
}

// ExistsByEmail reports whether an account with the email exists
func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`, email)
}

// ExistsByUsername reports whether an account with the username exists
func (r *AccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE username = $1)`, username)
}

func (r *AccountRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	executor := GetExecutor(ctx, r.db)
	var exists bool
	if err := executor.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return exists, nil
}

// Update updates an account's mutable fields
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET username = $2,
		    email = $3,
		    password_hash = $4,
		    roles = $5,
		    updated_at = $6
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		pq.StringArray(account.Roles),
		account.UpdatedAt,
	)

	if err != nil {
		if terr := translateError(err); errors.Is(terr, repositories.ErrDuplicate) {
			return terr
		}
		return fmt.Errorf("failed to update account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return repositories.ErrNotFound
	}

	r.logger.Debug("account updated", zap.String("id", account.ID.String()))
	return nil
}

// Delete removes an account; identities and tasks cascade
func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM accounts WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return repositories.ErrNotFound
	}

	r.logger.Debug("account deleted", zap.String("id", id.String()))
	return nil
}
