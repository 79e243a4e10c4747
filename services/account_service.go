package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/models"
	"github.com/taskdeck/taskdeck/repositories"
	"go.uber.org/zap"
)

// AccountService handles account registration and profile management
type AccountService struct {
	accounts repositories.AccountRepository
	hasher   PasswordHasher
	logger   *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(accounts repositories.AccountRepository, hasher PasswordHasher, logger *zap.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		hasher:   hasher,
		logger:   logger,
	}
}

// Register creates a new account from a direct signup
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*models.Account, error) {
	if taken, err := s.accounts.ExistsByUsername(ctx, username); err != nil {
		return nil, WrapInternal("failed to check username", err)
	} else if taken {
		return nil, ErrDuplicateUsername
	}

	if taken, err := s.accounts.ExistsByEmail(ctx, email); err != nil {
		return nil, WrapInternal("failed to check email", err)
	} else if taken {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, WrapInternal("failed to hash password", err)
	}

	account := models.NewAccount(username, email, hash)
	if err := s.accounts.Create(ctx, account); err != nil {
		// The exists checks race with concurrent signups; the database
		// constraint is authoritative.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, WrapInternal("failed to create account", err)
	}

	s.logger.Info("account registered",
		zap.String("account_id", account.ID.String()),
		zap.String("username", account.Username))
	return account, nil
}

// Get retrieves an account by ID
func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, WrapInternal("failed to get account", err)
	}
	return account, nil
}

// UpdateProfile changes an account's username, email and optionally password
func (s *AccountService) UpdateProfile(ctx context.Context, id uuid.UUID, username, email, password string) (*models.Account, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if username != account.Username {
		if taken, err := s.accounts.ExistsByUsername(ctx, username); err != nil {
			return nil, WrapInternal("failed to check username", err)
		} else if taken {
			return nil, ErrDuplicateUsername
		}
		account.Username = username
	}

	if email != account.Email {
		if taken, err := s.accounts.ExistsByEmail(ctx, email); err != nil {
			return nil, WrapInternal("failed to check email", err)
		} else if taken {
			return nil, ErrDuplicateEmail
		}
		account.Email = email
	}

	if password != "" {
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return nil, WrapInternal("failed to hash password", err)
		}
		account.PasswordHash = hash
	}

	account.UpdatedAt = timeNow()
	if err := s.accounts.Update(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, WrapInternal("failed to update account", err)
	}

	s.logger.Info("account updated", zap.String("account_id", account.ID.String()))
	return account, nil
}

// Delete removes an account and everything it owns
func (s *AccountService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.accounts.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return WrapInternal("failed to delete account", err)
	}

	s.logger.Info("account deleted", zap.String("account_id", id.String()))
	return nil
}
