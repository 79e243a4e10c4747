package services

import (
	"context"
	"errors"
	"time"

	"github.com/taskdeck/taskdeck/models"
	"github.com/taskdeck/taskdeck/repositories"
	"github.com/taskdeck/taskdeck/token"
	"go.uber.org/zap"
)

// LoginService authenticates email/password credentials and issues session
// tokens
type LoginService struct {
	accounts repositories.AccountRepository
	hasher   PasswordHasher
	codec    *token.Codec
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewLoginService creates a new login service
func NewLoginService(accounts repositories.AccountRepository, hasher PasswordHasher, codec *token.Codec, tokenTTL time.Duration, logger *zap.Logger) *LoginService {
	return &LoginService{
		accounts: accounts,
		hasher:   hasher,
		codec:    codec,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Authenticate verifies the credential pair and returns a signed token.
// An unknown email and a wrong password produce the same failure; callers
// cannot probe which accounts exist.
func (s *LoginService) Authenticate(ctx context.Context, email, password string) (string, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrLoginFailed
		}
		return "", WrapInternal("failed to look up account", err)
	}

	if !s.hasher.Verify(account.PasswordHash, password) {
		s.logger.Debug("password mismatch", zap.String("account_id", account.ID.String()))
		return "", ErrLoginFailed
	}

	signed, err := s.codec.Issue(account.ID, account.Username, account.Email, account.FirstRole(), s.tokenTTL)
	if err != nil {
		return "", WrapInternal("failed to issue token", err)
	}

	s.logger.Info("login succeeded", zap.String("account_id", account.ID.String()))
	return signed, nil
}

// IssueFor mints a token for an already-authenticated account. Federated
// callbacks use it after reconciliation, where no password check applies.
func (s *LoginService) IssueFor(account *models.Account) (string, error) {
	signed, err := s.codec.Issue(account.ID, account.Username, account.Email, account.FirstRole(), s.tokenTTL)
	if err != nil {
		return "", WrapInternal("failed to issue token", err)
	}
	return signed, nil
}
