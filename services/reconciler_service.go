package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/models"
	"github.com/taskdeck/taskdeck/repositories"
	"go.uber.org/zap"
)

// ExternalSubject is the provider-verified identity handed to the reconciler
// after a successful federated exchange
type ExternalSubject struct {
	Provider    models.Provider
	SubjectID   string
	Email       string
	DisplayName string
}

// ReconcilerService maps a provider-verified external subject onto exactly
// one local account. Resolution order is fixed: an existing identity link
// wins, then an account with the same email gets the identity attached, and
// only then is a fresh account created. The operation is idempotent; repeat
// logins with the same subject converge on the same account.
type ReconcilerService struct {
	accounts   repositories.AccountRepository
	identities repositories.ExternalIdentityRepository
	txManager  repositories.TransactionManager
	hasher     PasswordHasher
	logger     *zap.Logger
}

// NewReconcilerService creates a new reconciler service
func NewReconcilerService(
	accounts repositories.AccountRepository,
	identities repositories.ExternalIdentityRepository,
	txManager repositories.TransactionManager,
	hasher PasswordHasher,
	logger *zap.Logger,
) *ReconcilerService {
	return &ReconcilerService{
		accounts:   accounts,
		identities: identities,
		txManager:  txManager,
		hasher:     hasher,
		logger:     logger,
	}
}

// Reconcile resolves the external subject to a local account, creating the
// identity link and, if needed, the account. Two concurrent first logins with
// the same subject race on the database uniqueness constraints; the loser
// retries the lookup path once and lands on the winner's account.
func (s *ReconcilerService) Reconcile(ctx context.Context, subject ExternalSubject) (*models.Account, error) {
	account, err := s.resolve(ctx, subject)
	if err != nil && errors.Is(err, repositories.ErrDuplicate) {
		s.logger.Debug("reconcile lost creation race, retrying lookup",
			zap.String("provider", string(subject.Provider)),
			zap.String("subject_id", subject.SubjectID))
		account, err = s.resolve(ctx, subject)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, WrapInternal("reconciliation did not converge", err)
		}
		var domainErr *DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, WrapInternal("reconciliation failed", err)
	}
	return account, nil
}

func (s *ReconcilerService) resolve(ctx context.Context, subject ExternalSubject) (*models.Account, error) {
	// Fast path: the subject has logged in before.
	identity, err := s.identities.GetByProviderSubject(ctx, subject.Provider, subject.SubjectID)
	if err == nil {
		return s.accounts.GetByID(ctx, identity.AccountID)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	// Same email, different door: attach the identity to the existing
	// account instead of creating a second one.
	account, err := s.accounts.GetByEmail(ctx, subject.Email)
	if err == nil {
		link := models.NewExternalIdentity(subject.Provider, subject.SubjectID, account.ID)
		if err := s.identities.Create(ctx, link); err != nil {
			return nil, err
		}
		s.logger.Info("external identity attached to existing account",
			zap.String("provider", string(subject.Provider)),
			zap.String("account_id", account.ID.String()))
		return account, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	// First contact: provision an account and its identity link atomically.
	placeholder, err := s.hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to hash placeholder credential: %w", err)
	}

	account = models.NewAccount(federatedUsername(subject.Provider), subject.Email, placeholder)
	err = s.txManager.InTransaction(ctx, func(txCtx context.Context) error {
		if err := s.accounts.Create(txCtx, account); err != nil {
			return err
		}
		link := models.NewExternalIdentity(subject.Provider, subject.SubjectID, account.ID)
		return s.identities.Create(txCtx, link)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account provisioned from federated login",
		zap.String("provider", string(subject.Provider)),
		zap.String("account_id", account.ID.String()))
	return account, nil
}

// federatedUsername generates a username for accounts provisioned through a
// federated login, e.g. "google_3f1a9c2b". Collisions surface as duplicate
// errors and go through the normal retry path.
func federatedUsername(provider models.Provider) string {
	return fmt.Sprintf("%s_%s", provider, uuid.NewString()[:8])
}
