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

// ExternalIdentityRepository implements repositories.ExternalIdentityRepository
type ExternalIdentityRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewExternalIdentityRepository creates a new external identity repository
func NewExternalIdentityRepository(db *DB, logger *zap.Logger) repositories.ExternalIdentityRepository {
	return &ExternalIdentityRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new identity link
func (r *ExternalIdentityRepository) Create(ctx context.Context, identity *models.ExternalIdentity) error {
	query := `
		INSERT INTO external_identities (id, provider, subject_id, account_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		identity.ID,
		identity.Provider,
		identity.SubjectID,
		identity.AccountID,
		identity.CreatedAt,
	)

	if err != nil {
		if terr := translateError(err); errors.Is(terr, repositories.ErrDuplicate) {
			return terr
		}
		return fmt.Errorf("failed to create external identity: %w", err)
	}

	r.logger.Debug("external identity created",
		zap.String("provider", string(identity.Provider)),
		zap.String("account_id", identity.AccountID.String()))
	return nil
}

// GetByProviderSubject retrieves a link by its unique (provider, subject_id) pair
func (r *ExternalIdentityRepository) GetByProviderSubject(ctx context.Context, provider models.Provider, subjectID string) (*models.ExternalIdentity, error) {
	query := `
		SELECT id, provider, subject_id, account_id, created_at
		FROM external_identities
		WHERE provider = $1 AND subject_id = $2
	`

	executor := GetExecutor(ctx, r.db)
	identity := &models.ExternalIdentity{}

	err := executor.QueryRowContext(ctx, query, provider, subjectID).Scan(
		&identity.ID,
		&identity.Provider,
		&identity.SubjectID,
		&identity.AccountID,
		&identity.CreatedAt,
	)

	if err != nil {
		if terr := translateError(err); errors.Is(terr, repositories.ErrNotFound) {
			return nil, terr
		}
		return nil, fmt.Errorf("failed to get external identity: %w", err)
	}

	return identity, nil
}

// GetByAccountID retrieves all links owned by an account
func (r *ExternalIdentityRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.ExternalIdentity, error) {
	query := `
		SELECT id, provider, subject_id, account_id, created_at
		FROM external_identities
		WHERE account_id = $1
		ORDER BY created_at
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query external identities: %w", err)
	}
	defer rows.Close()

	var identities []*models.ExternalIdentity
	for rows.Next() {
		identity := &models.ExternalIdentity{}
		err := rows.Scan(
			&identity.ID,
			&identity.Provider,
			&identity.SubjectID,
			&identity.AccountID,
			&identity.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan external identity: %w", err)
		}
		identities = append(identities, identity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating external identity rows: %w", err)
	}

	return identities, nil
}
