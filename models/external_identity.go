package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider identifies an external identity provider
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderKakao  Provider = "kakao"
	ProviderNaver  Provider = "naver"
)

// ParseProvider normalizes a provider name from a request path or payload.
// Unknown names are an error; the provider set is closed.
func ParseProvider(name string) (Provider, error) {
	switch Provider(strings.ToLower(name)) {
	case ProviderGoogle:
		return ProviderGoogle, nil
	case ProviderKakao:
		return ProviderKakao, nil
	case ProviderNaver:
		return ProviderNaver, nil
	default:
		return "", fmt.Errorf("unsupported provider: %s", name)
	}
}

// ExternalIdentity links a provider-scoped subject to exactly one Account.
// The (provider, subject_id) pair is globally unique and rows are never
// mutated after creation; they disappear only when the account is deleted.
type ExternalIdentity struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Provider  Provider  `json:"provider" db:"provider"`
	SubjectID string    `json:"subject_id" db:"subject_id"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the ExternalIdentity model
func (ExternalIdentity) TableName() string {
	return "external_identities"
}

// NewExternalIdentity creates a new identity link for an account
func NewExternalIdentity(provider Provider, subjectID string, accountID uuid.UUID) *ExternalIdentity {
	return &ExternalIdentity{
		ID:        uuid.New(),
		Provider:  provider,
		SubjectID: subjectID,
		AccountID: accountID,
		CreatedAt: time.Now(),
	}
}
