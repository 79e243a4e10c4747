package models

import (
	"time"

	"github.com/google/uuid"
)

// Role strings carried in tokens and stored per account
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// Account represents a registered user. An account may be created through
// direct signup or on first federated login; in the latter case PasswordHash
// holds a generated placeholder the user can never log in with directly.
type Account struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Roles        []string  `json:"roles" db:"roles"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a new Account with the default user role
func NewAccount(username, email, passwordHash string) *Account {
	now := time.Now()
	return &Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        []string{RoleUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// FirstRole returns the role embedded in issued tokens. Accounts always
// carry at least one role; RoleUser is the fallback for legacy rows.
func (a *Account) FirstRole() string {
	if len(a.Roles) == 0 {
		return RoleUser
	}
	return a.Roles[0]
}

// HasRole reports whether the account holds the given role
func (a *Account) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AddRole adds a role if not already present
func (a *Account) AddRole(role string) {
	if !a.HasRole(role) {
		a.Roles = append(a.Roles, role)
	}
}
