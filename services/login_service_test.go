package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/models"
	"github.com/taskdeck/taskdeck/repositories"
	"github.com/taskdeck/taskdeck/token"
	"go.uber.org/zap"
)

func newLoginService(accounts *MockAccountRepository) *LoginService {
	codec := token.NewCodec("login-service-test-secret")
	return NewLoginService(accounts, fakeHasher{}, codec, time.Hour, zap.NewNop())
}

func TestAuthenticate_Success(t *testing.T) {
	account := models.NewAccount("alice", "alice@example.com", "hashed:correct-password")
	accounts := new(MockAccountRepository)
	accounts.On("GetByEmail", mock.Anything, "alice@example.com").Return(account, nil)

	svc := newLoginService(accounts)
	signed, err := svc.Authenticate(context.Background(), "alice@example.com", "correct-password")

	require.NoError(t, err)
	require.NotEmpty(t, signed)

	// The issued token decodes back to the account's identity and role.
	claims, err := token.NewCodec("login-service-test-secret").Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.SubjectID)
	assert.Equal(t, "alice", claims.DisplayName)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	account := models.NewAccount("alice", "alice@example.com", "hashed:correct-password")
	accounts := new(MockAccountRepository)
	accounts.On("GetByEmail", mock.Anything, "alice@example.com").Return(account, nil)

	svc := newLoginService(accounts)
	_, err := svc.Authenticate(context.Background(), "alice@example.com", "wrong-password")

	assert.ErrorIs(t, err, ErrLoginFailed)
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	accounts := new(MockAccountRepository)
	accounts.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, repositories.ErrNotFound)

	svc := newLoginService(accounts)
	_, err := svc.Authenticate(context.Background(), "nobody@example.com", "whatever")

	assert.ErrorIs(t, err, ErrLoginFailed)
}

func TestAuthenticate_FailuresAreIndistinguishable(t *testing.T) {
	account := models.NewAccount("alice", "alice@example.com", "hashed:correct-password")
	accounts := new(MockAccountRepository)
	accounts.On("GetByEmail", mock.Anything, "alice@example.com").Return(account, nil)
	accounts.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, repositories.ErrNotFound)

	svc := newLoginService(accounts)
	_, wrongPassErr := svc.Authenticate(context.Background(), "alice@example.com", "wrong-password")
	_, unknownErr := svc.Authenticate(context.Background(), "nobody@example.com", "wrong-password")

	require.Error(t, wrongPassErr)
	require.Error(t, unknownErr)
	assert.Equal(t, wrongPassErr.Error(), unknownErr.Error())
	assert.Equal(t, GetErrorCode(wrongPassErr), GetErrorCode(unknownErr))
}

func TestIssueFor_UsesFirstRole(t *testing.T) {
	account := models.NewAccount("admin", "admin@example.com", "hashed:x")
	account.Roles = []string{models.RoleAdmin, models.RoleUser}

	svc := newLoginService(new(MockAccountRepository))
	signed, err := svc.IssueFor(account)
	require.NoError(t, err)

	claims, err := token.NewCodec("login-service-test-secret").Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}
