package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/models"
	"github.com/taskdeck/taskdeck/repositories"
	"go.uber.org/zap"
)

func googleSubject() ExternalSubject {
	return ExternalSubject{
		Provider:    models.ProviderGoogle,
		SubjectID:   "g-1",
		Email:       "a@x.com",
		DisplayName: "A",
	}
}

func newReconciler(accounts *MockAccountRepository, identities *MockIdentityRepository) *ReconcilerService {
	return NewReconcilerService(accounts, identities, stubTxManager{}, fakeHasher{}, zap.NewNop())
}

func TestReconcile_ExistingIdentity(t *testing.T) {
	subject := googleSubject()
	account := models.NewAccount("google_abcd1234", subject.Email, "hashed:x")
	link := models.NewExternalIdentity(subject.Provider, subject.SubjectID, account.ID)

	accounts := new(MockAccountRepository)
	identities := new(MockIdentityRepository)
	identities.On("GetByProviderSubject", mock.Anything, subject.Provider, subject.SubjectID).Return(link, nil)
	accounts.On("GetByID", mock.Anything, account.ID).Return(account, nil)

	svc := newReconciler(accounts, identities)
	resolved, err := svc.Reconcile(context.Background(), subject)

	require.NoError(t, err)
	assert.Equal(t, account.ID, resolved.ID)
	accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	identities.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReconcile_AttachesIdentityToExistingEmail(t *testing.T) {
	subject := googleSubject()
	account := models.NewAccount("alice", subject.Email, "hashed:password")

	accounts := new(MockAccountRepository)
	identities := new(MockIdentityRepository)
	identities.On("GetByProviderSubject", mock.Anything, subject.Provider, subject.SubjectID).
		Return(nil, repositories.ErrNotFound)
	accounts.On("GetByEmail", mock.Anything, subject.Email).Return(account, nil)
	identities.On("Create", mock.Anything, mock.MatchedBy(func(link *models.ExternalIdentity) bool {
		return link.Provider == subject.Provider &&
			link.SubjectID == subject.SubjectID &&
			link.AccountID == account.ID
	})).Return(nil)

	svc := newReconciler(accounts, identities)
	resolved, err := svc.Reconcile(context.Background(), subject)

	require.NoError(t, err)
	assert.Equal(t, account.ID, resolved.ID)
	accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	identities.AssertExpectations(t)
}

func TestReconcile_ProvisionsNewAccount(t *testing.T) {
	subject := googleSubject()

	accounts := new(MockAccountRepository)
	identities := new(MockIdentityRepository)
	identities.On("GetByProviderSubject", mock.Anything, subject.Provider, subject.SubjectID).
		Return(nil, repositories.ErrNotFound)
	accounts.On("GetByEmail", mock.Anything, subject.Email).Return(nil, repositories.ErrNotFound)

	var created *models.Account
	accounts.On("Create", mock.Anything, mock.AnythingOfType("*models.Account")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.Account)
		}).Return(nil)
	identities.On("Create", mock.Anything, mock.AnythingOfType("*models.ExternalIdentity")).Return(nil)

	svc := newReconciler(accounts, identities)
	resolved, err := svc.Reconcile(context.Background(), subject)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, created.ID, resolved.ID)
	assert.Equal(t, subject.Email, created.Email)
	assert.Equal(t, []string{models.RoleUser}, created.Roles)

	// Username is derived from the provider, e.g. google_3f1a9c2b.
	assert.Regexp(t, `^google_[0-9a-f-]{8}$`, created.Username)

	// The placeholder credential is a hash of a random value, never the
	// empty string.
	assert.NotEmpty(t, created.PasswordHash)
}

func TestReconcile_RetriesLookupAfterLosingCreationRace(t *testing.T) {
	subject := googleSubject()
	winner := models.NewAccount("google_deadbeef", subject.Email, "hashed:x")
	link := models.NewExternalIdentity(subject.Provider, subject.SubjectID, winner.ID)

	accounts := new(MockAccountRepository)
	identities := new(MockIdentityRepository)

	// First pass: nothing exists yet, but the insert collides with a
	// concurrent login that just created the same identity.
	identities.On("GetByProviderSubject", mock.Anything, subject.Provider, subject.SubjectID).
		Return(nil, repositories.ErrNotFound).Once()
	accounts.On("GetByEmail", mock.Anything, subject.Email).
		Return(nil, repositories.ErrNotFound).Once()
	accounts.On("Create", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: accounts_email_key", repositories.ErrDuplicate)).Once()

	// Retry: the winner's rows are now visible.
	identities.On("GetByProviderSubject", mock.Anything, subject.Provider, subject.SubjectID).
		Return(link, nil).Once()
	accounts.On("GetByID", mock.Anything, winner.ID).Return(winner, nil).Once()

	svc := newReconciler(accounts, identities)
	resolved, err := svc.Reconcile(context.Background(), subject)

	require.NoError(t, err)
	assert.Equal(t, winner.ID, resolved.ID)
	accounts.AssertExpectations(t)
	identities.AssertExpectations(t)
}

// memoryStore is an in-memory account/identity store that enforces the same
// uniqueness constraints as the database schema. It backs the concurrency
// test below.
type memoryStore struct {
	mu         sync.Mutex
	accounts   map[uuid.UUID]*models.Account
	byEmail    map[string]uuid.UUID
	byUsername map[string]uuid.UUID
	identities map[string]*models.ExternalIdentity
}

// memTxKey marks a context as running inside a memTxManager transaction
type memTxKey struct{}

// memTxManager holds the store lock for the whole transaction so the
// account and identity rows become visible together, matching the
// atomicity the database gives the real implementation
type memTxManager struct {
	store *memoryStore
}

func (m memTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return fn(context.WithValue(ctx, memTxKey{}, true))
}

// lock acquires the store mutex unless the context already holds it
// through an open transaction
func (s *memoryStore) lock(ctx context.Context) func() {
	if ctx.Value(memTxKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		accounts:   make(map[uuid.UUID]*models.Account),
		byEmail:    make(map[string]uuid.UUID),
		byUsername: make(map[string]uuid.UUID),
		identities: make(map[string]*models.ExternalIdentity),
	}
}

func identityKey(provider models.Provider, subjectID string) string {
	return string(provider) + "/" + subjectID
}

func (s *memoryStore) Create(ctx context.Context, account *models.Account) error {
	defer s.lock(ctx)()
	if _, ok := s.byEmail[account.Email]; ok {
		return repositories.ErrDuplicate
	}
	if _, ok := s.byUsername[account.Username]; ok {
		return repositories.ErrDuplicate
	}
	s.accounts[account.ID] = account
	s.byEmail[account.Email] = account.ID
	s.byUsername[account.Username] = account.ID
	return nil
}

func (s *memoryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	defer s.lock(ctx)()
	if acc, ok := s.accounts[id]; ok {
		return acc, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *memoryStore) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	defer s.lock(ctx)()
	if id, ok := s.byEmail[email]; ok {
		return s.accounts[id], nil
	}
	return nil, repositories.ErrNotFound
}

func (s *memoryStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	defer s.lock(ctx)()
	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *memoryStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	defer s.lock(ctx)()
	_, ok := s.byUsername[username]
	return ok, nil
}

func (s *memoryStore) Update(ctx context.Context, account *models.Account) error {
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *memoryStore) CreateIdentity(ctx context.Context, identity *models.ExternalIdentity) error {
	defer s.lock(ctx)()
	key := identityKey(identity.Provider, identity.SubjectID)
	if _, ok := s.identities[key]; ok {
		return repositories.ErrDuplicate
	}
	s.identities[key] = identity
	return nil
}

func (s *memoryStore) GetByProviderSubject(ctx context.Context, provider models.Provider, subjectID string) (*models.ExternalIdentity, error) {
	defer s.lock(ctx)()
	if id, ok := s.identities[identityKey(provider, subjectID)]; ok {
		return id, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *memoryStore) GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.ExternalIdentity, error) {
	return nil, nil
}

// storeIdentities adapts memoryStore to the identity repository interface
type storeIdentities struct{ *memoryStore }

func (s storeIdentities) Create(ctx context.Context, identity *models.ExternalIdentity) error {
	return s.CreateIdentity(ctx, identity)
}

func TestReconcile_ConcurrentFirstLoginsConverge(t *testing.T) {
	store := newMemoryStore()
	svc := NewReconcilerService(store, storeIdentities{store}, memTxManager{store}, fakeHasher{}, zap.NewNop())
	subject := googleSubject()

	const logins = 16
	results := make([]uuid.UUID, logins)
	errs := make([]error, logins)

	var wg sync.WaitGroup
	for i := 0; i < logins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			account, err := svc.Reconcile(context.Background(), subject)
			if err == nil {
				results[i] = account.ID
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i := 0; i < logins; i++ {
		require.NoError(t, errs[i], "login %d failed", i)
	}

	// Every login landed on the same account and exactly one row exists.
	first := results[0]
	for i := 1; i < logins; i++ {
		assert.Equal(t, first, results[i])
	}
	assert.Len(t, store.accounts, 1)
	assert.Len(t, store.identities, 1)
}
