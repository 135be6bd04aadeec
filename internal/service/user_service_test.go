package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-registry/internal/domain"
)

// memoryUsers is an in-memory repository.UserRepository.
type memoryUsers struct {
	mu      sync.Mutex
	rows    []domain.User
	nextID  int64
	err     error
	creates int
}

func (m *memoryUsers) Init(ctx context.Context) error { return nil }

func (m *memoryUsers) Ping(ctx context.Context) error { return m.err }

func (m *memoryUsers) Create(ctx context.Context, user *domain.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.err != nil {
		return 0, m.err
	}
	m.nextID++
	user.ID = m.nextID
	m.rows = append(m.rows, *user)
	return user.ID, nil
}

func (m *memoryUsers) List(ctx context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	users := make([]domain.User, len(m.rows))
	for i, u := range m.rows {
		users[i] = domain.User{ID: u.ID, Username: u.Username}
	}
	return users, nil
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("entropy exhausted") }
func (failingHasher) Verify(string, string) bool  { return false }

func TestCreateUser_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input domain.NewUser
		want  string
	}{
		{name: "empty payload", input: domain.NewUser{}, want: "Username is required"},
		{name: "missing username", input: domain.NewUser{Password: "secret"}, want: "Username is required"},
		{name: "missing both reports username first", input: domain.NewUser{Email: "x@example.com"}, want: "Username is required"},
		{name: "missing password", input: domain.NewUser{Username: "bob"}, want: "Password is required"},
		{name: "missing password with email", input: domain.NewUser{Username: "bob", Email: "bob@example.com"}, want: "Password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memoryUsers{}
			svc := NewUserService(repo, PlainHasher{})

			user, err := svc.CreateUser(context.Background(), tt.input)
			assert.Nil(t, user)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.want, verr.Message)
			assert.Zero(t, repo.creates, "no store call on validation failure")
		})
	}
}

func TestCreateUser_WhitespaceIsNotEmpty(t *testing.T) {
	repo := &memoryUsers{}
	svc := NewUserService(repo, nil)

	user, err := svc.CreateUser(context.Background(), domain.NewUser{Username: " ", Password: " "})
	require.NoError(t, err)
	assert.Equal(t, " ", user.Username)
}

func TestCreateUser_PersistsAndHidesPassword(t *testing.T) {
	repo := &memoryUsers{}
	svc := NewUserService(repo, PlainHasher{})
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, domain.NewUser{Username: "alice", Password: "secret", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.Password)

	require.Len(t, repo.rows, 1)
	assert.Equal(t, "secret", repo.rows[0].Password)
	assert.Equal(t, "alice@example.com", repo.rows[0].Email)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.User{{ID: 1, Username: "alice"}}, users)
}

func TestCreateUser_BcryptStoresHash(t *testing.T) {
	repo := &memoryUsers{}
	hasher, err := NewPasswordHasher("bcrypt")
	require.NoError(t, err)
	svc := NewUserService(repo, hasher)

	_, err = svc.CreateUser(context.Background(), domain.NewUser{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	stored := repo.rows[0].Password
	assert.NotEqual(t, "secret", stored)
	assert.True(t, hasher.Verify("secret", stored))
	assert.False(t, hasher.Verify("wrong", stored))
}

func TestCreateUser_BcryptAcceptsLongPassword(t *testing.T) {
	repo := &memoryUsers{}
	hasher, err := NewPasswordHasher("bcrypt")
	require.NoError(t, err)
	svc := NewUserService(repo, hasher)

	long := strings.Repeat("p", 100)
	user, err := svc.CreateUser(context.Background(), domain.NewUser{Username: "alice", Password: long})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	stored := repo.rows[0].Password
	assert.True(t, hasher.Verify(long, stored))
	assert.False(t, hasher.Verify(long[:72], stored), "bytes past 72 still count")
}

func TestCreateUser_HasherFailure(t *testing.T) {
	repo := &memoryUsers{}
	svc := NewUserService(repo, failingHasher{})

	_, err := svc.CreateUser(context.Background(), domain.NewUser{Username: "alice", Password: "secret"})
	require.Error(t, err)

	var verr *domain.ValidationError
	assert.False(t, errors.As(err, &verr))
	assert.Zero(t, repo.creates)
}

func TestStoreFailuresAreWrapped(t *testing.T) {
	cause := errors.New("connection reset by peer")
	repo := &memoryUsers{err: cause}
	svc := NewUserService(repo, PlainHasher{})
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.NewUser{Username: "alice", Password: "secret"})
	var serr *domain.StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "create user", serr.Op)
	assert.ErrorIs(t, err, cause)

	_, err = svc.ListUsers(ctx)
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "list users", serr.Op)

	err = svc.Ping(ctx)
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, cause)
}

func TestListUsers_CountMatchesCreations(t *testing.T) {
	repo := &memoryUsers{}
	svc := NewUserService(repo, PlainHasher{})
	ctx := context.Background()

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateUser(ctx, domain.NewUser{Username: "user", Password: "pw"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, n)

	seen := make(map[int64]bool, n)
	for _, u := range users {
		assert.Positive(t, u.ID)
		assert.False(t, seen[u.ID], "id %d reused", u.ID)
		seen[u.ID] = true
	}
}

func TestNewPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher("")
	require.NoError(t, err)
	assert.IsType(t, PlainHasher{}, h)

	h, err = NewPasswordHasher(" BCRYPT ")
	require.NoError(t, err)
	assert.IsType(t, BcryptHasher{}, h)

	_, err = NewPasswordHasher("md5")
	assert.Error(t, err)
}
