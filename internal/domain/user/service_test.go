package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct {
	byID       map[string]*User
	byUsername map[string]*User
	byPhone    map[string]*User
	created    *User
	deleted    []string
}

func newMockUserRepo(users ...*User) *mockUserRepo {
	m := &mockUserRepo{
		byID:       map[string]*User{},
		byUsername: map[string]*User{},
		byPhone:    map[string]*User{},
	}
	for _, u := range users {
		m.byID[u.ID] = u
		m.byUsername[u.Username] = u
		m.byPhone[u.Phone] = u
	}
	return m
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	m.created = u
	m.byID[u.ID] = u
	m.byUsername[u.Username] = u
	m.byPhone[u.Phone] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	u, ok := m.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByPhone(_ context.Context, phone string) (*User, error) {
	u, ok := m.byPhone[phone]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) List(_ context.Context) ([]User, error) {
	out := make([]User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.byID, id)
	return nil
}

func existingUser(t *testing.T) *User {
	t.Helper()
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	return &User{ID: "u1", Username: "asha", Phone: "9990001111", PasswordHash: hash}
}

func TestSignup(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewService(repo)

	u, err := svc.Signup(context.Background(), SignupRequest{
		Username: "asha",
		Password: "s3cret",
		Phone:    "9990001111",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.False(t, u.IsAdmin)
	assert.NotEqual(t, "s3cret", u.PasswordHash, "password must be hashed")
	assert.True(t, CheckPassword(u.PasswordHash, "s3cret"))
	require.NotNil(t, repo.created)
}

func TestSignup_Conflicts(t *testing.T) {
	repo := newMockUserRepo(existingUser(t))
	svc := NewService(repo)

	_, err := svc.Signup(context.Background(), SignupRequest{
		Username: "asha", Password: "x", Phone: "1112223333",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Signup(context.Background(), SignupRequest{
		Username: "ravi", Password: "x", Phone: "9990001111",
	})
	assert.ErrorIs(t, err, ErrPhoneTaken)
}

func TestLogin(t *testing.T) {
	repo := newMockUserRepo(existingUser(t))
	svc := NewService(repo)

	u, err := svc.Login(context.Background(), "9990001111", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "asha", u.Username)

	_, err = svc.Login(context.Background(), "9990001111", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "0000000000", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown phone must not be distinguishable")
}

func TestAdminLogin(t *testing.T) {
	buyer := existingUser(t)
	adminHash, err := HashPassword("adm1n")
	require.NoError(t, err)
	admin := &User{ID: "u2", Username: "boss", Phone: "8880002222", PasswordHash: adminHash, IsAdmin: true}

	svc := NewService(newMockUserRepo(buyer, admin))

	u, err := svc.AdminLogin(context.Background(), "8880002222", "adm1n")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)

	_, err = svc.AdminLogin(context.Background(), "9990001111", "s3cret")
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestDelete(t *testing.T) {
	buyer := existingUser(t)
	admin := &User{ID: "u2", Username: "boss", Phone: "8880002222", IsAdmin: true}
	repo := newMockUserRepo(buyer, admin)
	svc := NewService(repo)

	require.NoError(t, svc.Delete(context.Background(), "u1"))
	assert.Equal(t, []string{"u1"}, repo.deleted)

	assert.ErrorIs(t, svc.Delete(context.Background(), "u2"), ErrCannotDeleteAdmin)
	assert.ErrorIs(t, svc.Delete(context.Background(), "ghost"), ErrNotFound)
}
