package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkart/storefront/internal/domain/user"
)

func newTestManager(ttl time.Duration) *Manager {
	m := NewManager([]byte("test-secret"), ttl)
	m.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return m
}

func TestSignAndVerify(t *testing.T) {
	m := newTestManager(7 * 24 * time.Hour)

	token, err := m.Sign(&user.User{ID: "u1", Username: "asha", IsAdmin: false})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "asha", claims.Username)
	assert.False(t, claims.IsAdmin)
}

func TestVerify_AdminClaim(t *testing.T) {
	m := newTestManager(time.Hour)

	token, err := m.Sign(&user.User{ID: "u2", Username: "boss", IsAdmin: true})
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

func TestVerify_Expired(t *testing.T) {
	m := newTestManager(time.Hour)

	token, err := m.Sign(&user.User{ID: "u1", Username: "asha"})
	require.NoError(t, err)

	m.now = func() time.Time { return time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC) }

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	m := newTestManager(time.Hour)
	other := NewManager([]byte("other-secret"), time.Hour)

	token, err := m.Sign(&user.User{ID: "u1", Username: "asha"})
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	m := newTestManager(time.Hour)
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := m.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}
