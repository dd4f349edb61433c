package access

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DanielPopoola/classbook/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionNow = time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)

func newTestManager() *SessionManager {
	m := NewSessionManager(config.AuthConfig{
		JWTSecret:     "test-secret",
		CookieName:    "classbook-session",
		SessionTTL:    time.Hour,
		RefreshWindow: 10 * time.Minute,
	})
	m.now = func() time.Time { return sessionNow }
	return m
}

func signToken(t *testing.T, method jwt.SigningMethod, key any, sub string, exp time.Time) string {
	t.Helper()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
	}}
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestVerify_ValidSessionIsNotRefreshed(t *testing.T) {
	m := newTestManager()
	token := signToken(t, jwt.SigningMethodHS256, []byte("test-secret"), "user-1", sessionNow.Add(45*time.Minute))

	s, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", s.UserID)
	assert.False(t, s.Refreshed)
	assert.Equal(t, token, s.Token)
}

func TestVerify_RefreshesNearExpiry(t *testing.T) {
	m := newTestManager()
	token := signToken(t, jwt.SigningMethodHS256, []byte("test-secret"), "user-1", sessionNow.Add(5*time.Minute))

	s, err := m.Verify(token)
	require.NoError(t, err)
	assert.True(t, s.Refreshed)
	assert.NotEqual(t, token, s.Token)
	assert.Equal(t, sessionNow.Add(time.Hour), s.ExpiresAt)

	again, err := m.Verify(s.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", again.UserID)
	assert.False(t, again.Refreshed)
}

func TestVerify_Rejects(t *testing.T) {
	m := newTestManager()

	cases := map[string]string{
		"expired":      signToken(t, jwt.SigningMethodHS256, []byte("test-secret"), "user-1", sessionNow.Add(-time.Minute)),
		"wrong secret": signToken(t, jwt.SigningMethodHS256, []byte("other"), "user-1", sessionNow.Add(time.Hour)),
		"wrong alg":    signToken(t, jwt.SigningMethodHS512, []byte("test-secret"), "user-1", sessionNow.Add(time.Hour)),
		"no subject":   signToken(t, jwt.SigningMethodHS256, []byte("test-secret"), "", sessionNow.Add(time.Hour)),
		"garbage":      "not-a-token",
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(token)
			assert.Error(t, err)
		})
	}
}

func TestFromRequest(t *testing.T) {
	m := newTestManager()

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	_, err := m.FromRequest(req)
	assert.ErrorIs(t, err, ErrNoSession)

	issued, err := m.Issue("user-2", "a@example.com")
	require.NoError(t, err)

	req.AddCookie(m.Cookie(issued))
	s, err := m.FromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "user-2", s.UserID)
	assert.Equal(t, "a@example.com", s.Email)
}
