// Package access decides which pages a request may reach and resolves the
// signed-in user from the session cookie set by the auth provider.
package access

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/DanielPopoola/classbook/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSession = errors.New("no session")

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session the guard resolved for this request.
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}

type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Session is a verified session token. Refreshed is set when the token was
// re-issued and must be written back to the client.
type Session struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
	Token     string
	Refreshed bool
}

// SessionManager verifies HS256 session tokens and re-issues those that are
// about to expire.
type SessionManager struct {
	secret        []byte
	cookieName    string
	ttl           time.Duration
	refreshWindow time.Duration
	secure        bool
	now           func() time.Time
}

func NewSessionManager(cfg config.AuthConfig) *SessionManager {
	return &SessionManager{
		secret:        []byte(cfg.JWTSecret),
		cookieName:    cfg.CookieName,
		ttl:           cfg.SessionTTL,
		refreshWindow: cfg.RefreshWindow,
		secure:        cfg.SecureCookie,
		now:           time.Now,
	}
}

// FromRequest returns ErrNoSession when the cookie is absent and a
// verification error when the token is invalid or expired.
func (m *SessionManager) FromRequest(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	return m.Verify(cookie.Value)
}

func (m *SessionManager) Verify(token string) (*Session, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("verify session: %w", jwt.ErrTokenInvalidClaims)
	}

	session := &Session{
		UserID:    claims.Subject,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
		Token:     token,
	}

	if session.ExpiresAt.Sub(m.now()) < m.refreshWindow {
		return m.refresh(claims)
	}
	return session, nil
}

// Issue signs a new session for userID.
func (m *SessionManager) Issue(userID, email string) (*Session, error) {
	return m.refresh(&Claims{
		Email:            email,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	})
}

func (m *SessionManager) refresh(claims *Claims) (*Session, error) {
	now := m.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}

	return &Session{
		UserID:    claims.Subject,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
		Token:     signed,
		Refreshed: true,
	}, nil
}

func (m *SessionManager) Cookie(s *Session) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
