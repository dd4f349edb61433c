package access

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/domain"
)

const (
	loginPath  = "/auth"
	signupPath = "/signup"
	homePath   = "/"
)

// exemptPrefixes are never guarded.
var exemptPrefixes = []string{
	"/static/",
	"/api/",
	"/auth/callback",
	"/favicon.ico",
	"/healthz",
	"/docs/",
}

var protectedPrefixes = []string{
	"/dashboard",
	"/my-portal",
	"/instructor-portal",
}

type Decision struct {
	Allow    bool
	Location string
	Reason   string
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirect(location, reason string) Decision {
	return Decision{Location: location, Reason: reason}
}

// LoginRedirect is the sign-in page that returns to path afterwards.
func LoginRedirect(path string) string {
	return loginPath + "?redirect_to=" + strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
}

// Exempt reports whether path bypasses the guard entirely.
func Exempt(path string) bool {
	return hasAnyPrefix(path, exemptPrefixes)
}

type Guard struct {
	roles  application.RoleLookup
	logger *slog.Logger
}

func NewGuard(roles application.RoleLookup, logger *slog.Logger) *Guard {
	return &Guard{roles: roles, logger: logger}
}

// Check decides whether a request for path may proceed. A nil session is
// an anonymous visitor.
func (g *Guard) Check(ctx context.Context, path string, session *Session) Decision {
	if Exempt(path) {
		return allow()
	}

	if session != nil && (path == loginPath || path == signupPath) {
		return redirect(homePath, "already signed in")
	}

	if session == nil {
		if hasAnyPrefix(path, protectedPrefixes) {
			return redirect(LoginRedirect(path), "sign-in required")
		}
		return allow()
	}

	switch {
	case strings.HasPrefix(path, "/dashboard"):
		role, err := g.roles.RoleOf(ctx, session.UserID)
		if err != nil {
			g.logger.Warn("role lookup failed", "user_id", session.UserID, "path", path, "error", err)
			return redirect(LoginRedirect(path), "role lookup failed")
		}
		if role != domain.RoleAdmin {
			return redirect(LoginRedirect(path), "admin role required")
		}

	case strings.HasPrefix(path, "/instructor-portal"):
		role, err := g.roles.RoleOf(ctx, session.UserID)
		if err != nil {
			g.logger.Warn("role lookup failed", "user_id", session.UserID, "path", path, "error", err)
			return redirect(homePath, "role lookup failed")
		}
		if role != domain.RoleInstructor && role != domain.RoleAdmin {
			return redirect(homePath, "instructor role required")
		}
	}

	return allow()
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
