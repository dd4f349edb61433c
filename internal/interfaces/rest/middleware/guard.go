package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/classbook/internal/access"
)

// Guard resolves the session cookie, writes back refreshed tokens and
// enforces the route guard's decision. Exempt paths pass straight through.
func Guard(sessions *access.SessionManager, guard *access.Guard, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if access.Exempt(path) {
				next.ServeHTTP(w, r)
				return
			}

			session, err := sessions.FromRequest(r)
			if err != nil {
				if !errors.Is(err, access.ErrNoSession) {
					logger.Debug("session rejected", "path", path, "error", err)
				}
				session = nil
			}
			if session != nil && session.Refreshed {
				http.SetCookie(w, sessions.Cookie(session))
			}

			decision := guard.Check(r.Context(), path, session)
			if !decision.Allow {
				logger.Debug("request redirected",
					"path", path,
					"location", decision.Location,
					"reason", decision.Reason,
				)
				http.Redirect(w, r, decision.Location, http.StatusTemporaryRedirect)
				return
			}

			if session != nil {
				r = r.WithContext(access.WithSession(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}
