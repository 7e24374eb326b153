package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"fedit/internal/models"
)

// SessionReader is the part of the store the session middleware needs.
type SessionReader interface {
	GetSession(ctx context.Context) (*models.Session, bool, error)
}

// RequireSession lets a request through only while a session is active and
// puts that session in the request context.
func RequireSession(store SessionReader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok, err := store.GetSession(r.Context())
			if err != nil {
				logger.Error("session lookup failed", "path", r.URL.Path, "error", err)
				http.Error(w, "Failed to check session", http.StatusInternalServerError)
				return
			}
			if !ok || session == nil || session.Username == "" {
				http.Error(w, "Please login to continue", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), session)))
		})
	}
}

// Define a custom context key type to avoid collisions
type contextKey string

// SessionKey is the key used to store the session in the context
const SessionKey contextKey = "session"

func SetSessionInContext(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

func GetSessionFromContext(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*models.Session)
	return session, ok && session != nil
}
