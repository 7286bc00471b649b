package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	sessionmodels "medtrack/internal/session/models"
	dErrors "medtrack/pkg/domain-errors"
	"medtrack/pkg/platform/httputil"
	"medtrack/pkg/requestcontext"
)

// SessionVerifier validates a bearer token and returns the live session
// behind it. The session service implements it.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*sessionmodels.Session, error)
}

// RequireAuth rejects requests without a valid bearer session and populates
// the request context with the session's identity and role.
func RequireAuth(verifier SessionVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "missing bearer token",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			session, err := verifier.Verify(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "token rejected",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithUserID(ctx, session.UserID)
			ctx = requestcontext.WithSessionID(ctx, session.ID)
			ctx = requestcontext.WithRole(ctx, session.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route on the authenticated role. It must run after
// RequireAuth.
func RequireRole(role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if got := requestcontext.Role(ctx); got != role {
				logger.WarnContext(ctx, "role denied",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
					"required", role,
					"got", got,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
