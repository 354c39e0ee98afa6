package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/census/internal/auth"
)

const sessionCookieName = "census_session"

// PrincipalResolver turns a raw session token into a principal.
type PrincipalResolver interface {
	Resolve(ctx context.Context, raw string) (*auth.Principal, error)
}

// SessionToken returns the bearer token of the request, falling back to the
// session cookie.
func SessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// ResolvePrincipal attaches the request principal to the context. It never
// rejects: requests with a missing, expired or forged token continue as
// anonymous and the operation decides.
func ResolvePrincipal(resolver PrincipalResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := resolver.Resolve(r.Context(), SessionToken(r))
			switch {
			case auth.IsTokenError(err):
				logger.Debug("ignoring session token", "error", err, "request_id", RequestID(r.Context()))
			case err != nil:
				logger.Error("resolve principal", "error", err, "request_id", RequestID(r.Context()))
			}
			if p != nil {
				r = r.WithContext(auth.WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects anonymous requests with a JSON 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.FromContext(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "authentication required, please log in")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
