package admin

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	request "ipguard/pkg/platform/middleware/request"
	"ipguard/pkg/secrets"
)

type contextKeyAdminActorID struct{}

// ContextKeyAdminActorID is exported for use in handlers and tests.
var ContextKeyAdminActorID = contextKeyAdminActorID{}

// GetAdminActorID returns the X-Admin-Actor-ID captured for audit logging,
// or "" for non-admin requests.
func GetAdminActorID(ctx context.Context) string {
	if actorID, ok := ctx.Value(ContextKeyAdminActorID).(string); ok {
		return actorID
	}
	return ""
}

// RequireAdminToken guards a route with the X-Admin-Token header. expected is
// either the plaintext token or a bcrypt hash of it ("$2a$", "$2b$", "$2y$").
func RequireAdminToken(expected string, logger *slog.Logger) func(http.Handler) http.Handler {
	return RequireToken("X-Admin-Token", expected, logger)
}

// RequireToken guards a route with the named header, matched like
// RequireAdminToken.
func RequireToken(header, expected string, logger *slog.Logger) func(http.Handler) http.Handler {
	match := plainMatcher(expected)
	if secrets.IsHash(expected) {
		match = bcryptMatcher(expected)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := r.Header.Get(header)
			if expected == "" || token == "" || !match(token) {
				logger.WarnContext(ctx, "token mismatch",
					"header", header,
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + header + ` required"}`))
				return
			}

			if actorID := r.Header.Get("X-Admin-Actor-ID"); actorID != "" {
				ctx = context.WithValue(ctx, ContextKeyAdminActorID, actorID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func plainMatcher(expected string) func(string) bool {
	return func(token string) bool {
		return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
	}
}

func bcryptMatcher(hash string) func(string) bool {
	return func(token string) bool {
		return secrets.Verify(token, hash) == nil
	}
}
