package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mailcast/mailcast/internal/auth"
	"github.com/mailcast/mailcast/internal/logutil"
	"github.com/mailcast/mailcast/internal/model"
)

// APIKeyHeader carries the tenant key. Authorization: Bearer is accepted
// as an alternative.
const APIKeyHeader = "X-API-Key"

// Authorizer checks a presented key against the registry.
type Authorizer interface {
	Authorize(presented string) (model.APIKey, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Gate   Authorizer
}

// Auth returns a middleware that rejects requests without a registered API
// key. On success the key is stored in the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := extractAPIKey(r)

			key, err := cfg.Gate.Authorize(presented)
			if err != nil {
				reason := "invalid_key"
				if presented == "" {
					reason = "missing_key"
				}
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("tenant", logutil.RedactKey(key)),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithTenantKey(r.Context(), key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractAPIKey reads X-API-Key first, then "Authorization: Bearer <key>".
func extractAPIKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(APIKeyHeader)); key != "" {
		return key
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing API key")
}
