package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mailcast/mailcast/internal/auth"
)

// AdminTokenHeader carries the plaintext admin token.
const AdminTokenHeader = "X-Admin-Token"

// AdminToken gates a route behind an argon2id-hashed shared token. An empty
// hash disables the gate.
func AdminToken(hash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if hash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(AdminTokenHeader)
			ok := false
			if token != "" {
				var err error
				ok, err = auth.VerifyToken(token, hash)
				if err != nil {
					logger.Error("admin token hash is unusable", slog.String("error", err.Error()))
					ok = false
				}
			}
			if !ok {
				logger.Warn("admin authentication failed",
					slog.String("ip", r.RemoteAddr),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing admin token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
