package middleware

import (
	"log/slog"
	"net/http"

	"github.com/andes-trip-manager/backend/internal/auth"
)

// NewAuthHandler returns a middleware that requires a valid bearer token and
// puts the authenticated user into the request context. Missing or invalid
// tokens get 401.
func NewAuthHandler(v *auth.Verifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="andes"`)
				writeError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
				return
			}
			user, err := v.Verify(tok)
			if err != nil {
				log.DebugContext(r.Context(), "token rejected", "error", err)
				w.Header().Set("WWW-Authenticate", `Bearer realm="andes", error="invalid_token"`)
				writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
				return
			}
			noteUser(r.Context(), user.ID)
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}
