package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/K-sous4/scarf-store/session"
)

// Endpoints that must not extend a session: the auth endpoints manage
// session lifetime themselves, and the health endpoints are unauthenticated.
var refreshSkipPaths = map[string]bool{
	"/api/v1/auth/login":   true,
	"/api/v1/auth/sign-in": true,
	"/api/v1/auth/logout":  true,
	"/ping":                true,
	"/health":              true,
}

// SessionRefresher extends the session TTL after every successful request,
// keeping the session alive while the user is active. It only refreshes;
// the identifier never changes here. Rotation is reserved for privilege
// transitions, because rotating on every request would invalidate
// concurrent in-flight requests racing on the same id.
func SessionRefresher(sessions *session.Store, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := newResponseRecorder(w)
			next.ServeHTTP(recorder, r)

			if refreshSkipPaths[r.URL.Path] {
				return
			}
			if recorder.status >= 400 {
				return
			}

			sessionID := session.FromRequest(r)
			if sessionID == "" {
				return
			}

			// TTL extension is commutative, so concurrent requests from the
			// same client cannot conflict here.
			if _, err := sessions.Refresh(r.Context(), sessionID); err != nil {
				// The response has already been sent; nothing to surface.
				log.Warn().Err(err).Msg("session refresh failed")
			}
		})
	}
}
