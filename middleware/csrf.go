package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/K-sous4/scarf-store/csrf"
	"github.com/K-sous4/scarf-store/session"
)

// CSRFHeaderName is the preferred way to submit a token
const CSRFHeaderName = "X-CSRF-Token"

// csrfFieldName is the fallback body field for form and JSON payloads
const csrfFieldName = "csrf_token"

// maxTokenBodyRead caps how much request body is buffered while looking for
// a token field.
const maxTokenBodyRead = 64 << 10

// HTTP methods that require CSRF protection
var csrfProtectedMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Endpoints that establish or tear down a session; a CSRF token cannot be
// required before one could have been issued, and logout is terminal and
// idempotent.
var csrfExemptPaths = map[string]bool{
	"/api/v1/auth/login":   true,
	"/api/v1/auth/sign-in": true,
	"/api/v1/auth/logout":  true,
}

// CSRFValidator gates state-changing requests: a request arriving with a
// session cookie must prove it originated from that session's own client by
// presenting a token bound to it. Anonymous requests pass through; the
// route's own authorization deals with them. Validation is non-consuming so
// normal multi-request UI flows keep working.
func CSRFValidator(tokens *csrf.Store, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !csrfProtectedMethods[r.Method] || csrfExemptPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			sessionID := session.FromRequest(r)
			if sessionID == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := extractCSRFToken(r)

			valid, err := tokens.Validate(r.Context(), token, sessionID, false)
			if err != nil {
				// Store trouble on a security check means deny.
				log.Error().Err(err).Msg("csrf validation unavailable")
				writeJSONError(w, http.StatusForbidden, "CSRF token invalid or missing")
				return
			}
			if !valid {
				writeJSONError(w, http.StatusForbidden, "CSRF token invalid or missing")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractCSRFToken looks for a token in the dedicated header first, then in
// the request body for JSON and form payloads. The body is restored so the
// route handler can read it again.
func extractCSRFToken(r *http.Request) string {
	if token := r.Header.Get(CSRFHeaderName); token != "" {
		return token
	}

	if r.Body == nil {
		return ""
	}

	contentType := r.Header.Get("Content-Type")
	isJSON := strings.HasPrefix(contentType, "application/json")
	isForm := strings.HasPrefix(contentType, "application/x-www-form-urlencoded")
	if !isJSON && !isForm {
		return ""
	}

	// Only a bounded prefix is buffered; the unread remainder stays chained
	// behind it so large payloads reach the handler intact.
	body, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBodyRead))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
	if err != nil {
		return ""
	}

	if isJSON {
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(body, &payload); err != nil {
			return ""
		}
		var token string
		if raw, ok := payload[csrfFieldName]; ok {
			_ = json.Unmarshal(raw, &token)
		}
		return token
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return ""
	}
	return values.Get(csrfFieldName)
}
