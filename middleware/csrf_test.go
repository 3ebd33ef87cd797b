package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/K-sous4/scarf-store/csrf"
	"github.com/K-sous4/scarf-store/session"
)

func newCSRFStore(t *testing.T) (*csrf.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return csrf.NewStore(client, time.Hour, 2*time.Second), mr
}

// echoBodyHandler proves the request body survives token extraction
func echoBodyHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	})
}

func withSessionCookie(r *http.Request, sessionID string) *http.Request {
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionID})
	return r
}

func TestCSRFSafeMethodsPass(t *testing.T) {
	tokens, _ := newCSRFStore(t)
	handler := CSRFValidator(tokens, zerolog.Nop())(echoBodyHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req = withSessionCookie(req, "sess-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFAnonymousRequestPasses(t *testing.T) {
	tokens, _ := newCSRFStore(t)
	handler := CSRFValidator(tokens, zerolog.Nop())(echoBodyHandler(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFExemptPathsPass(t *testing.T) {
	tokens, _ := newCSRFStore(t)
	handler := CSRFValidator(tokens, zerolog.Nop())(echoBodyHandler(t))

	for _, path := range []string{"/api/v1/auth/login", "/api/v1/auth/sign-in", "/api/v1/auth/logout"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{}"))
		req = withSessionCookie(req, "sess-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestCSRFValidHeaderToken(t *testing.T) {
	tokens, _ := newCSRFStore(t)
	handler := CSRFValidator(tokens, zerolog.Nop())(echoBodyHandler(t))

	token, err := tokens.Issue(context.Background(), "sess-1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(`{"name":"x"}`))
	req = withSessionCookie(req, "sess-1")
	req.Header.Set(CSRFHeaderName, token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	// Downstream handler saw the untouched body
	assert.Equal(t, `{"name":"x"}`, rec.Body.String())
}

func TestCSRFMissingToken(t *testing.T) {
	tokens, _ := newCSRFStore(t)
	handler := CSRFValidator(tokens, zerolog.Nop())(echoBodyHandler(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader("{}"))
	req = withSessionCookie(req, "sess-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "CSRF token invalid or missing")
}

func TestCSRFTokenBoundToOtherSession(t *testing.T) {
	tokens, _ := newCSRFStore(t)
	handler := CSRFValidator(tokens, zerolog.Nop())(echoBodyHandler(t))

	// A live token minted for a different session is worthless here
	token, err := tokens.Issue(context.Background(), "sess-other")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader("{}"))
	req = withSessionCookie(req, "sess-1")
	req.Header.Set(CSRFHeaderName, token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFTokenInJSONBody(t *testing.T) {
	tokens, _ := newCSRFStore(t)
	handler := CSRFValidator(tokens, zerolog.Nop())(echoBodyHandler(t))

	token, err := tokens.Issue(context.Background(), "sess-1")
	require.NoError(t, err)

	body := `{"name":"x","csrf_token":"` + token + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(body))
	req = withSessionCookie(req, "sess-1")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, rec.Body.String())
}

func TestCSRFTokenInFormBody(t *testing.T) {
	tokens, _ := newCSRFStore(t)
	handler := CSRFValidator(tokens, zerolog.Nop())(echoBodyHandler(t))

	token, err := tokens.Issue(context.Background(), "sess-1")
	require.NoError(t, err)

	body := "name=x&csrf_token=" + token
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(body))
	req = withSessionCookie(req, "sess-1")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFHeaderWinsOverBody(t *testing.T) {
	tokens, _ := newCSRFStore(t)
	handler := CSRFValidator(tokens, zerolog.Nop())(echoBodyHandler(t))

	token, err := tokens.Issue(context.Background(), "sess-1")
	require.NoError(t, err)

	// Garbage in the body must not matter when the header checks out
	body := `{"csrf_token":"bogus"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", bytes.NewReader([]byte(body)))
	req = withSessionCookie(req, "sess-1")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(CSRFHeaderName, token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFLargeFormBodyReachesHandlerIntact(t *testing.T) {
	tokens, _ := newCSRFStore(t)
	handler := CSRFValidator(tokens, zerolog.Nop())(echoBodyHandler(t))

	token, err := tokens.Issue(context.Background(), "sess-1")
	require.NoError(t, err)

	// Push the payload well past the buffered extraction prefix
	body := "csrf_token=" + token + "&payload=" + strings.Repeat("a", 100<<10)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(body))
	req = withSessionCookie(req, "sess-1")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, len(body), rec.Body.Len())
	assert.Equal(t, body, rec.Body.String())
}

func TestCSRFFailsClosedWhenStoreDown(t *testing.T) {
	tokens, mr := newCSRFStore(t)
	handler := CSRFValidator(tokens, zerolog.Nop())(echoBodyHandler(t))

	mr.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader("{}"))
	req = withSessionCookie(req, "sess-1")
	req.Header.Set(CSRFHeaderName, "whatever")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
