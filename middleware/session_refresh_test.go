package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/K-sous4/scarf-store/session"
)

func newSessionStore(t *testing.T) (*session.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return session.NewStore(client, 24*time.Hour, 2*time.Second), mr
}

func statusHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
}

func TestRefreshExtendsSession(t *testing.T) {
	sessions, mr := newSessionStore(t)
	handler := SessionRefresher(sessions, zerolog.Nop())(statusHandler(http.StatusOK))
	ctx := context.Background()

	sessionID, err := sessions.Create(ctx, 1, "alice", "user")
	require.NoError(t, err)

	mr.FastForward(23 * time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req = withSessionCookie(req, sessionID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The original TTL would have expired here; the refresh keeps it alive
	mr.FastForward(23 * time.Hour)

	record, err := sessions.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.NotNil(t, record)
}

func TestNoRefreshOnErrorResponse(t *testing.T) {
	sessions, mr := newSessionStore(t)
	handler := SessionRefresher(sessions, zerolog.Nop())(statusHandler(http.StatusNotFound))
	ctx := context.Background()

	sessionID, err := sessions.Create(ctx, 1, "alice", "user")
	require.NoError(t, err)

	mr.FastForward(23 * time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/999", nil)
	req = withSessionCookie(req, sessionID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	mr.FastForward(2 * time.Hour)

	record, err := sessions.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.Nil(t, record, "failed request must not extend the session")
}

func TestNoRefreshOnAuthEndpoints(t *testing.T) {
	sessions, mr := newSessionStore(t)
	handler := SessionRefresher(sessions, zerolog.Nop())(statusHandler(http.StatusOK))
	ctx := context.Background()

	sessionID, err := sessions.Create(ctx, 1, "alice", "user")
	require.NoError(t, err)

	mr.FastForward(23 * time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req = withSessionCookie(req, sessionID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	mr.FastForward(2 * time.Hour)

	record, err := sessions.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.Nil(t, record, "auth endpoints manage session lifetime themselves")
}

func TestRefreshWithoutCookie(t *testing.T) {
	sessions, _ := newSessionStore(t)
	handler := SessionRefresher(sessions, zerolog.Nop())(statusHandler(http.StatusOK))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshIdentifierUnchanged(t *testing.T) {
	sessions, _ := newSessionStore(t)
	handler := SessionRefresher(sessions, zerolog.Nop())(statusHandler(http.StatusOK))
	ctx := context.Background()

	sessionID, err := sessions.Create(ctx, 1, "alice", "user")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req = withSessionCookie(req, sessionID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Refresh never rotates: no Set-Cookie, same id still valid
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
	record, err := sessions.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.NotNil(t, record)
}
