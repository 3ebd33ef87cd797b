package csrf

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, time.Hour, 2*time.Second), mr
}

func TestIssueAndValidate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, "sess-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	valid, err := store.Validate(ctx, token, "sess-1", false)
	require.NoError(t, err)
	assert.True(t, valid)

	// Non-consuming validation leaves the token usable
	valid, err = store.Validate(ctx, token, "sess-1", false)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestValidateWrongSession(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, "sess-1")
	require.NoError(t, err)

	// A live token presented with a session it was not issued for must fail
	valid, err := store.Validate(ctx, token, "sess-2", false)
	require.NoError(t, err)
	assert.False(t, valid)

	// And the check must not have burned the token for its real session
	valid, err = store.Validate(ctx, token, "sess-1", false)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestValidateUnknownToken(t *testing.T) {
	store, _ := newTestStore(t)

	valid, err := store.Validate(context.Background(), "made-up", "sess-1", false)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestValidateEmptyInputs(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	valid, err := store.Validate(ctx, "", "sess-1", false)
	require.NoError(t, err)
	assert.False(t, valid)

	valid, err = store.Validate(ctx, "token", "", false)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestValidateConsume(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, "sess-1")
	require.NoError(t, err)

	valid, err := store.Validate(ctx, token, "sess-1", true)
	require.NoError(t, err)
	assert.True(t, valid)

	// Consumed tokens are single use
	valid, err = store.Validate(ctx, token, "sess-1", true)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestTokenExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, "sess-1")
	require.NoError(t, err)

	mr.FastForward(time.Hour + time.Second)

	valid, err := store.Validate(ctx, token, "sess-1", false)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestInvalidateAll(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	first, err := store.Issue(ctx, "sess-1")
	require.NoError(t, err)
	second, err := store.Issue(ctx, "sess-1")
	require.NoError(t, err)
	other, err := store.Issue(ctx, "sess-2")
	require.NoError(t, err)

	removed, err := store.InvalidateAll(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	valid, err := store.Validate(ctx, first, "sess-1", false)
	require.NoError(t, err)
	assert.False(t, valid)
	valid, err = store.Validate(ctx, second, "sess-1", false)
	require.NoError(t, err)
	assert.False(t, valid)

	// Tokens of other sessions are untouched
	valid, err = store.Validate(ctx, other, "sess-2", false)
	require.NoError(t, err)
	assert.True(t, valid)

	// The index set itself must be gone
	assert.False(t, mr.Exists("csrf:index:sess-1"))
}

func TestInvalidateAllEmptySession(t *testing.T) {
	store, _ := newTestStore(t)

	removed, err := store.InvalidateAll(context.Background(), "never-logged-in")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewStore(client, time.Hour, 2*time.Second)

	mr.Close()

	_, err := store.Issue(context.Background(), "sess-1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = store.Validate(context.Background(), "token", "sess-1", false)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
