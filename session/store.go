package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/K-sous4/scarf-store/models"
)

// ErrStoreUnavailable is returned when Redis cannot be reached or answers
// with an unexpected error. Authentication paths treat it as a hard denial.
var ErrStoreUnavailable = errors.New("session store unavailable")

const (
	keyPrefix = "session:"

	// sessionIDBytes is the entropy of a session identifier (256 bits)
	sessionIDBytes = 32
)

// rotateScript atomically replaces a session identifier: the old key is
// deleted and the new one created in a single server-side step, so there is
// never a window where both ids are live or neither is. Returns 0 when the
// old session no longer exists, in which case nothing is written.
const rotateScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("DEL", KEYS[1])
redis.call("SET", KEYS[2], ARGV[1], "PX", ARGV[2])
return 1
`

var rotateLua = redis.NewScript(rotateScript)

// Store is a Redis-backed session store. TTL handling is passive: records
// vanish when their key expires without renewing activity.
type Store struct {
	redis     redis.UniversalClient
	ttl       time.Duration
	opTimeout time.Duration
}

// NewStore creates a session Store with the given absolute TTL and a bound
// on the duration of any single Redis call.
func NewStore(client redis.UniversalClient, ttl, opTimeout time.Duration) *Store {
	return &Store{
		redis:     client,
		ttl:       ttl,
		opTimeout: opTimeout,
	}
}

// TTL returns the configured session lifetime
func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) key(sessionID string) string {
	return keyPrefix + sessionID
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// newSessionID generates a 256-bit random identifier, base64url encoded
func newSessionID() (string, error) {
	buf := make([]byte, sessionIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func encodeRecord(userID int64, username, role string) ([]byte, error) {
	record := models.SessionRecord{
		UserID:    userID,
		Username:  username,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	return json.Marshal(record)
}

// Create generates a fresh session for the given claims and persists it with
// the full TTL. It returns the opaque session identifier.
func (s *Store) Create(ctx context.Context, userID int64, username, role string) (string, error) {
	sessionID, err := newSessionID()
	if err != nil {
		return "", err
	}

	data, err := encodeRecord(userID, username, role)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.redis.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return sessionID, nil
}

// Get retrieves the claims for a session id. A missing, expired, or already
// invalidated session is a single outcome: (nil, nil).
func (s *Store) Get(ctx context.Context, sessionID string) (*models.SessionRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var record models.SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		// A corrupt blob is as good as absent; it cannot authenticate anyone.
		return nil, nil
	}

	return &record, nil
}

// Refresh resets the session TTL to the full duration without touching the
// identifier or claims. Returns false when the session is absent.
func (s *Store) Refresh(ctx context.Context, sessionID string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ok, err := s.redis.Expire(ctx, s.key(sessionID), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return ok, nil
}

// Rotate replaces the session identifier while preserving the claims: the
// old id is deleted and a new one created as one atomic server-side step.
// Returns "" when the old session is absent; no new session is created then.
func (s *Store) Rotate(ctx context.Context, oldID string, userID int64, username, role string) (string, error) {
	newID, err := newSessionID()
	if err != nil {
		return "", err
	}

	data, err := encodeRecord(userID, username, role)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := rotateLua.Run(ctx, s.redis,
		[]string{s.key(oldID), s.key(newID)},
		data, s.ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if result == 0 {
		return "", nil
	}

	return newID, nil
}

// Invalidate deletes the session. Idempotent; returns whether a live record
// was actually removed.
func (s *Store) Invalidate(ctx context.Context, sessionID string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	deleted, err := s.redis.Del(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return deleted > 0, nil
}
