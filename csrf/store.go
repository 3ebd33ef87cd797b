package csrf

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable is returned when Redis cannot be reached. CSRF checks
// fail closed on it.
var ErrStoreUnavailable = errors.New("csrf store unavailable")

const (
	tokenKeyPrefix = "csrf:"
	indexKeyPrefix = "csrf:index:"

	// tokenBytes is the entropy of a CSRF token (256 bits)
	tokenBytes = 32
)

// Store is a Redis-backed registry of CSRF tokens, each bound to the session
// it was issued for. A per-session index set makes bulk invalidation O(tokens
// of that session) instead of a scan over the whole keyspace.
type Store struct {
	redis     redis.UniversalClient
	ttl       time.Duration
	opTimeout time.Duration
}

// NewStore creates a CSRF token Store with the given token TTL and a bound
// on the duration of any single Redis call.
func NewStore(client redis.UniversalClient, ttl, opTimeout time.Duration) *Store {
	return &Store{
		redis:     client,
		ttl:       ttl,
		opTimeout: opTimeout,
	}
}

func (s *Store) tokenKey(token string) string {
	return tokenKeyPrefix + token
}

func (s *Store) indexKey(sessionID string) string {
	return indexKeyPrefix + sessionID
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// Issue creates a random opaque token bound to the given session id
func (s *Store) Issue(ctx context.Context, sessionID string) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(token), sessionID, s.ttl)
		pipe.SAdd(ctx, s.indexKey(sessionID), token)
		// The index must outlive every token it references.
		pipe.Expire(ctx, s.indexKey(sessionID), s.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return token, nil
}

// Validate checks that the token exists and that its bound session id equals
// the presented one. Both conditions are mandatory: a live token presented
// with a different session is invalid. When consume is true the token is
// deleted after a successful check.
func (s *Store) Validate(ctx context.Context, token, sessionID string, consume bool) (bool, error) {
	if token == "" || sessionID == "" {
		return false, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	boundSession, err := s.redis.Get(ctx, s.tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if boundSession != sessionID {
		return false, nil
	}

	if consume {
		_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, s.tokenKey(token))
			pipe.SRem(ctx, s.indexKey(sessionID), token)
			return nil
		})
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	return true, nil
}

// InvalidateAll revokes every token bound to a session and returns how many
// live tokens were removed. Used on logout.
func (s *Store) InvalidateAll(ctx context.Context, sessionID string) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tokens, err := s.redis.SMembers(ctx, s.indexKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if len(tokens) == 0 {
		if err := s.redis.Del(ctx, s.indexKey(sessionID)).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return 0, nil
	}

	keys := make([]string, 0, len(tokens))
	for _, token := range tokens {
		keys = append(keys, s.tokenKey(token))
	}

	deleted, err := s.redis.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := s.redis.Del(ctx, s.indexKey(sessionID)).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return int(deleted), nil
}
