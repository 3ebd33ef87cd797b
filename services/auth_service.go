package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/K-sous4/scarf-store/csrf"
	"github.com/K-sous4/scarf-store/models"
	"github.com/K-sous4/scarf-store/repositories"
	"github.com/K-sous4/scarf-store/session"
)

// ErrInvalidCredentials is returned on any login failure. It deliberately
// does not say whether the account exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrRegistrationFailed is returned when an account cannot be created,
// including username/email conflicts; the reason is not disclosed.
var ErrRegistrationFailed = errors.New("registration failed")

// AuthResult carries everything a controller needs after a successful
// privilege transition: the user, the fresh session id, and a CSRF token
// bound to it.
type AuthResult struct {
	User      *models.User
	SessionID string
	CSRFToken string
}

// AuthService handles registration, login, and logout. Sessions are rotated
// (or freshly created) on every privilege transition; logout revokes the
// session together with all CSRF tokens bound to it.
type AuthService struct {
	users    repositories.UserRepository
	sessions *session.Store
	csrf     *csrf.Store
	hasher   PasswordHasher
	log      zerolog.Logger
}

// NewAuthService creates an AuthService
func NewAuthService(
	users repositories.UserRepository,
	sessions *session.Store,
	csrfTokens *csrf.Store,
	hasher PasswordHasher,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		csrf:     csrfTokens,
		hasher:   hasher,
		log:      log,
	}
}

// Register creates a new account and starts a session for it.
// priorSessionID, when non-empty, is the session the client arrived with;
// it is discarded so a pre-set identifier can never survive sign-up.
func (s *AuthService) Register(ctx context.Context, username, password, email, priorSessionID string) (*AuthResult, error) {
	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRegistrationFailed
	}

	if email != "" {
		existing, err = s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrRegistrationFailed
		}
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		HashedPassword: digest,
		Role:           models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration may have won the uniqueness race.
		return nil, ErrRegistrationFailed
	}

	return s.establishSession(ctx, user, priorSessionID)
}

// Login verifies credentials and starts a fresh session. The failure mode is
// uniform across "no such user" and "wrong password".
func (s *AuthService) Login(ctx context.Context, username, password, priorSessionID string) (*AuthResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.hasher.Verify(password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}

	result, err := s.establishSession(ctx, user, priorSessionID)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("user logged in")

	return result, nil
}

// establishSession gives the user a session id the client could not have
// known before authenticating. An existing session is rotated so its claims
// are replaced atomically; otherwise a fresh one is created. A CSRF token
// bound to the new session is issued alongside.
func (s *AuthService) establishSession(ctx context.Context, user *models.User, priorSessionID string) (*AuthResult, error) {
	var sessionID string
	var err error

	if priorSessionID != "" {
		sessionID, err = s.sessions.Rotate(ctx, priorSessionID, user.ID, user.Username, user.Role)
		if err != nil {
			return nil, err
		}
		if sessionID != "" {
			// Tokens bound to the retired identifier are dead weight.
			if _, err := s.csrf.InvalidateAll(ctx, priorSessionID); err != nil {
				return nil, err
			}
		}
	}

	if sessionID == "" {
		sessionID, err = s.sessions.Create(ctx, user.ID, user.Username, user.Role)
		if err != nil {
			return nil, err
		}
	}

	token, err := s.csrf.Issue(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:      user,
		SessionID: sessionID,
		CSRFToken: token,
	}, nil
}

// Logout invalidates the session and every CSRF token bound to it.
// Idempotent: logging out an unknown session is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if _, err := s.sessions.Invalidate(ctx, sessionID); err != nil {
		return err
	}

	count, err := s.csrf.InvalidateAll(ctx, sessionID)
	if err != nil {
		return err
	}

	s.log.Debug().Int("csrf_tokens_revoked", count).Msg("session logged out")
	return nil
}

// InvalidateSession removes a session without touching anything else. Used
// by the authentication gate when a session references a deleted account.
func (s *AuthService) InvalidateSession(ctx context.Context, sessionID string) {
	if _, err := s.sessions.Invalidate(ctx, sessionID); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate dangling session")
	}
}
