package controllers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/K-sous4/scarf-store/config"
	"github.com/K-sous4/scarf-store/models"
	"github.com/K-sous4/scarf-store/services"
	"github.com/K-sous4/scarf-store/session"
	"github.com/K-sous4/scarf-store/userctx"
)

// AuthController handles sign-up, login, logout and profile requests
type AuthController struct {
	auth *services.AuthService
	cfg  *config.Config
	log  zerolog.Logger
}

func NewAuthController(auth *services.AuthService, cfg *config.Config, log zerolog.Logger) *AuthController {
	return &AuthController{auth: auth, cfg: cfg, log: log}
}

type signInRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	User      userResponse `json:"user"`
	CSRFToken string       `json:"csrf_token"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// SignIn registers a new account and establishes a fresh session.
func (c *AuthController) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	priorSessionID := session.FromRequest(r)

	result, err := c.auth.Register(r.Context(), req.Username, req.Password, req.Email, priorSessionID)
	if err != nil {
		if errors.Is(err, services.ErrRegistrationFailed) {
			respondError(w, http.StatusBadRequest, "Registration failed")
			return
		}
		c.log.Error().Err(err).Msg("sign-in failed")
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	session.SetCookie(w, result.SessionID, c.cfg.SessionTTL, c.cfg.SecureCookies)
	respondJSON(w, http.StatusCreated, authResponse{
		User:      toUserResponse(result.User),
		CSRFToken: result.CSRFToken,
	})
}

// Login authenticates credentials and establishes a session, rotating any
// session the client already holds.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	priorSessionID := session.FromRequest(r)

	result, err := c.auth.Login(r.Context(), req.Username, req.Password, priorSessionID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Authentication failed")
			return
		}
		c.log.Error().Err(err).Msg("login failed")
		respondError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	session.SetCookie(w, result.SessionID, c.cfg.SessionTTL, c.cfg.SecureCookies)
	respondJSON(w, http.StatusOK, authResponse{
		User:      toUserResponse(result.User),
		CSRFToken: result.CSRFToken,
	})
}

// Logout tears down the current session and its CSRF tokens. It succeeds
// even when no session exists.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := session.FromRequest(r); sessionID != "" {
		if err := c.auth.Logout(r.Context(), sessionID); err != nil {
			c.log.Warn().Err(err).Msg("logout cleanup failed")
		}
	}

	session.ClearCookie(w, c.cfg.SecureCookies)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Profile returns the identity bound to the current session.
func (c *AuthController) Profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := userctx.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	respondJSON(w, http.StatusOK, userResponse{
		ID:       principal.UserID,
		Username: principal.Username,
		Role:     principal.Role,
	})
}
