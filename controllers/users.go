package controllers

import (
	"errors"
	"net/http"

	"github.com/K-sous4/scarf-store/models"
	"github.com/K-sous4/scarf-store/services"
	"github.com/K-sous4/scarf-store/userctx"
)

// UserController handles the account profile endpoints and the admin user
// listing.
type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

type updateProfileRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type userListResponse struct {
	Users  []models.User `json:"users"`
	Total  int           `json:"total"`
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
}

// Me returns the full account record of the authenticated user.
func (c *UserController) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := userctx.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := c.users.Get(r.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to load account")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdateMe changes the authenticated user's username or email.
func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := userctx.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req updateProfileRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := c.users.UpdateProfile(r.Context(), principal.UserID, req.Username, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			respondError(w, http.StatusUnauthorized, "Not authenticated")
		case errors.Is(err, services.ErrProfileConflict):
			respondError(w, http.StatusConflict, "Username or email already in use")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to update account")
		}
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// List returns registered accounts with pagination. Admin only.
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	users, total, err := c.users.List(r.Context(), offset, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	respondJSON(w, http.StatusOK, userListResponse{
		Users:  users,
		Total:  total,
		Offset: offset,
		Limit:  limit,
	})
}
