package services

import (
	"context"
	"errors"

	"github.com/K-sous4/scarf-store/models"
	"github.com/K-sous4/scarf-store/repositories"
)

// ErrUserNotFound is returned for operations on a missing user
var ErrUserNotFound = errors.New("user not found")

// ErrProfileConflict is returned when a profile update collides with an
// existing username or email.
var ErrProfileConflict = errors.New("username or email already in use")

// UserService handles user profile management
type UserService struct {
	users repositories.UserRepository
}

// NewUserService creates a UserService
func NewUserService(users repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

// Get retrieves a user by id
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile changes the caller's username and/or email. Empty values
// leave the corresponding field untouched.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, username, email string) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if username != "" && username != user.Username {
		existing, err := s.users.FindByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, ErrProfileConflict
		}
		user.Username = username
	}

	if email != "" && email != user.Email {
		existing, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, ErrProfileConflict
		}
		user.Email = email
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// List returns users with pagination, plus the total count
func (s *UserService) List(ctx context.Context, offset, limit int) ([]models.User, int, error) {
	if limit <= 0 {
		limit = 50
	}

	users, err := s.users.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
