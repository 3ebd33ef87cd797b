package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/K-sous4/scarf-store/config"
	"github.com/K-sous4/scarf-store/services"
)

// validate checks request payload structs against their validation tags
var validate = validator.New(validator.WithRequiredStructEnabled())

// Controllers holds all controller instances
type Controllers struct {
	Auth       *AuthController
	Products   *ProductController
	Parameters *ParameterController
	Users      *UserController
}

// NewControllers creates and initializes all controller instances
func NewControllers(srvs *services.Services, cfg *config.Config, log zerolog.Logger) *Controllers {
	return &Controllers{
		Auth:       NewAuthController(srvs.Auth, cfg, log),
		Products:   NewProductController(srvs.Products),
		Parameters: NewParameterController(srvs.Parameters),
		Users:      NewUserController(srvs.Users),
	}
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			// Headers are gone; nothing left to do for the client.
			return
		}
	}
}

// respondError writes a JSON error body of the shape {"error": "..."}
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeAndValidate parses a JSON request body into dst and runs validation
func decodeAndValidate(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body")
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			field := validationErrors[0]
			return fmt.Errorf("invalid field %q", field.Field())
		}
		return fmt.Errorf("invalid request body")
	}

	return nil
}
