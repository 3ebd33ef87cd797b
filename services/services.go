package services

import (
	"github.com/rs/zerolog"

	"github.com/K-sous4/scarf-store/cache"
	"github.com/K-sous4/scarf-store/csrf"
	"github.com/K-sous4/scarf-store/repositories"
	"github.com/K-sous4/scarf-store/session"
)

// Services holds all service instances
type Services struct {
	Auth       *AuthService
	Products   *ProductService
	Parameters *ParameterService
	Users      *UserService
	Audit      *AuditService
}

// NewServices creates and initializes all service instances
func NewServices(
	repos *repositories.Repositories,
	sessions *session.Store,
	csrfTokens *csrf.Store,
	filterCache *cache.Cache,
	auditBuffer int,
	log zerolog.Logger,
) *Services {
	return &Services{
		Auth:       NewAuthService(repos.Users, sessions, csrfTokens, NewBcryptHasher(0), log),
		Products:   NewProductService(repos.Products),
		Parameters: NewParameterService(repos.Categories, repos.Colors, repos.Materials, filterCache),
		Users:      NewUserService(repos.Users),
		Audit:      NewAuditService(repos.Audit, auditBuffer, log),
	}
}
