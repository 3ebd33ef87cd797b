package repositories

import (
	"database/sql"
)

// Repositories struct holds all repository interfaces
type Repositories struct {
	Users      UserRepository
	Products   ProductRepository
	Categories CategoryRepository
	Colors     ColorRepository
	Materials  MaterialRepository
	Audit      AuditRepository
}

// NewRepositories creates and initializes all repositories
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(db),
		Products:   NewProductRepository(db),
		Categories: NewCategoryRepository(db),
		Colors:     NewColorRepository(db),
		Materials:  NewMaterialRepository(db),
		Audit:      NewAuditRepository(db),
	}
}
