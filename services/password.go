package services

import "golang.org/x/crypto/bcrypt"

// PasswordHasher abstracts password hashing so tests can substitute a cheap
// implementation.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// bcryptHasher hashes with bcrypt. Each hash carries its own random salt.
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt-backed hasher. Cost 12 when cost <= 0.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost <= 0 {
		cost = 12
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (h *bcryptHasher) Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
