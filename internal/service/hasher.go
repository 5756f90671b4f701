package service

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes passwords one way and verifies by recomputation.
type PasswordHasher interface {
	// Hash returns a salted digest of password.
	Hash(password string) (string, error)

	// Verify reports whether password matches digest.
	Verify(digest, password string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, or bcrypt.DefaultCost when cost is out of range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt digest of password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether password matches the bcrypt digest.
func (h *BcryptHasher) Verify(digest, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

var _ PasswordHasher = (*BcryptHasher)(nil)
