package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"inventory-api/internal/model"
)

// PasswordHasher wraps bcrypt. The digest embeds its own salt and cost, so
// changing the configured cost never invalidates stored hashes.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrHashing, err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Malformed digests are a mismatch.
func (h *PasswordHasher) Verify(plaintext string, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
