package credential

import (
	"customer-service/internal/pkg/apperrors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinLength = 4
	MaxLength = 255

	maxBcryptBytes = 72
)

// BcryptHasher hashes account credentials before they reach storage.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher falls back to bcrypt.DefaultCost when cost is outside the
// range bcrypt accepts.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash counts the length limits in characters, not bytes.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	if n := utf8.RuneCountInString(plain); n < MinLength || n > MaxLength {
		return "", apperrors.NewValidationError("password", fmt.Sprintf("password must be between %d and %d characters", MinLength, MaxLength))
	}
	// bcrypt only reads the first 72 bytes and rejects longer input.
	if len(plain) > maxBcryptBytes {
		plain = plain[:maxBcryptBytes]
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash credential: %w", err)
	}
	return string(hashed), nil
}
