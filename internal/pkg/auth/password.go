package auth

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// OperatorHashCost is the bcrypt cost for new operator password hashes.
const OperatorHashCost = 12

// MinPasswordLength is the shortest operator password accepted, in characters.
const MinPasswordLength = 8

// bcrypt rejects passwords longer than 72 bytes.
const maxPasswordBytes = 72

var (
	ErrPasswordTooShort = fmt.Errorf("operator password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("operator password must be at most %d bytes", maxPasswordBytes)
	ErrMalformedHash    = errors.New("operator password hash is not a bcrypt hash")
)

// HashOperatorPassword produces the value for ADMIN_PASSWORD_HASH.
func HashOperatorPassword(password string) (string, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), OperatorHashCost)
	if err != nil {
		return "", fmt.Errorf("hash operator password: %w", err)
	}
	return string(hash), nil
}

// ValidatePasswordHash checks that a configured hash can ever match and
// returns its cost.
func ValidatePasswordHash(hash string) (int, error) {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	return cost, nil
}

// CheckPassword reports whether password matches the operator hash.
func CheckPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
