// Package password hashes and verifies user passwords with bcrypt.
// The salt is embedded in the produced hash.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when an empty password is given to Hash.
var ErrEmptyPassword = errors.New("password must not be empty")

// Hash generates a bcrypt hash for the given password
func Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether password matches hash. It returns false for
// any mismatch or malformed hash and never panics on bad input.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
