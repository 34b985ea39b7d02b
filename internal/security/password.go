package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost matches the 10 salt rounds the account data was created with.
const PasswordCost = 10

var ErrCorruptHash = errors.New("stored password hash is malformed")

// HashPassword hashes a plain text password with bcrypt. Every call uses a fresh salt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// PasswordMatches compares a bcrypt hash with a plaintext password.
// A mismatch is (false, nil); only an unreadable hash is an error.
func PasswordMatches(hash, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrCorruptHash
	}
}
