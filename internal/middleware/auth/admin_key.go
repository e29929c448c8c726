package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const minAdminKeyLength = 16

var ErrAdminKeyTooShort = errors.New("admin key must be at least 16 characters")

// HashAdminKey creates the bcrypt hash stored in ADMIN_KEY_HASH.
func HashAdminKey(key string) (string, error) {
	if len(key) < minAdminKeyLength {
		return "", ErrAdminKeyTooShort
	}
	// the cost determines the computational complexity of the hashing process
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyAdminKey checks if the provided plaintext key matches the stored bcrypt hash.
func VerifyAdminKey(hashedKey, providedKey string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(providedKey))
}
