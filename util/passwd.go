// Package util holds small shared helpers.
package util

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/crypto/bcrypt"
)

const passwordAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// EncryptPassword hashes a password with bcrypt.
func EncryptPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword verifies a password against its bcrypt hash.
func ComparePassword(encodePassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodePassword), []byte(password)) == nil
}

// IsHashedPassword reports whether a stored credential is a bcrypt
// hash. Legacy records may still carry plaintext; those are re-hashed
// on first successful login.
func IsHashedPassword(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}

// GeneratePassword returns a random alphanumeric password.
func GeneratePassword(length int) string {
	if length <= 0 {
		length = 12
	}
	return gonanoid.MustGenerate(passwordAlphabet, length)
}

// GeneratePassCode returns a short human-presentable pass code.
func GeneratePassCode() string {
	return gonanoid.MustGenerate("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ", 8)
}
