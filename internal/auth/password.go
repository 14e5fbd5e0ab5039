package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// HashPassword hashes a plain text password using bcrypt.
// Passwords longer than 72 bytes are rejected (bcrypt's maximum).
func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", fmt.Errorf("password exceeds maximum length of 72 bytes")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword compares password with a stored hash. Besides bcrypt it accepts the
// legacy "salt:sha256hex(password+salt)" format of imported accounts.
func CheckPassword(password, stored string) bool {
	if IsLegacyHash(stored) {
		salt, want, _ := strings.Cut(stored, ":")
		sum := sha256.Sum256([]byte(password + salt))
		got := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(got), []byte(strings.ToLower(want))) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// IsLegacyHash reports whether stored is in the salted sha256 format and should be
// rehashed on the next successful login.
func IsLegacyHash(stored string) bool {
	if strings.HasPrefix(stored, "$2") {
		return false
	}
	_, hash, ok := strings.Cut(stored, ":")
	return ok && len(hash) == sha256.Size*2
}
