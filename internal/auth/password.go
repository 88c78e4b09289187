package auth

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxLoginIDLength  = 32
)

var loginIDPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9._-]*[a-z0-9])?$`)

// NormalizeLoginID returns the canonical lowercase login id and validates
// allowed characters.
func NormalizeLoginID(raw string) (string, error) {
	loginID := strings.TrimSpace(strings.ToLower(raw))
	if loginID == "" {
		return "", fmt.Errorf("login id is required")
	}
	if len(loginID) > maxLoginIDLength {
		return "", fmt.Errorf("login id too long")
	}
	if !loginIDPattern.MatchString(loginID) {
		return "", fmt.Errorf("invalid login id")
	}
	return loginID, nil
}

// ValidatePassword checks minimal password requirements.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

// HashPassword hashes one plaintext password for persistent storage.
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword verifies plaintext password against a bcrypt hash.
func VerifyPassword(passwordHash, candidate string) bool {
	if strings.TrimSpace(passwordHash) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(candidate)) == nil
}
