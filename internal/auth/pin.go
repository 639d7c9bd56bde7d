// Package auth implements PIN-based authentication for group members and the
// JWT session tokens issued after a successful PIN check.
package auth

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid user or PIN")
	ErrWeakPIN            = errors.New("PIN must be at least 4 digits")
)

// MinPINLength is the minimum number of digits in a PIN.
const MinPINLength = 4

// ValidatePIN checks that the PIN meets the minimum requirements: at least
// MinPINLength characters, digits only.
func ValidatePIN(pin string) error {
	if len(pin) < MinPINLength {
		return ErrWeakPIN
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return ErrWeakPIN
		}
	}
	return nil
}

// HashPIN returns the bcrypt hash of a PIN for storage.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}
	return string(hash), nil
}

// CheckPIN compares a PIN against its stored hash.
// Returns ErrInvalidCredentials on mismatch.
func CheckPIN(hash, pin string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
