package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// AccountNumberPrefix tags every generated account number.
const AccountNumberPrefix = "ACC"

// GenerateSecureRandomString generates a cryptographically secure random string of the specified byte length,
// then hex encodes it. For example, lengthInBytes=32 will result in a 64-character hex string.
func GenerateSecureRandomString(lengthInBytes int) (string, error) {
	if lengthInBytes <= 0 {
		return "", fmt.Errorf("lengthInBytes must be positive")
	}
	b := make([]byte, lengthInBytes)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateAccountNumber produces a collision-resistant account number of the
// form ACC followed by 16 uppercase hex characters. Uniqueness is enforced by
// the database; callers regenerate on collision.
func GenerateAccountNumber() (string, error) {
	suffix, err := GenerateSecureRandomString(8)
	if err != nil {
		return "", fmt.Errorf("failed to generate account number: %w", err)
	}
	return AccountNumberPrefix + strings.ToUpper(suffix), nil
}

// GeneratePlaceholderPhone produces a unique placeholder contact identifier
// of the form +1 followed by 10 hex characters, for accounts opened without
// a phone number. The phone column is unique and non-null, so a blank cannot
// be stored twice.
func GeneratePlaceholderPhone() (string, error) {
	suffix, err := GenerateSecureRandomString(5)
	if err != nil {
		return "", fmt.Errorf("failed to generate placeholder phone: %w", err)
	}
	return "+1" + suffix, nil
}
