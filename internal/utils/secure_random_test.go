package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureRandomString(t *testing.T) {
	s, err := GenerateSecureRandomString(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)

	_, err = GenerateSecureRandomString(0)
	assert.Error(t, err)
}

func TestGeneratePlaceholderPhone(t *testing.T) {
	pattern := regexp.MustCompile(`^\+1[0-9a-f]{10}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		phone, err := GeneratePlaceholderPhone()
		require.NoError(t, err)
		assert.Regexp(t, pattern, phone)
		_, dup := seen[phone]
		assert.False(t, dup, "generated a duplicate placeholder phone: %s", phone)
		seen[phone] = struct{}{}
	}
}

func TestGenerateAccountNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^ACC[0-9A-F]{16}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		num, err := GenerateAccountNumber()
		require.NoError(t, err)
		assert.Regexp(t, pattern, num)
		_, dup := seen[num]
		assert.False(t, dup, "generated a duplicate account number: %s", num)
		seen[num] = struct{}{}
	}
}
