package random_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/utils/random"
)

func TestGenerateRandomDigits(t *testing.T) {
	code, err := random.GenerateRandomDigits(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, c := range code {
		assert.True(t, c >= '0' && c <= '9', "non-digit %q in code", c)
	}
}

func TestGenerateBackupCode_Charset(t *testing.T) {
	const charset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

	for i := 0; i < 20; i++ {
		code, err := random.GenerateBackupCode(6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(charset, c),
				"character %q outside the unambiguous charset", c)
		}
	}
}

func TestGenerateSecureToken_UniqueAndOpaque(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := random.GenerateSecureToken(32)
		require.NoError(t, err)
		assert.NotContains(t, token, "=")
		assert.False(t, seen[token], "token collision")
		seen[token] = true
	}
}

func TestGenerateRandomHex_Length(t *testing.T) {
	for _, length := range []int{1, 2, 7, 32} {
		s, err := random.GenerateRandomHex(length)
		require.NoError(t, err)
		assert.Len(t, s, length)
	}
}
