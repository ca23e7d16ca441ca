package random

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// GenerateRandomBytes returns length cryptographically random bytes.
func GenerateRandomBytes(length int) ([]byte, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

// GenerateRandomHex returns a random hex string of the given length.
func GenerateRandomHex(length int) (string, error) {
	b, err := GenerateRandomBytes((length + 1) / 2)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b)[:length], nil
}

// GenerateRandomDigits returns a random numeric string of the given length,
// suitable for SMS/email one-time codes.
func GenerateRandomDigits(length int) (string, error) {
	digits := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte(n.Int64() + '0')
	}
	return string(digits), nil
}

// GenerateRandomStringFromCharset returns a random string drawn from charset.
func GenerateRandomStringFromCharset(length int, charset string) (string, error) {
	charsetLength := big.NewInt(int64(len(charset)))
	result := strings.Builder{}
	result.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, charsetLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate random index: %w", err)
		}
		result.WriteByte(charset[n.Int64()])
	}

	return result.String(), nil
}

// GenerateBackupCode returns a backup code of the given length. The charset
// omits visually ambiguous characters (0/O, 1/I/L) so codes survive being
// read off a printout.
func GenerateBackupCode(length int) (string, error) {
	const charset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	return GenerateRandomStringFromCharset(length, charset)
}

// GenerateSecureToken returns an opaque URL-safe token with length bytes of
// entropy, base64url-encoded. Used for challenge tokens.
func GenerateSecureToken(length int) (string, error) {
	b, err := GenerateRandomBytes(length)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(b), nil
}
