package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashCode hashes a one-time code (backup or channel code) with SHA-256 and
// returns the hex digest. The hash is deterministic so the repository can
// look codes up by hash; the codes themselves carry enough entropy that an
// unsalted hash is acceptable here.
func HashCode(plainCode string) string {
	sum := sha256.Sum256([]byte(plainCode))
	return hex.EncodeToString(sum[:])
}

// ConstantTimeEquals compares two strings without leaking the position of
// the first difference.
func ConstantTimeEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
