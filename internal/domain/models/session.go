package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a device-bound session created after a successful MFA
// verification, mapping to the 'mfa_sessions' table. The fingerprint pairing
// is advisory: it detects device changes but is not a cryptographic identity.
type Session struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	UserID            uuid.UUID  `json:"user_id" db:"user_id"`
	Token             string     `json:"token" db:"-"` // signed JWT, never persisted in plain form
	DeviceFingerprint string     `json:"device_fingerprint" db:"device_fingerprint"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt         time.Time  `json:"expires_at" db:"expires_at"` // created_at + device trust duration
	RevokedAt         *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
}

// ActiveAt reports whether the session is neither revoked nor expired at the
// given instant. This is a local check; see SessionService.IsSessionValid
// for the trust-boundary discussion.
func (s *Session) ActiveAt(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
