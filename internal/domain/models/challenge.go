package models

import (
	"time"

	"github.com/google/uuid"
)

// ChallengeStatus is the lifecycle state of a verification challenge.
// pending is the only non-terminal state: pending → verified on success,
// pending → expired on timeout, pending → locked on attempt exhaustion.
// No transition ever leaves a terminal state.
type ChallengeStatus string

const (
	ChallengeStatusPending  ChallengeStatus = "pending"
	ChallengeStatusVerified ChallengeStatus = "verified"
	ChallengeStatusExpired  ChallengeStatus = "expired"
	ChallengeStatusLocked   ChallengeStatus = "locked"
)

// Terminal reports whether the status admits no further transitions.
func (s ChallengeStatus) Terminal() bool {
	return s != ChallengeStatusPending
}

// Challenge is one server-side MFA verification attempt, mapping to the
// 'mfa_challenges' table. Created by the challenge service, mutated only by
// the verification service (attempt_count, status). Terminal challenges are
// never reused; expiry requires a fresh CreateChallenge call.
type Challenge struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	Token             string          `json:"token" db:"token"` // opaque, unique across live challenges
	UserID            uuid.UUID       `json:"user_id" db:"user_id"`
	MethodType        MethodType      `json:"method_type" db:"method_type"`
	Status            ChallengeStatus `json:"status" db:"status"`
	AttemptCount      int             `json:"attempt_count" db:"attempt_count"`
	IssuedAt          time.Time       `json:"issued_at" db:"issued_at"`
	ExpiresAt         time.Time       `json:"expires_at" db:"expires_at"`
	SessionID         *string         `json:"session_id,omitempty" db:"session_id"`
	DeviceFingerprint *string         `json:"device_fingerprint,omitempty" db:"device_fingerprint"`
	VerifiedAt        *time.Time      `json:"verified_at,omitempty" db:"verified_at"`
}

// ExpiredAt reports whether the challenge is past its deadline at the given
// instant.
func (c *Challenge) ExpiredAt(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
