package models

import (
	"time"

	"github.com/google/uuid"
)

// TOTPSecret stores the shared secret for a user's TOTP method, mapping to
// the 'mfa_totp_secrets' table. The secret is encrypted at the application
// level before it reaches the repository.
type TOTPSecret struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	UserID             uuid.UUID `json:"user_id" db:"user_id"`
	SecretKeyEncrypted string    `json:"-" db:"secret_key_encrypted"`
	Verified           bool      `json:"verified" db:"verified"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}
