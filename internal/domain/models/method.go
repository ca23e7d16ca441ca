package models

import (
	"time"

	"github.com/google/uuid"
)

// MethodType identifies a multi-factor authentication method.
type MethodType string

const (
	MethodTypeTOTP        MethodType = "totp"
	MethodTypeSMS         MethodType = "sms"
	MethodTypeEmail       MethodType = "email"
	MethodTypeBackupCodes MethodType = "backup_codes"
)

// Valid reports whether t is one of the known method types.
func (t MethodType) Valid() bool {
	switch t {
	case MethodTypeTOTP, MethodTypeSMS, MethodTypeEmail, MethodTypeBackupCodes:
		return true
	}
	return false
}

// MFAMethod is one enrolled MFA method for a user, mapping to the
// 'mfa_methods' table. At most one method per user carries IsPrimary=true;
// the repository enforces this with a partial unique index and the service
// clears the previous primary in the same transaction.
type MFAMethod struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	Type             MethodType `json:"type" db:"type"`
	Enabled          bool       `json:"enabled" db:"enabled"`
	IsPrimary        bool       `json:"is_primary" db:"is_primary"`
	Destination      string     `json:"-" db:"destination"` // phone or email for channel methods
	SetupCompletedAt *time.Time `json:"setup_completed_at,omitempty" db:"setup_completed_at"`
	LastUsedAt       *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	UsageCount       int64      `json:"usage_count" db:"usage_count"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// SetupCompleted reports whether the method finished its setup flow.
// Only completed methods may be enabled.
func (m *MFAMethod) SetupCompleted() bool {
	return m.SetupCompletedAt != nil
}
