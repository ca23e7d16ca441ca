package models

import (
	"time"

	"github.com/google/uuid"
)

// BackupCode stores a single recovery code for MFA, mapping to the
// 'mfa_backup_codes' table. Codes are stored as SHA-256 hashes and transition
// unused → consumed exactly once; consumption is an atomic conditional update
// in the repository.
type BackupCode struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	CodeHash  string     `json:"-" db:"code_hash"`
	UsedAt    *time.Time `json:"used_at,omitempty" db:"used_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
