package models

import (
	"time"

	"github.com/google/uuid"
)

// ChannelCode is a one-time code delivered over an external channel (SMS or
// email), mapping to the 'mfa_channel_codes' table. Delivery mechanics are
// outside this service; the row records what was issued so verification can
// do an exact, case-sensitive match against the stored hash. Single use,
// own expiry independent of the challenge.
type ChannelCode struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	MethodType MethodType `json:"method_type" db:"method_type"` // sms or email
	CodeHash   string     `json:"-" db:"code_hash"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	UsedAt     *time.Time `json:"used_at,omitempty" db:"used_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
