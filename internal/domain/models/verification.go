package models

import "github.com/google/uuid"

// VerificationResult is the outcome of one VerifyChallenge call. On success
// SessionToken carries the freshly bound session token; on failure Err holds
// the domain error (INVALID_CODE, EXPIRED_CHALLENGE, MAX_ATTEMPTS, ...).
type VerificationResult struct {
	Success      bool       `json:"success"`
	MethodType   MethodType `json:"method_type"`
	UserID       uuid.UUID  `json:"user_id"`
	SessionToken string     `json:"session_token,omitempty"`
	Err          error      `json:"-"`
}

// TOTPSetupResult is returned once from SetupTOTP. The plain backup codes
// are never recoverable afterwards; only their hashes are stored.
type TOTPSetupResult struct {
	SecretBase32 string   `json:"secret_key"`
	OTPAuthURL   string   `json:"qr_code_url"`
	BackupCodes  []string `json:"backup_codes"`
}
