package service

// TOTPService is the time-based one-time password engine.
type TOTPService interface {
	// GenerateSecret creates a new shared secret for a user.
	// accountName is typically the user's email or username; issuerName
	// overrides the configured default when non-empty.
	// Returns the base32 secret and the otpauth:// URL for QR rendering.
	GenerateSecret(accountName, issuerName string) (secretB32 string, otpAuthURL string, err error)

	// GenerateCode derives the 6-digit code for the current 30-second time
	// step. Deterministic for a given secret and step.
	GenerateCode(secretB32 string) (string, error)

	// ValidateCode checks a code against the secret, accepting codes within
	// the configured skew window around the current step (clock-drift
	// tolerance that also bounds the replay surface).
	ValidateCode(secretB32, code string) (isValid bool, err error)
}
