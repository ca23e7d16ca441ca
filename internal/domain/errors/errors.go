package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the MFA domain. Services return these (or wrap them);
// callers match with errors.Is.
var (
	// Generic.
	ErrInternal = errors.New("internal error")
	ErrNotFound = errors.New("resource not found")

	// Setup-time.
	ErrSetupFailed  = errors.New("MFA setup failed")
	ErrInvalidPhone = errors.New("invalid phone number")
	ErrInvalidEmail = errors.New("invalid email address")

	// Verification-time.
	ErrInvalidCode      = errors.New("invalid verification code")
	ErrExpiredChallenge = errors.New("challenge expired or already resolved")
	ErrMaxAttempts      = errors.New("maximum verification attempts exceeded")
	ErrMethodLocked     = errors.New("method temporarily locked")

	// Configuration-time.
	ErrMethodNotEnabled = errors.New("MFA method not enabled")
	ErrNoPrimaryMethod  = errors.New("no primary MFA method configured")

	// Session-time.
	ErrInvalidSession = errors.New("invalid session")
	ErrSessionExpired = errors.New("session expired")

	// Abuse policy.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Machine-readable codes carried by AppError; these are what the API layer
// and audit records expose, never the underlying persistence errors.
const (
	CodeSetupFailed      = "SETUP_FAILED"
	CodeInvalidPhone     = "INVALID_PHONE"
	CodeInvalidEmail     = "INVALID_EMAIL"
	CodeInvalidCode      = "INVALID_CODE"
	CodeExpiredChallenge = "EXPIRED_CHALLENGE"
	CodeMaxAttempts      = "MAX_ATTEMPTS"
	CodeMethodLocked     = "METHOD_LOCKED"
	CodeMethodNotEnabled = "METHOD_NOT_ENABLED"
	CodeNoPrimaryMethod  = "NO_PRIMARY_METHOD"
	CodeInvalidSession   = "INVALID_SESSION"
	CodeSessionExpired   = "SESSION_EXPIRED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternal         = "INTERNAL_ERROR"
)

// AppError carries a domain error together with a user-facing message and a
// stable code. The Msg is safe to show to the end user; it deliberately does
// not distinguish wrong-code from not-enrolled beyond the code taxonomy.
type AppError struct {
	Err  error
	Msg  string
	Code string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *AppError) Unwrap() error { return e.Err }

// New wraps a sentinel error into an AppError with its canonical code.
func New(err error, msg string) *AppError {
	return &AppError{Err: err, Msg: msg, Code: CodeFor(err)}
}

// CodeFor maps a domain error to its stable code. Unknown errors map to
// INTERNAL_ERROR so persistence failures are never leaked verbatim.
func CodeFor(err error) string {
	switch {
	case errors.Is(err, ErrSetupFailed):
		return CodeSetupFailed
	case errors.Is(err, ErrInvalidPhone):
		return CodeInvalidPhone
	case errors.Is(err, ErrInvalidEmail):
		return CodeInvalidEmail
	case errors.Is(err, ErrInvalidCode):
		return CodeInvalidCode
	case errors.Is(err, ErrExpiredChallenge):
		return CodeExpiredChallenge
	case errors.Is(err, ErrMaxAttempts):
		return CodeMaxAttempts
	case errors.Is(err, ErrMethodLocked):
		return CodeMethodLocked
	case errors.Is(err, ErrMethodNotEnabled):
		return CodeMethodNotEnabled
	case errors.Is(err, ErrNoPrimaryMethod):
		return CodeNoPrimaryMethod
	case errors.Is(err, ErrInvalidSession):
		return CodeInvalidSession
	case errors.Is(err, ErrSessionExpired):
		return CodeSessionExpired
	case errors.Is(err, ErrRateLimitExceeded):
		return CodeRateLimited
	default:
		return CodeInternal
	}
}

// IsVerificationFailure reports whether err is one of the expected
// verification outcomes, as opposed to an infrastructure failure.
func IsVerificationFailure(err error) bool {
	return errors.Is(err, ErrInvalidCode) ||
		errors.Is(err, ErrExpiredChallenge) ||
		errors.Is(err, ErrMaxAttempts) ||
		errors.Is(err, ErrMethodLocked)
}
