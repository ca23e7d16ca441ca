package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	domainErrors "github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/errors"
)

func TestCodeFor(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{domainErrors.ErrSetupFailed, domainErrors.CodeSetupFailed},
		{domainErrors.ErrInvalidPhone, domainErrors.CodeInvalidPhone},
		{domainErrors.ErrInvalidEmail, domainErrors.CodeInvalidEmail},
		{domainErrors.ErrInvalidCode, domainErrors.CodeInvalidCode},
		{domainErrors.ErrExpiredChallenge, domainErrors.CodeExpiredChallenge},
		{domainErrors.ErrMaxAttempts, domainErrors.CodeMaxAttempts},
		{domainErrors.ErrMethodLocked, domainErrors.CodeMethodLocked},
		{domainErrors.ErrMethodNotEnabled, domainErrors.CodeMethodNotEnabled},
		{domainErrors.ErrNoPrimaryMethod, domainErrors.CodeNoPrimaryMethod},
		{domainErrors.ErrInvalidSession, domainErrors.CodeInvalidSession},
		{domainErrors.ErrSessionExpired, domainErrors.CodeSessionExpired},
		{domainErrors.ErrRateLimitExceeded, domainErrors.CodeRateLimited},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, domainErrors.CodeFor(tc.err), tc.err.Error())
	}

	// Wrapped errors resolve through errors.Is.
	wrapped := fmt.Errorf("context: %w", domainErrors.ErrInvalidCode)
	assert.Equal(t, domainErrors.CodeInvalidCode, domainErrors.CodeFor(wrapped))

	// Infrastructure errors never leak their own taxonomy.
	assert.Equal(t, domainErrors.CodeInternal, domainErrors.CodeFor(errors.New("pq: connection refused")))
}

func TestAppError_Unwrap(t *testing.T) {
	appErr := domainErrors.New(domainErrors.ErrMaxAttempts, "too many attempts")
	assert.Equal(t, domainErrors.CodeMaxAttempts, appErr.Code)
	assert.True(t, errors.Is(appErr, domainErrors.ErrMaxAttempts))
	assert.Contains(t, appErr.Error(), "too many attempts")
}

func TestIsVerificationFailure(t *testing.T) {
	assert.True(t, domainErrors.IsVerificationFailure(domainErrors.ErrInvalidCode))
	assert.True(t, domainErrors.IsVerificationFailure(domainErrors.ErrExpiredChallenge))
	assert.True(t, domainErrors.IsVerificationFailure(domainErrors.ErrMaxAttempts))
	assert.True(t, domainErrors.IsVerificationFailure(domainErrors.ErrMethodLocked))
	assert.False(t, domainErrors.IsVerificationFailure(domainErrors.ErrSetupFailed))
	assert.False(t, domainErrors.IsVerificationFailure(errors.New("boom")))
}
