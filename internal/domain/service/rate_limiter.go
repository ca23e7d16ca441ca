package service

import (
	"context"
	"time"
)

// RateLimiter is the abuse-policy surface the services consume, implemented
// by the redis limiter in internal/utils/rate.
type RateLimiter interface {
	// AllowChallengeCreation reports whether the user may create another
	// challenge within the rolling window.
	AllowChallengeCreation(ctx context.Context, userID string, limit int, window time.Duration) (bool, error)

	// AllowSetup reports whether the user may initiate another MFA setup.
	AllowSetup(ctx context.Context, userID string, limit int, window time.Duration) (bool, error)

	// LockMethod refuses new challenges for the user's method for duration.
	LockMethod(ctx context.Context, userID, methodType string, duration time.Duration) error

	// MethodLockedFor returns the remaining lockout, zero when unlocked.
	MethodLockedFor(ctx context.Context, userID, methodType string) (time.Duration, error)
}
