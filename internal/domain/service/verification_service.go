package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/config"
	domainErrors "github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/errors"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/repository"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/infrastructure/security"
)

// VerificationService validates submitted codes against open challenges and
// drives the challenge state machine: pending → verified | expired | locked.
// It is the only component allowed to mutate a challenge after creation.
type VerificationService interface {
	// VerifyChallenge checks code against the challenge identified by token.
	// Domain outcomes (wrong code, expiry, lockout) are reported inside the
	// result; the error return is reserved for infrastructure failures.
	// Failure results never disclose which part of the input was wrong
	// beyond the code taxonomy.
	VerifyChallenge(ctx context.Context, token, code string, deviceFingerprint *string) (*models.VerificationResult, error)
}

type verificationService struct {
	cfg            *config.MFAConfig
	totpService    TOTPService
	encryption     security.EncryptionService
	challengeRepo  repository.ChallengeRepository
	methodRepo     repository.MethodRepository
	secretRepo     repository.TOTPSecretRepository
	backupCodeRepo repository.BackupCodeRepository
	channelRepo    repository.ChannelCodeRepository
	sessionService SessionService
	rateLimiter    RateLimiter
	logger         *zap.Logger
	now            func() time.Time
}

// NewVerificationService wires the verification processor.
func NewVerificationService(
	cfg *config.MFAConfig,
	totpService TOTPService,
	encryption security.EncryptionService,
	challengeRepo repository.ChallengeRepository,
	methodRepo repository.MethodRepository,
	secretRepo repository.TOTPSecretRepository,
	backupCodeRepo repository.BackupCodeRepository,
	channelRepo repository.ChannelCodeRepository,
	sessionService SessionService,
	rateLimiter RateLimiter,
	logger *zap.Logger,
) VerificationService {
	return &verificationService{
		cfg:            cfg,
		totpService:    totpService,
		encryption:     encryption,
		challengeRepo:  challengeRepo,
		methodRepo:     methodRepo,
		secretRepo:     secretRepo,
		backupCodeRepo: backupCodeRepo,
		channelRepo:    channelRepo,
		sessionService: sessionService,
		rateLimiter:    rateLimiter,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *verificationService) VerifyChallenge(ctx context.Context, token, code string, deviceFingerprint *string) (*models.VerificationResult, error) {
	challenge, err := s.challengeRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			// An unknown token is indistinguishable from an expired one on
			// purpose, so tokens cannot be enumerated.
			return failure(nil, domainErrors.ErrExpiredChallenge), nil
		}
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}

	result := &models.VerificationResult{
		MethodType: challenge.MethodType,
		UserID:     challenge.UserID,
	}
	now := s.now()

	if challenge.Status != models.ChallengeStatusPending {
		return failure(result, domainErrors.ErrExpiredChallenge), nil
	}
	if challenge.ExpiredAt(now) {
		if err := s.challengeRepo.MarkExpired(ctx, token); err != nil {
			s.logger.Error("Failed to mark challenge expired", zap.Error(err), zap.String("token", token))
		}
		return failure(result, domainErrors.ErrExpiredChallenge), nil
	}
	if challenge.AttemptCount >= s.cfg.MaxFailedAttempts {
		return s.lock(ctx, challenge, result), nil
	}

	matched, err := s.matchCode(ctx, challenge, code, now)
	if err != nil {
		return nil, err
	}
	if !matched {
		count, incErr := s.challengeRepo.IncrementAttempts(ctx, token)
		if incErr != nil {
			// The increment races against another verifier finishing the
			// challenge; treat a vanished pending row as resolved elsewhere.
			if errors.Is(incErr, domainErrors.ErrNotFound) {
				return failure(result, domainErrors.ErrExpiredChallenge), nil
			}
			return nil, fmt.Errorf("failed to count attempt: %w", incErr)
		}
		// The attempt that exhausts the cap still reports INVALID_CODE; the
		// lockout fires on the next submission via the entry check above.
		s.logger.Info("Verification attempt failed",
			zap.String("user_id", challenge.UserID.String()),
			zap.String("method_type", string(challenge.MethodType)),
			zap.Int("attempt_count", count))
		return failure(result, domainErrors.ErrInvalidCode), nil
	}

	// Success path: the pending → verified transition is conditional, so of
	// two concurrent correct submissions only one wins.
	ok, err := s.challengeRepo.MarkVerified(ctx, token, now)
	if err != nil {
		return nil, fmt.Errorf("failed to mark challenge verified: %w", err)
	}
	if !ok {
		return failure(result, domainErrors.ErrExpiredChallenge), nil
	}

	if err := s.methodRepo.RecordUsage(ctx, challenge.UserID, challenge.MethodType, now); err != nil {
		// Usage stats must not fail a correct verification.
		s.logger.Error("Failed to record method usage", zap.Error(err),
			zap.String("user_id", challenge.UserID.String()))
	}

	fingerprint := ""
	if deviceFingerprint != nil {
		fingerprint = *deviceFingerprint
	} else if challenge.DeviceFingerprint != nil {
		fingerprint = *challenge.DeviceFingerprint
	}
	session, err := s.sessionService.BindSession(ctx, challenge.UserID, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("verification succeeded but session binding failed: %w", err)
	}

	s.logger.Info("Challenge verified",
		zap.String("user_id", challenge.UserID.String()),
		zap.String("method_type", string(challenge.MethodType)),
		zap.String("session_id", session.ID.String()))

	result.Success = true
	result.SessionToken = session.Token
	return result, nil
}

// matchCode checks the submitted code against the challenge's method without
// mutating the challenge. Consumable codes (backup, channel) are consumed
// here atomically, so a concurrent reuse of the same code cannot also match.
func (s *verificationService) matchCode(ctx context.Context, challenge *models.Challenge, code string, now time.Time) (bool, error) {
	switch challenge.MethodType {
	case models.MethodTypeTOTP:
		secret, err := s.secretRepo.FindByUserID(ctx, challenge.UserID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("failed to load TOTP secret: %w", err)
		}
		if !secret.Verified {
			return false, nil
		}
		plainSecret, err := s.encryption.Decrypt(secret.SecretKeyEncrypted, s.cfg.TOTPSecretEncryptionKey)
		if err != nil {
			return false, fmt.Errorf("failed to decrypt TOTP secret: %w", err)
		}
		valid, err := s.totpService.ValidateCode(plainSecret, code)
		if err != nil {
			// Malformed input counts as a failed attempt, not a crash.
			s.logger.Warn("TOTP validation error", zap.Error(err),
				zap.String("user_id", challenge.UserID.String()))
			return false, nil
		}
		return valid, nil

	case models.MethodTypeBackupCodes:
		consumed, err := s.backupCodeRepo.Consume(ctx, challenge.UserID, security.HashCode(code), now)
		if err != nil {
			return false, fmt.Errorf("failed to consume backup code: %w", err)
		}
		return consumed, nil

	case models.MethodTypeSMS, models.MethodTypeEmail:
		// Exact, case-sensitive match against the stored one-time code.
		consumed, err := s.channelRepo.Consume(ctx, challenge.UserID, challenge.MethodType, security.HashCode(code), now)
		if err != nil {
			return false, fmt.Errorf("failed to consume channel code: %w", err)
		}
		return consumed, nil

	default:
		return false, fmt.Errorf("unsupported method type: %s", challenge.MethodType)
	}
}

// lock transitions the challenge to its terminal locked state and starts the
// method lockout window.
func (s *verificationService) lock(ctx context.Context, challenge *models.Challenge, result *models.VerificationResult) *models.VerificationResult {
	if err := s.challengeRepo.MarkLocked(ctx, challenge.Token); err != nil {
		s.logger.Error("Failed to mark challenge locked", zap.Error(err),
			zap.String("user_id", challenge.UserID.String()))
	}
	if err := s.rateLimiter.LockMethod(ctx, challenge.UserID.String(), string(challenge.MethodType), s.cfg.LockoutDuration); err != nil {
		s.logger.Error("Failed to start method lockout", zap.Error(err),
			zap.String("user_id", challenge.UserID.String()))
	}
	s.logger.Warn("Method locked after attempt exhaustion",
		zap.String("user_id", challenge.UserID.String()),
		zap.String("method_type", string(challenge.MethodType)),
		zap.Duration("lockout", s.cfg.LockoutDuration))
	return failure(result, domainErrors.ErrMaxAttempts)
}

func failure(result *models.VerificationResult, err error) *models.VerificationResult {
	if result == nil {
		result = &models.VerificationResult{}
	}
	result.Success = false
	result.Err = err
	return result
}

var _ VerificationService = (*verificationService)(nil)
