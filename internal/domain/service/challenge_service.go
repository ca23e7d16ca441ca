package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/config"
	domainErrors "github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/errors"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/repository"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/utils/random"
)

// challengeTokenBytes is the entropy of a challenge token before encoding.
const challengeTokenBytes = 32

// ChallengeService issues verification challenges. A challenge is the only
// doorway to verification: no challenge, no code check.
type ChallengeService interface {
	// CreateChallenge opens a pending challenge for the user's method and
	// returns its opaque token. An empty methodType selects the user's
	// primary method. Fails with METHOD_NOT_ENABLED, METHOD_LOCKED,
	// NO_PRIMARY_METHOD or RATE_LIMITED without creating a record.
	CreateChallenge(ctx context.Context, userID uuid.UUID, methodType models.MethodType, sessionID, deviceFingerprint *string) (string, error)
}

type challengeService struct {
	cfg           *config.MFAConfig
	methodRepo    repository.MethodRepository
	challengeRepo repository.ChallengeRepository
	rateLimiter   RateLimiter
	logger        *zap.Logger
	now           func() time.Time
}

// NewChallengeService wires the challenge manager.
func NewChallengeService(
	cfg *config.MFAConfig,
	methodRepo repository.MethodRepository,
	challengeRepo repository.ChallengeRepository,
	rateLimiter RateLimiter,
	logger *zap.Logger,
) ChallengeService {
	return &challengeService{
		cfg:           cfg,
		methodRepo:    methodRepo,
		challengeRepo: challengeRepo,
		rateLimiter:   rateLimiter,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *challengeService) CreateChallenge(ctx context.Context, userID uuid.UUID, methodType models.MethodType, sessionID, deviceFingerprint *string) (string, error) {
	method, err := s.resolveMethod(ctx, userID, methodType)
	if err != nil {
		return "", err
	}

	lockedFor, err := s.rateLimiter.MethodLockedFor(ctx, userID.String(), string(method.Type))
	if err == nil && lockedFor > 0 {
		s.logger.Warn("Challenge refused, method locked",
			zap.String("user_id", userID.String()),
			zap.String("method_type", string(method.Type)),
			zap.Duration("remaining", lockedFor))
		return "", domainErrors.ErrMethodLocked
	}

	allowed, err := s.rateLimiter.AllowChallengeCreation(ctx, userID.String(), s.cfg.ChallengeRateLimit, s.cfg.ChallengeRateWindow)
	if err == nil && !allowed {
		return "", domainErrors.ErrRateLimitExceeded
	}

	token, err := random.GenerateSecureToken(challengeTokenBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate challenge token: %w", err)
	}

	now := s.now()
	challenge := &models.Challenge{
		ID:                uuid.New(),
		Token:             token,
		UserID:            userID,
		MethodType:        method.Type,
		Status:            models.ChallengeStatusPending,
		AttemptCount:      0,
		IssuedAt:          now,
		ExpiresAt:         now.Add(s.cfg.ChallengeExpiry),
		SessionID:         sessionID,
		DeviceFingerprint: deviceFingerprint,
	}
	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		return "", fmt.Errorf("failed to store challenge: %w", err)
	}

	s.logger.Info("Challenge created",
		zap.String("user_id", userID.String()),
		zap.String("method_type", string(method.Type)),
		zap.Time("expires_at", challenge.ExpiresAt))
	return token, nil
}

// resolveMethod returns the enabled method to challenge against. An empty
// type picks the user's primary method.
func (s *challengeService) resolveMethod(ctx context.Context, userID uuid.UUID, methodType models.MethodType) (*models.MFAMethod, error) {
	if methodType == "" {
		methods, err := s.methodRepo.FindByUserID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list methods: %w", err)
		}
		for _, m := range methods {
			if m.IsPrimary && m.Enabled {
				return m, nil
			}
		}
		return nil, domainErrors.ErrNoPrimaryMethod
	}

	if !methodType.Valid() {
		return nil, domainErrors.ErrMethodNotEnabled
	}
	method, err := s.methodRepo.FindByUserIDAndType(ctx, userID, methodType)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrMethodNotEnabled
		}
		return nil, fmt.Errorf("failed to load method: %w", err)
	}
	if !method.Enabled {
		return nil, domainErrors.ErrMethodNotEnabled
	}
	return method, nil
}

var _ ChallengeService = (*challengeService)(nil)
