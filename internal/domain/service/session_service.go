package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/config"
	domainErrors "github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/errors"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/repository"
)

// SessionCache is the write-through cache in front of the session table,
// implemented by the redis cache in repository/redis.
type SessionCache interface {
	Set(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionClaims are the JWT claims of a device-bound session token.
type SessionClaims struct {
	DeviceFingerprint string `json:"dfp,omitempty"`
	jwt.RegisteredClaims
}

// SessionService converts a successful verification into a device-bound
// session artifact.
type SessionService interface {
	// BindSession creates a session tied to the fingerprint. The pairing is
	// advisory: it detects device changes, it is not a cryptographic identity.
	BindSession(ctx context.Context, userID uuid.UUID, deviceFingerprint string) (*models.Session, error)

	// IsSessionValid is a LOCAL check only: signature, expiry, revocation as
	// known to the passed-in session value. It deliberately does not
	// round-trip to the authoritative store; callers needing the strong
	// guarantee must consult SessionRepository.FindByID themselves. Keeping
	// this local is a latency tradeoff, not an oversight.
	IsSessionValid(session *models.Session) bool

	// ParseToken verifies a session token string and returns its claims.
	ParseToken(tokenString string) (*SessionClaims, error)

	// InvalidateSession revokes a session (logout).
	InvalidateSession(ctx context.Context, sessionID uuid.UUID) error
}

type sessionService struct {
	cfg         *config.SessionConfig
	sessionRepo repository.SessionRepository
	cache       SessionCache
	logger      *zap.Logger
	now         func() time.Time
}

// NewSessionService wires the session binder.
func NewSessionService(
	cfg *config.SessionConfig,
	sessionRepo repository.SessionRepository,
	cache SessionCache,
	logger *zap.Logger,
) SessionService {
	return &sessionService{
		cfg:         cfg,
		sessionRepo: sessionRepo,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *sessionService) BindSession(ctx context.Context, userID uuid.UUID, deviceFingerprint string) (*models.Session, error) {
	now := s.now()
	session := &models.Session{
		ID:                uuid.New(),
		UserID:            userID,
		DeviceFingerprint: deviceFingerprint,
		CreatedAt:         now,
		ExpiresAt:         now.Add(s.cfg.TrustDuration),
	}

	token, err := s.signToken(session)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	session.Token = token

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	if err := s.cache.Set(ctx, session); err != nil {
		// Cache is best effort; the row is the source of truth.
		s.logger.Warn("Failed to cache session", zap.Error(err), zap.String("session_id", session.ID.String()))
	}

	s.logger.Info("Session bound",
		zap.String("user_id", userID.String()),
		zap.String("session_id", session.ID.String()))
	return session, nil
}

func (s *sessionService) IsSessionValid(session *models.Session) bool {
	if session == nil {
		return false
	}
	if session.Token != "" {
		if _, err := s.ParseToken(session.Token); err != nil {
			return false
		}
	}
	return session.ActiveAt(s.now())
}

func (s *sessionService) ParseToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.SigningSecret), nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainErrors.ErrSessionExpired
		}
		return nil, domainErrors.ErrInvalidSession
	}
	if !token.Valid {
		return nil, domainErrors.ErrInvalidSession
	}
	return claims, nil
}

func (s *sessionService) InvalidateSession(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessionRepo.Revoke(ctx, sessionID, s.now()); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("Failed to drop session from cache", zap.Error(err), zap.String("session_id", sessionID.String()))
	}
	return nil
}

func (s *sessionService) signToken(session *models.Session) (string, error) {
	claims := SessionClaims{
		DeviceFingerprint: session.DeviceFingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID.String(),
			Subject:   session.UserID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.SigningSecret))
}

var _ SessionService = (*sessionService)(nil)
