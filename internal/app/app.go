// Package app wires configuration, storage, and the domain services into the
// MFA service surface consumed in-process by the auth layer.
package app

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/config"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/repository/postgres"
	redisRepo "github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/repository/redis"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/service"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/infrastructure/security"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/sessionstore"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/utils/logger"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/utils/rate"
)

// App is the assembled MFA service.
type App struct {
	Methods      service.MFAMethodService
	Challenges   service.ChallengeService
	Verification service.VerificationService
	Sessions     service.SessionService
	SessionStore sessionstore.Store
}

// New builds every repository and service against the given connections.
func New(cfg *config.Config, dbPool *pgxpool.Pool, redisClient *redis.Client, appLogger *zap.Logger) *App {
	methodRepo := postgres.NewMethodRepositoryPostgres(dbPool)
	challengeRepo := postgres.NewChallengeRepositoryPostgres(dbPool)
	secretRepo := postgres.NewTOTPSecretRepositoryPostgres(dbPool)
	backupCodeRepo := postgres.NewBackupCodeRepositoryPostgres(dbPool)
	channelRepo := postgres.NewChannelCodeRepositoryPostgres(dbPool)
	sessionRepo := postgres.NewSessionRepositoryPostgres(dbPool)
	sessionCache := redisRepo.NewSessionCache(redisClient)

	limiter := rate.NewLimiter(redisClient, appLogger)
	totpService := security.NewPquernaTOTPService(cfg.MFA.TOTPIssuerName, cfg.MFA.TOTPSkew)
	encryption := security.NewAESGCMEncryptionService()

	sessionService := service.NewSessionService(
		&cfg.Session, sessionRepo, sessionCache,
		logger.WithComponent(appLogger, "session_service"))

	return &App{
		Methods: service.NewMFAMethodService(
			&cfg.MFA, totpService, encryption,
			methodRepo, secretRepo, backupCodeRepo, channelRepo,
			limiter, logger.WithComponent(appLogger, "mfa_method_service")),
		Challenges: service.NewChallengeService(
			&cfg.MFA, methodRepo, challengeRepo,
			limiter, logger.WithComponent(appLogger, "challenge_service")),
		Verification: service.NewVerificationService(
			&cfg.MFA, totpService, encryption,
			challengeRepo, methodRepo, secretRepo, backupCodeRepo, channelRepo,
			sessionService, limiter,
			logger.WithComponent(appLogger, "verification_service")),
		Sessions:     sessionService,
		SessionStore: sessionstore.NewRedisStore(redisClient),
	}
}
