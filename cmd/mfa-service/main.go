package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/app"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/config"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/repository/postgres"
	redisRepo "github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/repository/redis"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/utils/logger"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/migrations"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting MFA service", zap.String("environment", cfg.Logging.Environment))

	if cfg.Database.AutoMigrate {
		if err := migrations.Run(cfg.Database, appLogger); err != nil {
			appLogger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	dbPool, err := postgres.NewDBPool(cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient, err := redisRepo.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	application := app.New(cfg, dbPool, redisClient, appLogger)
	_ = application // consumed in-process by the auth layer once attached

	appLogger.Info("MFA service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down MFA service")
}
