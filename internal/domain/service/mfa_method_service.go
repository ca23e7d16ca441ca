package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/config"
	domainErrors "github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/errors"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/repository"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/infrastructure/security"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/utils/random"
)

// MFAMethodService owns the per-user method state machine: the set of
// enrolled methods, their enabled flags, and the at-most-one-primary
// invariant. Verification never mutates methods through any other path than
// RecordUsage.
type MFAMethodService interface {
	// SetupTOTP starts TOTP enrollment: generates and stores an (unverified)
	// encrypted secret plus a fresh set of backup codes. The plain secret,
	// otpauth URL and plain backup codes are returned exactly once.
	SetupTOTP(ctx context.Context, userID uuid.UUID, accountName string) (*models.TOTPSetupResult, error)

	// ActivateTOTP verifies the first code from the authenticator app and
	// completes enrollment: the secret becomes verified and the totp and
	// backup_codes methods become enabled.
	ActivateTOTP(ctx context.Context, userID uuid.UUID, code string) error

	// SetupSMS registers a phone number for the sms method.
	SetupSMS(ctx context.Context, userID uuid.UUID, phone string) error

	// SetupEmail registers an email address for the email method.
	SetupEmail(ctx context.Context, userID uuid.UUID, email string) error

	// IssueChannelCode creates the one-time code for a sms/email challenge
	// and returns it in plain form for the delivery layer. Any previously
	// outstanding code for the method is invalidated first.
	IssueChannelCode(ctx context.Context, userID uuid.UUID, methodType models.MethodType) (string, error)

	// ToggleMethod enables or disables an enrolled method. Enabling requires
	// completed setup. Disabling a primary method clears its primary flag.
	ToggleMethod(ctx context.Context, userID uuid.UUID, methodType models.MethodType, enabled bool) error

	// SetPrimaryMethod makes methodType the user's primary method, clearing
	// the previous primary in the same transaction.
	SetPrimaryMethod(ctx context.Context, userID uuid.UUID, methodType models.MethodType) error

	// GetUserMFAStatus lists the user's enrolled methods.
	GetUserMFAStatus(ctx context.Context, userID uuid.UUID) ([]*models.MFAMethod, error)

	// RegenerateBackupCodes replaces the user's backup codes with a new set
	// and returns the plain codes exactly once.
	RegenerateBackupCodes(ctx context.Context, userID uuid.UUID) ([]string, error)
}

var (
	phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type mfaMethodService struct {
	cfg            *config.MFAConfig
	totpService    TOTPService
	encryption     security.EncryptionService
	methodRepo     repository.MethodRepository
	secretRepo     repository.TOTPSecretRepository
	backupCodeRepo repository.BackupCodeRepository
	channelRepo    repository.ChannelCodeRepository
	rateLimiter    RateLimiter
	logger         *zap.Logger
	now            func() time.Time
}

// NewMFAMethodService wires the method state machine.
func NewMFAMethodService(
	cfg *config.MFAConfig,
	totpService TOTPService,
	encryption security.EncryptionService,
	methodRepo repository.MethodRepository,
	secretRepo repository.TOTPSecretRepository,
	backupCodeRepo repository.BackupCodeRepository,
	channelRepo repository.ChannelCodeRepository,
	rateLimiter RateLimiter,
	logger *zap.Logger,
) MFAMethodService {
	return &mfaMethodService{
		cfg:            cfg,
		totpService:    totpService,
		encryption:     encryption,
		methodRepo:     methodRepo,
		secretRepo:     secretRepo,
		backupCodeRepo: backupCodeRepo,
		channelRepo:    channelRepo,
		rateLimiter:    rateLimiter,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *mfaMethodService) SetupTOTP(ctx context.Context, userID uuid.UUID, accountName string) (*models.TOTPSetupResult, error) {
	if err := s.checkSetupRate(ctx, userID); err != nil {
		return nil, err
	}

	// A verified secret means TOTP is already enrolled; a stale unverified
	// one is replaced rather than resurrected.
	existing, err := s.secretRepo.FindByUserID(ctx, userID)
	if err == nil && existing != nil {
		if existing.Verified {
			return nil, fmt.Errorf("TOTP already enrolled: %w", domainErrors.ErrSetupFailed)
		}
		if _, err := s.secretRepo.DeleteUnverifiedByUserID(ctx, userID); err != nil {
			s.logger.Error("Failed to clear stale unverified TOTP secret",
				zap.Error(err), zap.String("user_id", userID.String()))
			return nil, fmt.Errorf("failed to clear previous unverified setup: %w", domainErrors.ErrSetupFailed)
		}
	} else if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, fmt.Errorf("error checking existing TOTP secret: %w", err)
	}

	secretBase32, otpAuthURL, err := s.totpService.GenerateSecret(accountName, s.cfg.TOTPIssuerName)
	if err != nil {
		s.logger.Error("Failed to generate TOTP secret", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to generate TOTP secret: %w", domainErrors.ErrSetupFailed)
	}

	encryptedSecret, err := s.encryption.Encrypt(secretBase32, s.cfg.TOTPSecretEncryptionKey)
	if err != nil {
		s.logger.Error("Failed to encrypt TOTP secret", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to encrypt TOTP secret: %w", domainErrors.ErrSetupFailed)
	}

	if err := s.secretRepo.Create(ctx, &models.TOTPSecret{
		ID:                 uuid.New(),
		UserID:             userID,
		SecretKeyEncrypted: encryptedSecret,
		Verified:           false,
	}); err != nil {
		return nil, fmt.Errorf("failed to store TOTP secret: %w", err)
	}

	if err := s.ensureMethod(ctx, userID, models.MethodTypeTOTP, ""); err != nil {
		return nil, err
	}

	plainCodes, err := s.replaceBackupCodes(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("TOTP setup initiated", zap.String("user_id", userID.String()))
	return &models.TOTPSetupResult{
		SecretBase32: secretBase32,
		OTPAuthURL:   otpAuthURL,
		BackupCodes:  plainCodes,
	}, nil
}

func (s *mfaMethodService) ActivateTOTP(ctx context.Context, userID uuid.UUID, code string) error {
	secret, err := s.secretRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return domainErrors.ErrSetupFailed
		}
		return fmt.Errorf("failed to load TOTP secret: %w", err)
	}
	if secret.Verified {
		return fmt.Errorf("TOTP already activated: %w", domainErrors.ErrSetupFailed)
	}

	plainSecret, err := s.encryption.Decrypt(secret.SecretKeyEncrypted, s.cfg.TOTPSecretEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to decrypt TOTP secret: %w", err)
	}
	valid, err := s.totpService.ValidateCode(plainSecret, code)
	if err != nil {
		return fmt.Errorf("error validating TOTP code: %w", err)
	}
	if !valid {
		return domainErrors.ErrInvalidCode
	}

	if err := s.secretRepo.MarkVerified(ctx, secret.ID); err != nil {
		return fmt.Errorf("failed to mark TOTP secret verified: %w", err)
	}
	if err := s.completeAndEnable(ctx, userID, models.MethodTypeTOTP); err != nil {
		return err
	}
	// Backup codes were issued at setup; enrollment makes them usable.
	if err := s.completeAndEnable(ctx, userID, models.MethodTypeBackupCodes); err != nil {
		return err
	}

	s.logger.Info("TOTP activated", zap.String("user_id", userID.String()))
	return nil
}

func (s *mfaMethodService) SetupSMS(ctx context.Context, userID uuid.UUID, phone string) error {
	if !phoneRegex.MatchString(phone) {
		return domainErrors.ErrInvalidPhone
	}
	if err := s.checkSetupRate(ctx, userID); err != nil {
		return err
	}
	if err := s.ensureMethod(ctx, userID, models.MethodTypeSMS, phone); err != nil {
		return err
	}
	if err := s.completeSetup(ctx, userID, models.MethodTypeSMS, phone); err != nil {
		return err
	}
	s.logger.Info("SMS method registered", zap.String("user_id", userID.String()))
	return nil
}

func (s *mfaMethodService) SetupEmail(ctx context.Context, userID uuid.UUID, email string) error {
	if !emailRegex.MatchString(email) {
		return domainErrors.ErrInvalidEmail
	}
	if err := s.checkSetupRate(ctx, userID); err != nil {
		return err
	}
	if err := s.ensureMethod(ctx, userID, models.MethodTypeEmail, email); err != nil {
		return err
	}
	if err := s.completeSetup(ctx, userID, models.MethodTypeEmail, email); err != nil {
		return err
	}
	s.logger.Info("Email method registered", zap.String("user_id", userID.String()))
	return nil
}

func (s *mfaMethodService) IssueChannelCode(ctx context.Context, userID uuid.UUID, methodType models.MethodType) (string, error) {
	if methodType != models.MethodTypeSMS && methodType != models.MethodTypeEmail {
		return "", fmt.Errorf("method %s does not use channel codes", methodType)
	}
	method, err := s.methodRepo.FindByUserIDAndType(ctx, userID, methodType)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return "", domainErrors.ErrMethodNotEnabled
		}
		return "", fmt.Errorf("failed to load method: %w", err)
	}
	if !method.Enabled {
		return "", domainErrors.ErrMethodNotEnabled
	}

	if err := s.channelRepo.InvalidateActive(ctx, userID, methodType); err != nil {
		return "", fmt.Errorf("failed to invalidate outstanding codes: %w", err)
	}

	plainCode, err := random.GenerateRandomDigits(s.cfg.ChannelCodeLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate channel code: %w", err)
	}
	now := s.now()
	if err := s.channelRepo.Create(ctx, &models.ChannelCode{
		ID:         uuid.New(),
		UserID:     userID,
		MethodType: methodType,
		CodeHash:   security.HashCode(plainCode),
		ExpiresAt:  now.Add(s.cfg.ChannelCodeExpiry),
		CreatedAt:  now,
	}); err != nil {
		return "", fmt.Errorf("failed to store channel code: %w", err)
	}
	return plainCode, nil
}

func (s *mfaMethodService) ToggleMethod(ctx context.Context, userID uuid.UUID, methodType models.MethodType, enabled bool) error {
	method, err := s.methodRepo.FindByUserIDAndType(ctx, userID, methodType)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return domainErrors.ErrMethodNotEnabled
		}
		return fmt.Errorf("failed to load method: %w", err)
	}
	if enabled && !method.SetupCompleted() {
		return fmt.Errorf("setup not completed for %s: %w", methodType, domainErrors.ErrMethodNotEnabled)
	}

	if err := s.methodRepo.SetEnabled(ctx, userID, methodType, enabled); err != nil {
		return fmt.Errorf("failed to toggle method: %w", err)
	}
	s.logger.Info("Method toggled",
		zap.String("user_id", userID.String()),
		zap.String("method_type", string(methodType)),
		zap.Bool("enabled", enabled))
	return nil
}

func (s *mfaMethodService) SetPrimaryMethod(ctx context.Context, userID uuid.UUID, methodType models.MethodType) error {
	method, err := s.methodRepo.FindByUserIDAndType(ctx, userID, methodType)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return domainErrors.ErrMethodNotEnabled
		}
		return fmt.Errorf("failed to load method: %w", err)
	}
	if !method.Enabled {
		return domainErrors.ErrMethodNotEnabled
	}
	if err := s.methodRepo.SetPrimary(ctx, userID, methodType); err != nil {
		return fmt.Errorf("failed to set primary method: %w", err)
	}
	return nil
}

func (s *mfaMethodService) GetUserMFAStatus(ctx context.Context, userID uuid.UUID) ([]*models.MFAMethod, error) {
	methods, err := s.methodRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list methods: %w", err)
	}
	return methods, nil
}

func (s *mfaMethodService) RegenerateBackupCodes(ctx context.Context, userID uuid.UUID) ([]string, error) {
	method, err := s.methodRepo.FindByUserIDAndType(ctx, userID, models.MethodTypeBackupCodes)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrMethodNotEnabled
		}
		return nil, fmt.Errorf("failed to load backup_codes method: %w", err)
	}
	if !method.Enabled {
		return nil, domainErrors.ErrMethodNotEnabled
	}
	return s.replaceBackupCodes(ctx, userID)
}

// replaceBackupCodes drops any existing codes and issues a fresh set. The
// plain codes are returned to the caller and never stored.
func (s *mfaMethodService) replaceBackupCodes(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if _, err := s.backupCodeRepo.DeleteByUserID(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to delete old backup codes: %w", err)
	}

	plainCodes := make([]string, s.cfg.BackupCodeCount)
	toStore := make([]*models.BackupCode, s.cfg.BackupCodeCount)
	for i := 0; i < s.cfg.BackupCodeCount; i++ {
		codeStr, err := random.GenerateBackupCode(s.cfg.BackupCodeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		plainCodes[i] = codeStr
		toStore[i] = &models.BackupCode{
			ID:       uuid.New(),
			UserID:   userID,
			CodeHash: security.HashCode(codeStr),
		}
	}
	if err := s.backupCodeRepo.CreateMultiple(ctx, toStore); err != nil {
		return nil, fmt.Errorf("failed to store backup codes: %w", err)
	}

	if err := s.ensureMethod(ctx, userID, models.MethodTypeBackupCodes, ""); err != nil {
		return nil, err
	}
	return plainCodes, nil
}

func (s *mfaMethodService) checkSetupRate(ctx context.Context, userID uuid.UUID) error {
	allowed, err := s.rateLimiter.AllowSetup(ctx, userID.String(), s.cfg.SetupRateLimit, s.cfg.SetupRateWindow)
	if err != nil {
		// Limiter failures fail open; the redis outage is already logged.
		return nil
	}
	if !allowed {
		return domainErrors.ErrRateLimitExceeded
	}
	return nil
}

// ensureMethod creates the method row on first contact with a type.
func (s *mfaMethodService) ensureMethod(ctx context.Context, userID uuid.UUID, methodType models.MethodType, destination string) error {
	_, err := s.methodRepo.FindByUserIDAndType(ctx, userID, methodType)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return fmt.Errorf("failed to check method: %w", err)
	}
	if err := s.methodRepo.Create(ctx, &models.MFAMethod{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        methodType,
		Enabled:     false,
		IsPrimary:   false,
		Destination: destination,
	}); err != nil {
		return fmt.Errorf("failed to create method: %w", err)
	}
	return nil
}

// completeSetup records the destination and setup completion time.
func (s *mfaMethodService) completeSetup(ctx context.Context, userID uuid.UUID, methodType models.MethodType, destination string) error {
	method, err := s.methodRepo.FindByUserIDAndType(ctx, userID, methodType)
	if err != nil {
		return fmt.Errorf("failed to load method: %w", err)
	}
	now := s.now()
	method.Destination = destination
	method.SetupCompletedAt = &now
	if err := s.methodRepo.Update(ctx, method); err != nil {
		return fmt.Errorf("failed to complete setup: %w", err)
	}
	return nil
}

// completeAndEnable marks setup done and switches the method on in one go,
// used when activation itself proves the setup (TOTP first code).
func (s *mfaMethodService) completeAndEnable(ctx context.Context, userID uuid.UUID, methodType models.MethodType) error {
	if err := s.ensureMethod(ctx, userID, methodType, ""); err != nil {
		return err
	}
	method, err := s.methodRepo.FindByUserIDAndType(ctx, userID, methodType)
	if err != nil {
		return fmt.Errorf("failed to load method: %w", err)
	}
	now := s.now()
	method.SetupCompletedAt = &now
	method.Enabled = true
	if err := s.methodRepo.Update(ctx, method); err != nil {
		return fmt.Errorf("failed to enable method: %w", err)
	}
	return nil
}

var _ MFAMethodService = (*mfaMethodService)(nil)
