package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/config"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/service"
)

// --- Mocks ---

type MockTOTPService struct {
	mock.Mock
}

func (m *MockTOTPService) GenerateSecret(accountName, issuerName string) (string, string, error) {
	args := m.Called(accountName, issuerName)
	return args.String(0), args.String(1), args.Error(2)
}
func (m *MockTOTPService) GenerateCode(secretB32 string) (string, error) {
	args := m.Called(secretB32)
	return args.String(0), args.Error(1)
}
func (m *MockTOTPService) ValidateCode(secretB32, code string) (bool, error) {
	args := m.Called(secretB32, code)
	return args.Bool(0), args.Error(1)
}

type MockEncryptionService struct {
	mock.Mock
}

func (m *MockEncryptionService) Encrypt(plainText string, keyHex string) (string, error) {
	args := m.Called(plainText, keyHex)
	return args.String(0), args.Error(1)
}
func (m *MockEncryptionService) Decrypt(cipherTextBase64 string, keyHex string) (string, error) {
	args := m.Called(cipherTextBase64, keyHex)
	return args.String(0), args.Error(1)
}

type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) AllowChallengeCreation(ctx context.Context, userID string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, userID, limit, window)
	return args.Bool(0), args.Error(1)
}
func (m *MockRateLimiter) AllowSetup(ctx context.Context, userID string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, userID, limit, window)
	return args.Bool(0), args.Error(1)
}
func (m *MockRateLimiter) LockMethod(ctx context.Context, userID, methodType string, duration time.Duration) error {
	args := m.Called(ctx, userID, methodType, duration)
	return args.Error(0)
}
func (m *MockRateLimiter) MethodLockedFor(ctx context.Context, userID, methodType string) (time.Duration, error) {
	args := m.Called(ctx, userID, methodType)
	return args.Get(0).(time.Duration), args.Error(1)
}

type MockMethodRepository struct {
	mock.Mock
}

func (m *MockMethodRepository) Create(ctx context.Context, method *models.MFAMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}
func (m *MockMethodRepository) FindByUserIDAndType(ctx context.Context, userID uuid.UUID, methodType models.MethodType) (*models.MFAMethod, error) {
	args := m.Called(ctx, userID, methodType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MFAMethod), args.Error(1)
}
func (m *MockMethodRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*models.MFAMethod, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MFAMethod), args.Error(1)
}
func (m *MockMethodRepository) Update(ctx context.Context, method *models.MFAMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}
func (m *MockMethodRepository) SetEnabled(ctx context.Context, userID uuid.UUID, methodType models.MethodType, enabled bool) error {
	args := m.Called(ctx, userID, methodType, enabled)
	return args.Error(0)
}
func (m *MockMethodRepository) SetPrimary(ctx context.Context, userID uuid.UUID, methodType models.MethodType) error {
	args := m.Called(ctx, userID, methodType)
	return args.Error(0)
}
func (m *MockMethodRepository) RecordUsage(ctx context.Context, userID uuid.UUID, methodType models.MethodType, usedAt time.Time) error {
	args := m.Called(ctx, userID, methodType, usedAt)
	return args.Error(0)
}

type MockChallengeRepository struct {
	mock.Mock
}

func (m *MockChallengeRepository) Create(ctx context.Context, challenge *models.Challenge) error {
	args := m.Called(ctx, challenge)
	return args.Error(0)
}
func (m *MockChallengeRepository) FindByToken(ctx context.Context, token string) (*models.Challenge, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Challenge), args.Error(1)
}
func (m *MockChallengeRepository) IncrementAttempts(ctx context.Context, token string) (int, error) {
	args := m.Called(ctx, token)
	return args.Int(0), args.Error(1)
}
func (m *MockChallengeRepository) MarkVerified(ctx context.Context, token string, verifiedAt time.Time) (bool, error) {
	args := m.Called(ctx, token, verifiedAt)
	return args.Bool(0), args.Error(1)
}
func (m *MockChallengeRepository) MarkExpired(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
func (m *MockChallengeRepository) MarkLocked(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type MockTOTPSecretRepository struct {
	mock.Mock
}

func (m *MockTOTPSecretRepository) Create(ctx context.Context, secret *models.TOTPSecret) error {
	args := m.Called(ctx, secret)
	return args.Error(0)
}
func (m *MockTOTPSecretRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.TOTPSecret, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TOTPSecret), args.Error(1)
}
func (m *MockTOTPSecretRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockTOTPSecretRepository) DeleteUnverifiedByUserID(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}
func (m *MockTOTPSecretRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockBackupCodeRepository struct {
	mock.Mock
}

func (m *MockBackupCodeRepository) CreateMultiple(ctx context.Context, codes []*models.BackupCode) error {
	args := m.Called(ctx, codes)
	return args.Error(0)
}
func (m *MockBackupCodeRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockBackupCodeRepository) CountActiveByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
func (m *MockBackupCodeRepository) Consume(ctx context.Context, userID uuid.UUID, codeHash string, usedAt time.Time) (bool, error) {
	args := m.Called(ctx, userID, codeHash, usedAt)
	return args.Bool(0), args.Error(1)
}

type MockChannelCodeRepository struct {
	mock.Mock
}

func (m *MockChannelCodeRepository) Create(ctx context.Context, code *models.ChannelCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}
func (m *MockChannelCodeRepository) Consume(ctx context.Context, userID uuid.UUID, methodType models.MethodType, codeHash string, usedAt time.Time) (bool, error) {
	args := m.Called(ctx, userID, methodType, codeHash, usedAt)
	return args.Bool(0), args.Error(1)
}
func (m *MockChannelCodeRepository) InvalidateActive(ctx context.Context, userID uuid.UUID, methodType models.MethodType) error {
	args := m.Called(ctx, userID, methodType)
	return args.Error(0)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}
func (m *MockSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}
func (m *MockSessionRepository) Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) error {
	args := m.Called(ctx, id, revokedAt)
	return args.Error(0)
}
func (m *MockSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type MockSessionCache struct {
	mock.Mock
}

func (m *MockSessionCache) Set(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}
func (m *MockSessionCache) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) BindSession(ctx context.Context, userID uuid.UUID, deviceFingerprint string) (*models.Session, error) {
	args := m.Called(ctx, userID, deviceFingerprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}
func (m *MockSessionService) IsSessionValid(session *models.Session) bool {
	args := m.Called(session)
	return args.Bool(0)
}
func (m *MockSessionService) ParseToken(tokenString string) (*service.SessionClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionClaims), args.Error(1)
}
func (m *MockSessionService) InvalidateSession(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// --- Fixtures ---

func testMFAConfig() *config.MFAConfig {
	return &config.MFAConfig{
		ChallengeExpiry:         10 * time.Minute,
		MaxFailedAttempts:       5,
		LockoutDuration:         15 * time.Minute,
		ChallengeRateLimit:      3,
		ChallengeRateWindow:     time.Minute,
		SetupRateLimit:          1,
		SetupRateWindow:         time.Hour,
		BackupCodeCount:         10,
		BackupCodeLength:        6,
		ChannelCodeLength:       6,
		ChannelCodeExpiry:       10 * time.Minute,
		TOTPIssuerName:          "GamingPlatform",
		TOTPSkew:                1,
		TOTPSecretEncryptionKey: "746573746b65790000000000000000000000000000000000000000000000dead",
	}
}

func testSessionConfig() *config.SessionConfig {
	return &config.SessionConfig{
		TrustDuration: 720 * time.Hour,
		SigningSecret: "test-session-signing-secret",
		Issuer:        "mfa-service",
	}
}
