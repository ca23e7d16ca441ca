package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainErrors "github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/errors"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/service"
)

type methodServiceFixture struct {
	svc            service.MFAMethodService
	totpService    *MockTOTPService
	encryption     *MockEncryptionService
	methodRepo     *MockMethodRepository
	secretRepo     *MockTOTPSecretRepository
	backupCodeRepo *MockBackupCodeRepository
	channelRepo    *MockChannelCodeRepository
	rateLimiter    *MockRateLimiter
}

func newMethodServiceFixture() *methodServiceFixture {
	f := &methodServiceFixture{
		totpService:    new(MockTOTPService),
		encryption:     new(MockEncryptionService),
		methodRepo:     new(MockMethodRepository),
		secretRepo:     new(MockTOTPSecretRepository),
		backupCodeRepo: new(MockBackupCodeRepository),
		channelRepo:    new(MockChannelCodeRepository),
		rateLimiter:    new(MockRateLimiter),
	}
	f.svc = service.NewMFAMethodService(
		testMFAConfig(), f.totpService, f.encryption,
		f.methodRepo, f.secretRepo, f.backupCodeRepo, f.channelRepo,
		f.rateLimiter, zap.NewNop())
	return f
}

func (f *methodServiceFixture) allowSetup(userID uuid.UUID) {
	f.rateLimiter.On("AllowSetup", mock.Anything, userID.String(), 1, time.Hour).Return(true, nil)
}

func TestSetupTOTP_ReturnsSecretAndDistinctBackupCodes(t *testing.T) {
	f := newMethodServiceFixture()
	ctx := context.Background()
	userID := uuid.New()

	f.allowSetup(userID)
	f.secretRepo.On("FindByUserID", ctx, userID).Return(nil, domainErrors.ErrNotFound)
	f.totpService.On("GenerateSecret", "user@example.com", "GamingPlatform").
		Return("BASE32SECRET", "otpauth://totp/GamingPlatform:user@example.com?secret=BASE32SECRET", nil)
	f.encryption.On("Encrypt", "BASE32SECRET", mock.Anything).Return("encrypted", nil)
	f.secretRepo.On("Create", ctx, mock.AnythingOfType("*models.TOTPSecret")).Return(nil)
	f.methodRepo.On("FindByUserIDAndType", ctx, userID, models.MethodTypeTOTP).Return(nil, domainErrors.ErrNotFound)
	f.methodRepo.On("FindByUserIDAndType", ctx, userID, models.MethodTypeBackupCodes).Return(nil, domainErrors.ErrNotFound)
	f.methodRepo.On("Create", ctx, mock.AnythingOfType("*models.MFAMethod")).Return(nil)
	f.backupCodeRepo.On("DeleteByUserID", ctx, userID).Return(int64(0), nil)
	f.backupCodeRepo.On("CreateMultiple", ctx, mock.AnythingOfType("[]*models.BackupCode")).Return(nil)

	result, err := f.svc.SetupTOTP(ctx, userID, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "BASE32SECRET", result.SecretBase32)
	assert.Contains(t, result.OTPAuthURL, "otpauth://")

	require.Len(t, result.BackupCodes, 10)
	seen := make(map[string]bool, len(result.BackupCodes))
	for _, code := range result.BackupCodes {
		assert.Len(t, code, 6)
		assert.False(t, seen[code], "backup code %q issued twice", code)
		seen[code] = true
	}
}

func TestSetupTOTP_AlreadyEnrolled(t *testing.T) {
	f := newMethodServiceFixture()
	ctx := context.Background()
	userID := uuid.New()

	f.allowSetup(userID)
	f.secretRepo.On("FindByUserID", ctx, userID).Return(&models.TOTPSecret{
		ID: uuid.New(), UserID: userID, Verified: true,
	}, nil)

	_, err := f.svc.SetupTOTP(ctx, userID, "user@example.com")
	assert.ErrorIs(t, err, domainErrors.ErrSetupFailed)
}

func TestSetupTOTP_RateLimited(t *testing.T) {
	f := newMethodServiceFixture()
	ctx := context.Background()
	userID := uuid.New()

	f.rateLimiter.On("AllowSetup", ctx, userID.String(), 1, time.Hour).Return(false, nil)

	_, err := f.svc.SetupTOTP(ctx, userID, "user@example.com")
	assert.ErrorIs(t, err, domainErrors.ErrRateLimitExceeded)
	f.secretRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestActivateTOTP_CompletesEnrollment(t *testing.T) {
	f := newMethodServiceFixture()
	ctx := context.Background()
	userID := uuid.New()
	secretID := uuid.New()

	f.secretRepo.On("FindByUserID", ctx, userID).Return(&models.TOTPSecret{
		ID: secretID, UserID: userID, SecretKeyEncrypted: "encrypted", Verified: false,
	}, nil)
	f.encryption.On("Decrypt", "encrypted", mock.Anything).Return("BASE32SECRET", nil)
	f.totpService.On("ValidateCode", "BASE32SECRET", "123456").Return(true, nil)
	f.secretRepo.On("MarkVerified", ctx, secretID).Return(nil)

	for _, mt := range []models.MethodType{models.MethodTypeTOTP, models.MethodTypeBackupCodes} {
		f.methodRepo.On("FindByUserIDAndType", ctx, userID, mt).
			Return(&models.MFAMethod{ID: uuid.New(), UserID: userID, Type: mt}, nil)
	}
	f.methodRepo.On("Update", ctx, mock.MatchedBy(func(m *models.MFAMethod) bool {
		return m.Enabled && m.SetupCompleted()
	})).Return(nil).Twice()

	err := f.svc.ActivateTOTP(ctx, userID, "123456")
	require.NoError(t, err)
	f.methodRepo.AssertExpectations(t)
}

func TestActivateTOTP_WrongFirstCode(t *testing.T) {
	f := newMethodServiceFixture()
	ctx := context.Background()
	userID := uuid.New()

	f.secretRepo.On("FindByUserID", ctx, userID).Return(&models.TOTPSecret{
		ID: uuid.New(), UserID: userID, SecretKeyEncrypted: "encrypted", Verified: false,
	}, nil)
	f.encryption.On("Decrypt", "encrypted", mock.Anything).Return("BASE32SECRET", nil)
	f.totpService.On("ValidateCode", "BASE32SECRET", "000000").Return(false, nil)

	err := f.svc.ActivateTOTP(ctx, userID, "000000")
	assert.ErrorIs(t, err, domainErrors.ErrInvalidCode)
	f.secretRepo.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything)
}

func TestSetupSMS_InvalidPhone(t *testing.T) {
	f := newMethodServiceFixture()

	for _, phone := range []string{"", "not-a-phone", "0123", "+1-555-0100"} {
		err := f.svc.SetupSMS(context.Background(), uuid.New(), phone)
		assert.ErrorIs(t, err, domainErrors.ErrInvalidPhone, "phone %q", phone)
	}
	f.methodRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSetupSMS_RegistersMethod(t *testing.T) {
	f := newMethodServiceFixture()
	ctx := context.Background()
	userID := uuid.New()
	phone := "+79991234567"

	f.allowSetup(userID)
	f.methodRepo.On("FindByUserIDAndType", ctx, userID, models.MethodTypeSMS).
		Return(nil, domainErrors.ErrNotFound).Once()
	f.methodRepo.On("Create", ctx, mock.MatchedBy(func(m *models.MFAMethod) bool {
		return m.Type == models.MethodTypeSMS && m.Destination == phone && !m.Enabled
	})).Return(nil)
	f.methodRepo.On("FindByUserIDAndType", ctx, userID, models.MethodTypeSMS).
		Return(&models.MFAMethod{ID: uuid.New(), UserID: userID, Type: models.MethodTypeSMS}, nil)
	f.methodRepo.On("Update", ctx, mock.MatchedBy(func(m *models.MFAMethod) bool {
		return m.SetupCompleted() && m.Destination == phone
	})).Return(nil)

	require.NoError(t, f.svc.SetupSMS(ctx, userID, phone))
	f.methodRepo.AssertExpectations(t)
}

func TestSetupEmail_InvalidEmail(t *testing.T) {
	f := newMethodServiceFixture()

	for _, email := range []string{"", "plain", "missing@tld", "two@@example.com"} {
		err := f.svc.SetupEmail(context.Background(), uuid.New(), email)
		assert.ErrorIs(t, err, domainErrors.ErrInvalidEmail, "email %q", email)
	}
}

func TestIssueChannelCode_StoresHashReturnsPlain(t *testing.T) {
	f := newMethodServiceFixture()
	ctx := context.Background()
	userID := uuid.New()

	f.methodRepo.On("FindByUserIDAndType", ctx, userID, models.MethodTypeSMS).
		Return(&models.MFAMethod{ID: uuid.New(), UserID: userID, Type: models.MethodTypeSMS, Enabled: true}, nil)
	f.channelRepo.On("InvalidateActive", ctx, userID, models.MethodTypeSMS).Return(nil)

	var stored *models.ChannelCode
	f.channelRepo.On("Create", ctx, mock.AnythingOfType("*models.ChannelCode")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*models.ChannelCode) }).
		Return(nil)

	plain, err := f.svc.IssueChannelCode(ctx, userID, models.MethodTypeSMS)
	require.NoError(t, err)
	assert.Len(t, plain, 6)
	require.NotNil(t, stored)
	assert.NotEqual(t, plain, stored.CodeHash)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), stored.ExpiresAt, 5*time.Second)
}

func TestIssueChannelCode_DisabledMethod(t *testing.T) {
	f := newMethodServiceFixture()
	ctx := context.Background()
	userID := uuid.New()

	f.methodRepo.On("FindByUserIDAndType", ctx, userID, models.MethodTypeEmail).
		Return(&models.MFAMethod{ID: uuid.New(), UserID: userID, Type: models.MethodTypeEmail, Enabled: false}, nil)

	_, err := f.svc.IssueChannelCode(ctx, userID, models.MethodTypeEmail)
	assert.ErrorIs(t, err, domainErrors.ErrMethodNotEnabled)
}

func TestToggleMethod_EnableRequiresCompletedSetup(t *testing.T) {
	f := newMethodServiceFixture()
	ctx := context.Background()
	userID := uuid.New()

	f.methodRepo.On("FindByUserIDAndType", ctx, userID, models.MethodTypeTOTP).
		Return(&models.MFAMethod{ID: uuid.New(), UserID: userID, Type: models.MethodTypeTOTP}, nil)

	err := f.svc.ToggleMethod(ctx, userID, models.MethodTypeTOTP, true)
	assert.ErrorIs(t, err, domainErrors.ErrMethodNotEnabled)
	f.methodRepo.AssertNotCalled(t, "SetEnabled", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestToggleMethod_DisableAlwaysAllowed(t *testing.T) {
	f := newMethodServiceFixture()
	ctx := context.Background()
	userID := uuid.New()

	// Setup never completed, disabling still goes through.
	f.methodRepo.On("FindByUserIDAndType", ctx, userID, models.MethodTypeSMS).
		Return(&models.MFAMethod{ID: uuid.New(), UserID: userID, Type: models.MethodTypeSMS, Enabled: true}, nil)
	f.methodRepo.On("SetEnabled", ctx, userID, models.MethodTypeSMS, false).Return(nil)

	require.NoError(t, f.svc.ToggleMethod(ctx, userID, models.MethodTypeSMS, false))
	f.methodRepo.AssertExpectations(t)
}

func TestSetPrimaryMethod_RequiresEnabled(t *testing.T) {
	f := newMethodServiceFixture()
	ctx := context.Background()
	userID := uuid.New()

	f.methodRepo.On("FindByUserIDAndType", ctx, userID, models.MethodTypeTOTP).
		Return(&models.MFAMethod{ID: uuid.New(), UserID: userID, Type: models.MethodTypeTOTP, Enabled: false}, nil)

	err := f.svc.SetPrimaryMethod(ctx, userID, models.MethodTypeTOTP)
	assert.ErrorIs(t, err, domainErrors.ErrMethodNotEnabled)
	f.methodRepo.AssertNotCalled(t, "SetPrimary", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegenerateBackupCodes_ReplacesSet(t *testing.T) {
	f := newMethodServiceFixture()
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	f.methodRepo.On("FindByUserIDAndType", ctx, userID, models.MethodTypeBackupCodes).
		Return(&models.MFAMethod{
			ID: uuid.New(), UserID: userID, Type: models.MethodTypeBackupCodes,
			Enabled: true, SetupCompletedAt: &now,
		}, nil)
	f.backupCodeRepo.On("DeleteByUserID", ctx, userID).Return(int64(10), nil)
	f.backupCodeRepo.On("CreateMultiple", ctx, mock.MatchedBy(func(codes []*models.BackupCode) bool {
		return len(codes) == 10
	})).Return(nil)

	codes, err := f.svc.RegenerateBackupCodes(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, codes, 10)
	f.backupCodeRepo.AssertExpectations(t)
}
