package sessionstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/errors"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/domain/models"
	"github.com/wizarding-anonymous/gaming_platform/backend/services/mfa-service/internal/sessionstore"
)

func liveSession(userID uuid.UUID) *models.Session {
	now := time.Now()
	return &models.Session{
		ID:                uuid.New(),
		UserID:            userID,
		DeviceFingerprint: "a1b2c3d4e5f60718",
		CreatedAt:         now,
		ExpiresAt:         now.Add(time.Hour),
	}
}

func TestMemoryStore_StoreGetClear(t *testing.T) {
	store := sessionstore.NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()
	session := liveSession(userID)

	require.NoError(t, store.StoreSession(ctx, session))

	got, err := store.GetSession(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.DeviceFingerprint, got.DeviceFingerprint)

	require.NoError(t, store.ClearSession(ctx, userID))
	_, err = store.GetSession(ctx, userID)
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
}

func TestMemoryStore_StoreReplacesPrevious(t *testing.T) {
	store := sessionstore.NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	first := liveSession(userID)
	second := liveSession(userID)
	require.NoError(t, store.StoreSession(ctx, first))
	require.NoError(t, store.StoreSession(ctx, second))

	got, err := store.GetSession(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestMemoryStore_IsValid(t *testing.T) {
	store := sessionstore.NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	assert.False(t, store.IsValid(ctx, userID))

	session := liveSession(userID)
	require.NoError(t, store.StoreSession(ctx, session))
	assert.True(t, store.IsValid(ctx, userID))

	expired := liveSession(userID)
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, store.StoreSession(ctx, expired))
	assert.False(t, store.IsValid(ctx, userID))

	revokedAt := time.Now()
	revoked := liveSession(userID)
	revoked.RevokedAt = &revokedAt
	require.NoError(t, store.StoreSession(ctx, revoked))
	assert.False(t, store.IsValid(ctx, userID))
}

func TestMemoryStore_CopiesOnStore(t *testing.T) {
	store := sessionstore.NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	session := liveSession(userID)
	require.NoError(t, store.StoreSession(ctx, session))
	session.DeviceFingerprint = "mutated-after-store"

	got, err := store.GetSession(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3d4e5f60718", got.DeviceFingerprint)
}
