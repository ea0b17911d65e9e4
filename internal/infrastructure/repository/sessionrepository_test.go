package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/embedgate/embedgate/internal/domain/user"
	"github.com/embedgate/embedgate/internal/infrastructure/persistence/models"
	"github.com/embedgate/embedgate/internal/shared/biztime"
)

func newSessionTestDB(t *testing.T) user.SessionRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SessionModel{}))

	return NewSessionRepository(db)
}

func TestSessionRepository_UpsertDoesNotReviveInactive(t *testing.T) {
	repo := newSessionTestDB(t)
	ctx := context.Background()

	uid := uint(1)
	require.NoError(t, repo.Upsert(ctx, &user.Session{
		ID:           "terminal",
		UserID:       &uid,
		LastActivity: biztime.NowUnix(),
		IsActive:     true,
		CreatedAt:    biztime.NowUTC(),
	}))

	evicted, err := repo.DeactivateExcept(ctx, 1, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), evicted)

	// A late request writes through the same id; the session must stay
	// terminally inactive.
	require.NoError(t, repo.Upsert(ctx, &user.Session{
		ID:           "terminal",
		UserID:       &uid,
		Payload:      "late-write",
		LastActivity: biztime.NowUnix(),
		IsActive:     true,
		CreatedAt:    biztime.NowUTC(),
	}))

	record, err := repo.GetByID(ctx, "terminal")
	require.NoError(t, err)
	assert.False(t, record.IsActive)
	assert.Equal(t, "late-write", record.Payload)
}

func TestSessionRepository_ExpireStaleIsConditional(t *testing.T) {
	repo := newSessionTestDB(t)
	ctx := context.Background()

	now := biztime.NowUnix()
	past := biztime.NowUTC().Add(-time.Minute)
	future := biztime.NowUTC().Add(time.Hour)

	require.NoError(t, repo.Upsert(ctx, &user.Session{
		ID: "past-expiry", LastActivity: now, IsActive: true,
		ExpiresAt: &past, CreatedAt: biztime.NowUTC(),
	}))
	require.NoError(t, repo.Upsert(ctx, &user.Session{
		ID: "future-expiry", LastActivity: now - 1000000, IsActive: true,
		ExpiresAt: &future, CreatedAt: biztime.NowUTC(),
	}))
	require.NoError(t, repo.Upsert(ctx, &user.Session{
		ID: "long-idle", LastActivity: now - int64((72 * time.Hour).Seconds()),
		IsActive: true, CreatedAt: biztime.NowUTC(),
	}))
	require.NoError(t, repo.Upsert(ctx, &user.Session{
		ID: "live", LastActivity: now, IsActive: true, CreatedAt: biztime.NowUTC(),
	}))

	cutoff := now - int64((48 * time.Hour).Seconds())
	expired, err := repo.ExpireStale(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), expired)

	// Second sweep touches nothing.
	expired, err = repo.ExpireStale(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(0), expired)

	for id, wantActive := range map[string]bool{
		"past-expiry":   false,
		"future-expiry": true,
		"long-idle":     false,
		"live":          true,
	} {
		record, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, wantActive, record.IsActive, "session %s", id)
	}
}

func TestSessionRepository_ActiveUserIDs(t *testing.T) {
	repo := newSessionTestDB(t)
	ctx := context.Background()

	now := biztime.NowUnix()
	u1, u2, u3 := uint(1), uint(2), uint(3)

	require.NoError(t, repo.Upsert(ctx, &user.Session{
		ID: "live-1", UserID: &u1, LastActivity: now, IsActive: true, CreatedAt: biztime.NowUTC(),
	}))
	require.NoError(t, repo.Upsert(ctx, &user.Session{
		ID: "idle-2", UserID: &u2, LastActivity: now - int64((3 * time.Hour).Seconds()),
		IsActive: true, CreatedAt: biztime.NowUTC(),
	}))
	require.NoError(t, repo.Upsert(ctx, &user.Session{
		ID: "anon", LastActivity: now, IsActive: true, CreatedAt: biztime.NowUTC(),
	}))
	require.NoError(t, repo.Upsert(ctx, &user.Session{
		ID: "inactive-3", UserID: &u3, LastActivity: now, IsActive: true, CreatedAt: biztime.NowUTC(),
	}))
	_, err := repo.DeactivateExcept(ctx, 3, nil)
	require.NoError(t, err)

	ids, err := repo.ActiveUserIDs(ctx, now-int64((2*time.Hour).Seconds()))
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids)
}
