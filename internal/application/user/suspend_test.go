package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	domainUser "github.com/embedgate/embedgate/internal/domain/user"
	"github.com/embedgate/embedgate/internal/infrastructure/persistence/models"
	"github.com/embedgate/embedgate/internal/infrastructure/repository"
	"github.com/embedgate/embedgate/internal/shared/errors"
	"github.com/embedgate/embedgate/internal/shared/logger"
)

func newTestUserRepo(t *testing.T) (domainUser.Repository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserModel{}))

	return repository.NewUserRepository(db), db
}

func TestSuspendUser_SetsFlagAndStatusImmediately(t *testing.T) {
	repo, db := newTestUserRepo(t)
	uc := NewSuspendUserUseCase(repo, logger.NewLogger())
	ctx := context.Background()

	seedUser(t, db, 30, "active", false)

	require.NoError(t, uc.Suspend(ctx, 30))

	status, suspended := userStatus(t, db, 30)
	assert.Equal(t, "suspended", status)
	assert.True(t, suspended)
}

func TestSuspendUser_Unsuspend(t *testing.T) {
	repo, db := newTestUserRepo(t)
	uc := NewSuspendUserUseCase(repo, logger.NewLogger())
	ctx := context.Background()

	seedUser(t, db, 31, "suspended", true)

	require.NoError(t, uc.Unsuspend(ctx, 31))

	// Unsuspending lands on inactive so the repair-up reconciliation
	// step cannot flip the user back to suspended.
	status, suspended := userStatus(t, db, 31)
	assert.Equal(t, "inactive", status)
	assert.False(t, suspended)
}

func TestSuspendUser_MissingUser(t *testing.T) {
	repo, _ := newTestUserRepo(t)
	uc := NewSuspendUserUseCase(repo, logger.NewLogger())

	err := uc.Suspend(context.Background(), 999)
	assert.True(t, errors.IsNotFoundError(err))

	err = uc.Suspend(context.Background(), 0)
	assert.True(t, errors.IsValidationError(err))
}

func TestActivateOnSession(t *testing.T) {
	repo, db := newTestUserRepo(t)
	uc := NewActivateOnSessionUseCase(repo, logger.NewLogger())
	ctx := context.Background()

	t.Run("pending user promoted", func(t *testing.T) {
		seedUser(t, db, 40, "pending", false)

		uc.Execute(ctx, 40)

		status, _ := userStatus(t, db, 40)
		assert.Equal(t, "active", status)
	})

	t.Run("inactive user promoted", func(t *testing.T) {
		seedUser(t, db, 41, "inactive", false)

		uc.Execute(ctx, 41)

		status, _ := userStatus(t, db, 41)
		assert.Equal(t, "active", status)
	})

	t.Run("suspended user untouched", func(t *testing.T) {
		seedUser(t, db, 42, "suspended", true)

		uc.Execute(ctx, 42)

		status, suspended := userStatus(t, db, 42)
		assert.Equal(t, "suspended", status)
		assert.True(t, suspended)
	})

	t.Run("missing user swallowed", func(t *testing.T) {
		uc.Execute(ctx, 999)
	})
}
