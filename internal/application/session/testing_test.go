package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/embedgate/embedgate/internal/domain/user"
	"github.com/embedgate/embedgate/internal/infrastructure/persistence/models"
	"github.com/embedgate/embedgate/internal/infrastructure/repository"
	"github.com/embedgate/embedgate/internal/shared/logger"
)

func newTestSessionRepo(t *testing.T) user.SessionRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SessionModel{}))

	return repository.NewSessionRepository(db)
}

func testLogger(t *testing.T) logger.Interface {
	t.Helper()
	return logger.NewLogger()
}

func seedSession(t *testing.T, repo user.SessionRepository, s *user.Session) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, s))
	if s.UserID != nil {
		require.NoError(t, repo.BindUser(ctx, s.ID, *s.UserID))
	}
}
