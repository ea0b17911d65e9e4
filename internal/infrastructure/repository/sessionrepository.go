package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/embedgate/embedgate/internal/domain/user"
	"github.com/embedgate/embedgate/internal/infrastructure/persistence/mappers"
	"github.com/embedgate/embedgate/internal/infrastructure/persistence/models"
	"github.com/embedgate/embedgate/internal/shared/biztime"
	"github.com/embedgate/embedgate/internal/shared/errors"
)

type SessionRepository struct {
	db     *gorm.DB
	mapper mappers.SessionMapper
}

func NewSessionRepository(db *gorm.DB) user.SessionRepository {
	return &SessionRepository{
		db:     db,
		mapper: mappers.NewSessionMapper(),
	}
}

// Upsert inserts the session or, on id conflict, refreshes its mutable
// request-scoped columns. IsActive is deliberately left out of the update
// set: an inactive session is terminal and a late write must not revive it.
func (r *SessionRepository) Upsert(ctx context.Context, session *user.Session) error {
	model := r.mapper.ToModel(session)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		// user_id is intentionally absent: an anonymous write must not
		// detach a session already bound to a user.
		DoUpdates: clause.AssignmentColumns([]string{
			"ip_address", "user_agent", "payload",
			"last_activity", "fingerprint", "device_info",
		}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (*user.Session, error) {
	var model models.SessionModel
	err := r.db.WithContext(ctx).Where("id = ?", sessionID).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("session not found")
		}
		return nil, fmt.Errorf("failed to get session by ID: %w", err)
	}
	return r.mapper.ToDomain(&model), nil
}

func (r *SessionRepository) UpdatePayload(ctx context.Context, sessionID, payload string) error {
	result := r.db.WithContext(ctx).Model(&models.SessionModel{}).
		Where("id = ?", sessionID).
		Update("payload", payload)
	if result.Error != nil {
		return fmt.Errorf("failed to update session payload: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("session not found")
	}
	return nil
}

func (r *SessionRepository) BindUser(ctx context.Context, sessionID string, userID uint) error {
	result := r.db.WithContext(ctx).Model(&models.SessionModel{}).
		Where("id = ?", sessionID).
		Update("user_id", userID)
	if result.Error != nil {
		return fmt.Errorf("failed to bind session to user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("session not found")
	}
	return nil
}

// Delete removes the row unconditionally and is idempotent.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", sessionID).Delete(&models.SessionModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteIdleBefore(ctx context.Context, cutoff int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("last_activity < ?", cutoff).
		Delete(&models.SessionModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to garbage collect sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *SessionRepository) ActiveByUser(ctx context.Context, userID uint, idleCutoff int64) ([]*user.Session, error) {
	now := biztime.NowUTC()
	var sessionModels []models.SessionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Where("(expires_at IS NULL AND last_activity >= ?) OR expires_at > ?", idleCutoff, now).
		Order("last_activity DESC").
		Find(&sessionModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get active sessions by user ID: %w", err)
	}

	sessions := make([]*user.Session, len(sessionModels))
	for i := range sessionModels {
		sessions[i] = r.mapper.ToDomain(&sessionModels[i])
	}
	return sessions, nil
}

func (r *SessionRepository) RecentOtherSessions(ctx context.Context, userID uint, excludeID string, since int64) ([]*user.Session, error) {
	var sessionModels []models.SessionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id <> ? AND last_activity >= ?", userID, excludeID, since).
		Order("last_activity DESC").
		Find(&sessionModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent sessions: %w", err)
	}

	sessions := make([]*user.Session, len(sessionModels))
	for i := range sessionModels {
		sessions[i] = r.mapper.ToDomain(&sessionModels[i])
	}
	return sessions, nil
}

func (r *SessionRepository) DeactivateExcept(ctx context.Context, userID uint, keep []string) (int64, error) {
	now := biztime.NowUTC()
	query := r.db.WithContext(ctx).Model(&models.SessionModel{}).
		Where("user_id = ? AND is_active = ?", userID, true)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}

	result := query.Updates(map[string]interface{}{
		"is_active":  false,
		"expires_at": now,
	})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to deactivate sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ExpireStale is a conditional bulk update: only rows matching the
// mismatch condition are touched, so running it twice changes nothing.
func (r *SessionRepository) ExpireStale(ctx context.Context, idleCutoff int64) (int64, error) {
	now := biztime.NowUTC()
	result := r.db.WithContext(ctx).Model(&models.SessionModel{}).
		Where("is_active = ?", true).
		Where("(expires_at IS NOT NULL AND expires_at <= ?) OR (expires_at IS NULL AND last_activity < ?)", now, idleCutoff).
		Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire stale sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *SessionRepository) ActiveUserIDs(ctx context.Context, idleCutoff int64) ([]uint, error) {
	now := biztime.NowUTC()
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.SessionModel{}).
		Distinct("user_id").
		Where("is_active = ? AND user_id IS NOT NULL", true).
		Where("expires_at > ? OR (expires_at IS NULL AND last_activity >= ?)", now, idleCutoff).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute active user set: %w", err)
	}
	return ids, nil
}
