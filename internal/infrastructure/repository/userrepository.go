package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/embedgate/embedgate/internal/domain/user"
	vo "github.com/embedgate/embedgate/internal/domain/user/value_objects"
	"github.com/embedgate/embedgate/internal/infrastructure/persistence/mappers"
	"github.com/embedgate/embedgate/internal/infrastructure/persistence/models"
	"github.com/embedgate/embedgate/internal/shared/errors"
)

type UserRepository struct {
	db     *gorm.DB
	mapper mappers.UserMapper
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{
		db:     db,
		mapper: mappers.NewUserMapper(),
	}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	model := r.mapper.ToModel(u)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return u.SetID(model.ID)
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*user.User, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	model := r.mapper.ToModel(u)
	result := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"email":        model.Email,
			"name":         model.Name,
			"is_suspended": model.IsSuspended,
			"status":       model.Status,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("user not found")
	}
	return nil
}

func (r *UserRepository) SetSuspended(ctx context.Context, id uint, suspended bool) error {
	result := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", id).
		Update("is_suspended", suspended)
	if result.Error != nil {
		return fmt.Errorf("failed to set suspension flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("user not found")
	}
	return nil
}

// RepairSuspendedStatus stamps status=suspended wherever the flag is set
// but the status disagrees. The WHERE clause carries the mismatch
// condition, so the update is idempotent and race-safe.
func (r *UserRepository) RepairSuspendedStatus(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("is_suspended = ? AND status <> ?", true, vo.StatusSuspended.String()).
		Update("status", vo.StatusSuspended.String())
	if result.Error != nil {
		return 0, fmt.Errorf("failed to repair suspended status: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// RepairSuspendedFlag corrects the flag to match a suspended status.
// Status-suspended always wins over a clear flag.
func (r *UserRepository) RepairSuspendedFlag(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("status = ? AND is_suspended = ?", vo.StatusSuspended.String(), false).
		Update("is_suspended", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to repair suspended flag: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *UserRepository) PromoteActiveUsers(ctx context.Context, ids []uint, force bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("id IN ?", ids).
		Where("is_suspended = ? AND status <> ?", false, vo.StatusSuspended.String())
	if !force {
		query = query.Where("status <> ?", vo.StatusActive.String())
	}

	result := query.Update("status", vo.StatusActive.String())
	if result.Error != nil {
		return 0, fmt.Errorf("failed to promote active users: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *UserRepository) DemoteIdleUsers(ctx context.Context, activeIDs []uint, force bool) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("is_suspended = ?", false).
		Where("status NOT IN ?", []string{vo.StatusSuspended.String(), vo.StatusPending.String()})
	if len(activeIDs) > 0 {
		query = query.Where("id NOT IN ?", activeIDs)
	}
	if !force {
		query = query.Where("status <> ?", vo.StatusInactive.String())
	}

	result := query.Update("status", vo.StatusInactive.String())
	if result.Error != nil {
		return 0, fmt.Errorf("failed to demote idle users: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *UserRepository) ActiveStatusIDsNotIn(ctx context.Context, activeIDs []uint) ([]uint, error) {
	query := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("status = ?", vo.StatusActive.String())
	if len(activeIDs) > 0 {
		query = query.Where("id NOT IN ?", activeIDs)
	}

	var ids []uint
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list drifted active users: %w", err)
	}
	return ids, nil
}

func (r *UserRepository) SuspendedIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("is_suspended = ? OR status = ?", true, vo.StatusSuspended.String()).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list suspended users: %w", err)
	}
	return ids, nil
}
