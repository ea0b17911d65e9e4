package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/embedgate/embedgate/internal/domain/widgetdomain"
	vo "github.com/embedgate/embedgate/internal/domain/widgetdomain/value_objects"
	"github.com/embedgate/embedgate/internal/infrastructure/persistence/mappers"
	"github.com/embedgate/embedgate/internal/infrastructure/persistence/models"
	"github.com/embedgate/embedgate/internal/shared/errors"
)

type WidgetDomainRepository struct {
	db     *gorm.DB
	mapper mappers.WidgetDomainMapper
}

func NewWidgetDomainRepository(db *gorm.DB) widgetdomain.Repository {
	return &WidgetDomainRepository{
		db:     db,
		mapper: mappers.NewWidgetDomainMapper(),
	}
}

func (r *WidgetDomainRepository) Create(ctx context.Context, record *widgetdomain.Record) error {
	model := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create domain record: %w", err)
	}
	record.ID = model.ID
	return nil
}

func (r *WidgetDomainRepository) GetByName(ctx context.Context, name vo.DomainName) (*widgetdomain.Record, error) {
	var model models.WidgetDomainModel
	err := r.db.WithContext(ctx).Where("name = ?", name.String()).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("domain not found")
		}
		return nil, fmt.Errorf("failed to get domain by name: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *WidgetDomainRepository) GetByID(ctx context.Context, id uint) (*widgetdomain.Record, error) {
	var model models.WidgetDomainModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("domain not found")
		}
		return nil, fmt.Errorf("failed to get domain by ID: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *WidgetDomainRepository) ListByUser(ctx context.Context, userID uint) ([]*widgetdomain.Record, error) {
	var domainModels []models.WidgetDomainModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&domainModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list domains by user: %w", err)
	}

	records := make([]*widgetdomain.Record, 0, len(domainModels))
	for i := range domainModels {
		record, err := r.mapper.ToDomain(&domainModels[i])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *WidgetDomainRepository) Update(ctx context.Context, record *widgetdomain.Record) error {
	model := r.mapper.ToModel(record)
	result := r.db.WithContext(ctx).Model(&models.WidgetDomainModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"is_active":   model.IsActive,
			"status":      model.Status,
			"is_verified": model.IsVerified,
			"user_id":     model.UserID,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update domain record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("domain not found")
	}
	return nil
}

func (r *WidgetDomainRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.WidgetDomainModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete domain record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("domain not found")
	}
	return nil
}
