package mappers

import (
	"fmt"

	"github.com/embedgate/embedgate/internal/domain/widgetdomain"
	vo "github.com/embedgate/embedgate/internal/domain/widgetdomain/value_objects"
	"github.com/embedgate/embedgate/internal/infrastructure/persistence/models"
)

// WidgetDomainMapper handles the conversion between Record domain entities and persistence models.
type WidgetDomainMapper interface {
	ToModel(entity *widgetdomain.Record) *models.WidgetDomainModel
	ToDomain(model *models.WidgetDomainModel) (*widgetdomain.Record, error)
}

// WidgetDomainMapperImpl is the concrete implementation of WidgetDomainMapper.
type WidgetDomainMapperImpl struct{}

// NewWidgetDomainMapper creates a new WidgetDomainMapper.
func NewWidgetDomainMapper() WidgetDomainMapper {
	return &WidgetDomainMapperImpl{}
}

// ToModel converts a domain entity to a persistence model.
func (m *WidgetDomainMapperImpl) ToModel(entity *widgetdomain.Record) *models.WidgetDomainModel {
	if entity == nil {
		return nil
	}
	return &models.WidgetDomainModel{
		ID:         entity.ID,
		Name:       entity.Name.String(),
		UserID:     entity.UserID,
		IsActive:   entity.IsActive,
		Status:     entity.Status.String(),
		IsVerified: entity.IsVerified,
		CreatedAt:  entity.CreatedAt,
		UpdatedAt:  entity.UpdatedAt,
	}
}

// ToDomain converts a persistence model to a domain entity.
func (m *WidgetDomainMapperImpl) ToDomain(model *models.WidgetDomainModel) (*widgetdomain.Record, error) {
	if model == nil {
		return nil, nil
	}

	status := widgetdomain.Status(model.Status)
	if !widgetdomain.ValidStatuses[status] {
		return nil, fmt.Errorf("invalid stored status for domain %q: %s", model.Name, model.Status)
	}

	return &widgetdomain.Record{
		ID:         model.ID,
		Name:       vo.DomainName(model.Name),
		UserID:     model.UserID,
		IsActive:   model.IsActive,
		Status:     status,
		IsVerified: model.IsVerified,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}, nil
}
