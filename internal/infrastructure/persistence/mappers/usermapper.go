package mappers

import (
	"fmt"

	"github.com/embedgate/embedgate/internal/domain/user"
	vo "github.com/embedgate/embedgate/internal/domain/user/value_objects"
	"github.com/embedgate/embedgate/internal/infrastructure/persistence/models"
)

// UserMapper handles the conversion between User domain entities and persistence models.
type UserMapper interface {
	ToModel(entity *user.User) *models.UserModel
	ToDomain(model *models.UserModel) (*user.User, error)
}

// UserMapperImpl is the concrete implementation of UserMapper.
type UserMapperImpl struct{}

// NewUserMapper creates a new UserMapper.
func NewUserMapper() UserMapper {
	return &UserMapperImpl{}
}

// ToModel converts a domain entity to a persistence model.
func (m *UserMapperImpl) ToModel(entity *user.User) *models.UserModel {
	if entity == nil {
		return nil
	}
	return &models.UserModel{
		ID:          entity.ID(),
		Email:       entity.Email(),
		Name:        entity.Name(),
		IsSuspended: entity.IsSuspended(),
		Status:      entity.Status().String(),
		CreatedAt:   entity.CreatedAt(),
		UpdatedAt:   entity.UpdatedAt(),
	}
}

// ToDomain converts a persistence model to a domain entity.
func (m *UserMapperImpl) ToDomain(model *models.UserModel) (*user.User, error) {
	if model == nil {
		return nil, nil
	}

	status, err := vo.ParseStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("invalid stored status for user %d: %w", model.ID, err)
	}

	return user.ReconstructUser(
		model.ID,
		model.Email,
		model.Name,
		model.IsSuspended,
		status,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
