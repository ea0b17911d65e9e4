package mappers

import (
	"fmt"

	"gorm.io/datatypes"

	"github.com/embedgate/embedgate/internal/domain/user"
	"github.com/embedgate/embedgate/internal/infrastructure/persistence/models"
)

// SessionMapper handles the conversion between Session domain entities and persistence models.
type SessionMapper interface {
	// ToModel converts a domain entity to a persistence model.
	ToModel(entity *user.Session) *models.SessionModel

	// ToDomain converts a persistence model to a domain entity.
	ToDomain(model *models.SessionModel) *user.Session
}

// SessionMapperImpl is the concrete implementation of SessionMapper.
type SessionMapperImpl struct{}

// NewSessionMapper creates a new SessionMapper.
func NewSessionMapper() SessionMapper {
	return &SessionMapperImpl{}
}

// ToModel converts a domain entity to a persistence model.
func (m *SessionMapperImpl) ToModel(entity *user.Session) *models.SessionModel {
	if entity == nil {
		return nil
	}

	var deviceInfo datatypes.JSONMap
	if len(entity.DeviceInfo) > 0 {
		deviceInfo = make(datatypes.JSONMap, len(entity.DeviceInfo))
		for k, v := range entity.DeviceInfo {
			deviceInfo[k] = v
		}
	}

	return &models.SessionModel{
		ID:           entity.ID,
		UserID:       entity.UserID,
		IPAddress:    entity.IPAddress,
		UserAgent:    entity.UserAgent,
		Payload:      entity.Payload,
		LastActivity: entity.LastActivity,
		IsActive:     entity.IsActive,
		ExpiresAt:    entity.ExpiresAt,
		Fingerprint:  entity.Fingerprint,
		DeviceInfo:   deviceInfo,
		CreatedAt:    entity.CreatedAt,
	}
}

// ToDomain converts a persistence model to a domain entity.
func (m *SessionMapperImpl) ToDomain(model *models.SessionModel) *user.Session {
	if model == nil {
		return nil
	}

	deviceInfo := make(map[string]string, len(model.DeviceInfo))
	for k, v := range model.DeviceInfo {
		deviceInfo[k] = fmt.Sprintf("%v", v)
	}

	return &user.Session{
		ID:           model.ID,
		UserID:       model.UserID,
		IPAddress:    model.IPAddress,
		UserAgent:    model.UserAgent,
		Payload:      model.Payload,
		LastActivity: model.LastActivity,
		IsActive:     model.IsActive,
		ExpiresAt:    model.ExpiresAt,
		Fingerprint:  model.Fingerprint,
		DeviceInfo:   deviceInfo,
		CreatedAt:    model.CreatedAt,
	}
}
