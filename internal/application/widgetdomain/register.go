package widgetdomain

import (
	"context"
	"fmt"

	domain "github.com/embedgate/embedgate/internal/domain/widgetdomain"
	vo "github.com/embedgate/embedgate/internal/domain/widgetdomain/value_objects"
	"github.com/embedgate/embedgate/internal/shared/errors"
	"github.com/embedgate/embedgate/internal/shared/logger"
)

// RegisterDomainUseCase handles the domain owner's self-registration path.
// New records start pending and inactive; an admin activates them.
type RegisterDomainUseCase struct {
	records domain.Repository
	logger  logger.Interface
}

// NewRegisterDomainUseCase creates a new register domain use case.
func NewRegisterDomainUseCase(records domain.Repository, log logger.Interface) *RegisterDomainUseCase {
	return &RegisterDomainUseCase{
		records: records,
		logger:  log.Named("widgetdomain.register"),
	}
}

// Execute registers a new domain for the user.
func (uc *RegisterDomainUseCase) Execute(ctx context.Context, userID uint, rawName string) (*domain.Record, error) {
	record, err := domain.NewRecord(rawName, &userID)
	if err != nil {
		return nil, errors.NewValidationError("invalid domain name", err.Error())
	}

	existing, err := uc.records.GetByName(ctx, record.Name)
	if err != nil && !errors.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing domain: %w", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError("domain is already registered")
	}

	if err := uc.records.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to register domain: %w", err)
	}

	uc.logger.Infow("domain registered",
		"domain", record.Name.String(),
		"user_id", userID,
	)
	return record, nil
}

// NormalizeName exposes normalization for callers that only need the
// canonical form.
func NormalizeName(raw string) string {
	return vo.Normalize(raw)
}
