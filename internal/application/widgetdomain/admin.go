package widgetdomain

import (
	"context"
	"fmt"

	domain "github.com/embedgate/embedgate/internal/domain/widgetdomain"
	"github.com/embedgate/embedgate/internal/shared/logger"
)

// VerdictInvalidator drops a cached verdict after a state change.
type VerdictInvalidator interface {
	Invalidate(ctx context.Context, name string) error
}

// AdminDomainUseCase covers the admin activate/deactivate/verify actions
// on domain authorization records.
type AdminDomainUseCase struct {
	records     domain.Repository
	invalidator VerdictInvalidator
	logger      logger.Interface
}

// NewAdminDomainUseCase creates a new admin domain use case. invalidator
// may be nil when no verdict cache is configured.
func NewAdminDomainUseCase(records domain.Repository, invalidator VerdictInvalidator, log logger.Interface) *AdminDomainUseCase {
	return &AdminDomainUseCase{
		records:     records,
		invalidator: invalidator,
		logger:      log.Named("widgetdomain.admin"),
	}
}

// Activate enables widget authorization for the record.
func (uc *AdminDomainUseCase) Activate(ctx context.Context, id uint) (*domain.Record, error) {
	return uc.mutate(ctx, id, "activate", func(r *domain.Record) {
		r.Activate()
	})
}

// Deactivate disables widget authorization for the record.
func (uc *AdminDomainUseCase) Deactivate(ctx context.Context, id uint) (*domain.Record, error) {
	return uc.mutate(ctx, id, "deactivate", func(r *domain.Record) {
		r.Deactivate()
	})
}

// Verify marks domain ownership as verified.
func (uc *AdminDomainUseCase) Verify(ctx context.Context, id uint) (*domain.Record, error) {
	return uc.mutate(ctx, id, "verify", func(r *domain.Record) {
		r.MarkVerified()
	})
}

func (uc *AdminDomainUseCase) mutate(ctx context.Context, id uint, action string, apply func(*domain.Record)) (*domain.Record, error) {
	record, err := uc.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(record)
	if err := uc.records.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to %s domain: %w", action, err)
	}

	if uc.invalidator != nil {
		if err := uc.invalidator.Invalidate(ctx, record.Name.String()); err != nil {
			uc.logger.Debugw("verdict cache invalidation failed",
				"domain", record.Name.String(),
				"error", err,
			)
		}
	}

	uc.logger.Infow("domain state changed",
		"domain", record.Name.String(),
		"action", action,
		"is_active", record.IsActive,
		"status", record.Status.String(),
		"is_verified", record.IsVerified,
	)
	return record, nil
}
