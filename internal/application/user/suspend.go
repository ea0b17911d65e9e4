package user

import (
	"context"
	"fmt"

	domainUser "github.com/embedgate/embedgate/internal/domain/user"
	"github.com/embedgate/embedgate/internal/shared/errors"
	"github.com/embedgate/embedgate/internal/shared/logger"
)

// SuspendUserUseCase handles the admin suspend/unsuspend actions. Both go
// through the aggregate, which keeps the flag and status in lockstep, so
// the invariant holds immediately rather than waiting for the next
// reconciliation pass.
type SuspendUserUseCase struct {
	users  domainUser.Repository
	logger logger.Interface
}

// NewSuspendUserUseCase creates a new suspend user use case.
func NewSuspendUserUseCase(users domainUser.Repository, log logger.Interface) *SuspendUserUseCase {
	return &SuspendUserUseCase{
		users:  users,
		logger: log.Named("user.suspend"),
	}
}

// Suspend marks the user suspended.
func (uc *SuspendUserUseCase) Suspend(ctx context.Context, userID uint) error {
	if userID == 0 {
		return errors.NewValidationError("user ID cannot be zero")
	}

	u, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	u.Suspend()
	if err := uc.users.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to suspend user: %w", err)
	}

	uc.logger.Infow("user suspended", "user_id", userID)
	return nil
}

// Unsuspend clears the suspension. The user lands on inactive; a live
// session or the next reconciliation pass promotes them back to active.
func (uc *SuspendUserUseCase) Unsuspend(ctx context.Context, userID uint) error {
	if userID == 0 {
		return errors.NewValidationError("user ID cannot be zero")
	}

	u, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	u.Unsuspend()
	if err := uc.users.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to unsuspend user: %w", err)
	}

	uc.logger.Infow("user unsuspended", "user_id", userID)
	return nil
}
