package user

import (
	"context"

	domainUser "github.com/embedgate/embedgate/internal/domain/user"
	"github.com/embedgate/embedgate/internal/shared/logger"
)

// ActivateOnSessionUseCase promotes a user to active as soon as they show
// up with a live session, without waiting for the next reconciliation
// pass. Suspended users are left alone. Failures are logged and swallowed;
// the batch pass will catch up.
type ActivateOnSessionUseCase struct {
	users  domainUser.Repository
	logger logger.Interface
}

// NewActivateOnSessionUseCase creates a new activation use case.
func NewActivateOnSessionUseCase(users domainUser.Repository, log logger.Interface) *ActivateOnSessionUseCase {
	return &ActivateOnSessionUseCase{
		users:  users,
		logger: log.Named("user.activate"),
	}
}

// Execute promotes the user if they are not suspended and not already
// active.
func (uc *ActivateOnSessionUseCase) Execute(ctx context.Context, userID uint) {
	if userID == 0 {
		return
	}

	u, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		uc.logger.Warnw("activation lookup failed", "user_id", userID, "error", err)
		return
	}

	if u.IsSuspended() || u.Status().IsSuspended() || u.Status().IsActive() {
		return
	}

	if err := u.Activate(); err != nil {
		uc.logger.Warnw("activation rejected", "user_id", userID, "error", err)
		return
	}
	if err := uc.users.Update(ctx, u); err != nil {
		uc.logger.Warnw("activation write failed", "user_id", userID, "error", err)
		return
	}

	uc.logger.Debugw("user promoted to active", "user_id", userID, "trigger", "live_session")
}
