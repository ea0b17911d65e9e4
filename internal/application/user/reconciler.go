// Package user holds the application services for user lifecycle: status
// reconciliation, suspension, and per-request activation.
package user

import (
	"context"
	"fmt"

	domainUser "github.com/embedgate/embedgate/internal/domain/user"
	"github.com/embedgate/embedgate/internal/shared/biztime"
	"github.com/embedgate/embedgate/internal/shared/config"
	"github.com/embedgate/embedgate/internal/shared/logger"
)

// ReconcileOptions controls a reconciliation pass.
type ReconcileOptions struct {
	// Force re-stamps status even when it is already correct.
	Force bool
	// Verbose collects the diagnostic lists in the report.
	Verbose bool
}

// ReconcileReport carries the per-step counts and, in verbose mode, the
// diagnostic user lists.
type ReconcileReport struct {
	SuspendedStatusRepaired int64  `json:"suspended_status_repaired"`
	SuspendedFlagRepaired   int64  `json:"suspended_flag_repaired"`
	SessionsExpired         int64  `json:"sessions_expired"`
	ActiveUserCount         int    `json:"active_user_count"`
	Promoted                int64  `json:"promoted"`
	Demoted                 int64  `json:"demoted"`
	DriftedActiveIDs        []uint `json:"drifted_active_ids,omitempty"`
	SuspendedIDs            []uint `json:"suspended_ids,omitempty"`
}

// Reconciler derives each user's status from the suspension flag and
// aggregated session activity. Every step is a conditional bulk update,
// never read-then-write, so the pass is idempotent and safe to run while
// request traffic mutates session rows.
type Reconciler struct {
	users    domainUser.Repository
	sessions domainUser.SessionRepository
	cfg      config.SessionConfig
	logger   logger.Interface
}

// NewReconciler creates a reconciler.
func NewReconciler(users domainUser.Repository, sessions domainUser.SessionRepository, cfg config.SessionConfig, log logger.Interface) *Reconciler {
	return &Reconciler{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		logger:   log.Named("user.reconciler"),
	}
}

// Run executes the reconciliation pass. Step order matters: suspension
// invariants are enforced before the active/inactive passes, which
// exclude suspended users and rely on flag and status already agreeing.
func (r *Reconciler) Run(ctx context.Context, opts ReconcileOptions) (*ReconcileReport, error) {
	started := biztime.NowUTC()
	report := &ReconcileReport{}

	// Step 1: suspension repair (down) - flagged users get status=suspended.
	count, err := r.users.RepairSuspendedStatus(ctx)
	if err != nil {
		return report, fmt.Errorf("suspension status repair failed: %w", err)
	}
	report.SuspendedStatusRepaired = count

	// Step 2: suspension repair (up) - status-suspended wins over a clear flag.
	count, err = r.users.RepairSuspendedFlag(ctx)
	if err != nil {
		return report, fmt.Errorf("suspension flag repair failed: %w", err)
	}
	report.SuspendedFlagRepaired = count

	// Step 3: expire sessions past their absolute expiry, or idle beyond
	// the long threshold when no expiry is set.
	longIdleCutoff := biztime.NowUnix() - int64(r.cfg.LongIdle().Seconds())
	count, err = r.sessions.ExpireStale(ctx, longIdleCutoff)
	if err != nil {
		return report, fmt.Errorf("session expiry sweep failed: %w", err)
	}
	report.SessionsExpired = count

	// Step 4: users with at least one live session.
	shortIdleCutoff := biztime.NowUnix() - int64(r.cfg.ShortIdle().Seconds())
	activeIDs, err := r.sessions.ActiveUserIDs(ctx, shortIdleCutoff)
	if err != nil {
		return report, fmt.Errorf("active user set computation failed: %w", err)
	}
	report.ActiveUserCount = len(activeIDs)

	// Step 5: promote users in the active set. Suspended users are never
	// promoted, even when they still hold a live session.
	count, err = r.users.PromoteActiveUsers(ctx, activeIDs, opts.Force)
	if err != nil {
		return report, fmt.Errorf("active promotion failed: %w", err)
	}
	report.Promoted = count

	// Step 6: demote everyone else, except pending users who have never
	// logged in.
	count, err = r.users.DemoteIdleUsers(ctx, activeIDs, opts.Force)
	if err != nil {
		return report, fmt.Errorf("inactive demotion failed: %w", err)
	}
	report.Demoted = count

	if opts.Verbose {
		drifted, err := r.users.ActiveStatusIDsNotIn(ctx, activeIDs)
		if err != nil {
			return report, fmt.Errorf("drift detection failed: %w", err)
		}
		report.DriftedActiveIDs = drifted

		suspended, err := r.users.SuspendedIDs(ctx)
		if err != nil {
			return report, fmt.Errorf("suspended listing failed: %w", err)
		}
		report.SuspendedIDs = suspended
	}

	r.logger.Infow("status reconciliation completed",
		"suspended_status_repaired", report.SuspendedStatusRepaired,
		"suspended_flag_repaired", report.SuspendedFlagRepaired,
		"sessions_expired", report.SessionsExpired,
		"active_users", report.ActiveUserCount,
		"promoted", report.Promoted,
		"demoted", report.Demoted,
		"force", opts.Force,
		"duration", biztime.NowUTC().Sub(started),
	)

	return report, nil
}

// Execute lets the reconciler double as a scheduled batch job; it returns
// the total number of rows repaired.
func (r *Reconciler) Execute(ctx context.Context) (int, error) {
	report, err := r.Run(ctx, ReconcileOptions{})
	if err != nil {
		return 0, err
	}
	total := report.SuspendedStatusRepaired + report.SuspendedFlagRepaired +
		report.SessionsExpired + report.Promoted + report.Demoted
	return int(total), nil
}
