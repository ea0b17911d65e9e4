package user

import "context"

// Repository is the persistence contract for users. The reconciliation
// methods are expressed as conditional bulk updates so they stay
// idempotent and safe to race against live request traffic.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error

	// SetSuspended flips the suspension flag only; status repair is left to
	// the reconciliation engine or an immediate repair call.
	SetSuspended(ctx context.Context, id uint, suspended bool) error

	// RepairSuspendedStatus stamps status=suspended on every user whose
	// suspension flag is set but whose status disagrees.
	RepairSuspendedStatus(ctx context.Context) (int64, error)

	// RepairSuspendedFlag sets the suspension flag on every user whose
	// status is suspended but whose flag is clear. Status-suspended wins.
	RepairSuspendedFlag(ctx context.Context) (int64, error)

	// PromoteActiveUsers stamps status=active on the given users, skipping
	// suspended ones. Without force only users not already active are
	// touched.
	PromoteActiveUsers(ctx context.Context, ids []uint, force bool) (int64, error)

	// DemoteIdleUsers stamps status=inactive on users outside the active
	// set, excluding suspended and pending users.
	DemoteIdleUsers(ctx context.Context, activeIDs []uint, force bool) (int64, error)

	// ActiveStatusIDsNotIn returns users with status=active that are not in
	// the given active set; used for drift reporting.
	ActiveStatusIDsNotIn(ctx context.Context, activeIDs []uint) ([]uint, error)

	// SuspendedIDs returns users with the suspension flag set or status
	// suspended.
	SuspendedIDs(ctx context.Context) ([]uint, error)
}

// SessionRepository is the persistence contract for sessions. Callers in
// the request path swallow errors from these methods; the store never
// lets a storage failure escape into a response.
type SessionRepository interface {
	Upsert(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	UpdatePayload(ctx context.Context, id, payload string) error

	// BindUser attaches an authenticated user to an existing session.
	BindUser(ctx context.Context, id string, userID uint) error
	Delete(ctx context.Context, id string) error

	// DeleteIdleBefore removes rows whose last activity predates the cutoff
	// (epoch seconds) and returns the count removed.
	DeleteIdleBefore(ctx context.Context, cutoff int64) (int64, error)

	// ActiveByUser returns active, unexpired sessions for the user ordered
	// by last activity descending.
	ActiveByUser(ctx context.Context, userID uint, idleCutoff int64) ([]*Session, error)

	// RecentOtherSessions returns the user's sessions other than excludeID
	// with activity since the cutoff (epoch seconds).
	RecentOtherSessions(ctx context.Context, userID uint, excludeID string, since int64) ([]*Session, error)

	// DeactivateExcept deactivates every active session of the user whose
	// id is not in keep, returning the evicted count.
	DeactivateExcept(ctx context.Context, userID uint, keep []string) (int64, error)

	// ExpireStale deactivates sessions whose absolute expiry has passed or,
	// lacking one, whose activity predates the idle cutoff.
	ExpireStale(ctx context.Context, idleCutoff int64) (int64, error)

	// ActiveUserIDs returns the distinct ids of users holding at least one
	// live session: active and either unexpired or recently active.
	ActiveUserIDs(ctx context.Context, idleCutoff int64) ([]uint, error)
}
