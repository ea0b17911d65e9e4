package user

import (
	"fmt"
	"time"

	vo "github.com/embedgate/embedgate/internal/domain/user/value_objects"
)

// User is the status-relevant projection of a platform user. The highest
// priority invariant is that IsSuspended and StatusSuspended always agree;
// the reconciliation engine repairs any drift between them.
type User struct {
	id          uint
	email       string
	name        string
	isSuspended bool
	status      vo.Status
	createdAt   time.Time
	updatedAt   time.Time
}

// NewUser creates a new user in the sticky pending state.
func NewUser(email, name string) (*User, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	now := time.Now().UTC()
	return &User{
		email:     email,
		name:      name,
		status:    vo.StatusPending,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructUser reconstructs a user from persistence
func ReconstructUser(id uint, email, name string, isSuspended bool, status vo.Status, createdAt, updatedAt time.Time) (*User, error) {
	if id == 0 {
		return nil, fmt.Errorf("user ID cannot be zero")
	}
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	return &User{
		id:          id,
		email:       email,
		name:        name,
		isSuspended: isSuspended,
		status:      status,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

// ID returns the user ID
func (u *User) ID() uint {
	return u.id
}

// Email returns the user's email
func (u *User) Email() string {
	return u.email
}

// Name returns the user's name
func (u *User) Name() string {
	return u.name
}

// IsSuspended returns the suspension flag
func (u *User) IsSuspended() bool {
	return u.isSuspended
}

// Status returns the user's status
func (u *User) Status() vo.Status {
	return u.status
}

// CreatedAt returns when the user was created
func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

// UpdatedAt returns when the user was last updated
func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

// SetID sets the user ID (only for persistence layer use)
func (u *User) SetID(id uint) error {
	if u.id != 0 {
		return fmt.Errorf("user ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("user ID cannot be zero")
	}
	u.id = id
	return nil
}

// Suspend sets the suspension flag and stamps the status to match.
func (u *User) Suspend() {
	if u.isSuspended && u.status.IsSuspended() {
		return
	}
	u.isSuspended = true
	u.status = vo.StatusSuspended
	u.updatedAt = time.Now().UTC()
}

// Unsuspend clears the suspension flag. The status is demoted to inactive
// and the next reconciliation pass (or a live session) promotes it back.
func (u *User) Unsuspend() {
	if !u.isSuspended && !u.status.IsSuspended() {
		return
	}
	u.isSuspended = false
	u.status = vo.StatusInactive
	u.updatedAt = time.Now().UTC()
}

// Activate promotes the user to active. Suspended users are never promoted.
func (u *User) Activate() error {
	if u.isSuspended || u.status.IsSuspended() {
		return fmt.Errorf("cannot activate suspended user %d", u.id)
	}
	if u.status.IsActive() {
		return nil
	}
	if !u.status.CanTransitionTo(vo.StatusActive) {
		return fmt.Errorf("cannot activate user with status %s", u.status.String())
	}
	u.status = vo.StatusActive
	u.updatedAt = time.Now().UTC()
	return nil
}

// Validate performs domain-level validation
func (u *User) Validate() error {
	if u.email == "" {
		return fmt.Errorf("email is required")
	}
	if !vo.ValidStatuses[u.status] {
		return fmt.Errorf("invalid status: %s", u.status)
	}
	if u.isSuspended != u.status.IsSuspended() {
		return fmt.Errorf("suspension flag and status disagree for user %d", u.id)
	}
	return nil
}
