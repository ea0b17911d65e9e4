package value_objects

import (
	"fmt"
	"strings"
)

// Status represents the user status value object
type Status string

// Status constants
const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// ValidStatuses contains all valid status values
var ValidStatuses = map[Status]bool{
	StatusPending:   true,
	StatusActive:    true,
	StatusInactive:  true,
	StatusSuspended: true,
}

// StatusTransitions defines allowed status transitions.
// Pending is sticky: only a live session promotes a pending user, and the
// reconciliation engine never demotes pending back to inactive.
var StatusTransitions = map[Status][]Status{
	StatusPending: {
		StatusActive,
		StatusSuspended,
	},
	StatusActive: {
		StatusInactive,
		StatusSuspended,
	},
	StatusInactive: {
		StatusActive,
		StatusSuspended,
	},
	StatusSuspended: {
		StatusActive,
		StatusInactive,
	},
}

// NewStatus creates a new Status value object with validation
func NewStatus(value string) (*Status, error) {
	status := Status(value)

	if value == "" {
		// Default to pending for new users
		status = StatusPending
		return &status, nil
	}

	if !ValidStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", value)
	}

	return &status, nil
}

// ParseStatus parses a string to Status (case-insensitive)
func ParseStatus(value string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	status := Status(normalized)

	if normalized == "" {
		return "", fmt.Errorf("status cannot be empty")
	}

	if !ValidStatuses[status] {
		return "", fmt.Errorf("invalid status: %s", value)
	}

	return status, nil
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Equals checks if two status objects are equal
func (s Status) Equals(other Status) bool {
	return s == other
}

// IsPending checks if the status is pending
func (s Status) IsPending() bool {
	return s == StatusPending
}

// IsActive checks if the status is active
func (s Status) IsActive() bool {
	return s == StatusActive
}

// IsInactive checks if the status is inactive
func (s Status) IsInactive() bool {
	return s == StatusInactive
}

// IsSuspended checks if the status is suspended
func (s Status) IsSuspended() bool {
	return s == StatusSuspended
}

// CanTransitionTo checks whether a transition to the target status is allowed
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range StatusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}
