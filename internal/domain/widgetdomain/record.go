// Package widgetdomain holds the domain authorization model: which
// registered hostnames may load the embeddable widget.
package widgetdomain

import (
	"fmt"
	"time"

	vo "github.com/embedgate/embedgate/internal/domain/widgetdomain/value_objects"
)

// Status is the lifecycle state of a domain authorization record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// ValidStatuses contains all valid record status values.
var ValidStatuses = map[Status]bool{
	StatusPending:   true,
	StatusActive:    true,
	StatusInactive:  true,
	StatusSuspended: true,
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Record is a domain authorization record. Authorization requires both
// IsActive and StatusActive; IsVerified is an orthogonal flag gating the
// verified feature subset.
type Record struct {
	ID         uint
	Name       vo.DomainName
	UserID     *uint
	IsActive   bool
	Status     Status
	IsVerified bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewRecord creates a pending, inactive record for a freshly registered
// domain.
func NewRecord(rawName string, userID *uint) (*Record, error) {
	name, err := vo.NewDomainName(rawName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Record{
		Name:      name,
		UserID:    userID,
		IsActive:  false,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Authorized reports whether the record currently authorizes widget use.
func (r *Record) Authorized() bool {
	return r.IsActive && r.Status == StatusActive
}

// Activate enables the record.
func (r *Record) Activate() {
	r.IsActive = true
	r.Status = StatusActive
	r.UpdatedAt = time.Now().UTC()
}

// Deactivate disables the record without deleting it.
func (r *Record) Deactivate() {
	r.IsActive = false
	r.Status = StatusInactive
	r.UpdatedAt = time.Now().UTC()
}

// MarkVerified records that domain ownership was verified.
func (r *Record) MarkVerified() {
	r.IsVerified = true
	r.UpdatedAt = time.Now().UTC()
}

// Validate performs domain-level validation.
func (r *Record) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("domain name is required")
	}
	if !ValidStatuses[r.Status] {
		return fmt.Errorf("invalid status: %s", r.Status)
	}
	return nil
}
