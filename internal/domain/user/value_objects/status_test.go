package value_objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected string
	}{
		{"pending status", StatusPending, "pending"},
		{"active status", StatusActive, "active"},
		{"inactive status", StatusInactive, "inactive"},
		{"suspended status", StatusSuspended, "suspended"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
		})
	}
}

func TestNewStatus(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		expected  Status
		expectErr bool
	}{
		{"empty defaults to pending", "", StatusPending, false},
		{"valid active", "active", StatusActive, false},
		{"valid suspended", "suspended", StatusSuspended, false},
		{"unknown value rejected", "deleted", "", true},
		{"garbage rejected", "???", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := NewStatus(tt.value)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, *status)
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		expected  Status
		expectErr bool
	}{
		{"lowercase", "active", StatusActive, false},
		{"uppercase normalized", "ACTIVE", StatusActive, false},
		{"surrounding whitespace trimmed", "  inactive  ", StatusInactive, false},
		{"empty rejected", "", "", true},
		{"unknown rejected", "banned", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := ParseStatus(tt.value)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     Status
		to       Status
		expected bool
	}{
		{"pending to active", StatusPending, StatusActive, true},
		{"pending to suspended", StatusPending, StatusSuspended, true},
		{"pending cannot go inactive", StatusPending, StatusInactive, false},
		{"active to inactive", StatusActive, StatusInactive, true},
		{"active to suspended", StatusActive, StatusSuspended, true},
		{"inactive to active", StatusInactive, StatusActive, true},
		{"suspended to inactive", StatusSuspended, StatusInactive, true},
		{"suspended to active", StatusSuspended, StatusActive, true},
		{"no self transition", StatusActive, StatusActive, false},
		{"nothing returns to pending", StatusActive, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_Predicates(t *testing.T) {
	assert.True(t, StatusPending.IsPending())
	assert.True(t, StatusActive.IsActive())
	assert.True(t, StatusInactive.IsInactive())
	assert.True(t, StatusSuspended.IsSuspended())
	assert.False(t, StatusActive.IsSuspended())
	assert.False(t, StatusSuspended.IsActive())
}
