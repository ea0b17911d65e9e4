package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/embedgate/embedgate/internal/domain/user/value_objects"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("alice@example.com", "Alice")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", u.Email())
	assert.Equal(t, vo.StatusPending, u.Status())
	assert.False(t, u.IsSuspended())
}

func TestUser_Suspend_SetsFlagAndStatusTogether(t *testing.T) {
	u, err := NewUser("bob@example.com", "Bob")
	require.NoError(t, err)

	u.Suspend()

	assert.True(t, u.IsSuspended())
	assert.Equal(t, vo.StatusSuspended, u.Status())
	assert.NoError(t, u.Validate())
}

func TestUser_Unsuspend_LandsOnInactive(t *testing.T) {
	u, err := NewUser("carol@example.com", "Carol")
	require.NoError(t, err)
	u.Suspend()

	u.Unsuspend()

	assert.False(t, u.IsSuspended())
	assert.Equal(t, vo.StatusInactive, u.Status())
	assert.NoError(t, u.Validate())
}

func TestUser_Activate(t *testing.T) {
	t.Run("pending user activates", func(t *testing.T) {
		u, err := NewUser("dave@example.com", "Dave")
		require.NoError(t, err)

		require.NoError(t, u.Activate())
		assert.Equal(t, vo.StatusActive, u.Status())
	})

	t.Run("suspended user cannot activate", func(t *testing.T) {
		u, err := NewUser("erin@example.com", "Erin")
		require.NoError(t, err)
		u.Suspend()

		assert.Error(t, u.Activate())
		assert.Equal(t, vo.StatusSuspended, u.Status())
	})
}

func TestUser_Validate_RejectsDrift(t *testing.T) {
	now := time.Now().UTC()

	t.Run("flag set but status not suspended", func(t *testing.T) {
		u, err := ReconstructUser(1, "f@example.com", "F", true, vo.StatusActive, now, now)
		require.NoError(t, err)
		assert.Error(t, u.Validate())
	})

	t.Run("status suspended but flag clear", func(t *testing.T) {
		u, err := ReconstructUser(2, "g@example.com", "G", false, vo.StatusSuspended, now, now)
		require.NoError(t, err)
		assert.Error(t, u.Validate())
	})

	t.Run("agreement passes", func(t *testing.T) {
		u, err := ReconstructUser(3, "h@example.com", "H", true, vo.StatusSuspended, now, now)
		require.NoError(t, err)
		assert.NoError(t, u.Validate())
	})
}

func TestSession_IsExpired(t *testing.T) {
	lifetime := 2 * time.Hour

	t.Run("fresh session is live", func(t *testing.T) {
		s, err := NewSession(nil, "203.0.113.7", "agent")
		require.NoError(t, err)
		assert.False(t, s.IsExpired(lifetime))
	})

	t.Run("idle past the window expires", func(t *testing.T) {
		s, err := NewSession(nil, "203.0.113.7", "agent")
		require.NoError(t, err)
		s.LastActivity = time.Now().UTC().Add(-3 * time.Hour).Unix()
		assert.True(t, s.IsExpired(lifetime))
	})

	t.Run("absolute expiry wins over activity", func(t *testing.T) {
		s, err := NewSession(nil, "203.0.113.7", "agent")
		require.NoError(t, err)
		past := time.Now().UTC().Add(-time.Minute)
		s.ExpiresAt = &past
		assert.True(t, s.IsExpired(lifetime))
	})
}

func TestSession_Deactivate(t *testing.T) {
	s, err := NewSession(nil, "203.0.113.7", "agent")
	require.NoError(t, err)

	s.Deactivate()

	assert.False(t, s.IsActive)
	require.NotNil(t, s.ExpiresAt)
	assert.WithinDuration(t, time.Now().UTC(), *s.ExpiresAt, time.Minute)
}
