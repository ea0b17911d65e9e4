package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedgate/embedgate/internal/domain/user"
	"github.com/embedgate/embedgate/internal/shared/biztime"
)

func seedUserSessions(t *testing.T, repo user.SessionRepository, userID uint, ids []string) {
	t.Helper()

	// ids are ordered newest first; each later session is one minute older.
	now := biztime.NowUnix()
	for i, id := range ids {
		uid := userID
		seedSession(t, repo, &user.Session{
			ID:           id,
			UserID:       &uid,
			IPAddress:    "203.0.113.7",
			UserAgent:    "agent",
			LastActivity: now - int64(i*60),
			IsActive:     true,
			CreatedAt:    biztime.NowUTC(),
		})
	}
}

func activeIDs(t *testing.T, repo user.SessionRepository, userID uint) map[string]bool {
	t.Helper()

	cutoff := biztime.NowUnix() - int64((2 * time.Hour).Seconds())
	active, err := repo.ActiveByUser(context.Background(), userID, cutoff)
	require.NoError(t, err)

	ids := make(map[string]bool, len(active))
	for _, s := range active {
		ids[s.ID] = true
	}
	return ids
}

func TestLimiter_EvictsOldestBeyondCap(t *testing.T) {
	repo := newTestSessionRepo(t)
	limiter := NewLimiter(repo, 5, 2*time.Hour, testLogger(t))

	// Six active sessions, s1 newest through s6 oldest. The current
	// session s3 plus the four most recent others survive; s6 goes.
	seedUserSessions(t, repo, 7, []string{"s1", "s2", "s3", "s4", "s5", "s6"})

	limiter.Enforce(context.Background(), 7, "s3")

	remaining := activeIDs(t, repo, 7)
	assert.Equal(t, map[string]bool{
		"s1": true, "s2": true, "s3": true, "s4": true, "s5": true,
	}, remaining)
}

func TestLimiter_CurrentSessionAlwaysKept(t *testing.T) {
	repo := newTestSessionRepo(t)
	limiter := NewLimiter(repo, 3, 2*time.Hour, testLogger(t))

	// The current session is the oldest of five; it still survives and
	// the two most recent others fill the rest of the keep-set.
	seedUserSessions(t, repo, 8, []string{"a1", "a2", "a3", "a4", "a5"})

	limiter.Enforce(context.Background(), 8, "a5")

	remaining := activeIDs(t, repo, 8)
	assert.Equal(t, map[string]bool{
		"a1": true, "a2": true, "a5": true,
	}, remaining)
}

func TestLimiter_UnderCapIsNoOp(t *testing.T) {
	repo := newTestSessionRepo(t)
	limiter := NewLimiter(repo, 5, 2*time.Hour, testLogger(t))

	seedUserSessions(t, repo, 9, []string{"b1", "b2", "b3"})

	limiter.Enforce(context.Background(), 9, "b2")

	assert.Len(t, activeIDs(t, repo, 9), 3)
}

func TestLimiter_AtCapIsNoOp(t *testing.T) {
	repo := newTestSessionRepo(t)
	limiter := NewLimiter(repo, 5, 2*time.Hour, testLogger(t))

	seedUserSessions(t, repo, 10, []string{"c1", "c2", "c3", "c4", "c5"})

	limiter.Enforce(context.Background(), 10, "c1")

	assert.Len(t, activeIDs(t, repo, 10), 5)
}

func TestLimiter_IgnoresOtherUsers(t *testing.T) {
	repo := newTestSessionRepo(t)
	limiter := NewLimiter(repo, 2, 2*time.Hour, testLogger(t))

	seedUserSessions(t, repo, 11, []string{"u1a", "u1b", "u1c"})
	seedUserSessions(t, repo, 12, []string{"u2a", "u2b", "u2c"})

	limiter.Enforce(context.Background(), 11, "u1a")

	assert.Len(t, activeIDs(t, repo, 11), 2)
	assert.Len(t, activeIDs(t, repo, 12), 3)
}

func TestLimiter_MissingIdentityIsNoOp(t *testing.T) {
	repo := newTestSessionRepo(t)
	limiter := NewLimiter(repo, 1, 2*time.Hour, testLogger(t))

	seedUserSessions(t, repo, 13, []string{"d1", "d2"})

	limiter.Enforce(context.Background(), 0, "d1")
	limiter.Enforce(context.Background(), 13, "")

	assert.Len(t, activeIDs(t, repo, 13), 2)
}
