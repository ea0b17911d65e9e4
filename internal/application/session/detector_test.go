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

func seedDetectorSession(t *testing.T, repo user.SessionRepository, userID uint, id, ip, agent string, ageSeconds int64) {
	t.Helper()
	uid := userID
	seedSession(t, repo, &user.Session{
		ID:           id,
		UserID:       &uid,
		IPAddress:    ip,
		UserAgent:    agent,
		LastActivity: biztime.NowUnix() - ageSeconds,
		IsActive:     true,
		CreatedAt:    biztime.NowUTC(),
	})
}

func TestDetector_TooManyIPAddresses(t *testing.T) {
	repo := newTestSessionRepo(t)
	detector := NewDetector(repo, 30*time.Minute, testLogger(t))
	ctx := context.Background()

	// Three recent sessions on distinct IPs plus the current request's
	// IP makes four, which crosses the threshold of three.
	seedDetectorSession(t, repo, 20, "cur", "10.0.0.1", "agent", 0)
	seedDetectorSession(t, repo, 20, "o1", "10.0.0.2", "agent", 60)
	seedDetectorSession(t, repo, 20, "o2", "10.0.0.3", "agent", 120)
	seedDetectorSession(t, repo, 20, "o3", "10.0.0.4", "agent", 180)

	notices := detector.Inspect(ctx, 20, "cur", "10.0.0.1", "agent")

	require.Len(t, notices, 1)
	assert.Equal(t, NoticeTooManyIPs, notices[0].Type)
	assert.False(t, notices[0].DetectedAt.IsZero())
}

func TestDetector_ThreeIPsIsFine(t *testing.T) {
	repo := newTestSessionRepo(t)
	detector := NewDetector(repo, 30*time.Minute, testLogger(t))

	seedDetectorSession(t, repo, 21, "cur", "10.0.0.1", "agent", 0)
	seedDetectorSession(t, repo, 21, "o1", "10.0.0.2", "agent", 60)
	seedDetectorSession(t, repo, 21, "o2", "10.0.0.3", "agent", 120)

	notices := detector.Inspect(context.Background(), 21, "cur", "10.0.0.1", "agent")

	assert.Empty(t, notices)
}

func TestDetector_FirstOctetChange(t *testing.T) {
	repo := newTestSessionRepo(t)
	detector := NewDetector(repo, 30*time.Minute, testLogger(t))

	seedDetectorSession(t, repo, 22, "cur", "203.0.113.7", "agent", 0)
	seedDetectorSession(t, repo, 22, "o1", "10.0.0.1", "agent", 60)

	notices := detector.Inspect(context.Background(), 22, "cur", "203.0.113.7", "agent")

	require.Len(t, notices, 1)
	assert.Equal(t, NoticeIPChanged, notices[0].Type)
}

func TestDetector_SameFirstOctetDoesNotFire(t *testing.T) {
	repo := newTestSessionRepo(t)
	detector := NewDetector(repo, 30*time.Minute, testLogger(t))

	// Different IPs within the same first octet are treated as benign.
	seedDetectorSession(t, repo, 23, "cur", "10.1.2.3", "agent", 0)
	seedDetectorSession(t, repo, 23, "o1", "10.9.8.7", "agent", 60)

	notices := detector.Inspect(context.Background(), 23, "cur", "10.1.2.3", "agent")

	assert.Empty(t, notices)
}

func TestDetector_TooManyUserAgents(t *testing.T) {
	repo := newTestSessionRepo(t)
	detector := NewDetector(repo, 30*time.Minute, testLogger(t))

	seedDetectorSession(t, repo, 24, "cur", "10.0.0.1", "firefox", 0)
	seedDetectorSession(t, repo, 24, "o1", "10.0.0.1", "chrome", 60)
	seedDetectorSession(t, repo, 24, "o2", "10.0.0.1", "safari", 120)

	notices := detector.Inspect(context.Background(), 24, "cur", "10.0.0.1", "firefox")

	require.Len(t, notices, 1)
	assert.Equal(t, NoticeTooManyUserAgents, notices[0].Type)
}

func TestDetector_OldSessionsOutsideWindowIgnored(t *testing.T) {
	repo := newTestSessionRepo(t)
	detector := NewDetector(repo, 30*time.Minute, testLogger(t))

	seedDetectorSession(t, repo, 25, "cur", "10.0.0.1", "agent", 0)
	// An hour old, outside the 30 minute window.
	seedDetectorSession(t, repo, 25, "o1", "203.0.113.9", "agent", 3600)

	notices := detector.Inspect(context.Background(), 25, "cur", "10.0.0.1", "agent")

	assert.Empty(t, notices)
}

func TestDetector_AnnotatesSessionPayload(t *testing.T) {
	repo := newTestSessionRepo(t)
	detector := NewDetector(repo, 30*time.Minute, testLogger(t))
	ctx := context.Background()

	existing, err := EncodePayload(map[string]interface{}{"cart": "xyz"})
	require.NoError(t, err)

	uid := uint(26)
	seedSession(t, repo, &user.Session{
		ID:           "cur",
		UserID:       &uid,
		IPAddress:    "203.0.113.7",
		UserAgent:    "agent",
		Payload:      existing,
		LastActivity: biztime.NowUnix(),
		IsActive:     true,
		CreatedAt:    biztime.NowUTC(),
	})
	seedDetectorSession(t, repo, 26, "o1", "10.0.0.1", "agent", 60)

	notices := detector.Inspect(ctx, 26, "cur", "203.0.113.7", "agent")
	require.NotEmpty(t, notices)

	record, err := repo.GetByID(ctx, "cur")
	require.NoError(t, err)

	data := DecodePayload(record.Payload)
	assert.Equal(t, "xyz", data["cart"])

	stored, ok := data["security_notices"].([]interface{})
	require.True(t, ok)
	require.Len(t, stored, 1)

	first, ok := stored[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, NoticeIPChanged, first["type"])
}

func TestDecodePayload_MalformedIsEmpty(t *testing.T) {
	assert.Empty(t, DecodePayload(""))
	assert.Empty(t, DecodePayload("not-base64!!"))
	assert.Empty(t, DecodePayload("aGVsbG8="))
}

func TestPayload_RoundTrip(t *testing.T) {
	in := map[string]interface{}{"a": "1", "b": float64(2)}

	encoded, err := EncodePayload(in)
	require.NoError(t, err)

	assert.Equal(t, in, DecodePayload(encoded))
}
