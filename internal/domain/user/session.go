package user

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/embedgate/embedgate/internal/shared/biztime"
)

// Session binds an opaque token to a user, its activity stamp, and expiry.
// LastActivity is integer epoch seconds. ExpiresAt nil means liveness is
// derived from LastActivity plus the configured lifetime window. A session
// with IsActive false is terminal and is never reactivated.
type Session struct {
	ID           string
	UserID       *uint
	IPAddress    string
	UserAgent    string
	Payload      string
	LastActivity int64
	IsActive     bool
	ExpiresAt    *time.Time
	Fingerprint  *string
	DeviceInfo   map[string]string
	CreatedAt    time.Time
}

// NewSession creates an active session with a fresh random token.
func NewSession(userID *uint, ipAddress, userAgent string) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:           id,
		UserID:       userID,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		LastActivity: biztime.NowUnix(),
		IsActive:     true,
		DeviceInfo:   map[string]string{},
		CreatedAt:    biztime.NowUTC(),
	}, nil
}

// IsExpired reports whether the session is past its absolute expiry, or,
// when ExpiresAt is unset, idle beyond the given lifetime window.
func (s *Session) IsExpired(lifetime time.Duration) bool {
	now := biztime.NowUTC()
	if s.ExpiresAt != nil {
		return now.After(*s.ExpiresAt)
	}
	return now.Unix()-s.LastActivity > int64(lifetime.Seconds())
}

// Touch refreshes the activity stamp.
func (s *Session) Touch() {
	s.LastActivity = biztime.NowUnix()
}

// Deactivate marks the session terminally inactive.
func (s *Session) Deactivate() {
	if !s.IsActive {
		return
	}
	s.IsActive = false
	now := biztime.NowUTC()
	s.ExpiresAt = &now
}

func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
