// Package session implements the session lifecycle engine: the durable
// session store, the per-user concurrency limiter, and the suspicious
// activity detector. Nothing in this package lets a storage failure
// escape into a request; every operation degrades to a safe default.
package session

import (
	"context"
	"time"

	"github.com/embedgate/embedgate/internal/domain/user"
	"github.com/embedgate/embedgate/internal/shared/biztime"
	apperrors "github.com/embedgate/embedgate/internal/shared/errors"
	"github.com/embedgate/embedgate/internal/shared/logger"
)

// RequestMeta carries the request context stamped onto session writes.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// Store is the durable read/write/destroy/garbage-collect contract over
// session records, shaped so it can back any session middleware.
type Store struct {
	sessions user.SessionRepository
	lifetime time.Duration
	logger   logger.Interface
}

// NewStore creates a session store with the given rolling lifetime window.
func NewStore(sessions user.SessionRepository, lifetime time.Duration, log logger.Interface) *Store {
	return &Store{
		sessions: sessions,
		lifetime: lifetime,
		logger:   log.Named("session.store"),
	}
}

// Read returns the stored payload if the record is still within the
// lifetime window. Expired records are destroyed and read as empty.
// Missing ids and storage failures also read as empty.
func (s *Store) Read(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}

	record, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if !apperrors.IsNotFoundError(err) {
			s.logger.Errorw("session read failed, returning empty payload", "session_id", id, "error", err)
		}
		return ""
	}

	if !record.IsActive || record.IsExpired(s.lifetime) {
		if err := s.sessions.Delete(ctx, id); err != nil {
			s.logger.Errorw("failed to destroy expired session", "session_id", id, "error", err)
		}
		return ""
	}

	return record.Payload
}

// Write upserts the record keyed by id, refreshing last-activity and
// stamping ip/user-agent when request context is available. Returns false
// on storage failure instead of propagating it.
func (s *Store) Write(ctx context.Context, id, payload string, meta *RequestMeta) bool {
	if id == "" {
		return false
	}

	record := &user.Session{
		ID:           id,
		Payload:      payload,
		LastActivity: biztime.NowUnix(),
		IsActive:     true,
		DeviceInfo:   map[string]string{},
		CreatedAt:    biztime.NowUTC(),
	}
	if meta != nil {
		record.IPAddress = meta.IPAddress
		record.UserAgent = meta.UserAgent
	}

	if err := s.sessions.Upsert(ctx, record); err != nil {
		s.logger.Errorw("session write failed", "session_id", id, "error", err)
		return false
	}
	return true
}

// Destroy deletes the record unconditionally; deleting a missing id is a
// no-op success.
func (s *Store) Destroy(ctx context.Context, id string) bool {
	if id == "" {
		return true
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		s.logger.Errorw("session destroy failed", "session_id", id, "error", err)
		return false
	}
	return true
}

// Bind attaches an authenticated user to an existing session, as happens
// on login.
func (s *Store) Bind(ctx context.Context, id string, userID uint) bool {
	if id == "" || userID == 0 {
		return false
	}
	if err := s.sessions.BindUser(ctx, id, userID); err != nil {
		s.logger.Errorw("session bind failed", "session_id", id, "user_id", userID, "error", err)
		return false
	}
	return true
}

// GC removes rows idle longer than maxLifetime and returns the count
// removed. Safe to run concurrently with reads and writes.
func (s *Store) GC(ctx context.Context, maxLifetime time.Duration) int64 {
	cutoff := biztime.NowUnix() - int64(maxLifetime.Seconds())
	removed, err := s.sessions.DeleteIdleBefore(ctx, cutoff)
	if err != nil {
		s.logger.Errorw("session gc failed", "error", err)
		return 0
	}
	if removed > 0 {
		s.logger.Infow("session gc completed", "removed", removed)
	}
	return removed
}
