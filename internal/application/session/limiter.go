package session

import (
	"context"
	"time"

	"github.com/embedgate/embedgate/internal/domain/user"
	"github.com/embedgate/embedgate/internal/shared/biztime"
	"github.com/embedgate/embedgate/internal/shared/logger"
)

// DefaultMaxConcurrent is the default per-user active session cap.
const DefaultMaxConcurrent = 5

// Limiter enforces the per-user cap on concurrent active sessions. It runs
// once per authenticated request, after the current session id is known.
type Limiter struct {
	sessions user.SessionRepository
	max      int
	lifetime time.Duration
	logger   logger.Interface
}

// NewLimiter creates a limiter; max <= 0 falls back to the default cap.
func NewLimiter(sessions user.SessionRepository, max int, lifetime time.Duration, log logger.Interface) *Limiter {
	if max <= 0 {
		max = DefaultMaxConcurrent
	}
	return &Limiter{
		sessions: sessions,
		max:      max,
		lifetime: lifetime,
		logger:   log.Named("session.limiter"),
	}
}

// Enforce deactivates the user's oldest active sessions beyond the cap.
// The keep-set is the current session plus the most recently active
// others. Storage errors abort enforcement for this request only; the
// response is never blocked.
func (l *Limiter) Enforce(ctx context.Context, userID uint, currentSessionID string) {
	if userID == 0 || currentSessionID == "" {
		return
	}

	idleCutoff := biztime.NowUnix() - int64(l.lifetime.Seconds())
	active, err := l.sessions.ActiveByUser(ctx, userID, idleCutoff)
	if err != nil {
		l.logger.Warnw("session limit enforcement skipped",
			"user_id", userID,
			"error", err,
		)
		return
	}

	if len(active) <= l.max {
		return
	}

	keep := make([]string, 0, l.max)
	keep = append(keep, currentSessionID)
	for _, s := range active {
		if len(keep) >= l.max {
			break
		}
		if s.ID == currentSessionID {
			continue
		}
		keep = append(keep, s.ID)
	}

	evicted, err := l.sessions.DeactivateExcept(ctx, userID, keep)
	if err != nil {
		l.logger.Warnw("session eviction failed",
			"user_id", userID,
			"error", err,
		)
		return
	}

	// Evicted sessions discover their fate on their next request; no
	// synchronous notification is sent.
	l.logger.Infow("concurrent session limit enforced",
		"user_id", userID,
		"active_count", len(active),
		"limit", l.max,
		"kept", keep,
		"evicted_count", evicted,
	)
}
