package middleware

import (
	"github.com/gin-gonic/gin"

	appsession "github.com/embedgate/embedgate/internal/application/session"
	appuser "github.com/embedgate/embedgate/internal/application/user"
	"github.com/embedgate/embedgate/internal/shared/logger"
)

// SessionGuard runs the session lifecycle pipeline on every authenticated
// request: it refreshes the session record, binds it to the caller,
// enforces the per-user concurrency cap, promotes the account to active,
// and inspects recent sessions for suspicious activity. All of it is
// best effort; a storage failure never fails the request.
type SessionGuard struct {
	store    *appsession.Store
	limiter  *appsession.Limiter
	detector *appsession.Detector
	activate *appuser.ActivateOnSessionUseCase
	logger   logger.Interface
}

func NewSessionGuard(
	store *appsession.Store,
	limiter *appsession.Limiter,
	detector *appsession.Detector,
	activate *appuser.ActivateOnSessionUseCase,
	log logger.Interface,
) *SessionGuard {
	return &SessionGuard{
		store:    store,
		limiter:  limiter,
		detector: detector,
		activate: activate,
		logger:   log.Named("sessionguard"),
	}
}

// Track must run after RequireAuth so "user_id" and "session_id" are set.
func (g *SessionGuard) Track() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetString("session_id")
		userID, hasUser := userIDFromContext(c)
		if sessionID == "" || !hasUser {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		meta := &appsession.RequestMeta{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		payload := g.store.Read(ctx, sessionID)
		if !g.store.Write(ctx, sessionID, payload, meta) {
			// The record could not be refreshed; skip the rest of the
			// pipeline, it all keys off an up to date session row.
			c.Next()
			return
		}
		g.store.Bind(ctx, sessionID, userID)

		g.activate.Execute(ctx, userID)
		g.limiter.Enforce(ctx, userID, sessionID)
		g.detector.Inspect(ctx, userID, sessionID, meta.IPAddress, meta.UserAgent)

		c.Next()
	}
}

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	userID, ok := value.(uint)
	if !ok || userID == 0 {
		return 0, false
	}
	return userID, true
}
