// Package http wires the gin router: public widget verification, the
// authenticated domain surface, and the admin lifecycle endpoints.
package http

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	appsession "github.com/embedgate/embedgate/internal/application/session"
	appuser "github.com/embedgate/embedgate/internal/application/user"
	appwidget "github.com/embedgate/embedgate/internal/application/widgetdomain"
	"github.com/embedgate/embedgate/internal/infrastructure/auth"
	infraconfig "github.com/embedgate/embedgate/internal/infrastructure/config"
	"github.com/embedgate/embedgate/internal/infrastructure/ratelimit"
	"github.com/embedgate/embedgate/internal/infrastructure/repository"
	"github.com/embedgate/embedgate/internal/interfaces/http/handlers"
	"github.com/embedgate/embedgate/internal/interfaces/http/middleware"
	"github.com/embedgate/embedgate/internal/shared/logger"
	"github.com/embedgate/embedgate/internal/shared/utils"
)

// Router holds the configured gin engine and its handler set.
type Router struct {
	engine         *gin.Engine
	cfg            *infraconfig.Config
	widgetHandler  *handlers.WidgetHandler
	domainHandler  *handlers.DomainHandler
	userHandler    *handlers.UserHandler
	authMiddleware *middleware.AuthMiddleware
	sessionGuard   *middleware.SessionGuard
	rateLimiter    ratelimit.RateLimiter
	logger         logger.Interface
}

// NewRouter builds the full dependency graph from the database handle and
// configuration. The verifier is constructed per the configured widget
// mode; verdictCache may be nil when redis is disabled.
func NewRouter(
	db *gorm.DB,
	cfg *infraconfig.Config,
	verifier *appwidget.Verifier,
	verdictCache appwidget.VerdictInvalidator,
	rateLimiter ratelimit.RateLimiter,
	log logger.Interface,
) *Router {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	domainRepo := repository.NewWidgetDomainRepository(db)

	store := appsession.NewStore(sessionRepo, cfg.Session.Lifetime(), log)
	limiter := appsession.NewLimiter(sessionRepo, cfg.Session.MaxConcurrent, cfg.Session.Lifetime(), log)
	detector := appsession.NewDetector(sessionRepo, cfg.Session.SuspiciousWindow(), log)
	activateUC := appuser.NewActivateOnSessionUseCase(userRepo, log)
	suspendUC := appuser.NewSuspendUserUseCase(userRepo, log)
	registerUC := appwidget.NewRegisterDomainUseCase(domainRepo, log)
	adminUC := appwidget.NewAdminDomainUseCase(domainRepo, verdictCache, log)

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AccessExpMinutes)

	return &Router{
		engine:         gin.New(),
		cfg:            cfg,
		widgetHandler:  handlers.NewWidgetHandler(verifier, log),
		domainHandler:  handlers.NewDomainHandler(registerUC, adminUC, log),
		userHandler:    handlers.NewUserHandler(suspendUC, log),
		authMiddleware: middleware.NewAuthMiddleware(jwtService, log),
		sessionGuard:   middleware.NewSessionGuard(store, limiter, detector, activateUC, log),
		rateLimiter:    rateLimiter,
		logger:         log.Named("http"),
	}
}

// SetupRoutes registers middleware and all route groups.
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))

	r.engine.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api")

	// The widget endpoint is public; embedded pages have no credentials.
	api.GET("/widget/verify",
		middleware.VerifyRateLimit(r.rateLimiter, r.cfg.Widget.VerifyRatePerMinute, r.logger),
		r.widgetHandler.Verify,
	)

	authed := api.Group("")
	authed.Use(r.authMiddleware.RequireAuth())
	authed.Use(r.sessionGuard.Track())
	{
		authed.POST("/domains", r.domainHandler.Register)
	}

	admin := api.Group("/admin")
	admin.Use(r.authMiddleware.RequireAuth())
	admin.Use(r.sessionGuard.Track())
	{
		admin.POST("/users/:id/suspend", r.userHandler.Suspend)
		admin.POST("/users/:id/unsuspend", r.userHandler.Unsuspend)
		admin.POST("/domains/:id/activate", r.domainHandler.Activate)
		admin.POST("/domains/:id/deactivate", r.domainHandler.Deactivate)
		admin.POST("/domains/:id/verify", r.domainHandler.Verify)
	}
}

// GetEngine returns the underlying gin engine.
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
