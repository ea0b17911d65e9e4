// Package server implements the `embedgate server` command.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	appsession "github.com/embedgate/embedgate/internal/application/session"
	appuser "github.com/embedgate/embedgate/internal/application/user"
	appwidget "github.com/embedgate/embedgate/internal/application/widgetdomain"
	"github.com/embedgate/embedgate/internal/infrastructure/cache"
	"github.com/embedgate/embedgate/internal/infrastructure/config"
	"github.com/embedgate/embedgate/internal/infrastructure/database"
	"github.com/embedgate/embedgate/internal/infrastructure/ratelimit"
	"github.com/embedgate/embedgate/internal/infrastructure/repository"
	"github.com/embedgate/embedgate/internal/infrastructure/scheduler"
	httpRouter "github.com/embedgate/embedgate/internal/interfaces/http"
	"github.com/embedgate/embedgate/internal/shared/biztime"
	"github.com/embedgate/embedgate/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the embedgate HTTP server with the session lifecycle engine, the reconciliation scheduler, and the widget verification endpoint.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	biztime.MustInit("UTC")

	log := logger.NewLogger()
	log.Infow("starting server", "environment", env)

	gin.SetMode(mapEnvToGinMode(env))
	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	db := database.Get()

	var (
		verdictCache *cache.DomainVerdictCache
		rateLimiter  ratelimit.RateLimiter
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warnw("redis unavailable, verdict cache and rate limiting disabled", "error", err)
		} else {
			defer redisClient.Close()
			if cfg.Widget.CacheTTLSeconds > 0 {
				verdictCache = cache.NewDomainVerdictCache(redisClient, "embedgate", cfg.Widget.CacheTTL())
			}
			if cfg.Widget.VerifyRatePerMinute > 0 {
				rateLimiter = ratelimit.NewRedisRateLimiter(redisClient)
			}
		}
	}

	verifier, err := buildVerifier(cfg, verdictCache, log)
	if err != nil {
		return err
	}

	var invalidator appwidget.VerdictInvalidator
	if verdictCache != nil {
		invalidator = verdictCache
	}

	router := httpRouter.NewRouter(db, cfg, verifier, invalidator, rateLimiter, log)
	router.SetupRoutes()

	manager, err := scheduler.NewManager(log)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	reconciler := appuser.NewReconciler(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		cfg.Session,
		log,
	)
	if err := manager.RegisterReconciliationJob(reconciler, 5*time.Minute); err != nil {
		return fmt.Errorf("failed to register reconciliation job: %w", err)
	}

	store := appsession.NewStore(repository.NewSessionRepository(db), cfg.Session.Lifetime(), log)
	if err := manager.RegisterSessionGCJob(store, time.Hour, cfg.Session.Lifetime()); err != nil {
		return fmt.Errorf("failed to register session gc job: %w", err)
	}

	manager.Start()
	defer func() {
		if err := manager.Stop(); err != nil {
			log.Errorw("failed to stop scheduler", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server listening", "address", cfg.Server.GetAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced server shutdown: %w", err)
	}

	log.Infow("server stopped")
	return nil
}

func buildVerifier(cfg *config.Config, verdictCache *cache.DomainVerdictCache, log logger.Interface) (*appwidget.Verifier, error) {
	switch cfg.Widget.Mode {
	case "direct", "":
		var vc appwidget.VerdictCache
		if verdictCache != nil {
			vc = verdictCache
		}
		return appwidget.NewDirectVerifier(repository.NewWidgetDomainRepository(database.Get()), vc, log), nil
	case "remote":
		if cfg.Widget.RemoteURL == "" {
			return nil, fmt.Errorf("widget.remote_url is required in remote mode")
		}
		return appwidget.NewRemoteVerifier(cfg.Widget.RemoteURL, cfg.Widget.Timeout(), log), nil
	default:
		return nil, fmt.Errorf("unknown widget mode %q", cfg.Widget.Mode)
	}
}

func mapEnvToGinMode(env string) string {
	switch env {
	case "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
