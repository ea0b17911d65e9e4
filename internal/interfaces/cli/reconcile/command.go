// Package reconcile implements the `embedgate reconcile` command: a
// single status reconciliation pass runnable from cron or by hand.
package reconcile

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	appuser "github.com/embedgate/embedgate/internal/application/user"
	"github.com/embedgate/embedgate/internal/infrastructure/config"
	"github.com/embedgate/embedgate/internal/infrastructure/database"
	"github.com/embedgate/embedgate/internal/infrastructure/repository"
	"github.com/embedgate/embedgate/internal/shared/biztime"
	"github.com/embedgate/embedgate/internal/shared/logger"
)

var (
	env     string
	force   bool
	verbose bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run a status reconciliation pass",
		Long:  `Run one pass of the user status reconciliation engine: expire stale sessions, repair suspension drift, and align user statuses with recent session activity.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&force, "force", false, "Rewrite statuses even when they already match")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print per-user drift details")

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

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	db := database.Get()
	log := logger.NewLogger()

	reconciler := appuser.NewReconciler(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		cfg.Session,
		log,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := reconciler.Run(ctx, appuser.ReconcileOptions{
		Force:   force,
		Verbose: verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "reconciliation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("suspended status repaired: %d\n", report.SuspendedStatusRepaired)
	fmt.Printf("suspended flag repaired:   %d\n", report.SuspendedFlagRepaired)
	fmt.Printf("sessions expired:          %d\n", report.SessionsExpired)
	fmt.Printf("active users:              %d\n", report.ActiveUserCount)
	fmt.Printf("promoted:                  %d\n", report.Promoted)
	fmt.Printf("demoted:                   %d\n", report.Demoted)

	if verbose {
		if len(report.DriftedActiveIDs) > 0 {
			fmt.Printf("drifted active ids:        %v\n", report.DriftedActiveIDs)
		}
		if len(report.SuspendedIDs) > 0 {
			fmt.Printf("suspended ids:             %v\n", report.SuspendedIDs)
		}
	}

	return nil
}
