// Package migrate implements the `embedgate migrate` command group.
package migrate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/embedgate/embedgate/internal/infrastructure/config"
	"github.com/embedgate/embedgate/internal/infrastructure/database"
	"github.com/embedgate/embedgate/internal/infrastructure/migration"
	"github.com/embedgate/embedgate/internal/shared/logger"
)

var (
	env       string
	sourceDir string
	downSteps int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVar(&sourceDir, "source", "internal/infrastructure/persistence/migrations", "Migration source directory")

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migration.Migrator) error {
				if err := m.Up(); err != nil {
					return fmt.Errorf("migration up failed: %w", err)
				}
				fmt.Println("migrations applied")
				return nil
			})
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migration.Migrator) error {
				if err := m.Down(downSteps); err != nil {
					return fmt.Errorf("migration down failed: %w", err)
				}
				fmt.Printf("rolled back %d migration(s)\n", downSteps)
				return nil
			})
		},
	}
	downCmd.Flags().IntVar(&downSteps, "steps", 1, "Number of migrations to roll back")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migration.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return fmt.Errorf("failed to read migration version: %w", err)
				}
				fmt.Printf("version: %d dirty: %v\n", version, dirty)
				return nil
			})
		},
	}

	cmd.AddCommand(upCmd, downCmd, statusCmd)
	return cmd
}

func withMigrator(fn func(*migration.Migrator) error) error {
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

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	migrator, err := migration.New(database.Get(), sourceDir)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	return fn(migrator)
}
