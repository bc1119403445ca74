package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openhelpdesk/helpdesk/internal/infrastructure/database"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/migration"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/cli/bootstrap"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

var (
	name  string
	dir   string
	steps int
)

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, checking status, and creating new migration files.`,
	}

	cmd.AddCommand(
		newUpCommand(flags),
		newDownCommand(flags),
		newStatusCommand(flags),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply all pending database migrations to bring the database schema up to date.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(*flags)
		},
	}
}

func newDownCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		Long:  `Rollback a specified number of database migrations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDown(*flags)
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the current migration version and status of the database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(*flags)
		},
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		Long:  `Create a new empty SQL migration file in the given scripts directory.`,
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	cmd.Flags().StringVar(&dir, "dir", "./internal/infrastructure/migration/scripts/mysql", "Directory to write the migration into")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func initEnv(flags bootstrap.Flags) (logger.Interface, error) {
	cfg, log, err := bootstrap.Load(flags)
	if err != nil {
		return nil, err
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return log, nil
}

func runUp(flags bootstrap.Flags) error {
	log, err := initEnv(flags)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	log.Infow("running up migrations", "environment", flags.Env)

	if err := migration.NewGooseStrategy(log).Migrate(database.Get()); err != nil {
		log.Errorw("migration failed", "error", err)
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Infow("migrations completed successfully")
	return nil
}

func runDown(flags bootstrap.Flags) error {
	log, err := initEnv(flags)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	log.Infow("running down migrations", "environment", flags.Env, "steps", steps)

	if err := migration.NewGooseStrategy(log).MigrateDown(database.Get(), steps); err != nil {
		log.Errorw("down migration failed", "error", err)
		return fmt.Errorf("down migration failed: %w", err)
	}

	log.Infow("down migration completed successfully")
	return nil
}

func runStatus(flags bootstrap.Flags) error {
	log, err := initEnv(flags)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	strategy := migration.NewGooseStrategy(log)

	version, err := strategy.GetVersion(database.Get())
	if err != nil {
		log.Errorw("failed to get migration version", "error", err)
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Printf("\nMigration Status:\n")
	fmt.Printf("  Environment:     %s\n", flags.Env)
	fmt.Printf("  Current Version: %d\n", version)

	if err := strategy.Status(database.Get()); err != nil {
		log.Errorw("failed to get detailed status", "error", err)
		return fmt.Errorf("failed to get detailed status: %w", err)
	}
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	if err := migration.Create(dir, name); err != nil {
		return err
	}
	fmt.Printf("Migration '%s' created in %s\n", name, dir)
	return nil
}
