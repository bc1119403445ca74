package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/openhelpdesk/helpdesk/internal/infrastructure/database"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/migration"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/openhelpdesk/helpdesk/internal/interfaces/http"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
	"github.com/openhelpdesk/helpdesk/internal/shared/version"
)

var (
	autoMigrate        bool
	migrationStrategy  string
	skipMigrationCheck bool
)

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the helpdesk HTTP server together with the mailbox poller and the escalation job.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(*flags)
		},
	}

	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Automatically run database migrations on startup")
	cmd.Flags().StringVar(&migrationStrategy, "migration-strategy", migration.StrategyGoose, "Strategy used by --auto-migrate (goose, auto)")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip migration status check on startup")

	return cmd
}

func run(flags bootstrap.Flags) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		flags.Env = envVar
	}

	cfg, log, err := bootstrap.Load(flags)
	if err != nil {
		return err
	}
	defer logger.Sync()

	log.Infow("starting server",
		"environment", flags.Env,
		"version", version.Current,
		"auto_migrate", autoMigrate)
	if !version.IsRelease(version.Current) && cfg.Server.Mode == "release" {
		log.Warnw("running a development build in release mode", "version", version.Current)
	}

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if err := handleMigrations(flags.Env, log); err != nil {
		return fmt.Errorf("migration handling failed: %w", err)
	}

	container, err := httpRouter.NewContainer(database.Get(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to wire application: %w", err)
	}
	container.SetupRoutes()
	container.StartScheduler()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      container.Engine(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("server starting", "address", cfg.Server.GetAddr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infow("shutting down server", "signal", sig.String())
	case err := <-serveErr:
		log.Errorw("server failed", "error", err)
		container.Shutdown(context.Background())
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Running jobs finish before the listener closes.
	container.Shutdown(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func handleMigrations(environment string, log logger.Interface) error {
	if skipMigrationCheck {
		log.Infow("skipping migration check")
		return nil
	}

	if autoMigrate {
		if environment == "production" {
			log.Warnw("auto-migration is enabled in production environment")
		}
		manager := migration.NewManager(migrationStrategy, log)
		return manager.Migrate(database.Get())
	}

	version, err := migration.NewGooseStrategy(log).GetVersion(database.Get())
	if err != nil {
		log.Warnw("failed to check migration status", "error", err)
		return nil
	}
	log.Infow("current migration version", "version", version)
	return nil
}
