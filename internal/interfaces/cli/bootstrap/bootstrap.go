// Package bootstrap loads configuration and opens the shared runtime used
// by every command.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/infrastructure/config"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/database"
	httpRouter "github.com/openhelpdesk/helpdesk/internal/interfaces/http"
	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

// Flags are the persistent flags shared by all commands.
type Flags struct {
	Env        string
	ConfigPath string
}

// Load reads the configuration and initializes logging and the business
// timezone. It does not touch the database.
func Load(flags Flags) (*config.Config, logger.Interface, error) {
	cfg, err := config.Load(flags.Env, flags.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = GinMode(flags.Env)

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	return cfg, logger.NewLogger(), nil
}

// Runtime is a fully wired application without a listening server.
type Runtime struct {
	Config    *config.Config
	Log       logger.Interface
	Container *httpRouter.Container
}

// Open loads the configuration, connects to the database and wires the
// container.
func Open(flags Flags) (*Runtime, error) {
	cfg, log, err := Load(flags)
	if err != nil {
		return nil, err
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	container, err := httpRouter.NewContainer(database.Get(), cfg, log)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to wire application: %w", err)
	}

	return &Runtime{Config: cfg, Log: log, Container: container}, nil
}

// Close releases the container, the database and flushes the logger.
func (r *Runtime) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r.Container.Shutdown(ctx)
	if err := database.Close(); err != nil {
		r.Log.Warnw("failed to close database", "error", err)
	}
	_ = logger.Sync()
}

// GinMode maps an environment name to a gin mode.
func GinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
