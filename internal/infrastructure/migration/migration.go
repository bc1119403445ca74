package migration

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

const (
	StrategyGoose = "goose"
	StrategyAuto  = "auto"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks goose unless name asks for gorm AutoMigrate.
func NewManager(name string, log logger.Interface) *Manager {
	var strategy Strategy
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategyAuto:
		strategy = NewGormAutoMigrateStrategy(log)
	default:
		strategy = NewGooseStrategy(log)
	}
	return NewManagerWithStrategy(strategy, log)
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy, log logger.Interface) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   log.With("component", "migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db, AutoMigrateModels()...); err != nil {
		m.logger.Errorw("migration failed", "strategy", m.strategy.GetName(), "error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}
