package migration

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

//go:embed scripts
var embeddedScripts embed.FS

// Strategy defines the interface for different migration strategies
type Strategy interface {
	// Migrate executes the migration strategy
	Migrate(db *gorm.DB, models ...interface{}) error
	// GetName returns the strategy name
	GetName() string
}

// GormAutoMigrateStrategy lets gorm create and alter tables from the models.
// Handy for local sqlite databases; production schemas go through goose.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy(log logger.Interface) Strategy {
	return &GormAutoMigrateStrategy{logger: log.With("component", "migration.auto")}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB, models ...interface{}) error {
	if len(models) == 0 {
		models = AutoMigrateModels()
	}
	s.logger.Infow("starting gorm auto migration", "models_count", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}

// GooseStrategy runs the versioned SQL scripts embedded in the binary. The
// script directory is picked from the gorm dialect.
type GooseStrategy struct {
	scripts fs.FS
	logger  logger.Interface
}

func NewGooseStrategy(log logger.Interface) *GooseStrategy {
	return &GooseStrategy{
		scripts: embeddedScripts,
		logger:  log.With("component", "migration.goose"),
	}
}

func (s *GooseStrategy) GetName() string {
	return "goose"
}

func (s *GooseStrategy) Migrate(db *gorm.DB, _ ...interface{}) error {
	sqlDB, dir, err := s.prepare(db)
	if err != nil {
		return err
	}

	currentVersion, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		s.logger.Errorw("failed to get current version", "error", err)
		return fmt.Errorf("failed to get current version: %w", err)
	}

	s.logger.Infow("current migration status", "version", currentVersion, "dir", dir)

	if err := goose.Up(sqlDB, dir); err != nil {
		s.logger.Errorw("migration failed", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	finalVersion, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to get final version: %w", err)
	}

	s.logger.Infow("migration completed successfully",
		"from_version", currentVersion,
		"to_version", finalVersion)

	return nil
}

func (s *GooseStrategy) MigrateDown(db *gorm.DB, steps int) error {
	sqlDB, dir, err := s.prepare(db)
	if err != nil {
		return err
	}

	s.logger.Infow("starting down migration", "steps", steps)
	for i := 0; i < steps; i++ {
		if err := goose.Down(sqlDB, dir); err != nil {
			s.logger.Errorw("down migration failed", "error", err)
			return fmt.Errorf("failed to run down migration: %w", err)
		}
	}

	s.logger.Infow("down migration completed successfully")
	return nil
}

func (s *GooseStrategy) GetVersion(db *gorm.DB) (int64, error) {
	sqlDB, _, err := s.prepare(db)
	if err != nil {
		return 0, err
	}

	version, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

func (s *GooseStrategy) Status(db *gorm.DB) error {
	sqlDB, dir, err := s.prepare(db)
	if err != nil {
		return err
	}

	if err := goose.Status(sqlDB, dir); err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	return nil
}

// Create writes a new, empty SQL migration into dir on disk.
func Create(dir, name string) error {
	goose.SetBaseFS(nil)
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}
	return nil
}

func (s *GooseStrategy) prepare(db *gorm.DB) (*sql.DB, string, error) {
	dialect, dir, err := dialectFor(db.Dialector.Name())
	if err != nil {
		return nil, "", err
	}

	goose.SetBaseFS(s.scripts)
	if err := goose.SetDialect(dialect); err != nil {
		return nil, "", fmt.Errorf("failed to set goose dialect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB, dir, nil
}

func dialectFor(gormDialect string) (string, string, error) {
	switch gormDialect {
	case "mysql":
		return "mysql", "scripts/mysql", nil
	case "sqlite", "sqlite3":
		return "sqlite3", "scripts/sqlite", nil
	default:
		return "", "", fmt.Errorf("no migration scripts for dialect %q", gormDialect)
	}
}
