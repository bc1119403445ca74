package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

func openMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// The SQL scripts and the gorm models describe the same schema.
func TestGooseScriptsMatchModels(t *testing.T) {
	db := openMemoryDB(t)
	manager := NewManager(StrategyGoose, logger.NewNopLogger())
	require.NoError(t, manager.Migrate(db))

	for _, model := range AutoMigrateModels() {
		stmt := &gorm.Statement{DB: db}
		require.NoError(t, stmt.Parse(model))
		require.True(t, db.Migrator().HasTable(model), "missing table %s", stmt.Schema.Table)

		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" {
				continue
			}
			assert.True(t, db.Migrator().HasColumn(model, field.DBName),
				"table %s lacks column %s", stmt.Schema.Table, field.DBName)
		}
	}
}

func TestGooseDownAndVersion(t *testing.T) {
	db := openMemoryDB(t)
	strategy := NewGooseStrategy(logger.NewNopLogger())
	require.NoError(t, strategy.Migrate(db))

	version, err := strategy.GetVersion(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, strategy.MigrateDown(db, 1))
	assert.False(t, db.Migrator().HasTable("tickets"))
}

func TestAutoMigrateStrategy(t *testing.T) {
	db := openMemoryDB(t)
	manager := NewManager(StrategyAuto, logger.NewNopLogger())
	assert.Equal(t, "gorm_auto_migrate", manager.GetStrategy().GetName())
	require.NoError(t, manager.Migrate(db))
	assert.True(t, db.Migrator().HasTable("followup_attachments"))
}

func TestDialectFor(t *testing.T) {
	_, dir, err := dialectFor("mysql")
	require.NoError(t, err)
	assert.Equal(t, "scripts/mysql", dir)

	_, _, err = dialectFor("postgres")
	assert.Error(t, err)
}
