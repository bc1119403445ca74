package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(
		&models.QueueModel{},
		&models.TicketModel{},
		&models.FollowUpModel{},
		&models.TicketChangeModel{},
		&models.AttachmentModel{},
		&models.CCModel{},
		&models.KBCategoryModel{},
		&models.KBItemModel{},
		&models.KBItemVoteModel{},
		&models.UserModel{},
		&models.UserSettingsModel{},
		&models.RememberTokenModel{},
		&models.PasswordResetTokenModel{},
	))
	return database
}

func ptr[T any](v T) *T {
	return &v
}
