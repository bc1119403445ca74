package migration

import (
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists every persisted model. The goose scripts must
// create the same tables and columns.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.UserModel{},
		&models.UserSettingsModel{},
		&models.RememberTokenModel{},
		&models.PasswordResetTokenModel{},
		&models.QueueModel{},
		&models.TicketModel{},
		&models.FollowUpModel{},
		&models.TicketChangeModel{},
		&models.AttachmentModel{},
		&models.CCModel{},
		&models.KBCategoryModel{},
		&models.KBItemModel{},
		&models.KBItemVoteModel{},
	}
}
