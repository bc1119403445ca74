package http

import (
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/domain/kb"
	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/repository"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	userRepo       user.Repository
	settingsRepo   user.SettingsRepository
	rememberRepo   user.RememberTokenRepository
	resetTokenRepo user.PasswordResetTokenRepository
	queueRepo      queue.Repository
	ticketRepo     ticket.TicketRepository
	followUpRepo   ticket.FollowUpRepository
	attachmentRepo ticket.AttachmentRepository
	ccRepo         ticket.CCRepository
	kbCategoryRepo kb.CategoryRepository
	kbItemRepo     kb.ItemRepository
}

func newRepositories(db *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		userRepo:       repository.NewUserRepository(db, log),
		settingsRepo:   repository.NewUserSettingsRepository(db),
		rememberRepo:   repository.NewRememberTokenRepository(db),
		resetTokenRepo: repository.NewPasswordResetTokenRepository(db),
		queueRepo:      repository.NewQueueRepository(db),
		ticketRepo:     repository.NewTicketRepository(db),
		followUpRepo:   repository.NewFollowUpRepository(db),
		attachmentRepo: repository.NewAttachmentRepository(db),
		ccRepo:         repository.NewCCRepository(db),
		kbCategoryRepo: repository.NewKBCategoryRepository(db),
		kbItemRepo:     repository.NewKBItemRepository(db),
	}
}
