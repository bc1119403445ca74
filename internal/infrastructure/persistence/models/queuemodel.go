package models

import (
	"time"

	"github.com/openhelpdesk/helpdesk/internal/shared/constants"
)

// QueueModel flattens the mailbox settings into email_box_* columns.
type QueueModel struct {
	ID                    uint   `gorm:"primaryKey"`
	Title                 string `gorm:"size:100;not null"`
	Slug                  string `gorm:"size:50;not null;uniqueIndex"`
	EmailAddress          string `gorm:"size:254"`
	Locale                string `gorm:"size:10"`
	AllowPublicSubmission bool   `gorm:"not null;default:false"`
	AllowEmailSubmission  bool   `gorm:"not null;default:false;index"`
	EscalateDays          int    `gorm:"not null;default:0"`
	NewTicketCC           string `gorm:"column:new_ticket_cc;size:200"`
	UpdatedTicketCC       string `gorm:"column:updated_ticket_cc;size:200"`
	NotifyOnEmailEvents   bool   `gorm:"column:enable_notifications_on_email_events;not null;default:false"`
	EmailBoxType          string `gorm:"size:10"`
	EmailBoxHost          string `gorm:"size:200"`
	EmailBoxPort          int
	EmailBoxSSL           bool   `gorm:"column:email_box_ssl;not null;default:false"`
	EmailBoxUser          string `gorm:"size:200"`
	EmailBoxPass          string `gorm:"size:200"`
	EmailBoxIMAPFolder    string `gorm:"column:email_box_imap_folder;size:100"`
	EmailBoxLocalDir      string `gorm:"size:200"`
	EmailBoxInterval      int    `gorm:"not null;default:5"`
	EmailBoxLastCheck     *time.Time
	DefaultOwnerID        *uint
	DedicatedTimeSeconds  int64 `gorm:"not null;default:0"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (QueueModel) TableName() string {
	return constants.TableQueues
}
