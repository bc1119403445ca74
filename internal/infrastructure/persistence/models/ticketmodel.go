package models

import (
	"time"

	"github.com/openhelpdesk/helpdesk/internal/shared/constants"
)

type TicketModel struct {
	ID             uint   `gorm:"primaryKey"`
	QueueID        uint   `gorm:"not null;index"`
	Title          string `gorm:"size:200;not null"`
	Description    string `gorm:"type:text"`
	Status         string `gorm:"size:30;not null;index"`
	SubmitterEmail string `gorm:"size:254;index"`
	AssignedTo     *uint  `gorm:"index"`
	Priority       int    `gorm:"not null;default:3"`
	DueDate        *time.Time
	SecretKey      string `gorm:"size:36;not null"`
	OnHold         bool   `gorm:"not null;default:false"`
	Resolution     string `gorm:"type:text"`
	MergedTo       *uint  `gorm:"index"`
	KBItemID       *uint  `gorm:"column:kbitem_id"`
	LastEscalation *time.Time
	CreatedAt      time.Time `gorm:"not null;index"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (TicketModel) TableName() string {
	return constants.TableTickets
}

type FollowUpModel struct {
	ID               uint      `gorm:"primaryKey"`
	TicketID         uint      `gorm:"not null;index"`
	UserID           *uint     `gorm:"index"`
	Title            string    `gorm:"size:200"`
	Comment          string    `gorm:"type:text"`
	Public           bool      `gorm:"not null;default:false"`
	NewStatus        string    `gorm:"size:30"`
	TimeSpentSeconds int64     `gorm:"not null;default:0"`
	Date             time.Time `gorm:"not null;index"`
	LastEdited       *time.Time
}

func (FollowUpModel) TableName() string {
	return constants.TableFollowUps
}

type TicketChangeModel struct {
	ID         uint   `gorm:"primaryKey"`
	FollowUpID uint   `gorm:"column:followup_id;not null;index"`
	Field      string `gorm:"size:100;not null"`
	OldValue   string `gorm:"type:text"`
	NewValue   string `gorm:"type:text"`
}

func (TicketChangeModel) TableName() string {
	return constants.TableTicketChanges
}

type AttachmentModel struct {
	ID         uint   `gorm:"primaryKey"`
	FollowUpID uint   `gorm:"column:followup_id;not null;index"`
	Filename   string `gorm:"size:255;not null"`
	MimeType   string `gorm:"size:255"`
	Size       int64  `gorm:"not null"`
	Path       string `gorm:"size:1000;not null"`
	CreatedAt  time.Time
}

func (AttachmentModel) TableName() string {
	return constants.TableAttachments
}

type CCModel struct {
	ID        uint   `gorm:"primaryKey"`
	TicketID  uint   `gorm:"not null;index"`
	UserID    *uint  `gorm:"index"`
	Email     string `gorm:"size:254"`
	CanView   bool   `gorm:"not null;default:false"`
	CanUpdate bool   `gorm:"not null;default:false"`
}

func (CCModel) TableName() string {
	return constants.TableTicketCCs
}
