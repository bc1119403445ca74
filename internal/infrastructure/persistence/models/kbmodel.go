package models

import (
	"time"

	"github.com/openhelpdesk/helpdesk/internal/shared/constants"
)

type KBCategoryModel struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	Title       string `gorm:"size:100;not null"`
	Slug        string `gorm:"size:50;not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	QueueID     *uint
	Public      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (KBCategoryModel) TableName() string {
	return constants.TableKBCategories
}

type KBItemModel struct {
	ID                  uint   `gorm:"primaryKey"`
	CategoryID          uint   `gorm:"not null;index"`
	Title               string `gorm:"size:100;not null"`
	Question            string `gorm:"type:text;not null"`
	Answer              string `gorm:"type:text;not null"`
	Votes               int    `gorm:"not null;default:0"`
	Recommendations     int    `gorm:"not null;default:0"`
	LastUpdated         time.Time
	Order               int    `gorm:"column:item_order;not null;default:0"`
	Enabled             bool   `gorm:"not null;default:true"`
	Team                string `gorm:"size:100"`
	AllowTicketCreation bool   `gorm:"not null;default:false"`
}

func (KBItemModel) TableName() string {
	return constants.TableKBItems
}

// KBItemVoteModel holds both voter sets. The primary key keeps a user in
// at most one of them per item.
type KBItemVoteModel struct {
	ItemID    uint   `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint   `gorm:"primaryKey;autoIncrement:false;index"`
	Direction string `gorm:"size:4;not null"`
}

func (KBItemVoteModel) TableName() string {
	return constants.TableKBItemVotes
}
