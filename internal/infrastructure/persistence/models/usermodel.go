package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/openhelpdesk/helpdesk/internal/shared/constants"
)

// UserModel represents the database persistence model for users
type UserModel struct {
	ID           uint   `gorm:"primarykey"`
	Username     string `gorm:"uniqueIndex;not null;size:150"`
	Email        string `gorm:"not null;size:254;index"`
	FirstName    string `gorm:"size:150"`
	LastName     string `gorm:"size:150"`
	PasswordHash string `gorm:"size:255"`
	IsStaff      bool   `gorm:"not null;default:false"`
	IsSuperuser  bool   `gorm:"not null;default:false"`
	IsActive     bool   `gorm:"not null;default:true"`
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM
func (UserModel) TableName() string {
	return constants.TableUsers
}

// UserSettingsModel stores the preferences as one JSON document.
type UserSettingsModel struct {
	UserID      uint           `gorm:"primaryKey;autoIncrement:false"`
	Preferences datatypes.JSON `gorm:"not null"`
	UpdatedAt   time.Time
}

func (UserSettingsModel) TableName() string {
	return constants.TableUserSettings
}

type RememberTokenModel struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index:idx_remember_user_hash"`
	TokenHash string `gorm:"size:64;not null;index:idx_remember_user_hash"`
	UserAgent string `gorm:"size:300"`
	CreatedAt time.Time
	LastUsed  time.Time
}

func (RememberTokenModel) TableName() string {
	return constants.TableRememberTokens
}

type PasswordResetTokenModel struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index"`
	TokenHash string `gorm:"size:64;not null;uniqueIndex"`
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (PasswordResetTokenModel) TableName() string {
	return constants.TablePasswordResetTokens
}
