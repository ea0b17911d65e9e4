package models

import (
	"time"

	"gorm.io/datatypes"
)

// SessionModel represents the database persistence model for sessions.
type SessionModel struct {
	ID           string `gorm:"primarykey;size:64"`
	UserID       *uint  `gorm:"index"`
	IPAddress    string `gorm:"size:45"`
	UserAgent    string `gorm:"size:512"`
	Payload      string `gorm:"type:text"`
	LastActivity int64  `gorm:"not null;index"`
	IsActive     bool   `gorm:"not null;default:true;index"`
	ExpiresAt    *time.Time
	Fingerprint  *string           `gorm:"size:128"`
	DeviceInfo   datatypes.JSONMap `gorm:"type:json"`
	CreatedAt    time.Time
}

// TableName specifies the table name for GORM
func (SessionModel) TableName() string {
	return "sessions"
}
