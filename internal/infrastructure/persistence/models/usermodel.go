package models

import "time"

// UserModel represents the database persistence model for users.
// This is the anti-corruption layer between domain and database.
type UserModel struct {
	ID          uint   `gorm:"primarykey"`
	Email       string `gorm:"uniqueIndex;not null;size:255"`
	Name        string `gorm:"not null;size:100"`
	IsSuspended bool   `gorm:"not null;default:false;index"`
	Status      string `gorm:"not null;default:pending;size:20;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (UserModel) TableName() string {
	return "users"
}
