package models

import "time"

// WidgetDomainModel represents the database persistence model for domain
// authorization records, keyed by normalized hostname.
type WidgetDomainModel struct {
	ID         uint   `gorm:"primarykey"`
	Name       string `gorm:"uniqueIndex;not null;size:255"`
	UserID     *uint  `gorm:"index"`
	IsActive   bool   `gorm:"not null;default:false;index"`
	Status     string `gorm:"not null;default:pending;size:20"`
	IsVerified bool   `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for GORM
func (WidgetDomainModel) TableName() string {
	return "widget_domains"
}
