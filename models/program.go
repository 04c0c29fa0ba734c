package models

import (
	"time"
)

// Program represents a course offered by the training provider.
type Program struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Slug      string    `gorm:"not null;uniqueIndex" json:"slug"`
	Summary   string    `json:"summary"`
	Category  string    `gorm:"index" json:"category"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Program model
func (Program) TableName() string {
	return "programs"
}
