package models

import (
	"time"
)

// Schedule represents a dated, priced run of a Program at a venue.
// The order workflow only ever reads schedules; it never mutates them.
type Schedule struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProgramID uint      `gorm:"not null;index" json:"program_id"`
	Program   Program   `gorm:"foreignKey:ProgramID" json:"program"`
	Venue     string    `gorm:"not null" json:"venue"`
	City      string    `gorm:"index" json:"city"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	Fee       float64   `gorm:"not null" json:"fee"`
	Seats     int       `gorm:"not null;default:0" json:"seats"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Schedule model
func (Schedule) TableName() string {
	return "schedules"
}
