package models

import (
	"time"
)

// Enquiry represents a message sent through the public contact form.
type Enquiry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Email       string    `gorm:"not null" json:"email"`
	Phone       string    `json:"phone"`
	CourseTitle string    `json:"course_title"`
	Message     string    `gorm:"not null" json:"message"`
	Status      string    `gorm:"not null;default:'new'" json:"status"` // new, in_progress, closed
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Enquiry model
func (Enquiry) TableName() string {
	return "enquiries"
}
