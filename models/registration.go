package models

import (
	"time"
)

// Payment status values for a course registration.
const (
	PaymentPaid              = "Paid"
	PaymentUnpaid            = "Unpaid"
	PaymentPartiallyRefunded = "Partially Refunded"
	PaymentRefunded          = "Refunded"
)

// Order status values for a course registration.
const (
	OrderCompleted  = "Completed"
	OrderIncomplete = "Incomplete"
	OrderCancelled  = "Cancelled"
)

// Payment methods accepted at checkout.
const (
	MethodCredit   = "credit"
	MethodBank     = "bank"
	MethodInvoice  = "invoice"
	MethodPurchase = "purchase"
)

// ValidPaymentStatus reports whether s is an accepted payment status.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPaid, PaymentUnpaid, PaymentPartiallyRefunded, PaymentRefunded:
		return true
	}
	return false
}

// ValidOrderStatus reports whether s is an accepted order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderCompleted, OrderIncomplete, OrderCancelled:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether s is an accepted payment method.
func ValidPaymentMethod(s string) bool {
	switch s {
	case MethodCredit, MethodBank, MethodInvoice, MethodPurchase:
		return true
	}
	return false
}

// CourseRegistration represents one course registration/purchase.
// DisplayNo is a stored monotonic sequence assigned inside the creation
// transaction, so list and detail reads never have to rank the whole table.
type CourseRegistration struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	DisplayNo uint `gorm:"not null;uniqueIndex" json:"display_no"`

	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"not null;index" json:"email"`
	Address string `gorm:"not null" json:"address"`
	City    string `gorm:"not null" json:"city"`
	Country string `gorm:"not null" json:"country"`

	Mobile         string `gorm:"not null" json:"mobile"`
	Phone          string `json:"phone"`
	MobileDialCode string `json:"mobile_dial_code"`
	PhoneDialCode  string `json:"phone_dial_code"`

	ScheduleID  *uint     `gorm:"index" json:"schedule_id"`
	Schedule    *Schedule `gorm:"foreignKey:ScheduleID" json:"schedule,omitempty"`
	CourseID    *uint     `gorm:"index" json:"course_id"`
	CourseTitle string    `json:"course_title"`

	Participants int     `gorm:"not null;default:1" json:"participants"`
	Total        float64 `gorm:"not null;default:0" json:"total"`

	PaymentMethod string `gorm:"not null" json:"payment_method"`
	PaymentStatus string `gorm:"not null;default:'Unpaid'" json:"payment_status"`
	OrderStatus   string `gorm:"not null;default:'Incomplete'" json:"order_status"`

	SubmittedAt time.Time `json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the CourseRegistration model
func (CourseRegistration) TableName() string {
	return "course_registrations"
}
