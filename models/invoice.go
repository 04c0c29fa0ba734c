package models

import (
	"time"
)

// Invoice is the billing artifact generated for a registration. The
// unique index on CourseRegistrationID is what enforces at most one
// invoice per registration: a duplicate insert fails instead of
// relying on a racy lookup beforehand.
type Invoice struct {
	ID                   uint   `gorm:"primaryKey" json:"id"`
	InvoiceNo            string `gorm:"not null;uniqueIndex" json:"invoice_no"`
	CourseRegistrationID uint   `gorm:"not null;uniqueIndex" json:"course_registration_id"`
	CourseID             *uint  `json:"course_id"`
	ScheduleID           *uint  `json:"schedule_id"`

	Amount       float64 `gorm:"not null" json:"amount"`
	Participants int     `gorm:"not null;default:1" json:"participants"`

	// Billing snapshot taken at generation time
	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"not null" json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`

	CourseTitle   string `json:"course_title"`
	PaymentStatus string `json:"payment_status"`

	PDFPath string `json:"pdf_path"`
	PDFURL  string `json:"pdf_url"`

	EmailedAt *time.Time `json:"emailed_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// Invoice request review states.
const (
	RequestPending  = "PENDING"
	RequestApproved = "APPROVED"
	RequestRejected = "REJECTED"
)

// InvoiceRequest captures alternate billing details submitted by a
// customer. An APPROVED request matching a registration's email and
// course takes precedence over the registration's own contact fields
// when an invoice is generated.
type InvoiceRequest struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Email    string `gorm:"not null;index" json:"email"`
	CourseID *uint  `gorm:"index" json:"course_id"`

	BillingName    string `json:"billing_name"`
	BillingEmail   string `gorm:"not null" json:"billing_email"`
	BillingAddress string `json:"billing_address"`
	BillingCity    string `json:"billing_city"`
	BillingCountry string `json:"billing_country"`

	Status    string    `gorm:"not null;default:'PENDING'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the InvoiceRequest model
func (InvoiceRequest) TableName() string {
	return "invoice_requests"
}
