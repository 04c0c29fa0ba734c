package models

import (
	"time"
)

// Outbox task kinds.
const (
	TaskRegistrationConfirmation = "registration_confirmation"
	TaskInvoiceGeneration        = "invoice_generation"
)

// Outbox task states.
const (
	TaskPending = "pending"
	TaskDone    = "done"
	TaskFailed  = "failed"
)

// OutboxTask is a durable record of an invoice/email side effect. Tasks
// are inserted in the same transaction as the registration write that
// caused them and processed by the outbox worker, so a secondary failure
// can never block or undo the primary write, and a failed send is a
// visible row rather than a lost log line.
type OutboxTask struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Kind           string    `gorm:"not null;index" json:"kind"`
	RegistrationID uint      `gorm:"not null;index" json:"registration_id"`
	Payload        string    `json:"payload"`
	Status         string    `gorm:"not null;default:'pending';index" json:"status"`
	Attempts       int       `gorm:"not null;default:0" json:"attempts"`
	NextAttemptAt  time.Time `gorm:"not null;index" json:"next_attempt_at"`
	LastError      string    `json:"last_error"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for the OutboxTask model
func (OutboxTask) TableName() string {
	return "outbox_tasks"
}
