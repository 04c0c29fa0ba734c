package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/summitworks/training-api/config"
	"github.com/summitworks/training-api/logger"
	"github.com/summitworks/training-api/models"
	"github.com/summitworks/training-api/services"
)

const (
	defaultInterval  = 15 * time.Second
	defaultBatchSize = 10
	maxAttempts      = 5
	backoffBase      = 30 * time.Second
)

// Enqueue writes an outbox task. Callers pass the transaction that
// carries the registration write, so the task and the write commit or
// roll back together.
func Enqueue(tx *gorm.DB, kind string, registrationID uint) error {
	task := models.OutboxTask{
		Kind:           kind,
		RegistrationID: registrationID,
		Status:         models.TaskPending,
		NextAttemptAt:  time.Now(),
	}
	if err := tx.Create(&task).Error; err != nil {
		return fmt.Errorf("failed to enqueue %s task: %w", kind, err)
	}
	return nil
}

// OutboxWorker processes invoice/email outbox tasks in the background.
// Every handler is idempotent: the invoice unique constraint settles
// duplicate invoice attempts, so a task can be retried safely.
type OutboxWorker struct {
	interval  time.Duration
	batchSize int
}

// NewOutboxWorker creates a worker with default interval and batch size.
func NewOutboxWorker() *OutboxWorker {
	return &OutboxWorker{
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
	}
}

// Start runs the worker loop until the context is cancelled.
func (w *OutboxWorker) Start(ctx context.Context) {
	logger.Info("starting outbox worker", "interval", w.interval.String())
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("outbox worker stopped")
			return
		case <-ticker.C:
			if err := w.ProcessBatch(); err != nil {
				logger.Error("outbox batch processing failed", "error", err)
			}
		}
	}
}

// ProcessBatch claims and runs the next batch of due pending tasks.
func (w *OutboxWorker) ProcessBatch() error {
	db := config.GetDB()

	var tasks []models.OutboxTask
	if err := db.Where("status = ? AND next_attempt_at <= ?", models.TaskPending, time.Now()).
		Order("next_attempt_at ASC").
		Limit(w.batchSize).
		Find(&tasks).Error; err != nil {
		return fmt.Errorf("failed to fetch pending tasks: %w", err)
	}

	for _, task := range tasks {
		w.runTask(db, task)
	}
	return nil
}

// runTask executes one task and records the outcome: done on success,
// a delayed retry on failure, failed once attempts are exhausted.
func (w *OutboxWorker) runTask(db *gorm.DB, task models.OutboxTask) {
	var err error
	switch task.Kind {
	case models.TaskRegistrationConfirmation:
		err = w.handleConfirmation(db, task)
	case models.TaskInvoiceGeneration:
		err = w.handleInvoiceGeneration(db, task)
	default:
		err = fmt.Errorf("unknown task kind %q", task.Kind)
	}

	if err == nil {
		if dbErr := db.Model(&task).Updates(map[string]interface{}{
			"status":     models.TaskDone,
			"attempts":   task.Attempts + 1,
			"last_error": "",
		}).Error; dbErr != nil {
			logger.Error("failed to mark task done", "task_id", task.ID, "error", dbErr)
		}
		return
	}

	attempts := task.Attempts + 1
	updates := map[string]interface{}{
		"attempts":   attempts,
		"last_error": err.Error(),
	}
	if attempts >= maxAttempts {
		updates["status"] = models.TaskFailed
		logger.Error("outbox task failed permanently",
			"task_id", task.ID, "kind", task.Kind,
			"registration_id", task.RegistrationID, "error", err)
	} else {
		// Exponential backoff: 30s, 60s, 120s, ...
		delay := backoffBase << (attempts - 1)
		updates["next_attempt_at"] = time.Now().Add(delay)
		logger.Warn("outbox task will retry",
			"task_id", task.ID, "kind", task.Kind,
			"attempt", attempts, "error", err)
	}
	if dbErr := db.Model(&task).Updates(updates).Error; dbErr != nil {
		logger.Error("failed to record task outcome", "task_id", task.ID, "error", dbErr)
	}
}

// handleConfirmation sends the registration confirmation email. When the
// registration was created already settled (Paid + Completed), an invoice
// is generated first with its email suppressed so the customer gets one
// combined message with the PDF attached.
func (w *OutboxWorker) handleConfirmation(db *gorm.DB, task models.OutboxTask) error {
	var reg models.CourseRegistration
	if err := db.Preload("Schedule").Preload("Schedule.Program").
		First(&reg, task.RegistrationID).Error; err != nil {
		return fmt.Errorf("failed to load registration %d: %w", task.RegistrationID, err)
	}

	cfg := config.GetConfig()

	var pdfPath string
	if reg.PaymentStatus == models.PaymentPaid && reg.OrderStatus == models.OrderCompleted {
		result, err := services.GetInvoiceService().CreateInvoice(invoiceParamsFor(&reg, true))
		switch {
		case err == nil:
			pdfPath = result.PDFPath
		case errors.Is(err, services.ErrInvoiceExists):
			if result != nil {
				pdfPath = result.PDFPath
			}
		default:
			return fmt.Errorf("invoice generation failed: %w", err)
		}
	}

	sender := services.GetEmailSender()
	if sender == nil {
		return errors.New("no email sender configured")
	}
	if !sender.Send(services.ConfirmationEmail(cfg, &reg, pdfPath)) {
		return errors.New("confirmation email was not accepted by provider")
	}
	return nil
}

// handleInvoiceGeneration generates the invoice triggered by a status
// change. The amount is recomputed from the schedule fee at processing
// time, not taken from the registration's stored total.
func (w *OutboxWorker) handleInvoiceGeneration(db *gorm.DB, task models.OutboxTask) error {
	var reg models.CourseRegistration
	if err := db.Preload("Schedule").Preload("Schedule.Program").
		First(&reg, task.RegistrationID).Error; err != nil {
		return fmt.Errorf("failed to load registration %d: %w", task.RegistrationID, err)
	}

	if !strings.EqualFold(reg.PaymentStatus, models.PaymentPaid) {
		logger.Info("skipping invoice task, registration no longer paid",
			"registration_id", reg.ID, "payment_status", reg.PaymentStatus)
		return nil
	}

	_, err := services.GetInvoiceService().CreateInvoice(invoiceParamsFor(&reg, false))
	if errors.Is(err, services.ErrInvoiceExists) {
		return nil
	}
	return err
}

// invoiceParamsFor assembles invoice parameters from the registration's
// current state.
func invoiceParamsFor(reg *models.CourseRegistration, skipEmail bool) services.InvoiceParams {
	participants := reg.Participants
	if participants < 1 {
		participants = 1
	}

	amount := reg.Total
	if reg.Schedule != nil {
		amount = reg.Schedule.Fee * float64(participants)
	}

	return services.InvoiceParams{
		CourseID:             reg.CourseID,
		ScheduleID:           reg.ScheduleID,
		CourseRegistrationID: reg.ID,
		Amount:               amount,
		Email:                reg.Email,
		Name:                 reg.Name,
		CourseTitle:          reg.CourseTitle,
		Address:              reg.Address,
		City:                 reg.City,
		Country:              reg.Country,
		Participants:         participants,
		PaymentStatus:        reg.PaymentStatus,
		SkipEmail:            skipEmail,
	}
}
