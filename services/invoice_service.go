package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/summitworks/training-api/config"
	"github.com/summitworks/training-api/logger"
	"github.com/summitworks/training-api/middleware"
	"github.com/summitworks/training-api/models"
	"github.com/summitworks/training-api/utils"
)

// ErrInvoiceExists is returned when a registration already has an
// invoice. The unique index on course_registration_id is the arbiter;
// callers treat this as "already done", not as a failure.
var ErrInvoiceExists = errors.New("invoice already exists for registration")

// InvoiceParams is the input to invoice generation.
type InvoiceParams struct {
	CourseID             *uint
	ScheduleID           *uint
	CourseRegistrationID uint
	Amount               float64
	Email                string
	Name                 string
	CourseTitle          string
	Address              string
	City                 string
	Country              string
	Participants         int
	PaymentStatus        string
	SkipEmail            bool
}

// InvoiceResult is the outcome of invoice generation.
type InvoiceResult struct {
	InvoiceNo string
	PDFPath   string
	PDFURL    string
}

// InvoiceInterface defines the interface for invoice generation
type InvoiceInterface interface {
	CreateInvoice(params InvoiceParams) (*InvoiceResult, error)
}

// InvoiceService generates invoice records, PDF artifacts and invoice emails
type InvoiceService struct{}

var invoiceInstance InvoiceInterface

// InitInvoiceService initializes the invoice service
func InitInvoiceService() InvoiceInterface {
	invoiceInstance = &InvoiceService{}
	return invoiceInstance
}

// GetInvoiceService returns the invoice service instance
func GetInvoiceService() InvoiceInterface {
	return invoiceInstance
}

// SetInvoiceService sets the invoice service instance (primarily for testing)
func SetInvoiceService(s InvoiceInterface) {
	invoiceInstance = s
}

// CreateInvoice inserts the invoice record, renders the PDF artifact and,
// unless SkipEmail is set, emails it to the resolved billing address.
// The insert happens first so that the unique constraint on the
// registration id settles any race between concurrent attempts.
func (s *InvoiceService) CreateInvoice(params InvoiceParams) (*InvoiceResult, error) {
	db := config.GetDB()
	cfg := config.GetConfig()

	billing := resolveBilling(db, params)

	inv := models.Invoice{
		InvoiceNo:            newInvoiceNo(),
		CourseRegistrationID: params.CourseRegistrationID,
		CourseID:             params.CourseID,
		ScheduleID:           params.ScheduleID,
		Amount:               params.Amount,
		Participants:         params.Participants,
		Name:                 billing.Name,
		Email:                billing.Email,
		Address:              billing.Address,
		City:                 billing.City,
		Country:              billing.Country,
		CourseTitle:          params.CourseTitle,
		PaymentStatus:        params.PaymentStatus,
	}

	if err := db.Create(&inv).Error; err != nil {
		if isDuplicateKeyError(err) {
			return s.handleExisting(db, cfg, params)
		}
		middleware.RecordInvoiceFailure()
		return nil, fmt.Errorf("failed to create invoice record: %w", err)
	}

	if err := s.writeArtifact(db, cfg, &inv); err != nil {
		middleware.RecordInvoiceFailure()
		return nil, err
	}

	if !params.SkipEmail {
		s.emailInvoice(db, cfg, &inv)
	}

	middleware.RecordInvoiceGenerated()
	logger.Info("invoice generated",
		"invoice_no", inv.InvoiceNo,
		"registration_id", inv.CourseRegistrationID,
		"amount", inv.Amount)

	return &InvoiceResult{InvoiceNo: inv.InvoiceNo, PDFPath: inv.PDFPath, PDFURL: inv.PDFURL}, nil
}

// handleExisting resolves a duplicate insert: the registration already
// has an invoice. If its artifact went missing (an earlier attempt died
// between insert and render), regenerate it so retries converge.
func (s *InvoiceService) handleExisting(db *gorm.DB, cfg *config.Config, params InvoiceParams) (*InvoiceResult, error) {
	var existing models.Invoice
	if err := db.Where("course_registration_id = ?", params.CourseRegistrationID).First(&existing).Error; err != nil {
		return nil, fmt.Errorf("duplicate invoice insert but existing record not found: %w", err)
	}

	if !utils.FileExists(existing.PDFPath) {
		if err := s.writeArtifact(db, cfg, &existing); err != nil {
			logger.Warn("failed to regenerate invoice artifact",
				"invoice_no", existing.InvoiceNo, "error", err)
		}
	}

	return &InvoiceResult{InvoiceNo: existing.InvoiceNo, PDFPath: existing.PDFPath, PDFURL: existing.PDFURL}, ErrInvoiceExists
}

// writeArtifact renders the PDF, writes it to the invoice directory and
// records the local path plus the public URL on the invoice row.
func (s *InvoiceService) writeArtifact(db *gorm.DB, cfg *config.Config, inv *models.Invoice) error {
	pdfBytes, err := renderInvoicePDF(cfg, inv)
	if err != nil {
		return fmt.Errorf("failed to render invoice PDF: %w", err)
	}

	if err := utils.EnsureDir(cfg.InvoiceDir); err != nil {
		return err
	}

	filename := utils.SanitizeFilename(inv.InvoiceNo) + ".pdf"
	pdfPath := filepath.Join(cfg.InvoiceDir, filename)
	if err := os.WriteFile(pdfPath, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("failed to write invoice PDF: %w", err)
	}

	pdfURL := pdfPath
	if storage := GetStorageService(); storage != nil {
		url, err := storage.Put("invoices/"+filename, pdfBytes, "application/pdf")
		if err != nil {
			// Keep the local artifact; the URL just stays local.
			logger.Warn("failed to upload invoice artifact", "invoice_no", inv.InvoiceNo, "error", err)
		} else {
			pdfURL = url
		}
	} else if cfg.InvoiceBaseURL != "" {
		pdfURL = strings.TrimRight(cfg.InvoiceBaseURL, "/") + "/" + filename
	}

	inv.PDFPath = pdfPath
	inv.PDFURL = pdfURL
	if err := db.Model(inv).Updates(map[string]interface{}{
		"pdf_path": pdfPath,
		"pdf_url":  pdfURL,
	}).Error; err != nil {
		return fmt.Errorf("failed to record invoice artifact: %w", err)
	}
	return nil
}

// emailInvoice sends the invoice email. Delivery failure is advisory:
// logged, counted, and never surfaced to the caller.
func (s *InvoiceService) emailInvoice(db *gorm.DB, cfg *config.Config, inv *models.Invoice) {
	sender := GetEmailSender()
	if sender == nil {
		logger.Warn("no email sender configured, skipping invoice email", "invoice_no", inv.InvoiceNo)
		return
	}

	msg := InvoiceEmail(cfg, inv)
	if sender.Send(msg) {
		now := time.Now()
		if err := db.Model(inv).Update("emailed_at", now).Error; err != nil {
			logger.Warn("failed to record invoice email timestamp", "invoice_no", inv.InvoiceNo, "error", err)
		}
	}
}

// resolveBilling prefers the most recent APPROVED invoice request
// matching the registration's email and course over the registration's
// own contact fields.
func resolveBilling(db *gorm.DB, params InvoiceParams) InvoiceParams {
	query := db.Where("email = ? AND status = ?", params.Email, models.RequestApproved)
	if params.CourseID != nil {
		query = query.Where("course_id = ?", *params.CourseID)
	}

	var req models.InvoiceRequest
	if err := query.Order("created_at DESC").First(&req).Error; err != nil {
		return params
	}

	if req.BillingEmail != "" {
		params.Email = req.BillingEmail
	}
	if req.BillingName != "" {
		params.Name = req.BillingName
	}
	if req.BillingAddress != "" {
		params.Address = req.BillingAddress
	}
	if req.BillingCity != "" {
		params.City = req.BillingCity
	}
	if req.BillingCountry != "" {
		params.Country = req.BillingCountry
	}
	return params
}

func newInvoiceNo() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s", time.Now().Format("20060102"), suffix)
}

// isDuplicateKeyError detects unique-constraint violations across
// PostgreSQL and SQLite.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
