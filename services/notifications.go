package services

import (
	"fmt"
	"path/filepath"

	"github.com/summitworks/training-api/config"
	"github.com/summitworks/training-api/models"
	"github.com/summitworks/training-api/utils"
)

// ConfirmationEmail builds the registration confirmation message. The
// invoice PDF is attached only when its file actually exists at send time.
func ConfirmationEmail(cfg *config.Config, reg *models.CourseRegistration, pdfPath string) EmailMessage {
	course := reg.CourseTitle
	if course == "" {
		course = "your course"
	}

	var dates string
	if reg.Schedule != nil {
		dates = utils.FormatDateRange(reg.Schedule.StartDate, reg.Schedule.EndDate)
	}

	subject := fmt.Sprintf("Registration confirmed - %s", course)

	html := fmt.Sprintf(`<div style="font-family:Arial,sans-serif">
<h2>Thank you for your registration, %s!</h2>
<p>We have received your registration for <strong>%s</strong>.</p>
<table cellpadding="4">
<tr><td>Registration no:</td><td><strong>#%d</strong></td></tr>
<tr><td>Participants:</td><td>%d</td></tr>
<tr><td>Total:</td><td>%.2f</td></tr>`,
		reg.Name, course, reg.DisplayNo, reg.Participants, reg.Total)
	if dates != "" {
		html += fmt.Sprintf(`
<tr><td>Dates:</td><td>%s</td></tr>`, dates)
	}
	html += fmt.Sprintf(`
</table>
<p>If you have any questions, reply to this email or contact %s.</p>
<p>%s</p>
</div>`, cfg.SupportEmail, cfg.CompanyName)

	text := fmt.Sprintf("Thank you for your registration, %s!\n\n"+
		"We have received your registration for %s.\n\n"+
		"Registration no: #%d\nParticipants: %d\nTotal: %.2f\n",
		reg.Name, course, reg.DisplayNo, reg.Participants, reg.Total)
	if dates != "" {
		text += fmt.Sprintf("Dates: %s\n", dates)
	}
	text += fmt.Sprintf("\nQuestions? Contact %s.\n%s\n", cfg.SupportEmail, cfg.CompanyName)

	msg := EmailMessage{
		To:      reg.Email,
		Subject: subject,
		HTML:    html,
		Text:    text,
	}
	if utils.FileExists(pdfPath) {
		msg.Attachments = append(msg.Attachments, Attachment{
			Filename: filepath.Base(pdfPath),
			Path:     pdfPath,
		})
	}
	return msg
}

// InvoiceEmail builds the standalone invoice message sent when an
// invoice is generated after registration time.
func InvoiceEmail(cfg *config.Config, inv *models.Invoice) EmailMessage {
	course := inv.CourseTitle
	if course == "" {
		course = "your course"
	}

	subject := fmt.Sprintf("Invoice %s - %s", inv.InvoiceNo, course)

	html := fmt.Sprintf(`<div style="font-family:Arial,sans-serif">
<h2>Your invoice from %s</h2>
<p>Dear %s,</p>
<p>Please find attached invoice <strong>%s</strong> for %s.</p>
<table cellpadding="4">
<tr><td>Amount:</td><td><strong>%.2f</strong></td></tr>
<tr><td>Participants:</td><td>%d</td></tr>
<tr><td>Payment status:</td><td>%s</td></tr>
</table>
<p>If anything looks wrong, contact %s.</p>
</div>`, cfg.CompanyName, inv.Name, inv.InvoiceNo, course, inv.Amount, inv.Participants, inv.PaymentStatus, cfg.SupportEmail)

	text := fmt.Sprintf("Your invoice from %s\n\nDear %s,\n\n"+
		"Please find attached invoice %s for %s.\n\n"+
		"Amount: %.2f\nParticipants: %d\nPayment status: %s\n\n"+
		"If anything looks wrong, contact %s.\n",
		cfg.CompanyName, inv.Name, inv.InvoiceNo, course,
		inv.Amount, inv.Participants, inv.PaymentStatus, cfg.SupportEmail)

	msg := EmailMessage{
		To:      inv.Email,
		Subject: subject,
		HTML:    html,
		Text:    text,
	}
	if utils.FileExists(inv.PDFPath) {
		msg.Attachments = append(msg.Attachments, Attachment{
			Filename: filepath.Base(inv.PDFPath),
			Path:     inv.PDFPath,
		})
	}
	return msg
}
