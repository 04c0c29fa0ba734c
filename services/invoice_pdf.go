package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/summitworks/training-api/config"
	"github.com/summitworks/training-api/models"
	"github.com/summitworks/training-api/utils"
)

// renderInvoicePDF lays out a single-page A4 invoice and returns the
// document bytes.
func renderInvoicePDF(cfg *config.Config, inv *models.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Invoice %s", inv.InvoiceNo), false)
	pdf.AddPage()

	// Company header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(120, 10, cfg.CompanyName)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "INVOICE", "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(90, 90, 90)
	if cfg.CompanyAddress != "" {
		pdf.Cell(0, 5, cfg.CompanyAddress)
		pdf.Ln(5)
	}
	if cfg.SupportEmail != "" {
		pdf.Cell(0, 5, cfg.SupportEmail)
		pdf.Ln(5)
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	// Invoice metadata
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(30, 6, "Invoice No:")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(60, 6, inv.InvoiceNo)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(30, 6, "Date:")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, utils.FormatDate(inv.CreatedAt), "", 1, "", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(30, 6, "Status:")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, inv.PaymentStatus, "", 1, "", false, 0, "")
	pdf.Ln(6)

	// Bill-to block
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Billed To")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{inv.Name, inv.Email, inv.Address, inv.City, inv.Country} {
		if line == "" {
			continue
		}
		pdf.Cell(0, 5, line)
		pdf.Ln(5)
	}
	pdf.Ln(8)

	// Line item table
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(100, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Participants", "1", 0, "C", true, 0, "")
	pdf.CellFormat(50, 8, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	description := inv.CourseTitle
	if description == "" {
		description = "Course registration"
	}
	pdf.CellFormat(100, 8, description, "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%d", inv.Participants), "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 8, fmt.Sprintf("%.2f", inv.Amount), "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(130, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(50, 8, fmt.Sprintf("%.2f", inv.Amount), "1", 1, "R", false, 0, "")
	pdf.Ln(10)

	// Footer
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(90, 90, 90)
	footer := fmt.Sprintf("Questions? Contact %s", cfg.SupportEmail)
	if cfg.SupportPhone != "" {
		footer += fmt.Sprintf(" or call %s", cfg.SupportPhone)
	}
	pdf.Cell(0, 5, footer)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
