// Package receipt renders payment receipts as PDF files.
package receipt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/aguacoop/aguacoop/internal/payment"
)

const dateLayout = "02/01/2006"

type Renderer struct {
	dir    string
	issuer string
}

// NewRenderer writes receipts into dir under the heading issuer.
func NewRenderer(dir, issuer string) *Renderer {
	return &Renderer{dir: dir, issuer: issuer}
}

// FileName is the name of the receipt file of a payment.
func FileName(p *payment.Payment) string {
	return fmt.Sprintf("receipt-%s.pdf", p.ID)
}

func (r *Renderer) Render(ctx context.Context, p *payment.Payment) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating receipt directory: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle("Receipt "+p.ID.String(), true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(r.issuer), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, "Payment receipt", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	field(pdf, "Payment", p.ID.String())
	field(pdf, "Date", p.PaidAt.Format(dateLayout+" 15:04"))
	field(pdf, "Amount paid", p.AmountPaid.StringFixed(2))
	pdf.Ln(4)

	for _, l := range p.Lines {
		v := l.Voucher

		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 236, 245)
		pdf.CellFormat(0, 7, tr(fmt.Sprintf("%s - %s", l.MemberName, l.Address)), "1", 1, "L", true, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		row(pdf, "Meter", v.MeterID.String())
		row(pdf, "Issued", v.IssueDate.Format(dateLayout))
		row(pdf, "Due", v.DueDate.Format(dateLayout))
		row(pdf, "Basic charge", v.BasicAmount.StringFixed(2))
		row(pdf, "Excess charge", v.ExcessAmount.StringFixed(2))
		row(pdf, "Late fee", v.AccruedLateFee.StringFixed(2))

		pdf.SetFont("Helvetica", "B", 9)
		row(pdf, "Subtotal", v.TotalDue.StringFixed(2))
		pdf.Ln(3)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(130, 8, "TOTAL", "T", 0, "R", false, 0, "")
	pdf.CellFormat(0, 8, p.AmountPaid.StringFixed(2), "T", 1, "R", false, 0, "")

	path := filepath.Join(r.dir, FileName(p))

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("writing receipt: %w", err)
	}

	return path, nil
}

func field(pdf *fpdf.Fpdf, label, value string) {
	pdf.CellFormat(35, 6, label+":", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func row(pdf *fpdf.Fpdf, label, value string) {
	pdf.CellFormat(130, 6, label, "LR", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, value, "R", 1, "R", false, 0, "")
}
