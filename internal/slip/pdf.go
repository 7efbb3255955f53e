package slip

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// PDFGenerator writes slips as PDF files under a directory.
type PDFGenerator struct {
	outputDir string
	logger    *slog.Logger
}

func NewPDFGenerator(outputDir string, logger *slog.Logger) *PDFGenerator {
	return &PDFGenerator{outputDir: outputDir, logger: logger}
}

func (g *PDFGenerator) Generate(ctx context.Context, s *Slip) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create slip directory: %w", err)
	}

	path := filepath.Join(g.outputDir, fmt.Sprintf("slip-%s-%s.pdf", s.EmployeeID, s.Period))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create slip file: %w", err)
	}
	defer f.Close()

	if err := Render(f, s); err != nil {
		return "", err
	}

	g.logger.Info("slip written", "salary_id", s.SalaryID, "employee_id", s.EmployeeID, "path", path)
	return path, nil
}

// Render writes s as a one page A4 PDF.
func Render(w io.Writer, s *Slip) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Salary slip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", s.EmployeeID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", s.Period))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Attendance: %d of %d days", s.PresentDays, s.TotalDays))
	pdf.Ln(10)

	section := func(title string, lines []Line) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, title)
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		for _, l := range lines {
			pdf.CellFormat(120, 7, l.Name, "", 0, "L", false, 0, "")
			pdf.CellFormat(50, 7, l.Amount.StringFixed(2), "", 1, "R", false, 0, "")
		}
		pdf.Ln(3)
	}
	section("Earnings", s.Earnings)
	section("Deductions", s.Deductions)

	pdf.SetFont("Helvetica", "B", 12)
	totals := []struct {
		label string
		value string
	}{
		{"Gross earnings", s.GrossEarnings.StringFixed(2)},
		{"Total deductions", s.TotalDeductions.StringFixed(2)},
		{"Net salary", s.NetSalary.StringFixed(2)},
	}
	for _, t := range totals {
		pdf.CellFormat(120, 8, t.label, "T", 0, "L", false, 0, "")
		pdf.CellFormat(50, 8, t.value, "T", 1, "R", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Employer contribution (not deducted): %s", s.EmployerContribution.StringFixed(2)))
	if s.ApprovedBy != "" {
		pdf.Ln(5)
		pdf.Cell(0, 6, fmt.Sprintf("Approved by %s on %s", s.ApprovedBy, s.ApprovedAt.Format("2006-01-02")))
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render slip: %w", err)
	}
	return nil
}
