package payroll

import (
	"fmt"
	"time"

	"github.com/frahmantamala/payroll-management/internal"
	payrollDatamodel "github.com/frahmantamala/payroll-management/internal/core/datamodel/payroll"
	"github.com/frahmantamala/payroll-management/internal/core/period"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

var transitions = map[Status][]Status{
	StatusPending: {StatusApproved, StatusRejected},
}

// CanTransition reports whether a record in from may move to to.
// APPROVED and REJECTED are terminal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Line is one evaluated component of a salary.
type Line struct {
	TemplateID int64           `json:"template_id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
}

type CalculatedSalary struct {
	ID                   int64           `json:"id,omitempty"`
	OrgID                string          `json:"org_id"`
	EmployeeID           string          `json:"employee_id" validate:"required"`
	Period               period.Period   `json:"period"`
	GrossEarnings        decimal.Decimal `json:"gross_earnings"`
	TotalDeductions      decimal.Decimal `json:"total_deductions"`
	NetSalary            decimal.Decimal `json:"net_salary"`
	EmployerContribution decimal.Decimal `json:"employer_contribution"`
	PresentDays          int             `json:"present_days"`
	TotalDays            int             `json:"total_days"`
	Lines                []Line          `json:"lines"`
	EmployerLines        []Line          `json:"employer_lines"`
	Status               Status          `json:"status"`
	ApprovedBy           *string         `json:"approved_by,omitempty"`
	ApprovedAt           *time.Time      `json:"approved_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at,omitempty"`
}

// Key identifies the record for uniqueness purposes.
func (s *CalculatedSalary) Key() string {
	return fmt.Sprintf("%s|%s", s.EmployeeID, s.Period)
}

// Validate checks what persistence relies on, including the net invariant.
func (s *CalculatedSalary) Validate() error {
	if s.EmployeeID == "" {
		return internal.NewValidationFieldError("employee_id", "employee id is required", internal.ErrCodeInvalidID)
	}
	if err := s.Period.Validate(); err != nil {
		return err
	}
	if !s.NetSalary.Equal(s.GrossEarnings.Sub(s.TotalDeductions)) {
		return internal.NewValidationFieldError("net_salary",
			fmt.Sprintf("net salary %s of %s does not equal gross %s minus deductions %s",
				s.NetSalary, s.EmployeeID, s.GrossEarnings, s.TotalDeductions),
			internal.ErrCodeValidationFailed)
	}
	return nil
}

func ToDataModel(s *CalculatedSalary) *payrollDatamodel.CalculatedSalary {
	return &payrollDatamodel.CalculatedSalary{
		ID:                   s.ID,
		OrgID:                s.OrgID,
		EmployeeID:           s.EmployeeID,
		PeriodYear:           s.Period.Year,
		PeriodMonth:          s.Period.Month,
		GrossEarnings:        s.GrossEarnings,
		TotalDeductions:      s.TotalDeductions,
		NetSalary:            s.NetSalary,
		EmployerContribution: s.EmployerContribution,
		PresentDays:          s.PresentDays,
		TotalDays:            s.TotalDays,
		Lines:                linesToDataModel(s.Lines),
		EmployerLines:        linesToDataModel(s.EmployerLines),
		Status:               string(s.Status),
		ApprovedBy:           s.ApprovedBy,
		ApprovedAt:           s.ApprovedAt,
		CreatedAt:            s.CreatedAt,
	}
}

func FromDataModel(row *payrollDatamodel.CalculatedSalary) *CalculatedSalary {
	return &CalculatedSalary{
		ID:                   row.ID,
		OrgID:                row.OrgID,
		EmployeeID:           row.EmployeeID,
		Period:               period.Period{Month: row.PeriodMonth, Year: row.PeriodYear},
		GrossEarnings:        row.GrossEarnings,
		TotalDeductions:      row.TotalDeductions,
		NetSalary:            row.NetSalary,
		EmployerContribution: row.EmployerContribution,
		PresentDays:          row.PresentDays,
		TotalDays:            row.TotalDays,
		Lines:                linesFromDataModel(row.Lines),
		EmployerLines:        linesFromDataModel(row.EmployerLines),
		Status:               Status(row.Status),
		ApprovedBy:           row.ApprovedBy,
		ApprovedAt:           row.ApprovedAt,
		CreatedAt:            row.CreatedAt,
	}
}

func linesToDataModel(lines []Line) []payrollDatamodel.Line {
	out := make([]payrollDatamodel.Line, len(lines))
	for i, l := range lines {
		out[i] = payrollDatamodel.Line(l)
	}
	return out
}

func linesFromDataModel(lines []payrollDatamodel.Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Line(l)
	}
	return out
}
