// Package slip produces salary slips for approved payroll records. Slips are
// generated off the approval path, driven by salary.approved events.
package slip

import (
	"context"
	"time"

	"github.com/frahmantamala/payroll-management/internal/payroll"
	"github.com/frahmantamala/payroll-management/internal/template"
	"github.com/shopspring/decimal"
)

type Line struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type Slip struct {
	SalaryID             int64           `json:"salary_id"`
	OrgID                string          `json:"org_id"`
	EmployeeID           string          `json:"employee_id"`
	Period               string          `json:"period"`
	PresentDays          int             `json:"present_days"`
	TotalDays            int             `json:"total_days"`
	Earnings             []Line          `json:"earnings"`
	Deductions           []Line          `json:"deductions"`
	GrossEarnings        decimal.Decimal `json:"gross_earnings"`
	TotalDeductions      decimal.Decimal `json:"total_deductions"`
	NetSalary            decimal.Decimal `json:"net_salary"`
	EmployerContribution decimal.Decimal `json:"employer_contribution"`
	ApprovedBy           string          `json:"approved_by"`
	ApprovedAt           time.Time       `json:"approved_at"`
}

// FromSalary builds the slip of an approved salary. Employer lines are not
// itemised on the slip; only their total is shown.
func FromSalary(s *payroll.CalculatedSalary) *Slip {
	out := &Slip{
		SalaryID:             s.ID,
		OrgID:                s.OrgID,
		EmployeeID:           s.EmployeeID,
		Period:               s.Period.String(),
		PresentDays:          s.PresentDays,
		TotalDays:            s.TotalDays,
		Earnings:             []Line{},
		Deductions:           []Line{},
		GrossEarnings:        s.GrossEarnings,
		TotalDeductions:      s.TotalDeductions,
		NetSalary:            s.NetSalary,
		EmployerContribution: s.EmployerContribution,
	}
	for _, l := range s.Lines {
		line := Line{Code: l.Code, Name: l.Name, Amount: l.Amount}
		if l.Category == string(template.CategoryDeduction) {
			out.Deductions = append(out.Deductions, line)
		} else {
			out.Earnings = append(out.Earnings, line)
		}
	}
	if s.ApprovedBy != nil {
		out.ApprovedBy = *s.ApprovedBy
	}
	if s.ApprovedAt != nil {
		out.ApprovedAt = *s.ApprovedAt
	}
	return out
}

// Generator renders or hands off one slip and returns a reference to it:
// a file path or the remote service's document id.
type Generator interface {
	Generate(ctx context.Context, s *Slip) (string, error)
}
