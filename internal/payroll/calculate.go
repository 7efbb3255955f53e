package payroll

import (
	"fmt"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/internal/attendance"
	"github.com/frahmantamala/payroll-management/internal/core/period"
	"github.com/frahmantamala/payroll-management/internal/engine"
	"github.com/frahmantamala/payroll-management/internal/structure"
	"github.com/frahmantamala/payroll-management/internal/template"
	"github.com/shopspring/decimal"
)

// Compute evaluates every enabled component of st for one period. It reads
// no clock and touches no storage, so identical inputs give identical records.
func Compute(org internal.OrgContext, p period.Period, st *structure.EmployeeSalaryStructure, summary *attendance.Summary, registry *template.Registry) (*CalculatedSalary, error) {
	plan, err := structure.Resolve(st, registry)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, internal.NewNotFoundError(fmt.Sprintf("no attendance summary for employee %s in %s", st.EmployeeID, p), internal.ErrCodeAttendanceNotFound)
	}

	att := &engine.Attendance{PresentDays: summary.PresentDays, TotalDays: summary.TotalDays}
	salary := &CalculatedSalary{
		OrgID:                org.OrgID,
		EmployeeID:           st.EmployeeID,
		Period:               p,
		GrossEarnings:        decimal.Zero,
		TotalDeductions:      decimal.Zero,
		EmployerContribution: decimal.Zero,
		PresentDays:          summary.PresentDays,
		TotalDays:            summary.TotalDays,
		Lines:                []Line{},
		EmployerLines:        []Line{},
		Status:               StatusPending,
	}

	for _, entry := range plan.Enabled() {
		t := entry.Template
		res, err := engine.Evaluate(t, engine.Context{
			BasicSalary: st.BasicSalary,
			GrossSalary: st.GrossSalary,
			CTC:         st.CTC,
			Attendance:  att,
			Override:    entry.EffectiveValue,
		})
		if err != nil {
			return nil, err
		}

		line := Line{TemplateID: t.ID, Code: t.Code, Name: t.Name, Category: string(t.Category), Amount: res.Amount}
		switch t.Category {
		case template.CategoryEarning:
			salary.GrossEarnings = salary.GrossEarnings.Add(res.Amount)
			salary.Lines = append(salary.Lines, line)
		case template.CategoryDeduction:
			salary.TotalDeductions = salary.TotalDeductions.Add(res.Amount)
			salary.Lines = append(salary.Lines, line)
		case template.CategoryEmployerContribution:
			salary.EmployerContribution = salary.EmployerContribution.Add(res.Amount)
			salary.EmployerLines = append(salary.EmployerLines, line)
		}

		if res.HasEmployerContribution {
			salary.EmployerContribution = salary.EmployerContribution.Add(res.EmployerAmount)
			salary.EmployerLines = append(salary.EmployerLines, Line{
				TemplateID: t.ID,
				Code:       t.Code,
				Name:       t.Name,
				Category:   string(template.CategoryEmployerContribution),
				Amount:     res.EmployerAmount,
			})
		}
	}

	salary.NetSalary = salary.GrossEarnings.Sub(salary.TotalDeductions)
	return salary, nil
}
