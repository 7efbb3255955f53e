package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculatedSalary is one persisted payroll record. At most one row exists
// per (employee_id, period_year, period_month).
type CalculatedSalary struct {
	ID                   int64           `gorm:"primaryKey"`
	OrgID                string          `gorm:"column:org_id;not null;index:idx_calculated_salaries_org_period"`
	EmployeeID           string          `gorm:"column:employee_id;not null;uniqueIndex:idx_calculated_salaries_employee_period"`
	PeriodYear           int             `gorm:"column:period_year;not null;uniqueIndex:idx_calculated_salaries_employee_period;index:idx_calculated_salaries_org_period"`
	PeriodMonth          int             `gorm:"column:period_month;not null;uniqueIndex:idx_calculated_salaries_employee_period;index:idx_calculated_salaries_org_period"`
	GrossEarnings        decimal.Decimal `gorm:"column:gross_earnings;type:numeric(15,2);not null"`
	TotalDeductions      decimal.Decimal `gorm:"column:total_deductions;type:numeric(15,2);not null"`
	NetSalary            decimal.Decimal `gorm:"column:net_salary;type:numeric(15,2);not null"`
	EmployerContribution decimal.Decimal `gorm:"column:employer_contribution;type:numeric(15,2);not null"`
	PresentDays          int             `gorm:"column:present_days;not null"`
	TotalDays            int             `gorm:"column:total_days;not null"`
	Lines                []Line          `gorm:"column:lines;type:text;serializer:json"`
	EmployerLines        []Line          `gorm:"column:employer_lines;type:text;serializer:json"`
	Status               string          `gorm:"column:status;not null;index"`
	ApprovedBy           *string         `gorm:"column:approved_by"`
	ApprovedAt           *time.Time      `gorm:"column:approved_at"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (CalculatedSalary) TableName() string {
	return "calculated_salaries"
}

type Line struct {
	TemplateID int64           `json:"template_id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
}
