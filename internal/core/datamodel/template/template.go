package template

import (
	"time"

	"github.com/shopspring/decimal"
)

type PayrollTemplate struct {
	ID                   int64                 `gorm:"primaryKey"`
	OrgID                string                `gorm:"column:org_id;not null;uniqueIndex:idx_payroll_templates_org_code"`
	Code                 string                `gorm:"column:code;not null;uniqueIndex:idx_payroll_templates_org_code"`
	Name                 string                `gorm:"column:name;not null"`
	Category             string                `gorm:"column:category;not null"`
	CalculationMethod    string                `gorm:"column:calculation_method;not null"`
	MethodConfig         MethodConfig          `gorm:"column:method_config;type:text;serializer:json"`
	IsAttendanceBased    bool                  `gorm:"column:is_attendance_based;not null"`
	CeilingEnabled       bool                  `gorm:"column:ceiling_enabled;not null"`
	CeilingAmount        decimal.Decimal       `gorm:"column:ceiling_amount;type:numeric(15,2)"`
	MinThresholdEnabled  bool                  `gorm:"column:min_threshold_enabled;not null"`
	MinThresholdAmount   decimal.Decimal       `gorm:"column:min_threshold_amount;type:numeric(15,2)"`
	EmployerContribution *EmployerContribution `gorm:"column:employer_contribution;type:text;serializer:json"`
	IsActive             bool                  `gorm:"column:is_active;not null"`
	CreatedAt            time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (PayrollTemplate) TableName() string {
	return "payroll_templates"
}

// MethodConfig is the stored shape of a template's calculation method.
// Only the fields of the declared method are expected to be set; the domain
// layer decides whether the combination is usable.
type MethodConfig struct {
	CalculateOn string           `json:"calculate_on,omitempty"`
	Percentage  *decimal.Decimal `json:"percentage,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Manual      bool             `json:"manual,omitempty"`
	Slabs       []Slab           `json:"slabs,omitempty"`
	Expression  string           `json:"expression,omitempty"`
}

type Slab struct {
	From   decimal.Decimal  `json:"from"`
	To     *decimal.Decimal `json:"to,omitempty"`
	Rate   *decimal.Decimal `json:"rate,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

type EmployerContribution struct {
	CalculateOn string           `json:"calculate_on"`
	Percentage  *decimal.Decimal `json:"percentage,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}
