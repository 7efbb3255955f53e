package structure

import (
	"time"

	"github.com/shopspring/decimal"
)

type SalaryStructure struct {
	ID            int64                `gorm:"primaryKey"`
	OrgID         string               `gorm:"column:org_id;not null;index"`
	EmployeeID    string               `gorm:"column:employee_id;not null;index"`
	EffectiveFrom time.Time            `gorm:"column:effective_from;not null"`
	BasicSalary   decimal.Decimal      `gorm:"column:basic_salary;type:numeric(15,2);not null"`
	GrossSalary   decimal.Decimal      `gorm:"column:gross_salary;type:numeric(15,2);not null"`
	CTC           decimal.Decimal      `gorm:"column:ctc;type:numeric(15,2);not null"`
	Components    []StructureComponent `gorm:"foreignKey:StructureID"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (SalaryStructure) TableName() string {
	return "salary_structures"
}

type StructureComponent struct {
	ID            int64               `gorm:"primaryKey"`
	StructureID   int64               `gorm:"column:structure_id;not null;uniqueIndex:idx_structure_components_component"`
	ComponentID   int64               `gorm:"column:component_id;not null;uniqueIndex:idx_structure_components_component"`
	Position      int                 `gorm:"column:position;not null"`
	Enabled       bool                `gorm:"column:enabled;not null"`
	OverrideValue decimal.NullDecimal `gorm:"column:override_value;type:numeric(15,2)"`
}

func (StructureComponent) TableName() string {
	return "salary_structure_components"
}
