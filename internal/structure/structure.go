package structure

import (
	"fmt"
	"time"

	"github.com/frahmantamala/payroll-management/internal"
	structureDatamodel "github.com/frahmantamala/payroll-management/internal/core/datamodel/structure"
	"github.com/shopspring/decimal"
)

// Component is one entry of an employee's salary structure.
type Component struct {
	ComponentID   int64            `json:"component_id"`
	Enabled       bool             `json:"enabled"`
	OverrideValue *decimal.Decimal `json:"override_value,omitempty"`
}

type EmployeeSalaryStructure struct {
	ID            int64           `json:"id"`
	OrgID         string          `json:"org_id"`
	EmployeeID    string          `json:"employee_id"`
	EffectiveFrom time.Time       `json:"effective_from"`
	BasicSalary   decimal.Decimal `json:"basic_salary"`
	GrossSalary   decimal.Decimal `json:"gross_salary"`
	CTC           decimal.Decimal `json:"ctc"`
	Components    []Component     `json:"components"`
}

func NewStructure(orgID, employeeID string, effectiveFrom time.Time, basic, gross, ctc decimal.Decimal, components []Component) (*EmployeeSalaryStructure, error) {
	s := &EmployeeSalaryStructure{
		OrgID:         orgID,
		EmployeeID:    employeeID,
		EffectiveFrom: effectiveFrom,
		BasicSalary:   basic,
		GrossSalary:   gross,
		CTC:           ctc,
		Components:    components,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the structure's own invariants: an owner, non-negative
// bases and unique component ids.
func (s *EmployeeSalaryStructure) Validate() error {
	if s.EmployeeID == "" {
		return invalidStructure("employee id is required")
	}
	if s.BasicSalary.IsNegative() || s.GrossSalary.IsNegative() || s.CTC.IsNegative() {
		return invalidStructure(fmt.Sprintf("structure of %s has a negative base amount", s.EmployeeID))
	}
	seen := make(map[int64]struct{}, len(s.Components))
	for _, c := range s.Components {
		if _, dup := seen[c.ComponentID]; dup {
			return invalidStructure(fmt.Sprintf("structure of %s lists component %d twice", s.EmployeeID, c.ComponentID))
		}
		seen[c.ComponentID] = struct{}{}
	}
	return nil
}

func invalidStructure(msg string) *internal.AppError {
	err := internal.NewConfigError(msg, nil)
	err.Code = internal.ErrCodeInvalidStruct
	return err
}

func ToDataModel(s *EmployeeSalaryStructure) *structureDatamodel.SalaryStructure {
	row := &structureDatamodel.SalaryStructure{
		ID:            s.ID,
		OrgID:         s.OrgID,
		EmployeeID:    s.EmployeeID,
		EffectiveFrom: s.EffectiveFrom,
		BasicSalary:   s.BasicSalary,
		GrossSalary:   s.GrossSalary,
		CTC:           s.CTC,
		Components:    make([]structureDatamodel.StructureComponent, len(s.Components)),
	}
	for i, c := range s.Components {
		comp := structureDatamodel.StructureComponent{
			StructureID: s.ID,
			ComponentID: c.ComponentID,
			Position:    i,
			Enabled:     c.Enabled,
		}
		if c.OverrideValue != nil {
			comp.OverrideValue = decimal.NewNullDecimal(*c.OverrideValue)
		}
		row.Components[i] = comp
	}
	return row
}

func FromDataModel(row *structureDatamodel.SalaryStructure) *EmployeeSalaryStructure {
	s := &EmployeeSalaryStructure{
		ID:            row.ID,
		OrgID:         row.OrgID,
		EmployeeID:    row.EmployeeID,
		EffectiveFrom: row.EffectiveFrom,
		BasicSalary:   row.BasicSalary,
		GrossSalary:   row.GrossSalary,
		CTC:           row.CTC,
		Components:    make([]Component, len(row.Components)),
	}
	for i, c := range row.Components {
		comp := Component{ComponentID: c.ComponentID, Enabled: c.Enabled}
		if c.OverrideValue.Valid {
			v := c.OverrideValue.Decimal
			comp.OverrideValue = &v
		}
		s.Components[i] = comp
	}
	return s
}
