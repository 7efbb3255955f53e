package structure

import (
	"fmt"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/internal/template"
	"github.com/shopspring/decimal"
)

type PlanEntry struct {
	Template *template.Template
	Enabled  bool
	// EffectiveValue is the override handed to the FIXED_AMOUNT path; nil otherwise.
	EffectiveValue *decimal.Decimal
}

type Plan struct {
	EmployeeID string
	Entries    []PlanEntry
}

// Enabled returns the entries that take part in calculation, in structure order.
func (p Plan) Enabled() []PlanEntry {
	out := make([]PlanEntry, 0, len(p.Entries))
	for _, e := range p.Entries {
		if e.Enabled {
			out = append(out, e)
		}
	}
	return out
}

// Resolve merges a structure with a registry snapshot. Components whose
// template is inactive are left out; an enabled component pointing at a
// template the registry does not know is a NotFoundError.
func Resolve(s *EmployeeSalaryStructure, registry *template.Registry) (Plan, error) {
	if s == nil {
		return Plan{}, internal.ErrStructureNotFound
	}
	if err := s.Validate(); err != nil {
		return Plan{}, err
	}

	plan := Plan{EmployeeID: s.EmployeeID, Entries: make([]PlanEntry, 0, len(s.Components))}
	for _, c := range s.Components {
		t, ok := registry.Lookup(c.ComponentID)
		if !ok {
			if !c.Enabled {
				continue
			}
			return Plan{}, internal.NewNotFoundError(
				fmt.Sprintf("template %d referenced by the structure of %s does not exist", c.ComponentID, s.EmployeeID),
				internal.ErrCodeTemplateNotFound,
			)
		}
		if !t.IsActive {
			continue
		}

		entry := PlanEntry{Template: t, Enabled: c.Enabled}
		if c.OverrideValue != nil && t.CalculationMethod() == template.MethodFixedAmount {
			v := *c.OverrideValue
			entry.EffectiveValue = &v
		}
		plan.Entries = append(plan.Entries, entry)
	}
	return plan, nil
}
