package template

import (
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/payroll-management/internal"
	templateDatamodel "github.com/frahmantamala/payroll-management/internal/core/datamodel/template"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryEarning              Category = "EARNING"
	CategoryDeduction            Category = "DEDUCTION"
	CategoryEmployerContribution Category = "EMPLOYER_CONTRIBUTION"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryEarning, CategoryDeduction, CategoryEmployerContribution:
		return true
	}
	return false
}

// Clamp is a ceiling or minimum threshold applied after proration.
type Clamp struct {
	Enabled bool            `json:"enabled"`
	Amount  decimal.Decimal `json:"amount"`
}

// EmployerContribution is computed next to the employee amount and reported
// separately. Exactly one of Percentage or Amount is set.
type EmployerContribution struct {
	CalculateOn Base             `json:"calculate_on,omitempty"`
	Percentage  *decimal.Decimal `json:"percentage,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

func (e *EmployerContribution) validate() error {
	if (e.Percentage == nil) == (e.Amount == nil) {
		return errors.New("employer contribution: exactly one of percentage or amount is required")
	}
	if e.Percentage != nil {
		if !e.CalculateOn.Valid() {
			return fmt.Errorf("employer contribution: unknown base %q", e.CalculateOn)
		}
		if e.Percentage.IsNegative() || e.Percentage.GreaterThan(hundred) {
			return fmt.Errorf("employer contribution: percentage %s is outside 0..100", e.Percentage)
		}
	}
	if e.Amount != nil && e.Amount.IsNegative() {
		return errors.New("employer contribution: amount cannot be negative")
	}
	return nil
}

type Template struct {
	ID                   int64                 `json:"id"`
	OrgID                string                `json:"org_id"`
	Code                 string                `json:"code"`
	Name                 string                `json:"name"`
	Category             Category              `json:"category"`
	Method               MethodConfig          `json:"-"`
	IsAttendanceBased    bool                  `json:"is_attendance_based"`
	Ceiling              Clamp                 `json:"ceiling"`
	MinThreshold         Clamp                 `json:"min_threshold"`
	EmployerContribution *EmployerContribution `json:"employer_contribution,omitempty"`
	IsActive             bool                  `json:"is_active"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`

	// configErr is set when a stored template cannot be used for its declared method.
	configErr error
}

// Params describes a template to build with NewTemplate.
type Params struct {
	OrgID                string
	Code                 string
	Name                 string
	Category             Category
	Method               MethodConfig
	IsAttendanceBased    bool
	Ceiling              Clamp
	MinThreshold         Clamp
	EmployerContribution *EmployerContribution
	IsActive             bool
}

// NewTemplate validates p and returns a usable template or a ConfigError.
func NewTemplate(p Params) (*Template, error) {
	t := &Template{
		OrgID:                p.OrgID,
		Code:                 p.Code,
		Name:                 p.Name,
		Category:             p.Category,
		Method:               p.Method,
		IsAttendanceBased:    p.IsAttendanceBased,
		Ceiling:              p.Ceiling,
		MinThreshold:         p.MinThreshold,
		EmployerContribution: p.EmployerContribution,
		IsActive:             p.IsActive,
	}
	if err := t.check(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Template) check() error {
	if t.Code == "" {
		return internal.NewConfigError("template code is required", nil)
	}
	if !t.Category.Valid() {
		return internal.NewConfigError(fmt.Sprintf("template %s: unknown category %q", t.Code, t.Category), nil)
	}
	if t.Method == nil {
		return internal.NewConfigError(fmt.Sprintf("template %s: calculation method config is missing", t.Code), nil)
	}
	if err := t.Method.validate(); err != nil {
		return internal.NewConfigError(fmt.Sprintf("template %s: invalid %s config", t.Code, t.Method.Method()), err)
	}
	if t.Ceiling.Enabled && t.Ceiling.Amount.IsNegative() {
		return internal.NewConfigError(fmt.Sprintf("template %s: ceiling cannot be negative", t.Code), nil)
	}
	if t.MinThreshold.Enabled && t.MinThreshold.Amount.IsNegative() {
		return internal.NewConfigError(fmt.Sprintf("template %s: minimum threshold cannot be negative", t.Code), nil)
	}
	if t.Ceiling.Enabled && t.MinThreshold.Enabled && t.MinThreshold.Amount.GreaterThan(t.Ceiling.Amount) {
		return internal.NewConfigError(fmt.Sprintf("template %s: minimum threshold exceeds ceiling", t.Code), nil)
	}
	if t.EmployerContribution != nil {
		if err := t.EmployerContribution.validate(); err != nil {
			return internal.NewConfigError(fmt.Sprintf("template %s: invalid employer contribution", t.Code), err)
		}
	}
	return nil
}

// Usable returns the ConfigError recorded when the template was loaded, if any.
func (t *Template) Usable() error {
	return t.configErr
}

func (t *Template) CalculationMethod() CalculationMethod {
	if t.Method == nil {
		return ""
	}
	return t.Method.Method()
}

func (t *Template) IsManual() bool {
	fixed, ok := t.Method.(FixedAmountConfig)
	return ok && fixed.Manual
}

func (t *Template) ToResponse() TemplateResponse {
	return TemplateResponse{
		ID:                t.ID,
		Code:              t.Code,
		Name:              t.Name,
		Category:          string(t.Category),
		CalculationMethod: string(t.CalculationMethod()),
		IsAttendanceBased: t.IsAttendanceBased,
		HasEmployerShare:  t.EmployerContribution != nil,
		Usable:            t.configErr == nil,
	}
}

func ToDataModel(t *Template) *templateDatamodel.PayrollTemplate {
	row := &templateDatamodel.PayrollTemplate{
		ID:                  t.ID,
		OrgID:               t.OrgID,
		Code:                t.Code,
		Name:                t.Name,
		Category:            string(t.Category),
		CalculationMethod:   string(t.CalculationMethod()),
		IsAttendanceBased:   t.IsAttendanceBased,
		CeilingEnabled:      t.Ceiling.Enabled,
		CeilingAmount:       t.Ceiling.Amount,
		MinThresholdEnabled: t.MinThreshold.Enabled,
		MinThresholdAmount:  t.MinThreshold.Amount,
		IsActive:            t.IsActive,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}

	switch m := t.Method.(type) {
	case PercentageConfig:
		pct := m.EmployeePercentage
		row.MethodConfig = templateDatamodel.MethodConfig{CalculateOn: string(m.CalculateOn), Percentage: &pct}
	case FixedAmountConfig:
		amt := m.Amount
		row.MethodConfig = templateDatamodel.MethodConfig{Amount: &amt, Manual: m.Manual}
	case SlabConfig:
		slabs := make([]templateDatamodel.Slab, len(m.Brackets))
		for i, b := range m.Brackets {
			slabs[i] = templateDatamodel.Slab{From: b.From, To: b.To, Rate: b.Rate, Amount: b.Amount}
		}
		row.MethodConfig = templateDatamodel.MethodConfig{CalculateOn: string(m.CalculateOn), Slabs: slabs}
	case *FormulaConfig:
		row.MethodConfig = templateDatamodel.MethodConfig{Expression: m.Expression}
	}

	if ec := t.EmployerContribution; ec != nil {
		row.EmployerContribution = &templateDatamodel.EmployerContribution{
			CalculateOn: string(ec.CalculateOn),
			Percentage:  ec.Percentage,
			Amount:      ec.Amount,
		}
	}
	return row
}

// FromDataModel never fails: a row whose config does not fit its declared
// method becomes a template that reports a ConfigError when evaluated.
func FromDataModel(row *templateDatamodel.PayrollTemplate) *Template {
	t := &Template{
		ID:                row.ID,
		OrgID:             row.OrgID,
		Code:              row.Code,
		Name:              row.Name,
		Category:          Category(row.Category),
		IsAttendanceBased: row.IsAttendanceBased,
		Ceiling:           Clamp{Enabled: row.CeilingEnabled, Amount: row.CeilingAmount},
		MinThreshold:      Clamp{Enabled: row.MinThresholdEnabled, Amount: row.MinThresholdAmount},
		IsActive:          row.IsActive,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	if ec := row.EmployerContribution; ec != nil {
		t.EmployerContribution = &EmployerContribution{
			CalculateOn: Base(ec.CalculateOn),
			Percentage:  ec.Percentage,
			Amount:      ec.Amount,
		}
	}

	method, err := methodFromDataModel(CalculationMethod(row.CalculationMethod), row.MethodConfig)
	if err != nil {
		t.configErr = internal.NewConfigError(fmt.Sprintf("template %s: invalid %s config", row.Code, row.CalculationMethod), err)
		return t
	}
	t.Method = method
	if err := t.check(); err != nil {
		t.configErr = err
	}
	return t
}

func methodFromDataModel(method CalculationMethod, cfg templateDatamodel.MethodConfig) (MethodConfig, error) {
	switch method {
	case MethodPercentage:
		if cfg.Percentage == nil {
			return nil, errors.New("percentage is required")
		}
		if cfg.Amount != nil || len(cfg.Slabs) > 0 || cfg.Expression != "" {
			return nil, errors.New("percentage config carries fields of another method")
		}
		return PercentageConfig{CalculateOn: Base(cfg.CalculateOn), EmployeePercentage: *cfg.Percentage}, nil
	case MethodFixedAmount:
		if cfg.Percentage != nil || len(cfg.Slabs) > 0 || cfg.Expression != "" {
			return nil, errors.New("fixed amount config carries fields of another method")
		}
		if cfg.Amount == nil && !cfg.Manual {
			return nil, errors.New("amount is required unless the component is manual")
		}
		fixed := FixedAmountConfig{Manual: cfg.Manual}
		if cfg.Amount != nil {
			fixed.Amount = *cfg.Amount
		}
		return fixed, nil
	case MethodSlab:
		if cfg.Percentage != nil || cfg.Amount != nil || cfg.Expression != "" {
			return nil, errors.New("slab config carries fields of another method")
		}
		brackets := make([]Bracket, len(cfg.Slabs))
		for i, s := range cfg.Slabs {
			brackets[i] = Bracket{From: s.From, To: s.To, Rate: s.Rate, Amount: s.Amount}
		}
		return SlabConfig{CalculateOn: Base(cfg.CalculateOn), Brackets: brackets}, nil
	case MethodFormula:
		if cfg.Percentage != nil || cfg.Amount != nil || len(cfg.Slabs) > 0 {
			return nil, errors.New("formula config carries fields of another method")
		}
		return &FormulaConfig{Expression: cfg.Expression}, nil
	default:
		return nil, fmt.Errorf("unknown calculation method %q", method)
	}
}
