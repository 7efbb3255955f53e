// Package engine evaluates a single template against one employee's
// calculation context. Evaluation is pure: the same template and context
// always produce the same amounts.
package engine

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/internal/template"
	"github.com/shopspring/decimal"
)

// AmountPlaces is the precision every reported amount is rounded to.
const AmountPlaces = 2

var hundred = decimal.NewFromInt(100)

type Attendance struct {
	PresentDays int `json:"present_days"`
	TotalDays   int `json:"total_days"`
}

func (a Attendance) validate() error {
	if a.TotalDays <= 0 {
		return internal.NewDomainError(fmt.Sprintf("total days must be positive, got %d", a.TotalDays), internal.ErrCodeBadAttendance)
	}
	if a.PresentDays < 0 || a.PresentDays > a.TotalDays {
		return internal.NewDomainError(fmt.Sprintf("present days %d outside 0..%d", a.PresentDays, a.TotalDays), internal.ErrCodeBadAttendance)
	}
	return nil
}

// Context carries everything a template may read.
type Context struct {
	BasicSalary decimal.Decimal
	GrossSalary decimal.Decimal
	CTC         decimal.Decimal
	Attendance  *Attendance
	// Override is the employee-specific value for FIXED_AMOUNT components.
	Override *decimal.Decimal
}

func (c Context) base(b template.Base) decimal.Decimal {
	switch b {
	case template.BaseGrossSalary:
		return c.GrossSalary
	case template.BaseCTC:
		return c.CTC
	default:
		return c.BasicSalary
	}
}

type Result struct {
	Amount                  decimal.Decimal `json:"amount"`
	EmployerAmount          decimal.Decimal `json:"employer_amount"`
	HasEmployerContribution bool            `json:"has_employer_contribution"`
}

// Evaluate computes the employee amount of t and, when configured, the
// employer contribution. It returns a ConfigError for unusable templates and
// a DomainError for inputs outside the rule's domain.
//
// The employer amount is computed from its own base and rate but goes through
// the template's proration, ceiling and minimum threshold like the employee
// amount, so a statutory cap limits both shares.
func Evaluate(t *template.Template, c Context) (Result, error) {
	if t == nil {
		return Result{}, internal.NewConfigError("template is missing", nil)
	}
	if err := t.Usable(); err != nil {
		return Result{}, err
	}
	if t.Method == nil {
		return Result{}, internal.NewConfigError(fmt.Sprintf("template %s has no calculation method", t.Code), nil)
	}

	raw, err := evaluateMethod(t, c)
	if err != nil {
		return Result{}, err
	}
	amount, err := postProcess(t, c, raw)
	if err != nil {
		return Result{}, err
	}

	res := Result{Amount: amount}
	if ec := t.EmployerContribution; ec != nil {
		employerRaw := employerAmount(ec, c)
		employer, err := postProcess(t, c, employerRaw)
		if err != nil {
			return Result{}, err
		}
		res.EmployerAmount = employer
		res.HasEmployerContribution = true
	}
	return res, nil
}

func evaluateMethod(t *template.Template, c Context) (decimal.Decimal, error) {
	switch m := t.Method.(type) {
	case template.PercentageConfig:
		return c.base(m.CalculateOn).Mul(m.EmployeePercentage).Div(hundred), nil
	case template.FixedAmountConfig:
		return fixedAmount(t, m, c)
	case template.SlabConfig:
		return slabAmount(t, m, c)
	case *template.FormulaConfig:
		return formulaAmount(t, m, c)
	default:
		return decimal.Zero, internal.NewConfigError(fmt.Sprintf("template %s: unsupported method %T", t.Code, t.Method), nil)
	}
}

func fixedAmount(t *template.Template, m template.FixedAmountConfig, c Context) (decimal.Decimal, error) {
	if c.Override != nil {
		if c.Override.IsNegative() {
			return decimal.Zero, internal.NewDomainError(fmt.Sprintf("template %s: override cannot be negative", t.Code), internal.ErrCodeValidationFailed)
		}
		return *c.Override, nil
	}
	if m.Manual {
		return decimal.Zero, internal.NewConfigError(fmt.Sprintf("template %s: manual component has no override value", t.Code), nil)
	}
	return m.Amount, nil
}

func slabAmount(t *template.Template, m template.SlabConfig, c Context) (decimal.Decimal, error) {
	v := c.base(m.CalculateOn)
	if v.IsNegative() {
		return decimal.Zero, internal.NewDomainError(fmt.Sprintf("template %s: slab base %s is negative", t.Code, v), internal.ErrCodeSlabOutOfRange)
	}
	bracket, ok := m.Find(v)
	if !ok {
		return decimal.Zero, internal.NewDomainError(fmt.Sprintf("template %s: no slab covers %s", t.Code, v), internal.ErrCodeSlabOutOfRange)
	}
	if bracket.Rate != nil {
		return v.Mul(*bracket.Rate).Div(hundred), nil
	}
	return *bracket.Amount, nil
}

func formulaAmount(t *template.Template, m *template.FormulaConfig, c Context) (decimal.Decimal, error) {
	program := m.Program()
	if program == nil {
		return decimal.Zero, internal.NewConfigError(fmt.Sprintf("template %s: formula is not compiled", t.Code), nil)
	}

	env := map[string]any{
		template.VarBasic:           c.BasicSalary.InexactFloat64(),
		template.VarGross:           c.GrossSalary.InexactFloat64(),
		template.VarCTC:             c.CTC.InexactFloat64(),
		template.VarPresentDays:     float64(0),
		template.VarTotalDays:       float64(0),
		template.VarAttendanceRatio: float64(1),
		template.VarOverride:        float64(0),
	}
	if a := c.Attendance; a != nil {
		env[template.VarPresentDays] = float64(a.PresentDays)
		env[template.VarTotalDays] = float64(a.TotalDays)
		if a.TotalDays > 0 {
			env[template.VarAttendanceRatio] = float64(a.PresentDays) / float64(a.TotalDays)
		}
	}
	if c.Override != nil {
		env[template.VarOverride] = c.Override.InexactFloat64()
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return decimal.Zero, internal.NewDomainError(fmt.Sprintf("template %s: formula failed: %v", t.Code, err), internal.ErrCodeFormulaResult)
	}
	f, ok := out.(float64)
	if !ok {
		return decimal.Zero, internal.NewConfigError(fmt.Sprintf("template %s: formula returned %T", t.Code, out), nil)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, internal.NewDomainError(fmt.Sprintf("template %s: formula result is not finite", t.Code), internal.ErrCodeFormulaResult)
	}
	if f < 0 {
		return decimal.Zero, internal.NewDomainError(fmt.Sprintf("template %s: formula result %v is negative", t.Code, f), internal.ErrCodeFormulaResult)
	}
	return decimal.NewFromFloat(f), nil
}

func employerAmount(ec *template.EmployerContribution, c Context) decimal.Decimal {
	if ec.Percentage != nil {
		return c.base(ec.CalculateOn).Mul(*ec.Percentage).Div(hundred)
	}
	return *ec.Amount
}

// postProcess applies proration, then the ceiling, then the minimum threshold.
func postProcess(t *template.Template, c Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if t.IsAttendanceBased {
		if c.Attendance == nil {
			return decimal.Zero, internal.NewDomainError(fmt.Sprintf("template %s is attendance based but no attendance was supplied", t.Code), internal.ErrCodeBadAttendance)
		}
		if err := c.Attendance.validate(); err != nil {
			return decimal.Zero, err
		}
		amount = amount.
			Mul(decimal.NewFromInt(int64(c.Attendance.PresentDays))).
			Div(decimal.NewFromInt(int64(c.Attendance.TotalDays)))
	}
	if t.Ceiling.Enabled {
		amount = decimal.Min(amount, t.Ceiling.Amount)
	}
	if t.MinThreshold.Enabled {
		amount = decimal.Max(amount, t.MinThreshold.Amount)
	}
	return amount.Round(AmountPlaces), nil
}
