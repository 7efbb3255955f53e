package template

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/shopspring/decimal"
)

type CalculationMethod string

const (
	MethodPercentage  CalculationMethod = "PERCENTAGE"
	MethodFixedAmount CalculationMethod = "FIXED_AMOUNT"
	MethodSlab        CalculationMethod = "SLAB"
	MethodFormula     CalculationMethod = "FORMULA"
)

type Base string

const (
	BaseBasicSalary Base = "BASIC_SALARY"
	BaseGrossSalary Base = "GROSS_SALARY"
	BaseCTC         Base = "CTC"
)

func (b Base) Valid() bool {
	switch b {
	case BaseBasicSalary, BaseGrossSalary, BaseCTC:
		return true
	}
	return false
}

var hundred = decimal.NewFromInt(100)

// MethodConfig is the method-specific part of a template. Exactly one variant
// exists per CalculationMethod and the set is closed to this package.
type MethodConfig interface {
	Method() CalculationMethod
	validate() error
}

type PercentageConfig struct {
	CalculateOn        Base            `json:"calculate_on"`
	EmployeePercentage decimal.Decimal `json:"employee_percentage"`
}

func (PercentageConfig) Method() CalculationMethod { return MethodPercentage }

func (c PercentageConfig) validate() error {
	if !c.CalculateOn.Valid() {
		return fmt.Errorf("percentage: unknown base %q", c.CalculateOn)
	}
	if c.EmployeePercentage.IsNegative() || c.EmployeePercentage.GreaterThan(hundred) {
		return fmt.Errorf("percentage: %s is outside 0..100", c.EmployeePercentage)
	}
	return nil
}

// FixedAmountConfig pays Amount every period. Manual components carry no
// amount of their own and take the employee's override instead.
type FixedAmountConfig struct {
	Amount decimal.Decimal `json:"amount"`
	Manual bool            `json:"manual"`
}

func (FixedAmountConfig) Method() CalculationMethod { return MethodFixedAmount }

func (c FixedAmountConfig) validate() error {
	if c.Amount.IsNegative() {
		return errors.New("fixed amount: amount cannot be negative")
	}
	return nil
}

// Bracket covers [From, To). A nil To marks the open-ended last bracket.
// Rate is a percentage of the base; Amount is a flat value. Exactly one is set.
type Bracket struct {
	From   decimal.Decimal  `json:"from"`
	To     *decimal.Decimal `json:"to,omitempty"`
	Rate   *decimal.Decimal `json:"rate,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

func (b Bracket) contains(v decimal.Decimal) bool {
	if v.LessThan(b.From) {
		return false
	}
	return b.To == nil || v.LessThan(*b.To)
}

type SlabConfig struct {
	CalculateOn Base      `json:"calculate_on"`
	Brackets    []Bracket `json:"brackets"`
}

func (SlabConfig) Method() CalculationMethod { return MethodSlab }

func (c SlabConfig) validate() error {
	if !c.CalculateOn.Valid() {
		return fmt.Errorf("slab: unknown base %q", c.CalculateOn)
	}
	if len(c.Brackets) == 0 {
		return errors.New("slab: at least one bracket is required")
	}
	if !c.Brackets[0].From.IsZero() {
		return errors.New("slab: first bracket must start at 0")
	}
	for i, b := range c.Brackets {
		if (b.Rate == nil) == (b.Amount == nil) {
			return fmt.Errorf("slab: bracket %d must set exactly one of rate or amount", i)
		}
		if b.Rate != nil && b.Rate.IsNegative() {
			return fmt.Errorf("slab: bracket %d has a negative rate", i)
		}
		if b.Amount != nil && b.Amount.IsNegative() {
			return fmt.Errorf("slab: bracket %d has a negative amount", i)
		}
		last := i == len(c.Brackets)-1
		if b.To == nil {
			if !last {
				return fmt.Errorf("slab: only the last bracket may be open-ended, bracket %d is not last", i)
			}
			continue
		}
		if !b.To.GreaterThan(b.From) {
			return fmt.Errorf("slab: bracket %d upper bound must be greater than its lower bound", i)
		}
		if last {
			return errors.New("slab: last bracket must be open-ended")
		}
		if next := c.Brackets[i+1]; !next.From.Equal(*b.To) {
			return fmt.Errorf("slab: bracket %d must start at %s", i+1, b.To)
		}
	}
	return nil
}

// Find returns the bracket containing v.
func (c SlabConfig) Find(v decimal.Decimal) (Bracket, bool) {
	for _, b := range c.Brackets {
		if b.contains(v) {
			return b, true
		}
	}
	return Bracket{}, false
}

// Variables a formula may reference.
const (
	VarBasic           = "basic"
	VarGross           = "gross"
	VarCTC             = "ctc"
	VarPresentDays     = "present_days"
	VarTotalDays       = "total_days"
	VarAttendanceRatio = "attendance_ratio"
	VarOverride        = "override"
)

var FormulaVariables = []string{
	VarBasic, VarGross, VarCTC, VarPresentDays, VarTotalDays, VarAttendanceRatio, VarOverride,
}

func formulaEnv() map[string]any {
	env := make(map[string]any, len(FormulaVariables))
	for _, name := range FormulaVariables {
		env[name] = float64(0)
	}
	return env
}

type FormulaConfig struct {
	Expression string `json:"expression"`
	program    *vm.Program
}

// NewFormula compiles expression against the known variable set.
// Unknown names and syntax errors surface here, not at evaluation.
func NewFormula(expression string) (*FormulaConfig, error) {
	f := &FormulaConfig{Expression: expression}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (*FormulaConfig) Method() CalculationMethod { return MethodFormula }

func (f *FormulaConfig) validate() error {
	if f.Expression == "" {
		return errors.New("formula: expression is required")
	}
	if f.program != nil {
		return nil
	}
	program, err := expr.Compile(f.Expression, expr.Env(formulaEnv()), expr.AsFloat64())
	if err != nil {
		return fmt.Errorf("formula: %w", err)
	}
	f.program = program
	return nil
}

func (f *FormulaConfig) Program() *vm.Program {
	return f.program
}
