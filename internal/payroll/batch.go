package payroll

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/internal/attendance"
	"github.com/frahmantamala/payroll-management/internal/core/period"
	"github.com/frahmantamala/payroll-management/internal/structure"
	"github.com/frahmantamala/payroll-management/internal/template"
)

const defaultWorkers = 4

type TemplateSource interface {
	GetTemplateRegistry(ctx context.Context, org internal.OrgContext) (*template.Registry, error)
}

type StructureSource interface {
	GetEmployeeStructure(ctx context.Context, org internal.OrgContext, employeeID string, p period.Period) (*structure.EmployeeSalaryStructure, error)
}

type AttendanceSource interface {
	GetAttendanceSummary(ctx context.Context, employeeID string, p period.Period) (*attendance.Summary, error)
}

type BatchSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	// Unprocessed counts employees never started because the batch was cancelled.
	Unprocessed int `json:"unprocessed,omitempty"`
}

type BatchResult struct {
	Period  period.Period        `json:"period"`
	Results []*CalculatedSalary  `json:"results"`
	Errors  []internal.ItemError `json:"errors"`
	Summary BatchSummary         `json:"summary"`
}

type CalculatorConfig struct {
	Workers       int
	LookupTimeout time.Duration
}

// Calculator is the batch calculator. Employees are evaluated by a bounded
// pool of workers; each employee's failure is recorded without affecting the
// others.
type Calculator struct {
	templates  TemplateSource
	structures StructureSource
	attendance AttendanceSource
	cfg        CalculatorConfig
	logger     *slog.Logger
}

func NewCalculator(templates TemplateSource, structures StructureSource, attendance AttendanceSource, cfg CalculatorConfig, logger *slog.Logger) *Calculator {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return &Calculator{
		templates:  templates,
		structures: structures,
		attendance: attendance,
		cfg:        cfg,
		logger:     logger,
	}
}

// CalculateBatch evaluates employeeIDs for p. Results and errors keep the
// input order. When ctx is cancelled the partial result is returned together
// with ctx.Err().
func (c *Calculator) CalculateBatch(ctx context.Context, org internal.OrgContext, p period.Period, employeeIDs []string) (*BatchResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	result := &BatchResult{
		Period:  p,
		Results: []*CalculatedSalary{},
		Errors:  []internal.ItemError{},
		Summary: BatchSummary{Total: len(employeeIDs)},
	}
	if len(employeeIDs) == 0 {
		return result, nil
	}

	registry, err := c.templates.GetTemplateRegistry(ctx, org)
	if err != nil {
		return nil, err
	}

	outcomes := c.run(ctx, org, p, registry, employeeIDs)
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].index < outcomes[j].index })

	for _, o := range outcomes {
		switch {
		case o.skipped:
		case o.err != nil:
			result.Errors = append(result.Errors, internal.NewItemError(o.employeeID, o.err))
		default:
			result.Results = append(result.Results, o.salary)
		}
	}
	result.Summary.Successful = len(result.Results)
	result.Summary.Failed = len(result.Errors)
	result.Summary.Unprocessed = result.Summary.Total - result.Summary.Successful - result.Summary.Failed

	c.logger.Info("payroll batch calculated",
		"org_id", org.OrgID,
		"period", p.String(),
		"total", result.Summary.Total,
		"successful", result.Summary.Successful,
		"failed", result.Summary.Failed,
		"unprocessed", result.Summary.Unprocessed)

	if result.Summary.Unprocessed > 0 {
		if err := ctx.Err(); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (c *Calculator) run(ctx context.Context, org internal.OrgContext, p period.Period, registry *template.Registry, employeeIDs []string) []employeeOutcome {
	workers := c.cfg.Workers
	if workers > len(employeeIDs) {
		workers = len(employeeIDs)
	}

	poolCtx, stop := context.WithCancel(ctx)
	var wg sync.WaitGroup
	pool := make(chan chan employeeJob, workers)
	collected := make(chan employeeOutcome, len(employeeIDs))

	process := func(job employeeJob) {
		out := employeeOutcome{index: job.index, employeeID: job.employeeID}
		if ctx.Err() != nil {
			out.skipped = true
			collected <- out
			return
		}
		out.salary, out.err = c.calculateEmployee(ctx, org, p, registry, job.employeeID)
		if out.err != nil && ctx.Err() != nil && errors.Is(out.err, ctx.Err()) {
			out.skipped = true
		}
		collected <- out
	}

	for i := 0; i < workers; i++ {
		newWorker(i, pool, c.logger).start(poolCtx, &wg, process)
	}

	dispatched := 0
dispatch:
	for i, id := range employeeIDs {
		select {
		case jobs := <-pool:
			select {
			case jobs <- employeeJob{index: i, employeeID: id}:
				dispatched++
			case <-ctx.Done():
				break dispatch
			}
		case <-ctx.Done():
			break dispatch
		}
	}

	outcomes := make([]employeeOutcome, 0, dispatched)
	for len(outcomes) < dispatched {
		outcomes = append(outcomes, <-collected)
	}

	stop()
	wg.Wait()
	return outcomes
}

func (c *Calculator) calculateEmployee(ctx context.Context, org internal.OrgContext, p period.Period, registry *template.Registry, employeeID string) (*CalculatedSalary, error) {
	lookupCtx, cancel := internal.WithTimeout(ctx, c.cfg.LookupTimeout)
	defer cancel()

	st, err := c.structures.GetEmployeeStructure(lookupCtx, org, employeeID, p)
	if err != nil {
		return nil, lookupError(err)
	}
	summary, err := c.attendance.GetAttendanceSummary(lookupCtx, employeeID, p)
	if err != nil {
		return nil, lookupError(err)
	}

	salary, err := Compute(org, p, st, summary, registry)
	if err != nil {
		c.logger.Warn("employee calculation failed", "employee_id", employeeID, "period", p.String(), "error", err)
		return nil, err
	}
	return salary, nil
}

func lookupError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !internal.IsKind(err, internal.ErrorTypeTimeout) {
		return internal.NewTimeoutError("lookup timed out", err)
	}
	return err
}
