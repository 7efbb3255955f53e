package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/internal/core/events"
	"github.com/frahmantamala/payroll-management/internal/core/period"
)

type EmployeeSource interface {
	ListActiveEmployees(ctx context.Context, org internal.OrgContext) ([]string, error)
}

// Service exposes the payroll operations used by the HTTP API and the CLI.
type Service struct {
	employees  EmployeeSource
	calculator *Calculator
	gate       *Gate
	approvals  *Approvals
	publisher  events.Publisher
	logger     *slog.Logger
}

func NewService(employees EmployeeSource, calculator *Calculator, gate *Gate, approvals *Approvals, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		employees:  employees,
		calculator: calculator,
		gate:       gate,
		approvals:  approvals,
		publisher:  publisher,
		logger:     logger,
	}
}

// BulkCalculate evaluates every active employee of org for p.
func (s *Service) BulkCalculate(ctx context.Context, org internal.OrgContext, p period.Period) (*BatchResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ids, err := s.employees.ListActiveEmployees(ctx, org)
	if err != nil {
		return nil, err
	}
	return s.calculator.CalculateBatch(ctx, org, p, ids)
}

// CalculateEmployees evaluates the given employees only.
func (s *Service) CalculateEmployees(ctx context.Context, org internal.OrgContext, p period.Period, employeeIDs []string) (*BatchResult, error) {
	return s.calculator.CalculateBatch(ctx, org, p, employeeIDs)
}

// BulkSave persists the successful results of a batch. Entries belonging to
// another period or organization are reported as failed and not written.
// The caller's entries are not modified.
func (s *Service) BulkSave(ctx context.Context, org internal.OrgContext, p period.Period, results []*CalculatedSalary) (*SaveSummary, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	accepted := make([]*CalculatedSalary, 0, len(results))
	var rejected []internal.ItemError
	for i, in := range results {
		if in == nil {
			rejected = append(rejected, internal.NewItemError(fmt.Sprintf("results[%d]", i),
				internal.NewValidationFieldError("results", "entry is empty", internal.ErrCodeValidationFailed)))
			continue
		}
		r := *in
		if r.OrgID == "" {
			r.OrgID = org.OrgID
		}
		switch {
		case r.Period != p:
			rejected = append(rejected, internal.NewItemError(r.EmployeeID,
				internal.NewValidationFieldError("period", fmt.Sprintf("result is for %s, batch is for %s", r.Period, p), internal.ErrCodeInvalidPeriod)))
		case r.OrgID != org.OrgID:
			rejected = append(rejected, internal.NewItemError(r.EmployeeID,
				internal.NewValidationFieldError("org_id", fmt.Sprintf("result belongs to organization %s", r.OrgID), internal.ErrCodeValidationFailed)))
		default:
			accepted = append(accepted, &r)
		}
	}

	summary := s.gate.CommitBatch(ctx, accepted)
	summary.Failed += len(rejected)
	summary.Errors = append(append([]internal.ItemError{}, rejected...), summary.Errors...)

	event := events.NewPayrollBatchSavedEvent(org.OrgID, p.String(), summary.Saved, summary.Failed, time.Now().UTC())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish batch saved event", "period", p.String(), "error", err)
	}
	return &summary, nil
}

func (s *Service) ListPending(ctx context.Context, org internal.OrgContext, p period.Period) ([]*CalculatedSalary, error) {
	return s.approvals.ListPending(ctx, org, p)
}

func (s *Service) ListApproved(ctx context.Context, org internal.OrgContext, p period.Period) ([]*CalculatedSalary, error) {
	return s.approvals.ListApproved(ctx, org, p)
}

func (s *Service) GetSalary(ctx context.Context, id int64) (*CalculatedSalary, error) {
	return s.approvals.Get(ctx, id)
}

func (s *Service) Approve(ctx context.Context, id int64, approverID string) (*CalculatedSalary, error) {
	return s.approvals.Approve(ctx, id, approverID)
}

func (s *Service) BulkApprove(ctx context.Context, ids []int64, approverID string) (*BulkApproveResult, error) {
	return s.approvals.BulkApprove(ctx, ids, approverID)
}

func (s *Service) Reject(ctx context.Context, id int64) error {
	return s.approvals.Reject(ctx, id)
}
