package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/frahmantamala/payroll-management/internal"
	payrollDatamodel "github.com/frahmantamala/payroll-management/internal/core/datamodel/payroll"
	"github.com/frahmantamala/payroll-management/internal/core/events"
	"github.com/frahmantamala/payroll-management/internal/core/period"
)

// SalaryStateStore performs guarded status changes. Approve and
// DeleteIfPending change a row only while it is PENDING and report whether
// they did.
type SalaryStateStore interface {
	GetByID(ctx context.Context, id int64) (*payrollDatamodel.CalculatedSalary, error)
	ListByStatus(ctx context.Context, orgID string, year, month int, status string) ([]*payrollDatamodel.CalculatedSalary, error)
	Approve(ctx context.Context, id int64, approvedBy string, approvedAt time.Time) (bool, error)
	DeleteIfPending(ctx context.Context, id int64) (bool, error)
}

type BulkApproveResult struct {
	ApprovedCount int                  `json:"approved_count"`
	Errors        []internal.ItemError `json:"errors"`
}

// Approvals is the approval state machine over persisted salaries.
type Approvals struct {
	store     SalaryStateStore
	publisher events.Publisher
	now       func() time.Time
	logger    *slog.Logger
}

func NewApprovals(store SalaryStateStore, publisher events.Publisher, logger *slog.Logger) *Approvals {
	return &Approvals{
		store:     store,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

// WithClock replaces the clock used for approval timestamps.
func (a *Approvals) WithClock(now func() time.Time) *Approvals {
	a.now = now
	return a
}

func (a *Approvals) Get(ctx context.Context, id int64) (*CalculatedSalary, error) {
	if id <= 0 {
		return nil, internal.NewValidationFieldError("id", "salary id must be positive", internal.ErrCodeInvalidID)
	}
	row, err := a.store.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load salary", err)
	}
	if row == nil {
		return nil, notFound(id)
	}
	return FromDataModel(row), nil
}

func (a *Approvals) ListPending(ctx context.Context, org internal.OrgContext, p period.Period) ([]*CalculatedSalary, error) {
	return a.list(ctx, org, p, StatusPending)
}

func (a *Approvals) ListApproved(ctx context.Context, org internal.OrgContext, p period.Period) ([]*CalculatedSalary, error) {
	return a.list(ctx, org, p, StatusApproved)
}

func (a *Approvals) list(ctx context.Context, org internal.OrgContext, p period.Period, status Status) ([]*CalculatedSalary, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rows, err := a.store.ListByStatus(ctx, org.OrgID, p.Year, p.Month, string(status))
	if err != nil {
		return nil, internal.NewInternalError("failed to list salaries", err)
	}
	out := make([]*CalculatedSalary, len(rows))
	for i, row := range rows {
		out[i] = FromDataModel(row)
	}
	return out, nil
}

// Approve moves a PENDING salary to APPROVED and records who approved it and when.
func (a *Approvals) Approve(ctx context.Context, id int64, approverID string) (*CalculatedSalary, error) {
	if approverID == "" {
		return nil, internal.ErrMissingApprover
	}
	if id <= 0 {
		return nil, internal.NewValidationFieldError("id", "salary id must be positive", internal.ErrCodeInvalidID)
	}

	at := a.now()
	ok, err := a.store.Approve(ctx, id, approverID, at)
	if err != nil {
		return nil, internal.NewInternalError("failed to approve salary", err)
	}
	if !ok {
		return nil, a.refused(ctx, id, StatusApproved)
	}

	salary, err := a.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a.logger.Info("salary approved", "salary_id", id, "employee_id", salary.EmployeeID, "approved_by", approverID)

	event := events.NewSalaryApprovedEvent(salary.ID, salary.EmployeeID, salary.Period.String(), approverID, at)
	if err := a.publisher.Publish(ctx, event); err != nil {
		a.logger.Error("failed to publish salary approved event", "salary_id", id, "error", err)
	}
	return salary, nil
}

// Reject removes a PENDING salary so it can be recalculated and saved again.
func (a *Approvals) Reject(ctx context.Context, id int64) error {
	if id <= 0 {
		return internal.NewValidationFieldError("id", "salary id must be positive", internal.ErrCodeInvalidID)
	}

	existing, err := a.store.GetByID(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to load salary", err)
	}
	if existing == nil {
		return notFound(id)
	}
	if from := Status(existing.Status); !CanTransition(from, StatusRejected) {
		return internal.NewInvalidTransitionError(fmt.Sprintf("salary %d cannot move from %s to %s", id, from, StatusRejected))
	}

	ok, err := a.store.DeleteIfPending(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to reject salary", err)
	}
	if !ok {
		return a.refused(ctx, id, StatusRejected)
	}

	a.logger.Info("salary rejected", "salary_id", id, "employee_id", existing.EmployeeID)
	p := period.Period{Month: existing.PeriodMonth, Year: existing.PeriodYear}
	event := events.NewSalaryRejectedEvent(id, existing.EmployeeID, p.String(), a.now())
	if err := a.publisher.Publish(ctx, event); err != nil {
		a.logger.Error("failed to publish salary rejected event", "salary_id", id, "error", err)
	}
	return nil
}

// BulkApprove approves each id independently. Failures are collected and do
// not stop the remaining ids.
func (a *Approvals) BulkApprove(ctx context.Context, ids []int64, approverID string) (*BulkApproveResult, error) {
	if approverID == "" {
		return nil, internal.ErrMissingApprover
	}

	result := &BulkApproveResult{Errors: []internal.ItemError{}}
	for _, id := range ids {
		if _, err := a.Approve(ctx, id, approverID); err != nil {
			result.Errors = append(result.Errors, internal.NewItemError(strconv.FormatInt(id, 10), err))
			continue
		}
		result.ApprovedCount++
	}

	a.logger.Info("bulk approval finished", "requested", len(ids), "approved", result.ApprovedCount, "failed", len(result.Errors))
	return result, nil
}

// refused explains why a guarded transition changed nothing.
func (a *Approvals) refused(ctx context.Context, id int64, target Status) error {
	row, err := a.store.GetByID(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to load salary", err)
	}
	if row == nil {
		return notFound(id)
	}
	return internal.NewInvalidTransitionError(fmt.Sprintf("salary %d cannot move from %s to %s", id, row.Status, target))
}

func notFound(id int64) error {
	return internal.NewNotFoundError(fmt.Sprintf("salary %d not found", id), internal.ErrCodeSalaryNotFound)
}
