package payroll

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/frahmantamala/payroll-management/internal"
	payrollDatamodel "github.com/frahmantamala/payroll-management/internal/core/datamodel/payroll"
)

const lockStripes = 64

type SaveSummary struct {
	Saved  int                  `json:"saved"`
	Failed int                  `json:"failed"`
	Errors []internal.ItemError `json:"errors"`
	// IDs holds the ids assigned to the saved records, in input order.
	IDs []int64 `json:"ids"`
}

// SalaryWriter is the storage the gate writes through. Create must return a
// DuplicateError when the (employee, period) key already exists.
type SalaryWriter interface {
	ExistsForKey(ctx context.Context, employeeID string, year, month int) (bool, error)
	Create(ctx context.Context, row *payrollDatamodel.CalculatedSalary) error
}

// Gate persists calculated salaries. Writes for the same key are serialized
// in-process and the unique index on the table guards across processes.
// A failed entry never rolls back the entries saved before it.
type Gate struct {
	store  SalaryWriter
	locks  [lockStripes]sync.Mutex
	logger *slog.Logger
}

func NewGate(store SalaryWriter, logger *slog.Logger) *Gate {
	return &Gate{store: store, logger: logger}
}

func (g *Gate) lockFor(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &g.locks[h.Sum32()%lockStripes]
}

// CommitBatch saves each salary as a PENDING record.
func (g *Gate) CommitBatch(ctx context.Context, salaries []*CalculatedSalary) SaveSummary {
	summary := SaveSummary{Errors: []internal.ItemError{}, IDs: []int64{}}

	for _, s := range salaries {
		if s == nil {
			continue
		}
		if err := g.commitOne(ctx, s); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, internal.NewItemError(s.EmployeeID, err))
			g.logger.Warn("salary not saved", "employee_id", s.EmployeeID, "period", s.Period.String(), "error", err)
			continue
		}
		summary.Saved++
		summary.IDs = append(summary.IDs, s.ID)
	}

	g.logger.Info("salary batch committed", "saved", summary.Saved, "failed", summary.Failed)
	return summary
}

func (g *Gate) commitOne(ctx context.Context, s *CalculatedSalary) error {
	if err := ctx.Err(); err != nil {
		return internal.NewTimeoutError("commit cancelled before the record was written", err)
	}
	if err := s.Validate(); err != nil {
		return err
	}

	mu := g.lockFor(s.Key())
	mu.Lock()
	defer mu.Unlock()

	exists, err := g.store.ExistsForKey(ctx, s.EmployeeID, s.Period.Year, s.Period.Month)
	if err != nil {
		return internal.NewInternalError("failed to check for an existing salary", err)
	}
	if exists {
		return duplicateOf(s)
	}

	row := ToDataModel(s)
	row.ID = 0
	row.Status = string(StatusPending)
	row.ApprovedBy = nil
	row.ApprovedAt = nil
	if err := g.store.Create(ctx, row); err != nil {
		if errors.Is(err, internal.ErrDuplicateSalary) {
			return duplicateOf(s)
		}
		return internal.NewInternalError("failed to save salary", err)
	}

	s.ID = row.ID
	s.Status = StatusPending
	s.ApprovedBy = nil
	s.ApprovedAt = nil
	s.CreatedAt = row.CreatedAt
	return nil
}

func duplicateOf(s *CalculatedSalary) error {
	return internal.NewDuplicateError(fmt.Sprintf("salary for employee %s in %s already exists", s.EmployeeID, s.Period), internal.ErrCodeDuplicateSalary)
}
