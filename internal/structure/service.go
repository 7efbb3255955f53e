package structure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/payroll-management/internal"
	structureDatamodel "github.com/frahmantamala/payroll-management/internal/core/datamodel/structure"
	"github.com/frahmantamala/payroll-management/internal/core/period"
)

type RepositoryAPI interface {
	GetEffectiveByEmployee(ctx context.Context, orgID, employeeID string, before time.Time) (*structureDatamodel.SalaryStructure, error)
	Create(ctx context.Context, s *structureDatamodel.SalaryStructure) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// GetEmployeeStructure returns the structure of employeeID in force for p:
// the newest one whose effective date falls on or before the end of p.
// Structures that only start in a later period are ignored.
func (s *Service) GetEmployeeStructure(ctx context.Context, org internal.OrgContext, employeeID string, p period.Period) (*EmployeeSalaryStructure, error) {
	row, err := s.repo.GetEffectiveByEmployee(ctx, org.OrgID, employeeID, p.End())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, internal.NewTimeoutError(fmt.Sprintf("structure lookup for %s timed out", employeeID), err)
		}
		return nil, internal.NewInternalError("failed to load salary structure", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError(fmt.Sprintf("no salary structure for employee %s in %s", employeeID, p), internal.ErrCodeStructureNotFound)
	}
	return FromDataModel(row), nil
}

func (s *Service) CreateStructure(ctx context.Context, st *EmployeeSalaryStructure) error {
	if err := st.Validate(); err != nil {
		return err
	}
	row := ToDataModel(st)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create salary structure", "employee_id", st.EmployeeID, "error", err)
		return internal.NewInternalError("failed to create salary structure", err)
	}
	st.ID = row.ID
	s.logger.Info("salary structure created", "employee_id", st.EmployeeID, "components", len(st.Components))
	return nil
}
