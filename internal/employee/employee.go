// Package employee reads the externally owned employee directory. Payroll
// only needs to know which employees of an organization are active.
package employee

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/payroll-management/internal"
	employeeDatamodel "github.com/frahmantamala/payroll-management/internal/core/datamodel/employee"
)

type RepositoryAPI interface {
	ListActive(ctx context.Context, orgID string) ([]*employeeDatamodel.Employee, error)
	Save(ctx context.Context, e *employeeDatamodel.Employee) error
}

type Directory struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewDirectory(repo RepositoryAPI, logger *slog.Logger) *Directory {
	return &Directory{repo: repo, logger: logger}
}

// ListActiveEmployees returns active employee ids of org in a stable order.
func (d *Directory) ListActiveEmployees(ctx context.Context, org internal.OrgContext) ([]string, error) {
	rows, err := d.repo.ListActive(ctx, org.OrgID)
	if err != nil {
		d.logger.Error("failed to list employees", "org_id", org.OrgID, "error", err)
		return nil, internal.NewInternalError("failed to list employees", err)
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.EmployeeID
	}
	return ids, nil
}

// Register adds an active employee to the directory.
func (d *Directory) Register(ctx context.Context, org internal.OrgContext, employeeID, fullName string) error {
	if employeeID == "" {
		return internal.NewValidationFieldError("employee_id", "employee id is required", internal.ErrCodeValidationFailed)
	}
	row := &employeeDatamodel.Employee{
		EmployeeID: employeeID,
		OrgID:      org.OrgID,
		FullName:   fullName,
		IsActive:   true,
	}
	if err := d.repo.Save(ctx, row); err != nil {
		d.logger.Error("failed to register employee", "employee_id", employeeID, "error", err)
		return internal.NewInternalError("failed to register employee", err)
	}
	return nil
}
