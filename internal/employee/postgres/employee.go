package postgres

import (
	"context"

	employeeDatamodel "github.com/frahmantamala/payroll-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/payroll-management/internal/employee"
	"github.com/jmoiron/sqlx"
)

type EmployeeRepository struct {
	db *sqlx.DB
}

func NewEmployeeRepository(db *sqlx.DB) employee.RepositoryAPI {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) ListActive(ctx context.Context, orgID string) ([]*employeeDatamodel.Employee, error) {
	query := r.db.Rebind(`
		SELECT employee_id, org_id, full_name, is_active
		FROM employees
		WHERE org_id = ? AND is_active = ?
		ORDER BY employee_id ASC`)

	var rows []*employeeDatamodel.Employee
	if err := r.db.SelectContext(ctx, &rows, query, orgID, true); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *EmployeeRepository) Save(ctx context.Context, e *employeeDatamodel.Employee) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO employees (employee_id, org_id, full_name, is_active)
		VALUES (:employee_id, :org_id, :full_name, :is_active)`, e)
	return err
}
