package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/frahmantamala/payroll-management/internal/attendance"
	attendanceDatamodel "github.com/frahmantamala/payroll-management/internal/core/datamodel/attendance"
	"github.com/jmoiron/sqlx"
)

type AttendanceRepository struct {
	db *sqlx.DB
}

func NewAttendanceRepository(db *sqlx.DB) attendance.RepositoryAPI {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) FindSummary(ctx context.Context, employeeID string, year, month int) (*attendanceDatamodel.AttendanceSummary, error) {
	query := r.db.Rebind(`
		SELECT employee_id, period_year, period_month, present_days, total_days
		FROM attendance_summaries
		WHERE employee_id = ? AND period_year = ? AND period_month = ?`)

	var row attendanceDatamodel.AttendanceSummary
	if err := r.db.GetContext(ctx, &row, query, employeeID, year, month); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Save replaces the aggregate for the employee and period.
func (r *AttendanceRepository) Save(ctx context.Context, row *attendanceDatamodel.AttendanceSummary) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	del := tx.Rebind(`DELETE FROM attendance_summaries WHERE employee_id = ? AND period_year = ? AND period_month = ?`)
	if _, err := tx.ExecContext(ctx, del, row.EmployeeID, row.PeriodYear, row.PeriodMonth); err != nil {
		return err
	}

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO attendance_summaries (employee_id, period_year, period_month, present_days, total_days)
		VALUES (:employee_id, :period_year, :period_month, :present_days, :total_days)`, row); err != nil {
		return err
	}
	return tx.Commit()
}
