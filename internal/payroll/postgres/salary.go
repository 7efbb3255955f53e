package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/payroll-management/internal"
	payrollDatamodel "github.com/frahmantamala/payroll-management/internal/core/datamodel/payroll"
	"github.com/frahmantamala/payroll-management/internal/payroll"
	"gorm.io/gorm"
)

type SalaryRepository struct {
	db *gorm.DB
}

func NewSalaryRepository(db *gorm.DB) *SalaryRepository {
	return &SalaryRepository{db: db}
}

var (
	_ payroll.SalaryWriter     = (*SalaryRepository)(nil)
	_ payroll.SalaryStateStore = (*SalaryRepository)(nil)
)

func (r *SalaryRepository) ExistsForKey(ctx context.Context, employeeID string, year, month int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&payrollDatamodel.CalculatedSalary{}).
		Where("employee_id = ? AND period_year = ? AND period_month = ?", employeeID, year, month).
		Count(&count).Error
	return count > 0, err
}

// Create relies on gorm's TranslateError so the unique index surfaces as gorm.ErrDuplicatedKey.
func (r *SalaryRepository) Create(ctx context.Context, row *payrollDatamodel.CalculatedSalary) error {
	err := r.db.WithContext(ctx).Create(row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewDuplicateError(fmt.Sprintf("salary for employee %s in %04d-%02d already exists", row.EmployeeID, row.PeriodYear, row.PeriodMonth), internal.ErrCodeDuplicateSalary)
	}
	return err
}

func (r *SalaryRepository) GetByID(ctx context.Context, id int64) (*payrollDatamodel.CalculatedSalary, error) {
	var row payrollDatamodel.CalculatedSalary
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *SalaryRepository) ListByStatus(ctx context.Context, orgID string, year, month int, status string) ([]*payrollDatamodel.CalculatedSalary, error) {
	var rows []*payrollDatamodel.CalculatedSalary
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND period_year = ? AND period_month = ? AND status = ?", orgID, year, month, status).
		Order("employee_id ASC").
		Find(&rows).Error
	return rows, err
}

// Approve is a single conditional UPDATE, so two concurrent transitions on
// the same row cannot both succeed.
func (r *SalaryRepository) Approve(ctx context.Context, id int64, approvedBy string, approvedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&payrollDatamodel.CalculatedSalary{}).
		Where("id = ? AND status = ?", id, string(payroll.StatusPending)).
		Updates(map[string]interface{}{
			"status":      string(payroll.StatusApproved),
			"approved_by": approvedBy,
			"approved_at": approvedAt,
			"updated_at":  approvedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *SalaryRepository) DeleteIfPending(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, string(payroll.StatusPending)).
		Delete(&payrollDatamodel.CalculatedSalary{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
