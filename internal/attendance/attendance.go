package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/payroll-management/internal"
	attendanceDatamodel "github.com/frahmantamala/payroll-management/internal/core/datamodel/attendance"
	"github.com/frahmantamala/payroll-management/internal/core/period"
)

type Summary struct {
	EmployeeID  string        `json:"employee_id"`
	Period      period.Period `json:"period"`
	PresentDays int           `json:"present_days"`
	TotalDays   int           `json:"total_days"`
}

func (s Summary) Validate() error {
	if s.TotalDays <= 0 {
		return internal.NewDomainError(fmt.Sprintf("attendance of %s for %s has no working days", s.EmployeeID, s.Period), internal.ErrCodeBadAttendance)
	}
	if s.PresentDays < 0 || s.PresentDays > s.TotalDays {
		return internal.NewDomainError(fmt.Sprintf("attendance of %s for %s: present days %d outside 0..%d", s.EmployeeID, s.Period, s.PresentDays, s.TotalDays), internal.ErrCodeBadAttendance)
	}
	return nil
}

func FromDataModel(row *attendanceDatamodel.AttendanceSummary) *Summary {
	return &Summary{
		EmployeeID:  row.EmployeeID,
		Period:      period.Period{Month: row.PeriodMonth, Year: row.PeriodYear},
		PresentDays: row.PresentDays,
		TotalDays:   row.TotalDays,
	}
}

func ToDataModel(s *Summary) *attendanceDatamodel.AttendanceSummary {
	return &attendanceDatamodel.AttendanceSummary{
		EmployeeID:  s.EmployeeID,
		PeriodYear:  s.Period.Year,
		PeriodMonth: s.Period.Month,
		PresentDays: s.PresentDays,
		TotalDays:   s.TotalDays,
	}
}

type RepositoryAPI interface {
	FindSummary(ctx context.Context, employeeID string, year, month int) (*attendanceDatamodel.AttendanceSummary, error)
	Save(ctx context.Context, row *attendanceDatamodel.AttendanceSummary) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// GetAttendanceSummary returns the validated monthly aggregate of employeeID.
func (s *Service) GetAttendanceSummary(ctx context.Context, employeeID string, p period.Period) (*Summary, error) {
	row, err := s.repo.FindSummary(ctx, employeeID, p.Year, p.Month)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, internal.NewTimeoutError(fmt.Sprintf("attendance lookup for %s timed out", employeeID), err)
		}
		return nil, internal.NewInternalError("failed to load attendance summary", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError(fmt.Sprintf("no attendance summary for employee %s in %s", employeeID, p), internal.ErrCodeAttendanceNotFound)
	}

	summary := FromDataModel(row)
	if err := summary.Validate(); err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *Service) RecordSummary(ctx context.Context, summary *Summary) error {
	if err := summary.Period.Validate(); err != nil {
		return err
	}
	if err := summary.Validate(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, ToDataModel(summary)); err != nil {
		s.logger.Error("failed to save attendance summary", "employee_id", summary.EmployeeID, "error", err)
		return internal.NewInternalError("failed to save attendance summary", err)
	}
	return nil
}
