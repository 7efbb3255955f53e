package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeSalaryApproved   = "salary.approved"
	EventTypeSalaryRejected   = "salary.rejected"
	EventTypePayrollBatchSave = "payroll.batch_saved"
)

type SalaryApprovedEvent struct {
	BaseEvent
	SalaryID   int64     `json:"salary_id"`
	EmployeeID string    `json:"employee_id"`
	Period     string    `json:"period"`
	ApprovedBy string    `json:"approved_by"`
	ApprovedAt time.Time `json:"approved_at"`
}

func NewSalaryApprovedEvent(salaryID int64, employeeID, period, approvedBy string, approvedAt time.Time) *SalaryApprovedEvent {
	return &SalaryApprovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSalaryApproved,
			Timestamp: approvedAt,
			Data: map[string]interface{}{
				"salary_id":   salaryID,
				"employee_id": employeeID,
				"period":      period,
				"approved_by": approvedBy,
			},
		},
		SalaryID:   salaryID,
		EmployeeID: employeeID,
		Period:     period,
		ApprovedBy: approvedBy,
		ApprovedAt: approvedAt,
	}
}

type SalaryRejectedEvent struct {
	BaseEvent
	SalaryID   int64  `json:"salary_id"`
	EmployeeID string `json:"employee_id"`
	Period     string `json:"period"`
}

func NewSalaryRejectedEvent(salaryID int64, employeeID, period string, at time.Time) *SalaryRejectedEvent {
	return &SalaryRejectedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSalaryRejected,
			Timestamp: at,
			Data: map[string]interface{}{
				"salary_id":   salaryID,
				"employee_id": employeeID,
				"period":      period,
			},
		},
		SalaryID:   salaryID,
		EmployeeID: employeeID,
		Period:     period,
	}
}

type PayrollBatchSavedEvent struct {
	BaseEvent
	OrgID  string `json:"org_id"`
	Period string `json:"period"`
	Saved  int    `json:"saved"`
	Failed int    `json:"failed"`
}

func NewPayrollBatchSavedEvent(orgID, period string, saved, failed int, at time.Time) *PayrollBatchSavedEvent {
	return &PayrollBatchSavedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePayrollBatchSave,
			Timestamp: at,
			Data: map[string]interface{}{
				"org_id": orgID,
				"period": period,
				"saved":  saved,
				"failed": failed,
			},
		},
		OrgID:  orgID,
		Period: period,
		Saved:  saved,
		Failed: failed,
	}
}
