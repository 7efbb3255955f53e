package payroll

type CalculateRequest struct {
	Period string `json:"period" validate:"required,period"`
	// EmployeeIDs narrows the batch; empty means every active employee of the org.
	EmployeeIDs []string `json:"employee_ids" validate:"omitempty,dive,required"`
}

type SaveRequest struct {
	Period string `json:"period" validate:"required,period"`
	// Entries are checked one by one when saved; a bad entry fails alone.
	Results []*CalculatedSalary `json:"results" validate:"required,min=1"`
}

type BulkApproveRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1"`
}

type ListQuery struct {
	Period string `json:"period" validate:"required,period"`
	Status string `json:"status" validate:"omitempty,oneof=pending approved PENDING APPROVED"`
}

type SalariesResponse struct {
	Period   string              `json:"period"`
	Status   Status              `json:"status"`
	Salaries []*CalculatedSalary `json:"salaries"`
}

type SalaryResponse struct {
	Salary *CalculatedSalary `json:"salary"`
}
