package employee

type Employee struct {
	EmployeeID string `db:"employee_id"`
	OrgID      string `db:"org_id"`
	FullName   string `db:"full_name"`
	IsActive   bool   `db:"is_active"`
}
