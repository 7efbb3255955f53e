package attendance

// AttendanceSummary is the monthly aggregate produced by the attendance system.
type AttendanceSummary struct {
	EmployeeID  string `db:"employee_id"`
	PeriodYear  int    `db:"period_year"`
	PeriodMonth int    `db:"period_month"`
	PresentDays int    `db:"present_days"`
	TotalDays   int    `db:"total_days"`
}
