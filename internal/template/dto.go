package template

type TemplateResponse struct {
	ID                int64  `json:"id"`
	Code              string `json:"code"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	CalculationMethod string `json:"calculation_method"`
	IsAttendanceBased bool   `json:"is_attendance_based"`
	HasEmployerShare  bool   `json:"has_employer_share"`
	Usable            bool   `json:"usable"`
}

type TemplatesResponse struct {
	Templates []TemplateResponse `json:"templates"`
}
