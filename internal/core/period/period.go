// Package period holds the payroll period value shared by attendance lookups,
// batch calculation and persisted salary records.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/payroll-management/internal"
)

const (
	minYear = 2000
	maxYear = 2100
)

type Period struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
	Year  int `json:"year" validate:"required,min=2000,max=2100"`
}

func New(month, year int) (Period, error) {
	p := Period{Month: month, Year: year}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Parse accepts "YYYY-MM".
func Parse(s string) (Period, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return Period{}, invalid(fmt.Sprintf("period %q must be formatted as YYYY-MM", s))
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Period{}, invalid(fmt.Sprintf("period %q has an invalid year", s))
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Period{}, invalid(fmt.Sprintf("period %q has an invalid month", s))
	}
	return New(month, year)
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return invalid(fmt.Sprintf("month must be between 1 and 12, got %d", p.Month))
	}
	if p.Year < minYear || p.Year > maxYear {
		return invalid(fmt.Sprintf("year must be between %d and %d, got %d", minYear, maxYear, p.Year))
	}
	return nil
}

func (p Period) IsZero() bool {
	return p.Month == 0 && p.Year == 0
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// FirstDay is midnight UTC on the first day of the period.
func (p Period) FirstDay() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End is midnight UTC on the first day of the following period.
func (p Period) End() time.Time {
	return p.FirstDay().AddDate(0, 1, 0)
}

func invalid(msg string) error {
	return internal.NewValidationFieldError("period", msg, internal.ErrCodeInvalidPeriod)
}
