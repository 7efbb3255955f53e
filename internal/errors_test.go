package internal_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/frahmantamala/payroll-management/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Errors", func() {
	It("classifies wrapped application errors", func() {
		err := fmt.Errorf("employee E1: %w", internal.NewNotFoundError("no structure", internal.ErrCodeStructureNotFound))
		Expect(internal.KindOf(err)).To(Equal(internal.ErrorTypeNotFound))
		Expect(errors.Is(err, internal.ErrStructureNotFound)).To(BeTrue())
		Expect(errors.Is(err, internal.ErrAttendanceNotFound)).To(BeFalse())
	})

	It("treats context deadlines as timeouts and anything else as internal", func() {
		Expect(internal.KindOf(context.DeadlineExceeded)).To(Equal(internal.ErrorTypeTimeout))
		Expect(internal.KindOf(errors.New("boom"))).To(Equal(internal.ErrorTypeInternal))
		Expect(internal.KindOf(nil)).To(BeEmpty())
	})

	It("builds per-item errors", func() {
		item := internal.NewItemError("E2", internal.ErrDuplicateSalary)
		Expect(item.ID).To(Equal("E2"))
		Expect(item.Kind).To(Equal(internal.ErrorTypeDuplicate))
		Expect(item.Message).NotTo(BeEmpty())
	})

	It("maps error kinds to HTTP statuses", func() {
		cases := map[*internal.AppError]int{
			internal.ErrSalaryNotFound:    http.StatusNotFound,
			internal.ErrDuplicateSalary:   http.StatusConflict,
			internal.ErrInvalidTransition: http.StatusConflict,
			internal.ErrMissingApprover:   http.StatusUnauthorized,
		}
		for err, want := range cases {
			status, _ := err.ToHTTPResponse()
			Expect(status).To(Equal(want), string(err.Code))
		}
	})

	It("never mutates sentinels when adding a cause", func() {
		cause := errors.New("driver")
		wrapped := internal.ErrDuplicateSalary.WithCause(cause)
		Expect(errors.Is(wrapped, cause)).To(BeTrue())
		Expect(internal.ErrDuplicateSalary.Cause).To(BeNil())
	})
})
