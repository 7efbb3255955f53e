package payroll_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/internal/core/period"
	"github.com/frahmantamala/payroll-management/internal/payroll"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Calculator", func() {
	var (
		templates  *fakeTemplates
		structures *fakeStructures
		attendance *fakeAttendance
		calculator *payroll.Calculator
	)

	build := func(cfg payroll.CalculatorConfig) {
		calculator = payroll.NewCalculator(templates, structures, attendance, cfg, testLogger)
	}

	BeforeEach(func() {
		templates = &fakeTemplates{registry: standardRegistry()}
		structures = newFakeStructures("E1", "E3", "E4", "E5")
		attendance = newFakeAttendance("E1", "E2", "E3", "E4", "E5")
		build(payroll.CalculatorConfig{Workers: 4, LookupTimeout: time.Second})
	})

	It("isolates a failing employee from the rest of the batch", func() {
		result, err := calculator.CalculateBatch(context.Background(), testOrg, march, []string{"E1", "E2", "E3"})
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Summary).To(Equal(payroll.BatchSummary{Total: 3, Successful: 2, Failed: 1}))
		Expect(result.Errors).To(HaveLen(1))
		Expect(result.Errors[0].ID).To(Equal("E2"))
		Expect(result.Errors[0].Kind).To(Equal(internal.ErrorTypeNotFound))
		Expect(result.Errors[0].Message).NotTo(BeEmpty())
	})

	It("returns results in input order whatever the completion order", func() {
		structures.delays["E1"] = 40 * time.Millisecond
		structures.delays["E3"] = 20 * time.Millisecond

		result, err := calculator.CalculateBatch(context.Background(), testOrg, march, []string{"E1", "E3", "E4", "E5"})
		Expect(err).NotTo(HaveOccurred())

		ids := make([]string, len(result.Results))
		for i, r := range result.Results {
			ids[i] = r.EmployeeID
		}
		Expect(ids).To(Equal([]string{"E1", "E3", "E4", "E5"}))
	})

	It("gives every result a consistent net salary", func() {
		result, err := calculator.CalculateBatch(context.Background(), testOrg, march, []string{"E1", "E3", "E4"})
		Expect(err).NotTo(HaveOccurred())
		for _, r := range result.Results {
			Expect(r.NetSalary.Equal(r.GrossEarnings.Sub(r.TotalDeductions))).To(BeTrue())
		}
	})

	It("produces the same results on repeated runs", func() {
		ids := []string{"E1", "E2", "E3", "E4", "E5"}
		first, err := calculator.CalculateBatch(context.Background(), testOrg, march, ids)
		Expect(err).NotTo(HaveOccurred())
		second, err := calculator.CalculateBatch(context.Background(), testOrg, march, ids)
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(Equal(first))
	})

	It("reports a slow lookup as that employee's timeout", func() {
		build(payroll.CalculatorConfig{Workers: 2, LookupTimeout: 20 * time.Millisecond})
		structures.delays["E3"] = time.Second

		result, err := calculator.CalculateBatch(context.Background(), testOrg, march, []string{"E1", "E3", "E4"})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Summary).To(Equal(payroll.BatchSummary{Total: 3, Successful: 2, Failed: 1}))
		Expect(result.Errors[0].ID).To(Equal("E3"))
		Expect(result.Errors[0].Kind).To(Equal(internal.ErrorTypeTimeout))
	})

	It("returns the partial result when cancelled", func() {
		build(payroll.CalculatorConfig{Workers: 1, LookupTimeout: time.Second})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		structures.onLookup = func(id string) {
			if id == "E3" {
				cancel()
			}
		}

		result, err := calculator.CalculateBatch(ctx, testOrg, march, []string{"E1", "E3", "E4", "E5"})
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(result).NotTo(BeNil())
		Expect(result.Summary.Total).To(Equal(4))
		Expect(result.Summary.Successful).To(Equal(1))
		Expect(result.Summary.Failed).To(Equal(0))
		Expect(result.Summary.Unprocessed).To(Equal(3))
		Expect(result.Results[0].EmployeeID).To(Equal("E1"))
		Expect(structures.lookups()).NotTo(ContainElement("E5"))
	})

	It("bounds concurrency by the worker count", func() {
		build(payroll.CalculatorConfig{Workers: 2, LookupTimeout: time.Second})
		var inflight, peak int32
		structures.onLookup = func(string) {
			cur := atomic.AddInt32(&inflight, 1)
			defer atomic.AddInt32(&inflight, -1)
			for {
				p := atomic.LoadInt32(&peak)
				if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
		}

		_, err := calculator.CalculateBatch(context.Background(), testOrg, march, []string{"E1", "E3", "E4", "E5"})
		Expect(err).NotTo(HaveOccurred())
		Expect(atomic.LoadInt32(&peak)).To(BeNumerically("<=", 2))
	})

	It("rejects an invalid period before touching any employee", func() {
		_, err := calculator.CalculateBatch(context.Background(), testOrg, period.Period{Month: 13, Year: 2025}, []string{"E1"})
		Expect(internal.IsKind(err, internal.ErrorTypeValidation)).To(BeTrue())
		Expect(structures.lookups()).To(BeEmpty())
	})

	It("fails the whole batch when the registry cannot be loaded", func() {
		templates.err = internal.NewInternalError("registry down", nil)
		_, err := calculator.CalculateBatch(context.Background(), testOrg, march, []string{"E1"})
		Expect(err).To(HaveOccurred())
		Expect(structures.lookups()).To(BeEmpty())
	})

	It("handles an empty batch", func() {
		result, err := calculator.CalculateBatch(context.Background(), testOrg, march, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Summary).To(Equal(payroll.BatchSummary{}))
		Expect(result.Results).To(BeEmpty())
	})
})
