package payroll_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/internal/core/events"
	"github.com/frahmantamala/payroll-management/internal/core/period"
	"github.com/frahmantamala/payroll-management/internal/payroll"
	"github.com/frahmantamala/payroll-management/internal/payroll/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Approvals", func() {
	var (
		ctx       context.Context
		repo      *postgres.SalaryRepository
		publisher *recordingPublisher
		approvals *payroll.Approvals
		fixedNow  time.Time
		ids       []int64
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = postgres.NewSalaryRepository(newTestDB())
		publisher = &recordingPublisher{}
		fixedNow = time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)
		approvals = payroll.NewApprovals(repo, publisher, testLogger).WithClock(func() time.Time { return fixedNow })

		summary := payroll.NewGate(repo, testLogger).CommitBatch(ctx, []*payroll.CalculatedSalary{
			salaryFor("E1"), salaryFor("E2"), salaryFor("E3"),
		})
		Expect(summary.Saved).To(Equal(3))
		ids = summary.IDs
	})

	Describe("Approve", func() {
		It("moves a pending record to APPROVED and records the approver", func() {
			salary, err := approvals.Approve(ctx, ids[0], "manager-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(salary.Status).To(Equal(payroll.StatusApproved))
			Expect(*salary.ApprovedBy).To(Equal("manager-1"))
			Expect(salary.ApprovedAt.Equal(fixedNow)).To(BeTrue())

			published := publisher.ofType(events.EventTypeSalaryApproved)
			Expect(published).To(HaveLen(1))
			approved := published[0].(*events.SalaryApprovedEvent)
			Expect(approved.SalaryID).To(Equal(ids[0]))
			Expect(approved.Period).To(Equal("2025-03"))
		})

		It("refuses to approve twice", func() {
			_, err := approvals.Approve(ctx, ids[0], "manager-1")
			Expect(err).NotTo(HaveOccurred())

			_, err = approvals.Approve(ctx, ids[0], "manager-2")
			Expect(internal.IsKind(err, internal.ErrorTypeInvalidTransition)).To(BeTrue())
			Expect(errors.Is(err, internal.ErrInvalidTransition)).To(BeTrue())
		})

		It("reports an unknown id as not found", func() {
			_, err := approvals.Approve(ctx, 9999, "manager-1")
			Expect(internal.IsKind(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})

		It("requires an approver", func() {
			_, err := approvals.Approve(ctx, ids[0], "")
			Expect(errors.Is(err, internal.ErrMissingApprover)).To(BeTrue())

			salary, err := approvals.Get(ctx, ids[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(salary.Status).To(Equal(payroll.StatusPending))
		})
	})

	Describe("Reject", func() {
		It("deletes a pending record", func() {
			Expect(approvals.Reject(ctx, ids[1])).To(Succeed())

			_, err := approvals.Get(ctx, ids[1])
			Expect(internal.IsKind(err, internal.ErrorTypeNotFound)).To(BeTrue())

			err = approvals.Reject(ctx, ids[1])
			Expect(internal.IsKind(err, internal.ErrorTypeNotFound)).To(BeTrue())
			Expect(publisher.ofType(events.EventTypeSalaryRejected)).To(HaveLen(1))
		})

		It("refuses to reject an approved record", func() {
			_, err := approvals.Approve(ctx, ids[1], "manager-1")
			Expect(err).NotTo(HaveOccurred())

			err = approvals.Reject(ctx, ids[1])
			Expect(internal.IsKind(err, internal.ErrorTypeInvalidTransition)).To(BeTrue())

			salary, err := approvals.Get(ctx, ids[1])
			Expect(err).NotTo(HaveOccurred())
			Expect(salary.Status).To(Equal(payroll.StatusApproved))
		})

		It("lets the employee be saved again after rejection", func() {
			Expect(approvals.Reject(ctx, ids[0])).To(Succeed())
			summary := payroll.NewGate(repo, testLogger).CommitBatch(ctx, []*payroll.CalculatedSalary{salaryFor("E1")})
			Expect(summary.Saved).To(Equal(1))
		})
	})

	It("lets only one of a concurrent approve and reject win", func() {
		var wg sync.WaitGroup
		var approveErr, rejectErr error
		wg.Add(2)
		go func() {
			defer GinkgoRecover()
			defer wg.Done()
			_, approveErr = approvals.Approve(ctx, ids[2], "manager-1")
		}()
		go func() {
			defer GinkgoRecover()
			defer wg.Done()
			rejectErr = approvals.Reject(ctx, ids[2])
		}()
		wg.Wait()

		Expect((approveErr == nil) != (rejectErr == nil)).To(BeTrue(), "approve: %v, reject: %v", approveErr, rejectErr)
	})

	Describe("BulkApprove", func() {
		It("approves what it can and reports the rest", func() {
			_, err := approvals.Approve(ctx, ids[1], "manager-1")
			Expect(err).NotTo(HaveOccurred())

			result, err := approvals.BulkApprove(ctx, []int64{ids[0], ids[1]}, "manager-2")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.ApprovedCount).To(Equal(1))
			Expect(result.Errors).To(HaveLen(1))
			Expect(result.Errors[0].ID).To(Equal(strconv.FormatInt(ids[1], 10)))
			Expect(result.Errors[0].Kind).To(Equal(internal.ErrorTypeInvalidTransition))
		})

		It("continues past unknown ids", func() {
			result, err := approvals.BulkApprove(ctx, []int64{9999, ids[0], ids[2]}, "manager-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.ApprovedCount).To(Equal(2))
			Expect(result.Errors[0].Kind).To(Equal(internal.ErrorTypeNotFound))
		})

		It("fails up front without an approver", func() {
			_, err := approvals.BulkApprove(ctx, ids, "")
			Expect(errors.Is(err, internal.ErrMissingApprover)).To(BeTrue())
		})
	})

	Describe("listing", func() {
		It("filters by status and period", func() {
			_, err := approvals.Approve(ctx, ids[0], "manager-1")
			Expect(err).NotTo(HaveOccurred())

			pending, err := approvals.ListPending(ctx, testOrg, march)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(2))

			approved, err := approvals.ListApproved(ctx, testOrg, march)
			Expect(err).NotTo(HaveOccurred())
			Expect(approved).To(HaveLen(1))
			Expect(approved[0].EmployeeID).To(Equal("E1"))

			other, err := approvals.ListPending(ctx, testOrg, period.Period{Month: 4, Year: 2025})
			Expect(err).NotTo(HaveOccurred())
			Expect(other).To(BeEmpty())
		})

		It("rejects an invalid period", func() {
			_, err := approvals.ListPending(ctx, testOrg, period.Period{Month: 0, Year: 2025})
			Expect(internal.IsKind(err, internal.ErrorTypeValidation)).To(BeTrue())
		})
	})
})
