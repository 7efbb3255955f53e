package structure_test

import (
	"context"
	"time"

	"github.com/frahmantamala/payroll-management/internal"
	structureDatamodel "github.com/frahmantamala/payroll-management/internal/core/datamodel/structure"
	"github.com/frahmantamala/payroll-management/internal/core/period"
	"github.com/frahmantamala/payroll-management/internal/structure"
	structurePostgres "github.com/frahmantamala/payroll-management/internal/structure/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var march = period.Period{Month: 3, Year: 2025}

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		service *structure.Service
		acme    internal.OrgContext
	)

	BeforeEach(func() {
		ctx = context.Background()
		acme = internal.OrgContext{OrgID: "acme"}

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			TranslateError: true,
			Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&structureDatamodel.SalaryStructure{}, &structureDatamodel.StructureComponent{})).To(Succeed())

		service = structure.NewService(structurePostgres.NewStructureRepository(db), testLogger)
	})

	create := func(effective time.Time, basic string, components ...structure.Component) {
		st, err := structure.NewStructure("acme", "E1", effective, dec(basic), dec(basic), dec(basic), components)
		Expect(err).NotTo(HaveOccurred())
		Expect(service.CreateStructure(ctx, st)).To(Succeed())
		Expect(st.ID).To(BeNumerically(">", 0))
	}

	It("returns the latest structure with components in stored order", func() {
		create(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "15000",
			structure.Component{ComponentID: 1, Enabled: true})
		create(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "20000",
			structure.Component{ComponentID: 4, Enabled: true, OverrideValue: decPtr("2500")},
			structure.Component{ComponentID: 1, Enabled: true},
			structure.Component{ComponentID: 3, Enabled: false})

		st, err := service.GetEmployeeStructure(ctx, acme, "E1", march)
		Expect(err).NotTo(HaveOccurred())
		Expect(st.BasicSalary.Equal(dec("20000"))).To(BeTrue())
		Expect(st.Components).To(HaveLen(3))
		Expect(st.Components[0].ComponentID).To(Equal(int64(4)))
		Expect(st.Components[0].OverrideValue.Equal(dec("2500"))).To(BeTrue())
		Expect(st.Components[1].OverrideValue).To(BeNil())
		Expect(st.Components[2].Enabled).To(BeFalse())
	})

	It("ignores structures that take effect after the period", func() {
		create(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "20000")
		create(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), "22000")
		create(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), "25000")

		st, err := service.GetEmployeeStructure(ctx, acme, "E1", march)
		Expect(err).NotTo(HaveOccurred())
		Expect(st.BasicSalary.Equal(dec("22000"))).To(BeTrue())

		st, err = service.GetEmployeeStructure(ctx, acme, "E1", period.Period{Month: 2, Year: 2025})
		Expect(err).NotTo(HaveOccurred())
		Expect(st.BasicSalary.Equal(dec("20000"))).To(BeTrue())

		_, err = service.GetEmployeeStructure(ctx, acme, "E1", period.Period{Month: 12, Year: 2024})
		Expect(err).To(MatchError(internal.ErrStructureNotFound))
	})

	It("reports a missing structure as not found", func() {
		_, err := service.GetEmployeeStructure(ctx, acme, "E404", march)
		Expect(err).To(MatchError(internal.ErrStructureNotFound))
	})

	It("scopes lookups to the organization", func() {
		create(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "20000")

		_, err := service.GetEmployeeStructure(ctx, internal.OrgContext{OrgID: "globex"}, "E1", march)
		Expect(internal.IsKind(err, internal.ErrorTypeNotFound)).To(BeTrue())
	})

	It("validates before storing", func() {
		st := &structure.EmployeeSalaryStructure{OrgID: "acme", EmployeeID: "E1", BasicSalary: dec("-5")}
		err := service.CreateStructure(ctx, st)
		Expect(internal.IsKind(err, internal.ErrorTypeConfig)).To(BeTrue())
	})
})
