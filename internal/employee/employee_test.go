package employee_test

import (
	"context"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/internal/employee"
	employeePostgres "github.com/frahmantamala/payroll-management/internal/employee/postgres"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var _ = Describe("Directory", func() {
	var (
		ctx       context.Context
		db        *sqlx.DB
		directory *employee.Directory
		acme      internal.OrgContext
	)

	BeforeEach(func() {
		ctx = context.Background()
		acme = internal.OrgContext{OrgID: "acme"}

		gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := gdb.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		db = sqlx.NewDb(sqlDB, "sqlite3")
		db.MustExec(`
			CREATE TABLE employees (
				employee_id TEXT PRIMARY KEY,
				org_id TEXT NOT NULL,
				full_name TEXT NOT NULL,
				is_active BOOLEAN NOT NULL
			)`)

		directory = employee.NewDirectory(employeePostgres.NewEmployeeRepository(db), testLogger)
	})

	AfterEach(func() {
		_ = db.Close()
	})

	It("lists active employees of the organization in id order", func() {
		Expect(directory.Register(ctx, acme, "E3", "Citra")).To(Succeed())
		Expect(directory.Register(ctx, acme, "E1", "Ayu")).To(Succeed())
		Expect(directory.Register(ctx, internal.OrgContext{OrgID: "globex"}, "G1", "Gita")).To(Succeed())
		db.MustExec(`INSERT INTO employees VALUES ('E2', 'acme', 'Budi', false)`)

		ids, err := directory.ListActiveEmployees(ctx, acme)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(Equal([]string{"E1", "E3"}))
	})

	It("returns an empty list for an organization without staff", func() {
		ids, err := directory.ListActiveEmployees(ctx, acme)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(BeEmpty())
	})

	It("requires an employee id", func() {
		err := directory.Register(ctx, acme, "", "Nobody")
		Expect(internal.IsKind(err, internal.ErrorTypeValidation)).To(BeTrue())
	})

	It("wraps storage failures as internal errors", func() {
		Expect(directory.Register(ctx, acme, "E1", "Ayu")).To(Succeed())
		err := directory.Register(ctx, acme, "E1", "Ayu again")
		Expect(internal.IsKind(err, internal.ErrorTypeInternal)).To(BeTrue())
	})
})
