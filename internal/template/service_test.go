package template_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/payroll-management/internal"
	templateDatamodel "github.com/frahmantamala/payroll-management/internal/core/datamodel/template"
	"github.com/frahmantamala/payroll-management/internal/template"
	templatePostgres "github.com/frahmantamala/payroll-management/internal/template/postgres"
	"github.com/frahmantamala/payroll-management/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Registry", func() {
	It("looks templates up by id and lists only active ones", func() {
		basic, err := template.NewTemplate(template.Params{
			Code: "BASIC", Category: template.CategoryEarning, IsActive: true,
			Method: template.PercentageConfig{CalculateOn: template.BaseBasicSalary, EmployeePercentage: dec("100")},
		})
		Expect(err).NotTo(HaveOccurred())
		basic.ID = 1

		old, err := template.NewTemplate(template.Params{
			Code: "OLD", Category: template.CategoryEarning,
			Method: template.FixedAmountConfig{Amount: dec("10")},
		})
		Expect(err).NotTo(HaveOccurred())
		old.ID = 2

		registry := template.NewRegistry(internal.OrgContext{OrgID: "acme"}, []*template.Template{basic, nil, old})

		Expect(registry.Len()).To(Equal(2))
		Expect(registry.Org().OrgID).To(Equal("acme"))

		found, ok := registry.Lookup(2)
		Expect(ok).To(BeTrue())
		Expect(found.Code).To(Equal("OLD"))

		_, ok = registry.Lookup(99)
		Expect(ok).To(BeFalse())

		Expect(registry.Active()).To(HaveLen(1))
		Expect(registry.Active()[0].Code).To(Equal("BASIC"))
	})
})

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		service *template.Service
		acme    internal.OrgContext
	)

	hra := func() template.Params {
		return template.Params{
			OrgID:             "acme",
			Code:              "HRA",
			Name:              "House Rent Allowance",
			Category:          template.CategoryEarning,
			Method:            template.PercentageConfig{CalculateOn: template.BaseBasicSalary, EmployeePercentage: dec("40")},
			IsAttendanceBased: true,
			IsActive:          true,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		db = newTestDB()
		service = template.NewService(templatePostgres.NewTemplateRepository(db), testLogger)
		acme = internal.OrgContext{OrgID: "acme"}
	})

	Describe("CreateTemplate", func() {
		It("stores a valid template and returns it with an id", func() {
			created, err := service.CreateTemplate(ctx, hra())
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(BeNumerically(">", 0))
			Expect(created.Usable()).To(Succeed())
		})

		It("keeps codes unique per organization", func() {
			_, err := service.CreateTemplate(ctx, hra())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateTemplate(ctx, hra())
			Expect(internal.IsKind(err, internal.ErrorTypeDuplicate)).To(BeTrue())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateTemplate))

			other := hra()
			other.OrgID = "globex"
			_, err = service.CreateTemplate(ctx, other)
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects an invalid definition before touching storage", func() {
			p := hra()
			p.Method = template.PercentageConfig{CalculateOn: template.BaseBasicSalary, EmployeePercentage: dec("140")}

			_, err := service.CreateTemplate(ctx, p)
			Expect(internal.IsKind(err, internal.ErrorTypeConfig)).To(BeTrue())

			var count int64
			Expect(db.Model(&templateDatamodel.PayrollTemplate{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
		})
	})

	Describe("GetTemplateRegistry", func() {
		It("snapshots every template of the organization", func() {
			created, err := service.CreateTemplate(ctx, hra())
			Expect(err).NotTo(HaveOccurred())

			registry, err := service.GetTemplateRegistry(ctx, acme)
			Expect(err).NotTo(HaveOccurred())

			loaded, ok := registry.Lookup(created.ID)
			Expect(ok).To(BeTrue())
			Expect(loaded.CalculationMethod()).To(Equal(template.MethodPercentage))
			Expect(loaded.Usable()).To(Succeed())

			empty, err := service.GetTemplateRegistry(ctx, internal.OrgContext{OrgID: "globex"})
			Expect(err).NotTo(HaveOccurred())
			Expect(empty.Len()).To(BeZero())
		})

		It("keeps a stored template whose config does not fit its method", func() {
			pct := dec("10")
			row := &templateDatamodel.PayrollTemplate{
				OrgID:             "acme",
				Code:              "BROKEN",
				Name:              "Broken",
				Category:          string(template.CategoryDeduction),
				CalculationMethod: string(template.MethodSlab),
				MethodConfig:      templateDatamodel.MethodConfig{Percentage: &pct},
				IsActive:          true,
			}
			Expect(db.Create(row).Error).To(Succeed())

			registry, err := service.GetTemplateRegistry(ctx, acme)
			Expect(err).NotTo(HaveOccurred())

			broken, ok := registry.Lookup(row.ID)
			Expect(ok).To(BeTrue())
			Expect(internal.IsKind(broken.Usable(), internal.ErrorTypeConfig)).To(BeTrue())
		})

		It("round-trips slab and formula configs through storage", func() {
			to := dec("15000")
			zero, flat := dec("0"), dec("200")
			_, err := service.CreateTemplate(ctx, template.Params{
				OrgID: "acme", Code: "PT", Category: template.CategoryDeduction, IsActive: true,
				Method: template.SlabConfig{CalculateOn: template.BaseGrossSalary, Brackets: []template.Bracket{
					{From: dec("0"), To: &to, Amount: &zero},
					{From: dec("15000"), Amount: &flat},
				}},
			})
			Expect(err).NotTo(HaveOccurred())

			formula, err := template.NewFormula("basic * 0.05")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateTemplate(ctx, template.Params{
				OrgID: "acme", Code: "CONV", Category: template.CategoryEarning, IsActive: true, Method: formula,
			})
			Expect(err).NotTo(HaveOccurred())

			registry, err := service.GetTemplateRegistry(ctx, acme)
			Expect(err).NotTo(HaveOccurred())
			for _, t := range registry.Active() {
				Expect(t.Usable()).To(Succeed(), t.Code)
			}

			var slab template.SlabConfig
			for _, t := range registry.Active() {
				if t.Code == "PT" {
					slab = t.Method.(template.SlabConfig)
				}
			}
			bracket, ok := slab.Find(dec("30500"))
			Expect(ok).To(BeTrue())
			Expect(bracket.Amount.Equal(flat)).To(BeTrue())
		})
	})

	Describe("DeactivateTemplate", func() {
		It("removes the template from the active set", func() {
			created, err := service.CreateTemplate(ctx, hra())
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeactivateTemplate(ctx, created.ID)).To(Succeed())

			active, err := service.GetActiveTemplates(ctx, acme)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(BeEmpty())
		})

		It("reports unknown templates as not found", func() {
			err := service.DeactivateTemplate(ctx, 404)
			Expect(err).To(MatchError(internal.ErrTemplateNotFound))
		})
	})

	Describe("Handler", func() {
		It("lists the caller's active templates", func() {
			_, err := service.CreateTemplate(ctx, hra())
			Expect(err).NotTo(HaveOccurred())

			h := template.NewHandler(transport.NewBaseHandler(testLogger), service)
			req := httptest.NewRequest(http.MethodGet, "/templates", nil)
			req = req.WithContext(internal.ContextWithOrg(req.Context(), acme))
			rec := httptest.NewRecorder()
			h.GetTemplates(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var resp template.TemplatesResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Templates).To(HaveLen(1))
			Expect(resp.Templates[0].Code).To(Equal("HRA"))
			Expect(resp.Templates[0].Usable).To(BeTrue())
		})

		It("needs an organization", func() {
			h := template.NewHandler(transport.NewBaseHandler(testLogger), service)
			rec := httptest.NewRecorder()
			h.GetTemplates(rec, httptest.NewRequest(http.MethodGet, "/templates", nil))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
