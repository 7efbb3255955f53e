package rest_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/internal/core/period"
	"github.com/frahmantamala/payroll-management/internal/payroll"
	"github.com/frahmantamala/payroll-management/internal/template"
	"github.com/frahmantamala/payroll-management/internal/transport"
	"github.com/frahmantamala/payroll-management/internal/transport/rest"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type payrollStub struct {
	approvedBy string
	org        internal.OrgContext
}

func (s *payrollStub) BulkCalculate(ctx context.Context, org internal.OrgContext, p period.Period) (*payroll.BatchResult, error) {
	s.org = org
	return &payroll.BatchResult{Period: p}, nil
}

func (s *payrollStub) CalculateEmployees(ctx context.Context, org internal.OrgContext, p period.Period, ids []string) (*payroll.BatchResult, error) {
	s.org = org
	return &payroll.BatchResult{Period: p}, nil
}

func (s *payrollStub) BulkSave(ctx context.Context, org internal.OrgContext, p period.Period, results []*payroll.CalculatedSalary) (*payroll.SaveSummary, error) {
	return &payroll.SaveSummary{}, nil
}

func (s *payrollStub) ListPending(ctx context.Context, org internal.OrgContext, p period.Period) ([]*payroll.CalculatedSalary, error) {
	return nil, nil
}

func (s *payrollStub) ListApproved(ctx context.Context, org internal.OrgContext, p period.Period) ([]*payroll.CalculatedSalary, error) {
	return nil, nil
}

func (s *payrollStub) GetSalary(ctx context.Context, id int64) (*payroll.CalculatedSalary, error) {
	return &payroll.CalculatedSalary{ID: id}, nil
}

func (s *payrollStub) Approve(ctx context.Context, id int64, approverID string) (*payroll.CalculatedSalary, error) {
	s.approvedBy = approverID
	return &payroll.CalculatedSalary{ID: id, Status: payroll.StatusApproved}, nil
}

func (s *payrollStub) BulkApprove(ctx context.Context, ids []int64, approverID string) (*payroll.BulkApproveResult, error) {
	return &payroll.BulkApproveResult{ApprovedCount: len(ids)}, nil
}

func (s *payrollStub) Reject(ctx context.Context, id int64) error {
	return nil
}

type templateStub struct{}

func (templateStub) GetActiveTemplates(ctx context.Context, org internal.OrgContext) ([]template.TemplateResponse, error) {
	return []template.TemplateResponse{{ID: 1, Code: "BASIC"}}, nil
}

func openDB() *sql.DB {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
	Expect(err).NotTo(HaveOccurred())
	db, err := gdb.DB()
	Expect(err).NotTo(HaveOccurred())
	return db
}

var _ = Describe("RegisterAllRoutes", func() {
	var (
		router *chi.Mux
		stub   *payrollStub
		db     *sql.DB
	)

	build := func(db *sql.DB) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		base := transport.NewBaseHandler(logger)
		cfg := &internal.Config{
			Server:  internal.ServerConfig{AllowedOrigins: "https://hr.example.com"},
			Payroll: internal.PayrollConfig{DefaultOrgID: "acme"},
		}
		stub = &payrollStub{}
		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, db, cfg,
			template.NewHandler(base, templateStub{}),
			payroll.NewHandler(base, stub),
			logger)
	}

	serve := func(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		db = openDB()
		build(db)
	})

	AfterEach(func() {
		_ = db.Close()
	})

	It("answers ping", func() {
		rec := serve(http.MethodGet, "/api/v1/ping", "", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("reports a healthy database", func() {
		rec := serve(http.MethodGet, "/api/v1/health", "", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))

		var resp rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal(rest.HealthHealthy))
		Expect(resp.Components).To(HaveKey("database"))
	})

	It("reports an unreachable database as unavailable", func() {
		Expect(db.Close()).To(Succeed())
		rec := serve(http.MethodGet, "/api/v1/health", "", nil)
		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
	})

	It("serves the api document", func() {
		rec := serve(http.MethodGet, "/openapi.yml", "", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/yaml"))
	})

	It("falls back to the default organization", func() {
		rec := serve(http.MethodPost, "/api/v1/payroll/calculate", `{"period":"2025-03"}`, nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(stub.org.OrgID).To(Equal("acme"))

		rec = serve(http.MethodPost, "/api/v1/payroll/calculate", `{"period":"2025-03"}`, map[string]string{"X-Org-ID": "globex"})
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(stub.org.OrgID).To(Equal("globex"))
	})

	It("lists templates", func() {
		rec := serve(http.MethodGet, "/api/v1/templates", "", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("BASIC"))
	})

	It("requires a caller for state transitions", func() {
		rec := serve(http.MethodPatch, "/api/v1/payroll/salaries/3/approve", "", nil)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))

		rec = serve(http.MethodPatch, "/api/v1/payroll/salaries/3/approve", "", map[string]string{"X-User-ID": "manager-1"})
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(stub.approvedBy).To(Equal("manager-1"))
	})

	It("reads salaries without a caller", func() {
		rec := serve(http.MethodGet, "/api/v1/payroll/salaries/3", "", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("echoes a trace id", func() {
		rec := serve(http.MethodGet, "/api/v1/ping", "", map[string]string{"X-Trace-ID": "trace-42"})
		Expect(rec.Header().Get("X-Trace-ID")).To(Equal("trace-42"))
	})

	It("answers CORS preflight for allowed origins", func() {
		rec := serve(http.MethodOptions, "/api/v1/payroll/calculate", "", map[string]string{
			"Origin":                        "https://hr.example.com",
			"Access-Control-Request-Method": http.MethodPost,
		})
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://hr.example.com"))
	})
})
