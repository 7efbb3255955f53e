package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/internal/transport/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Identity", func() {
	var (
		org    internal.OrgContext
		hasOrg bool
		user   string
	)

	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		org, hasOrg = internal.OrgFromContext(r.Context())
		user = internal.UserIDFromContext(r.Context())
	})

	BeforeEach(func() {
		org, hasOrg, user = internal.OrgContext{}, false, ""
	})

	It("takes the caller and organization from gateway headers", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.HeaderOrgID, "globex")
		req.Header.Set(middleware.HeaderUserID, "manager-1")
		middleware.Identity("acme")(capture).ServeHTTP(httptest.NewRecorder(), req)

		Expect(hasOrg).To(BeTrue())
		Expect(org.OrgID).To(Equal("globex"))
		Expect(user).To(Equal("manager-1"))
	})

	It("uses the default organization when none is sent", func() {
		middleware.Identity("acme")(capture).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(org.OrgID).To(Equal("acme"))
		Expect(user).To(BeEmpty())
	})

	It("leaves the organization unset without a default", func() {
		middleware.Identity("")(capture).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(hasOrg).To(BeFalse())
	})
})

var _ = Describe("RequireUser", func() {
	It("rejects anonymous requests with the approver error", func() {
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

		rec := httptest.NewRecorder()
		middleware.RequireUser(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/x", nil))

		Expect(called).To(BeFalse())
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrMissingApprover.Code)))
	})

	It("passes identified callers through", func() {
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

		req := httptest.NewRequest(http.MethodPatch, "/x", nil)
		req = req.WithContext(internal.ContextWithUserID(req.Context(), "manager-1"))
		middleware.RequireUser(next).ServeHTTP(httptest.NewRecorder(), req)

		Expect(called).To(BeTrue())
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("turns a panic into a 500 body", func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		boom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") })

		rec := httptest.NewRecorder()
		middleware.RecoveryMiddleware(logger)(boom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	var (
		buf    *bytes.Buffer
		logger *slog.Logger
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		logger = slog.New(slog.NewJSONHandler(buf, nil))
	})

	It("masks salary figures and credentials", func() {
		echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"net_salary":"31337.77"}`))
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/save",
			strings.NewReader(`{"period":"2025-03","results":[{"employee_id":"E1","gross_earnings":"98765.43"}]}`))
		req.Header.Set("X-API-Key", "top-secret")
		middleware.LoggingMiddleware(logger)(echo).ServeHTTP(httptest.NewRecorder(), req)

		out := buf.String()
		Expect(out).To(ContainSubstring("E1"))
		Expect(out).To(ContainSubstring("[FILTERED]"))
		Expect(out).NotTo(ContainSubstring("98765.43"))
		Expect(out).NotTo(ContainSubstring("31337.77"))
		Expect(out).NotTo(ContainSubstring("top-secret"))
	})

	It("does not log successful response bodies", func() {
		ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"employee_id":"E-success"}`))
		})
		middleware.LoggingMiddleware(logger)(ok).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(buf.String()).To(ContainSubstring(`"status_code":200`))
		Expect(buf.String()).NotTo(ContainSubstring("E-success"))
	})

	It("keeps the request body readable for the handler", func() {
		var seen string
		read := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			seen = string(b)
		})
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"period":"2025-03"}`))
		middleware.LoggingMiddleware(logger)(read).ServeHTTP(httptest.NewRecorder(), req)

		Expect(seen).To(Equal(`{"period":"2025-03"}`))
	})
})
