package rest

import (
	"database/sql"
	"log/slog"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/internal/payroll"
	"github.com/frahmantamala/payroll-management/internal/template"
	"github.com/frahmantamala/payroll-management/internal/transport/middleware"
	"github.com/frahmantamala/payroll-management/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, cfg *internal.Config, templateHandler *template.Handler, payrollHandler *payroll.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(cfg.Server.Origins()))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.Identity(cfg.Payroll.DefaultOrgID))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// OpenAPI document and Swagger UI live outside the API prefix
	router.Handle(swagger.SpecPath, swagger.SpecHandler())
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if templateHandler != nil {
			r.Get("/templates", templateHandler.GetTemplates)
		}

		if payrollHandler == nil {
			return
		}

		r.Route("/payroll", func(pr chi.Router) {
			pr.Post("/calculate", payrollHandler.Calculate)
			pr.Post("/save", payrollHandler.Save)

			pr.Route("/salaries", func(sr chi.Router) {
				sr.Get("/", payrollHandler.ListSalaries)
				sr.Get("/{id}", payrollHandler.GetSalary)

				// State transitions need a named approver
				sr.Group(func(ar chi.Router) {
					ar.Use(middleware.RequireUser)
					ar.Post("/bulk-approve", payrollHandler.BulkApprove)
					ar.Patch("/{id}/approve", payrollHandler.Approve)
					ar.Patch("/{id}/reject", payrollHandler.Reject)
				})
			})
		})
	})
}
