package payroll

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/internal/core/common/validation"
	"github.com/frahmantamala/payroll-management/internal/core/period"
	"github.com/frahmantamala/payroll-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	BulkCalculate(ctx context.Context, org internal.OrgContext, p period.Period) (*BatchResult, error)
	CalculateEmployees(ctx context.Context, org internal.OrgContext, p period.Period, employeeIDs []string) (*BatchResult, error)
	BulkSave(ctx context.Context, org internal.OrgContext, p period.Period, results []*CalculatedSalary) (*SaveSummary, error)
	ListPending(ctx context.Context, org internal.OrgContext, p period.Period) ([]*CalculatedSalary, error)
	ListApproved(ctx context.Context, org internal.OrgContext, p period.Period) ([]*CalculatedSalary, error)
	GetSalary(ctx context.Context, id int64) (*CalculatedSalary, error)
	Approve(ctx context.Context, id int64, approverID string) (*CalculatedSalary, error)
	BulkApprove(ctx context.Context, ids []int64, approverID string) (*BulkApproveResult, error)
	Reject(ctx context.Context, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	org, ok := internal.OrgFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "organization is required")
		return
	}

	var req CalculateRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	p, err := period.Parse(req.Period)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var result *BatchResult
	if len(req.EmployeeIDs) > 0 {
		result, err = h.Service.CalculateEmployees(r.Context(), org, p, req.EmployeeIDs)
	} else {
		result, err = h.Service.BulkCalculate(r.Context(), org, p)
	}
	if err != nil {
		h.Logger.Error("Calculate: service error", "error", err, "org_id", org.OrgID, "period", p.String())
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	org, ok := internal.OrgFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "organization is required")
		return
	}

	var req SaveRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	p, err := period.Parse(req.Period)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	summary, err := h.Service.BulkSave(r.Context(), org, p, req.Results)
	if err != nil {
		h.Logger.Error("Save: service error", "error", err, "org_id", org.OrgID, "period", p.String())
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("Save: batch persisted", "org_id", org.OrgID, "period", p.String(), "saved", summary.Saved, "failed", summary.Failed)
	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) ListSalaries(w http.ResponseWriter, r *http.Request) {
	org, ok := internal.OrgFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "organization is required")
		return
	}

	q := ListQuery{
		Period: r.URL.Query().Get("period"),
		Status: r.URL.Query().Get("status"),
	}
	if err := validation.Struct(q); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	p, err := period.Parse(q.Period)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	status := StatusPending
	if strings.EqualFold(q.Status, string(StatusApproved)) {
		status = StatusApproved
	}

	var salaries []*CalculatedSalary
	if status == StatusApproved {
		salaries, err = h.Service.ListApproved(r.Context(), org, p)
	} else {
		salaries, err = h.Service.ListPending(r.Context(), org, p)
	}
	if err != nil {
		h.Logger.Error("ListSalaries: service error", "error", err, "org_id", org.OrgID, "period", p.String())
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, SalariesResponse{Period: p.String(), Status: status, Salaries: salaries})
}

func (h *Handler) GetSalary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.salaryID(w, r)
	if !ok {
		return
	}

	salary, err := h.Service.GetSalary(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, SalaryResponse{Salary: salary})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	approverID := internal.UserIDFromContext(r.Context())
	if approverID == "" {
		h.HandleServiceError(w, internal.ErrMissingApprover)
		return
	}
	id, ok := h.salaryID(w, r)
	if !ok {
		return
	}

	salary, err := h.Service.Approve(r.Context(), id, approverID)
	if err != nil {
		h.Logger.Error("Approve: service error", "error", err, "salary_id", id, "approver_id", approverID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, SalaryResponse{Salary: salary})
}

func (h *Handler) BulkApprove(w http.ResponseWriter, r *http.Request) {
	approverID := internal.UserIDFromContext(r.Context())
	if approverID == "" {
		h.HandleServiceError(w, internal.ErrMissingApprover)
		return
	}

	var req BulkApproveRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.BulkApprove(r.Context(), req.IDs, approverID)
	if err != nil {
		h.Logger.Error("BulkApprove: service error", "error", err, "approver_id", approverID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.salaryID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Reject(r.Context(), id); err != nil {
		h.Logger.Error("Reject: service error", "error", err, "salary_id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) salaryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.HandleServiceError(w, internal.NewValidationFieldError("id", "invalid salary id", internal.ErrCodeInvalidID))
		return 0, false
	}
	return id, true
}
