package template

import (
	"context"
	"net/http"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/internal/transport"
)

type ServiceAPI interface {
	GetActiveTemplates(ctx context.Context, org internal.OrgContext) ([]TemplateResponse, error)
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

func (h *Handler) GetTemplates(w http.ResponseWriter, r *http.Request) {
	org, ok := internal.OrgFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "organization is required")
		return
	}

	templates, err := h.Service.GetActiveTemplates(r.Context(), org)
	if err != nil {
		h.Logger.Error("GetTemplates: failed to get templates", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, TemplatesResponse{
		Templates: templates,
	})
}
