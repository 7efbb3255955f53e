package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/pkg/logger"
)

// RequireUser rejects requests that carry no caller identity. Approval
// routes sit behind it so every transition has an approver.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if internal.UserIDFromContext(r.Context()) != "" {
			next.ServeHTTP(w, r)
			return
		}

		logger.From(r.Context()).Warn("access denied: no caller identity",
			"method", r.Method,
			"path", r.URL.Path)

		status, body := internal.ErrMissingApprover.ToHTTPResponse()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
}
