package middleware

import (
	"net/http"
	"strings"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/pkg/logger"
)

const (
	HeaderUserID = "X-User-ID"
	HeaderOrgID  = "X-Org-ID"
)

// Identity reads the caller and organization set by the upstream gateway.
// Requests without X-Org-ID act on defaultOrg.
func Identity(defaultOrg string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			orgID := strings.TrimSpace(r.Header.Get(HeaderOrgID))
			if orgID == "" {
				orgID = defaultOrg
			}
			if orgID != "" {
				ctx = internal.ContextWithOrg(ctx, internal.OrgContext{OrgID: orgID})
				ctx = logger.With(ctx, "org_id", orgID)
			}

			if userID := strings.TrimSpace(r.Header.Get(HeaderUserID)); userID != "" {
				ctx = internal.ContextWithUserID(ctx, userID)
				ctx = logger.With(ctx, "user_id", userID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
