package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextUserKey ctxKey = "userID"
	ContextOrgKey  ctxKey = "orgID"
)

// OrgContext identifies the organization a registry or structure lookup runs for.
// It is passed explicitly to every lookup; the request context only carries it
// from the transport layer to the handler.
type OrgContext struct {
	OrgID string `json:"org_id"`
}

func (o OrgContext) IsZero() bool {
	return o.OrgID == ""
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(ContextUserKey).(string); ok {
		return userID
	}
	return ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

func OrgFromContext(ctx context.Context) (OrgContext, bool) {
	if ctx == nil {
		return OrgContext{}, false
	}
	org, ok := ctx.Value(ContextOrgKey).(OrgContext)
	return org, ok && !org.IsZero()
}

func ContextWithOrg(ctx context.Context, org OrgContext) context.Context {
	return context.WithValue(ctx, ContextOrgKey, org)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
