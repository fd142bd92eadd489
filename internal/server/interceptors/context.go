package interceptors

import (
	"context"
	"sync"
)

type contextKey struct{ name string }

var (
	userIDKey      = contextKey{"user_id"}
	requestIDKey   = contextKey{"request_id"}
	auditTargetKey = contextKey{"audit_target"}
)

// WithUserID returns a context carrying the authenticated caller.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID returns the authenticated caller and true if set.
func GetUserID(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(userIDKey).(int64)
	return v, ok
}

// WithRequestID returns a context carrying the request id used in logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request id, or "" outside an intercepted call.
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// auditTarget is filled in by the handler once it has decoded the request.
type auditTarget struct {
	mu     sync.Mutex
	orgID  int64
	action string
	set    bool
}

func withAuditTarget(ctx context.Context) (context.Context, *auditTarget) {
	t := &auditTarget{}
	return context.WithValue(ctx, auditTargetKey, t), t
}

// SetAuditTarget marks the call as a mutation of orgID described by action. Only marked calls are
// audited. It is a no-op outside the audit interceptor.
func SetAuditTarget(ctx context.Context, orgID int64, action string) {
	t, ok := ctx.Value(auditTargetKey).(*auditTarget)
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.orgID, t.action, t.set = orgID, action, true
}

func (t *auditTarget) get() (orgID int64, action string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.orgID, t.action, t.set
}
