package interceptors

import (
	"context"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"f3-catalog/backend/internal/audit"
)

// EventLogger records one audit event. *audit.Logger implements it.
type EventLogger interface {
	LogEvent(ctx context.Context, e audit.Event)
}

// AuditUnary records an audit event for every authenticated call whose handler marked an audit
// target (see SetAuditTarget), whether or not the call succeeded. The action is the one the handler
// set, falling back to the method name.
func AuditUnary(events EventLogger, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if skipMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		ctx, target := withAuditTarget(ctx)
		resp, err := handler(ctx, req)

		userID, authenticated := GetUserID(ctx)
		orgID, action, marked := target.get()
		if !authenticated || !marked {
			return resp, err
		}
		ar := audit.ParseFullMethod(info.FullMethod)
		if action == "" {
			action = ar.Action
		}
		meta := map[string]any{
			"method": info.FullMethod,
			"code":   status.Code(err).String(),
		}
		if id := GetRequestID(ctx); id != "" {
			meta["request_id"] = id
		}
		events.LogEvent(ctx, audit.Event{
			OrgID:    orgID,
			UserID:   userID,
			Action:   action,
			Resource: ar.Resource,
			IP:       ClientIP(ctx),
			Metadata: meta,
		})
		return resp, err
	}
}

// ClientIP returns the client IP from gRPC metadata (x-forwarded-for, x-real-ip) or peer, or "unknown".
func ClientIP(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get("x-forwarded-for"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				if i := strings.Index(s, ","); i > 0 {
					s = strings.TrimSpace(s[:i])
				}
				return s
			}
		}
		if vals := md.Get("x-real-ip"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				return s
			}
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}
	return "unknown"
}
