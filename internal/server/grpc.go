// Package server wires the catalog gRPC services and the server-wide interceptor chain.
package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	auditrepo "f3-catalog/backend/internal/audit/repository"
	eventhandler "f3-catalog/backend/internal/event/handler"
	eventservice "f3-catalog/backend/internal/event/service"
	healthhandler "f3-catalog/backend/internal/health/handler"
	orghandler "f3-catalog/backend/internal/org/handler"
	orgrepo "f3-catalog/backend/internal/org/repository"
	orgservice "f3-catalog/backend/internal/org/service"
	"f3-catalog/backend/internal/platform/logger"
	"f3-catalog/backend/internal/platform/rbac"
	"f3-catalog/backend/internal/server/interceptors"
	_ "f3-catalog/backend/internal/server/jsoncodec"
	"f3-catalog/backend/internal/server/rpc"
)

// HealthCheckMethod is the only method callable without an access token.
var HealthCheckMethod = rpc.FullMethod(healthhandler.HealthService_ServiceDesc.ServiceName, "HealthCheck")

// Deps holds the service dependencies for gRPC handlers.
type Deps struct {
	OrgCommands   *orgservice.CommandHandler
	EventCommands *eventservice.CommandHandler
	// OrgRepo serves the org read RPCs and resolves admins for authorization.
	OrgRepo orgrepo.Repository
	// Policy decides admin checks. If nil, commands run without admin checks (auth disabled).
	Policy rbac.PolicyDecider
	// AuditRepo backs ListAuditLogs. If nil, ListAuditLogs returns Unimplemented.
	AuditRepo auditrepo.Repository
	// HealthPinger is used by HealthService for readiness (e.g. *sql.DB). If nil, HealthCheck skips DB ping.
	HealthPinger healthhandler.Pinger
	// HealthPolicyChecker is used by HealthService for readiness (e.g. the OPA authorizer). If nil, HealthCheck skips policy check.
	HealthPolicyChecker healthhandler.PolicyChecker
	Logger              *logger.Logger
}

// RegisterServices registers all catalog gRPC services with the given server.
//
// Service → handler mapping:
//   - OrgService    → internal/org/handler
//   - EventService  → internal/event/handler
//   - HealthService → internal/health/handler
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	orghandler.RegisterOrgServiceServer(s, orghandler.NewServer(deps.OrgCommands, deps.OrgRepo, deps.Policy, deps.AuditRepo))
	eventhandler.RegisterEventServiceServer(s, eventhandler.NewServer(deps.EventCommands, deps.OrgRepo, deps.Policy))
	healthhandler.RegisterHealthServiceServer(s, healthhandler.NewServer(deps.HealthPinger, deps.HealthPolicyChecker, deps.Logger))
}

// Chain holds what the unary interceptor chain needs.
type Chain struct {
	// Tokens validates access tokens. If nil, AuthUnary is not installed and every caller is anonymous.
	Tokens interceptors.TokenValidator
	// Audit records audit events. If nil, no calls are audited.
	Audit  interceptors.EventLogger
	Logger *logger.Logger
}

// ServerOptions returns the OTel stats handler plus the interceptor chain Auth → Logging → Audit.
func ServerOptions(c Chain) []grpc.ServerOption {
	public := map[string]bool{HealthCheckMethod: true}
	log := c.Logger
	if log == nil {
		log = logger.Nop()
	}
	var chain []grpc.UnaryServerInterceptor
	if c.Tokens != nil {
		chain = append(chain, interceptors.AuthUnary(c.Tokens, public))
	}
	chain = append(chain, interceptors.LoggingUnary(log))
	if c.Audit != nil {
		chain = append(chain, interceptors.AuditUnary(c.Audit, public))
	}
	return []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(chain...),
	}
}
