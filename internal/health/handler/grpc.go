package handler

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"f3-catalog/backend/internal/platform/logger"
	"f3-catalog/backend/internal/server/rpc"
)

// ServingStatus is the overall health of the service.
type ServingStatus string

const (
	StatusServing    ServingStatus = "SERVING"
	StatusNotServing ServingStatus = "NOT_SERVING"
)

// checkTimeout bounds each dependency check.
const checkTimeout = 2 * time.Second

// Pinger checks database connectivity. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks the policy engine. *engine.Authorizer implements it.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthCheckRequest struct{}

// HealthCheckResponse carries the overall status and one entry per failed check.
type HealthCheckResponse struct {
	Status ServingStatus     `json:"status"`
	Failed map[string]string `json:"failed,omitempty"`
}

// HealthServiceServer is the server API of f3.catalog.v1.HealthService.
type HealthServiceServer interface {
	HealthCheck(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error)
}

// HealthService_ServiceDesc is the grpc.ServiceDesc for HealthService.
var HealthService_ServiceDesc = rpc.ServiceDesc("HealthService", (*HealthServiceServer)(nil),
	rpc.Unary("HealthCheck", HealthServiceServer.HealthCheck),
)

// RegisterHealthServiceServer registers srv on s.
func RegisterHealthServiceServer(s grpc.ServiceRegistrar, srv HealthServiceServer) {
	s.RegisterService(&HealthService_ServiceDesc, srv)
}

// Server implements HealthService for readiness/liveness. Nil checkers are skipped.
type Server struct {
	db     Pinger
	policy PolicyChecker
	log    *logger.Logger
}

// NewServer returns a new Health gRPC server.
func NewServer(db Pinger, policy PolicyChecker, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{db: db, policy: policy, log: log}
}

// HealthCheck returns service health status for Kubernetes, load balancers, and CI. Failed checks
// are reported in the response, never as a gRPC error.
func (s *Server) HealthCheck(ctx context.Context, _ *HealthCheckRequest) (*HealthCheckResponse, error) {
	resp := &HealthCheckResponse{Status: StatusServing}
	checks := []struct {
		name string
		run  func(context.Context) error
	}{
		{"database", pingFunc(s.db)},
		{"policy", policyFunc(s.policy)},
	}
	for _, c := range checks {
		if c.run == nil {
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := c.run(cctx)
		cancel()
		if err == nil {
			continue
		}
		s.log.Warn("health check failed", "check", c.name, "error", err)
		if resp.Failed == nil {
			resp.Failed = make(map[string]string)
		}
		resp.Failed[c.name] = err.Error()
		resp.Status = StatusNotServing
	}
	return resp, nil
}

func pingFunc(p Pinger) func(context.Context) error {
	if p == nil {
		return nil
	}
	return p.PingContext
}

func policyFunc(p PolicyChecker) func(context.Context) error {
	if p == nil {
		return nil
	}
	return p.HealthCheck
}
