// Package rbac turns the caller in the context plus an org's admin lists into an authorization decision.
package rbac

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"f3-catalog/backend/internal/org/repository"
	"f3-catalog/backend/internal/policy/engine"
	"f3-catalog/backend/internal/server/interceptors"
)

// AdminDirectory resolves an org's admins and its parent's admins. The org repositories implement it.
type AdminDirectory interface {
	AdminScope(ctx context.Context, orgID int64) (*repository.AdminScope, error)
}

// PolicyDecider evaluates the authorization policy. *engine.Authorizer implements it.
type PolicyDecider interface {
	Allow(ctx context.Context, in engine.Input) (bool, error)
}

// RequireOrgAdmin ensures the caller is authenticated and allowed by the policy to run kind against
// orgID. It returns the caller's user id, or a gRPC status error: Unauthenticated, NotFound,
// PermissionDenied or Internal.
func RequireOrgAdmin(ctx context.Context, dir AdminDirectory, policy PolicyDecider, orgID int64, kind string) (int64, error) {
	userID, ok := interceptors.GetUserID(ctx)
	if !ok || userID <= 0 {
		return 0, status.Error(codes.Unauthenticated, "user context required")
	}
	scope, err := dir.AdminScope(ctx, orgID)
	if err != nil {
		return 0, status.Error(codes.Internal, "failed to resolve org admins")
	}
	if scope == nil {
		return 0, status.Errorf(codes.NotFound, "org %d not found", orgID)
	}
	in := engine.Input{
		UserID:       userID,
		Kind:         kind,
		OrgID:        scope.OrgID,
		OrgType:      string(scope.OrgType),
		Admins:       scope.Admins,
		ParentAdmins: scope.ParentAdmins,
	}
	if scope.ParentID != nil {
		in.ParentID = *scope.ParentID
	}
	allowed, err := policy.Allow(ctx, in)
	if err != nil {
		return 0, status.Error(codes.Internal, "failed to evaluate policy")
	}
	if !allowed {
		return 0, status.Error(codes.PermissionDenied, "org admin required")
	}
	return userID, nil
}
