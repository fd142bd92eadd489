package repository

import (
	"context"

	"f3-catalog/backend/internal/org/domain"
)

// Repository loads and saves Org aggregates and serves flat read projections.
type Repository interface {
	// Get rebuilds the aggregate (inactive rows included) with the catalog snapshot installed.
	// It returns a domainerr not-found error when the org does not exist.
	Get(ctx context.Context, id int64) (*domain.Org, error)
	// Save applies and clears the aggregate's pending change records in one transaction, guarded by the
	// version the aggregate was loaded with.
	Save(ctx context.Context, o *domain.Org) error
	// ListChildren returns lightweight aggregates (collections not loaded) for the children of parentID.
	ListChildren(ctx context.Context, parentID int64, includeInactive bool) ([]*domain.Org, error)

	GetLocations(ctx context.Context, orgID int64, opts ListOptions) ([]LocationView, error)
	GetEventTypes(ctx context.Context, orgID int64, opts ListOptions) ([]EventTypeView, error)
	GetEventTags(ctx context.Context, orgID int64, opts ListOptions) ([]EventTagView, error)
	GetPositions(ctx context.Context, orgID int64, opts ListOptions) ([]PositionView, error)

	// AdminScope returns what authorization needs to know about an org; nil when the org does not exist.
	AdminScope(ctx context.Context, orgID int64) (*AdminScope, error)
}

// CatalogGetter supplies the global catalog snapshot installed on every loaded aggregate.
type CatalogGetter interface {
	Get(ctx context.Context) (domain.GlobalCatalog, error)
}

// ListOptions filters read projections. IncludeGlobal adds global rows (and, for positions, the parent
// org's rows); locations have no global rows and ignore it.
type ListOptions struct {
	IncludeGlobal bool
	OnlyActive    bool
}

// AdminScope describes an org and the admins allowed to manage it.
type AdminScope struct {
	OrgID        int64
	OrgType      domain.OrgType
	ParentID     *int64
	Admins       []int64
	ParentAdmins []int64
}

// AdminRoleName is the role row that marks org admins.
const AdminRoleName = "admin"
