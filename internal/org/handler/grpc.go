// Package handler serves OrgService: the org command endpoint plus the org read projections.
package handler

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	auditdomain "f3-catalog/backend/internal/audit/domain"
	auditrepo "f3-catalog/backend/internal/audit/repository"
	"f3-catalog/backend/internal/command"
	"f3-catalog/backend/internal/org/domain"
	"f3-catalog/backend/internal/org/repository"
	"f3-catalog/backend/internal/org/service"
	"f3-catalog/backend/internal/platform/rbac"
	"f3-catalog/backend/internal/server/interceptors"
	"f3-catalog/backend/internal/server/rpc"
)

// OrgServiceServer is the server API of f3.catalog.v1.OrgService.
type OrgServiceServer interface {
	Execute(context.Context, *command.Envelope) (*service.Result, error)
	GetOrg(context.Context, *GetOrgRequest) (*OrgView, error)
	ListChildren(context.Context, *ListChildrenRequest) (*ListChildrenResponse, error)
	ListLocations(context.Context, *ListRequest) (*ListLocationsResponse, error)
	ListEventTypes(context.Context, *ListRequest) (*ListEventTypesResponse, error)
	ListEventTags(context.Context, *ListRequest) (*ListEventTagsResponse, error)
	ListPositions(context.Context, *ListRequest) (*ListPositionsResponse, error)
	ListAuditLogs(context.Context, *ListAuditLogsRequest) (*ListAuditLogsResponse, error)
}

// OrgService_ServiceDesc is the grpc.ServiceDesc for OrgService.
var OrgService_ServiceDesc = rpc.ServiceDesc("OrgService", (*OrgServiceServer)(nil),
	rpc.Unary("Execute", OrgServiceServer.Execute),
	rpc.Unary("GetOrg", OrgServiceServer.GetOrg),
	rpc.Unary("ListChildren", OrgServiceServer.ListChildren),
	rpc.Unary("ListLocations", OrgServiceServer.ListLocations),
	rpc.Unary("ListEventTypes", OrgServiceServer.ListEventTypes),
	rpc.Unary("ListEventTags", OrgServiceServer.ListEventTags),
	rpc.Unary("ListPositions", OrgServiceServer.ListPositions),
	rpc.Unary("ListAuditLogs", OrgServiceServer.ListAuditLogs),
)

// RegisterOrgServiceServer registers srv on s.
func RegisterOrgServiceServer(s grpc.ServiceRegistrar, srv OrgServiceServer) {
	s.RegisterService(&OrgService_ServiceDesc, srv)
}

type GetOrgRequest struct {
	OrgID int64 `json:"org_id"`
}

// OrgView is an org with its profile and admin ids.
type OrgView struct {
	ID          int64   `json:"id"`
	ParentID    *int64  `json:"parent_id,omitempty"`
	Type        string  `json:"org_type"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Website     string  `json:"website,omitempty"`
	Email       string  `json:"email,omitempty"`
	Twitter     string  `json:"twitter,omitempty"`
	Facebook    string  `json:"facebook,omitempty"`
	Instagram   string  `json:"instagram,omitempty"`
	LogoURL     string  `json:"logo_url,omitempty"`
	Version     int64   `json:"version"`
	IsActive    bool    `json:"is_active"`
	Admins      []int64 `json:"admins,omitempty"`
}

type ListChildrenRequest struct {
	OrgID           int64 `json:"org_id"`
	IncludeInactive bool  `json:"include_inactive"`
}

type ListChildrenResponse struct {
	Orgs []OrgView `json:"orgs"`
}

// ListRequest selects one org's catalog rows. Global rows are opt-in; inactive rows are opt-in.
type ListRequest struct {
	OrgID           int64 `json:"org_id"`
	IncludeGlobal   bool  `json:"include_global"`
	IncludeInactive bool  `json:"include_inactive"`
}

type ListLocationsResponse struct {
	Locations []repository.LocationView `json:"locations"`
}

type ListEventTypesResponse struct {
	EventTypes []repository.EventTypeView `json:"event_types"`
}

type ListEventTagsResponse struct {
	EventTags []repository.EventTagView `json:"event_tags"`
}

type ListPositionsResponse struct {
	Positions []repository.PositionView `json:"positions"`
}

type ListAuditLogsRequest struct {
	OrgID  int64 `json:"org_id"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

type AuditLogView struct {
	ID        string          `json:"id"`
	UserID    *int64          `json:"user_id,omitempty"`
	Action    string          `json:"action"`
	Resource  string          `json:"resource"`
	IP        string          `json:"ip"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type ListAuditLogsResponse struct {
	Logs []AuditLogView `json:"logs"`
}

const (
	defaultAuditPage = 50
	maxAuditPage     = 500
)

// Server implements OrgServiceServer. A nil policy disables admin checks (local development without
// JWT keys); audits may be nil, in which case ListAuditLogs is Unimplemented.
type Server struct {
	commands *service.CommandHandler
	repo     repository.Repository
	policy   rbac.PolicyDecider
	audits   auditrepo.Repository
}

// NewServer returns a new OrgService server.
func NewServer(commands *service.CommandHandler, repo repository.Repository, policy rbac.PolicyDecider, audits auditrepo.Repository) *Server {
	return &Server{commands: commands, repo: repo, policy: policy, audits: audits}
}

// Execute decodes one org command, checks the caller is an admin of the target org (or its parent)
// and runs it.
func (s *Server) Execute(ctx context.Context, req *command.Envelope) (*service.Result, error) {
	cmd, err := command.Decode(*req)
	if err != nil {
		return nil, rpc.Error(err)
	}
	if cmd.Kind().IsEvent() {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be sent to EventService", cmd.Kind())
	}
	interceptors.SetAuditTarget(ctx, cmd.TargetOrg(), string(cmd.Kind()))
	actorID, err := s.authorize(ctx, cmd.TargetOrg(), string(cmd.Kind()))
	if err != nil {
		return nil, err
	}
	res, err := s.commands.Execute(ctx, actorID, cmd)
	if err != nil {
		return nil, rpc.Error(err)
	}
	return &res, nil
}

func (s *Server) GetOrg(ctx context.Context, req *GetOrgRequest) (*OrgView, error) {
	if req.OrgID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "org_id required")
	}
	o, err := s.repo.Get(ctx, req.OrgID)
	if err != nil {
		return nil, rpc.Error(err)
	}
	v := orgView(o)
	return &v, nil
}

func (s *Server) ListChildren(ctx context.Context, req *ListChildrenRequest) (*ListChildrenResponse, error) {
	if req.OrgID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "org_id required")
	}
	children, err := s.repo.ListChildren(ctx, req.OrgID, req.IncludeInactive)
	if err != nil {
		return nil, rpc.Error(err)
	}
	out := &ListChildrenResponse{Orgs: make([]OrgView, 0, len(children))}
	for _, o := range children {
		out.Orgs = append(out.Orgs, orgView(o))
	}
	return out, nil
}

func (s *Server) ListLocations(ctx context.Context, req *ListRequest) (*ListLocationsResponse, error) {
	opts, err := listOptions(req)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.GetLocations(ctx, req.OrgID, opts)
	if err != nil {
		return nil, rpc.Error(err)
	}
	return &ListLocationsResponse{Locations: nonNil(rows)}, nil
}

func (s *Server) ListEventTypes(ctx context.Context, req *ListRequest) (*ListEventTypesResponse, error) {
	opts, err := listOptions(req)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.GetEventTypes(ctx, req.OrgID, opts)
	if err != nil {
		return nil, rpc.Error(err)
	}
	return &ListEventTypesResponse{EventTypes: nonNil(rows)}, nil
}

func (s *Server) ListEventTags(ctx context.Context, req *ListRequest) (*ListEventTagsResponse, error) {
	opts, err := listOptions(req)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.GetEventTags(ctx, req.OrgID, opts)
	if err != nil {
		return nil, rpc.Error(err)
	}
	return &ListEventTagsResponse{EventTags: nonNil(rows)}, nil
}

func (s *Server) ListPositions(ctx context.Context, req *ListRequest) (*ListPositionsResponse, error) {
	opts, err := listOptions(req)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.GetPositions(ctx, req.OrgID, opts)
	if err != nil {
		return nil, rpc.Error(err)
	}
	return &ListPositionsResponse{Positions: nonNil(rows)}, nil
}

// ListAuditLogs pages through the org's audit trail, newest first. Caller must be an org admin.
func (s *Server) ListAuditLogs(ctx context.Context, req *ListAuditLogsRequest) (*ListAuditLogsResponse, error) {
	if s.audits == nil {
		return nil, status.Error(codes.Unimplemented, "method ListAuditLogs not implemented")
	}
	if req.OrgID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "org_id required")
	}
	if req.Offset < 0 {
		return nil, status.Error(codes.InvalidArgument, "offset must not be negative")
	}
	if _, err := s.authorize(ctx, req.OrgID, "list_audit_logs"); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultAuditPage
	}
	limit = min(limit, maxAuditPage)
	logs, err := s.audits.ListByOrg(ctx, req.OrgID, limit, req.Offset)
	if err != nil {
		return nil, rpc.Error(err)
	}
	out := &ListAuditLogsResponse{Logs: make([]AuditLogView, 0, len(logs))}
	for _, l := range logs {
		out.Logs = append(out.Logs, auditLogView(l))
	}
	return out, nil
}

// authorize returns the caller's user id. Without a policy every caller is allowed and the id is
// whatever the auth interceptor put in the context (0 when auth is disabled).
func (s *Server) authorize(ctx context.Context, orgID int64, kind string) (int64, error) {
	if s.policy == nil {
		userID, _ := interceptors.GetUserID(ctx)
		return userID, nil
	}
	return rbac.RequireOrgAdmin(ctx, s.repo, s.policy, orgID, kind)
}

func listOptions(req *ListRequest) (repository.ListOptions, error) {
	if req.OrgID <= 0 {
		return repository.ListOptions{}, status.Error(codes.InvalidArgument, "org_id required")
	}
	return repository.ListOptions{IncludeGlobal: req.IncludeGlobal, OnlyActive: !req.IncludeInactive}, nil
}

func orgView(o *domain.Org) OrgView {
	return OrgView{
		ID:          o.ID,
		ParentID:    o.ParentID,
		Type:        string(o.Type),
		Name:        o.Name,
		Description: o.Profile.Description,
		Website:     o.Profile.Website,
		Email:       o.Profile.Email,
		Twitter:     o.Profile.Twitter,
		Facebook:    o.Profile.Facebook,
		Instagram:   o.Profile.Instagram,
		LogoURL:     o.Profile.LogoURL,
		Version:     o.Version,
		IsActive:    o.IsActive,
		Admins:      o.Admins(),
	}
}

func auditLogView(l *auditdomain.AuditLog) AuditLogView {
	v := AuditLogView{
		ID:        l.ID,
		UserID:    l.UserID,
		Action:    l.Action,
		Resource:  l.Resource,
		IP:        l.IP,
		CreatedAt: l.CreatedAt,
	}
	if len(l.Metadata) > 0 {
		v.Metadata = json.RawMessage(l.Metadata)
	}
	return v
}

// nonNil keeps empty lists as [] on the wire.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
