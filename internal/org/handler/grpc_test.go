package handler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	auditdomain "f3-catalog/backend/internal/audit/domain"
	"f3-catalog/backend/internal/command"
	"f3-catalog/backend/internal/org/domain"
	"f3-catalog/backend/internal/org/repository"
	"f3-catalog/backend/internal/org/service"
	"f3-catalog/backend/internal/platform/logger"
	"f3-catalog/backend/internal/policy/engine"
	"f3-catalog/backend/internal/server/interceptors"
)

const (
	regionAdmin = int64(10)
	aoAdmin     = int64(20)
	stranger    = int64(99)
)

type fakeAuditRepo struct {
	logs                []*auditdomain.AuditLog
	gotLimit, gotOffset int
}

func (f *fakeAuditRepo) Create(_ context.Context, a *auditdomain.AuditLog) error {
	f.logs = append(f.logs, a)
	return nil
}

func (f *fakeAuditRepo) ListByOrg(_ context.Context, orgID int64, limit, offset int) ([]*auditdomain.AuditLog, error) {
	f.gotLimit, f.gotOffset = limit, offset
	var out []*auditdomain.AuditLog
	for _, l := range f.logs {
		if l.OrgID != nil && *l.OrgID == orgID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fixture struct {
	srv      *Server
	repo     *repository.MemoryRepository
	audits   *fakeAuditRepo
	regionID int64
	aoID     int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := repository.NewMemoryRepository()
	regionID := repo.CreateOrg(nil, domain.OrgTypeRegion, "Gotham", regionAdmin)
	aoID := repo.CreateOrg(&regionID, domain.OrgTypeAO, "The Pit", aoAdmin)
	authz, err := engine.NewAuthorizer(context.Background(), "")
	require.NoError(t, err)
	audits := &fakeAuditRepo{}
	commands := service.NewCommandHandler(repo, logger.Nop())
	return fixture{
		srv:      NewServer(commands, repo, authz, audits),
		repo:     repo,
		audits:   audits,
		regionID: regionID,
		aoID:     aoID,
	}
}

func as(userID int64) context.Context {
	return interceptors.WithUserID(context.Background(), userID)
}

func envelope(t *testing.T, kind command.Kind, payload any) *command.Envelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &command.Envelope{Kind: kind, Payload: raw}
}

func TestExecute_AdminAddsEventType(t *testing.T) {
	f := newFixture(t)
	req := envelope(t, command.KindAddEventType, map[string]any{
		"org_id": f.regionID, "name": "Bootcamp", "category": "first_f",
	})

	res, err := f.srv.Execute(as(regionAdmin), req)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Version)
	require.NotZero(t, res.EntityID)

	list, err := f.srv.ListEventTypes(as(stranger), &ListRequest{OrgID: f.regionID})
	require.NoError(t, err)
	require.Len(t, list.EventTypes, 1)
	require.Equal(t, res.EntityID, list.EventTypes[0].ID)
}

func TestExecute_ParentAdminManagesChild(t *testing.T) {
	f := newFixture(t)
	req := envelope(t, command.KindAddLocation, map[string]any{"org_id": f.aoID, "name": "Central Park"})

	_, err := f.srv.Execute(as(regionAdmin), req)
	require.NoError(t, err)

	// Child admins do not manage the parent.
	req = envelope(t, command.KindAddLocation, map[string]any{"org_id": f.regionID, "name": "Central Park"})
	_, err = f.srv.Execute(as(aoAdmin), req)
	require.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestExecute_Errors(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		ctx  context.Context
		req  *command.Envelope
		want codes.Code
	}{
		{
			name: "unauthenticated",
			ctx:  context.Background(),
			req:  envelope(t, command.KindAddEventTag, map[string]any{"org_id": f.regionID, "name": "Rain"}),
			want: codes.Unauthenticated,
		},
		{
			name: "not an admin",
			ctx:  as(stranger),
			req:  envelope(t, command.KindAddEventTag, map[string]any{"org_id": f.regionID, "name": "Rain"}),
			want: codes.PermissionDenied,
		},
		{
			name: "unknown org",
			ctx:  as(regionAdmin),
			req:  envelope(t, command.KindAddEventTag, map[string]any{"org_id": 404, "name": "Rain"}),
			want: codes.NotFound,
		},
		{
			name: "unknown kind",
			ctx:  as(regionAdmin),
			req:  &command.Envelope{Kind: "launch_rocket", Payload: json.RawMessage(`{}`)},
			want: codes.InvalidArgument,
		},
		{
			name: "invalid payload",
			ctx:  as(regionAdmin),
			req:  envelope(t, command.KindAddEventTag, map[string]any{"org_id": f.regionID, "name": "   "}),
			want: codes.InvalidArgument,
		},
		{
			name: "event command",
			ctx:  as(regionAdmin),
			req:  envelope(t, command.KindDeactivateSeries, map[string]any{"org_id": f.regionID, "series_id": 1}),
			want: codes.InvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.srv.Execute(tt.ctx, tt.req)
			require.Equal(t, tt.want, status.Code(err), "got %v", err)
		})
	}
}

func TestExecute_WithoutPolicySkipsAdminCheck(t *testing.T) {
	f := newFixture(t)
	srv := NewServer(service.NewCommandHandler(f.repo, logger.Nop()), f.repo, nil, nil)
	req := envelope(t, command.KindAddEventTag, map[string]any{"org_id": f.regionID, "name": "Rain"})

	_, err := srv.Execute(context.Background(), req)
	require.NoError(t, err)
}

func TestGetOrgAndListChildren(t *testing.T) {
	f := newFixture(t)
	ctx := as(stranger)

	org, err := f.srv.GetOrg(ctx, &GetOrgRequest{OrgID: f.regionID})
	require.NoError(t, err)
	require.Equal(t, "Gotham", org.Name)
	require.Equal(t, "region", org.Type)
	require.Equal(t, []int64{regionAdmin}, org.Admins)

	_, err = f.srv.GetOrg(ctx, &GetOrgRequest{OrgID: 404})
	require.Equal(t, codes.NotFound, status.Code(err))
	_, err = f.srv.GetOrg(ctx, &GetOrgRequest{})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	children, err := f.srv.ListChildren(ctx, &ListChildrenRequest{OrgID: f.regionID})
	require.NoError(t, err)
	require.Len(t, children.Orgs, 1)
	require.Equal(t, f.aoID, children.Orgs[0].ID)
	require.Equal(t, &f.regionID, children.Orgs[0].ParentID)
}

func TestListEndpoints_GlobalAndInactiveAreOptIn(t *testing.T) {
	f := newFixture(t)
	f.repo.PutEventTag(domain.EventTag{Name: "Heat", IsActive: true})
	admin := as(regionAdmin)

	res, err := f.srv.Execute(admin, envelope(t, command.KindAddEventTag, map[string]any{"org_id": f.regionID, "name": "Rain"}))
	require.NoError(t, err)
	_, err = f.srv.Execute(admin, envelope(t, command.KindSoftDeleteEventTag, map[string]any{
		"org_id": f.regionID, "event_tag_id": res.EntityID,
	}))
	require.NoError(t, err)

	tags, err := f.srv.ListEventTags(admin, &ListRequest{OrgID: f.regionID})
	require.NoError(t, err)
	require.Empty(t, tags.EventTags)
	require.NotNil(t, tags.EventTags)

	tags, err = f.srv.ListEventTags(admin, &ListRequest{OrgID: f.regionID, IncludeGlobal: true})
	require.NoError(t, err)
	require.Len(t, tags.EventTags, 1)
	require.Equal(t, repository.ScopeGlobal, tags.EventTags[0].Scope)

	tags, err = f.srv.ListEventTags(admin, &ListRequest{OrgID: f.regionID, IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, tags.EventTags, 1)
	require.False(t, tags.EventTags[0].IsActive)

	_, err = f.srv.ListLocations(admin, &ListRequest{})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestListPositions_IncludesParentRows(t *testing.T) {
	f := newFixture(t)
	_, err := f.srv.Execute(as(regionAdmin), envelope(t, command.KindAddPosition, map[string]any{
		"org_id": f.regionID, "name": "Nantan", "org_type": "ao",
	}))
	require.NoError(t, err)

	positions, err := f.srv.ListPositions(as(aoAdmin), &ListRequest{OrgID: f.aoID, IncludeGlobal: true})
	require.NoError(t, err)
	require.Len(t, positions.Positions, 1)
	require.Equal(t, "Nantan", positions.Positions[0].Name)
}

func TestListAuditLogs(t *testing.T) {
	f := newFixture(t)
	userID := regionAdmin
	f.audits.logs = []*auditdomain.AuditLog{
		{ID: "a", OrgID: &f.regionID, UserID: &userID, Action: "add_event_tag", Resource: "org", IP: "10.0.0.1",
			Metadata: []byte(`{"code":"OK"}`), CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{ID: "b", OrgID: &f.aoID, Action: "add_location", Resource: "org", IP: "unknown"},
	}

	res, err := f.srv.ListAuditLogs(as(regionAdmin), &ListAuditLogsRequest{OrgID: f.regionID, Limit: 10_000})
	require.NoError(t, err)
	require.Len(t, res.Logs, 1)
	require.Equal(t, "add_event_tag", res.Logs[0].Action)
	require.JSONEq(t, `{"code":"OK"}`, string(res.Logs[0].Metadata))
	require.Equal(t, maxAuditPage, f.audits.gotLimit)

	_, err = f.srv.ListAuditLogs(as(regionAdmin), &ListAuditLogsRequest{OrgID: f.regionID})
	require.NoError(t, err)
	require.Equal(t, defaultAuditPage, f.audits.gotLimit)

	_, err = f.srv.ListAuditLogs(as(stranger), &ListAuditLogsRequest{OrgID: f.regionID})
	require.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = f.srv.ListAuditLogs(as(regionAdmin), &ListAuditLogsRequest{OrgID: f.regionID, Offset: -1})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	srv := NewServer(nil, f.repo, nil, nil)
	_, err = srv.ListAuditLogs(as(regionAdmin), &ListAuditLogsRequest{OrgID: f.regionID})
	require.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestServiceDesc(t *testing.T) {
	require.Equal(t, "f3.catalog.v1.OrgService", OrgService_ServiceDesc.ServiceName)
	names := make([]string, 0, len(OrgService_ServiceDesc.Methods))
	for _, m := range OrgService_ServiceDesc.Methods {
		names = append(names, m.MethodName)
	}
	require.Contains(t, names, "Execute")
	require.Contains(t, names, "ListAuditLogs")
}
