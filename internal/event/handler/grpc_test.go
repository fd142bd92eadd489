package handler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"f3-catalog/backend/internal/command"
	"f3-catalog/backend/internal/event/domain"
	"f3-catalog/backend/internal/event/repository"
	"f3-catalog/backend/internal/event/service"
	orgdomain "f3-catalog/backend/internal/org/domain"
	orgrepo "f3-catalog/backend/internal/org/repository"
	"f3-catalog/backend/internal/platform/logger"
	"f3-catalog/backend/internal/policy/engine"
	"f3-catalog/backend/internal/server/interceptors"
)

const (
	admin    = int64(7)
	stranger = int64(8)
)

func newServer(t *testing.T) (*Server, int64) {
	t.Helper()
	orgs := orgrepo.NewMemoryRepository()
	aoID := orgs.CreateOrg(nil, orgdomain.OrgTypeAO, "The Pit", admin)
	authz, err := engine.NewAuthorizer(context.Background(), "")
	require.NoError(t, err)
	today := domain.Day(2023, time.December, 1)
	commands := service.NewCommandHandler(repository.NewMemoryRepository(), logger.Nop(),
		service.WithClock(func() time.Time { return today }))
	return NewServer(commands, orgs, authz), aoID
}

func as(userID int64) context.Context {
	return interceptors.WithUserID(context.Background(), userID)
}

func envelope(t *testing.T, kind command.Kind, payload map[string]any) *command.Envelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &command.Envelope{Kind: kind, Payload: raw}
}

func createSeries(orgID int64) map[string]any {
	return map[string]any{
		"org_id":              orgID,
		"name":                "The Grind",
		"start_date":          "2024-01-01",
		"end_date":            "2024-01-31",
		"start_time":          "0530",
		"end_time":            "0615",
		"day_of_week":         1,
		"recurrence_pattern":  "weekly",
		"recurrence_interval": 1,
	}
}

func TestExecute_CreateSeriesAndRead(t *testing.T) {
	srv, orgID := newServer(t)

	res, err := srv.Execute(as(admin), envelope(t, command.KindCreateSeries, createSeries(orgID)))
	require.NoError(t, err)
	require.Equal(t, 5, res.Generated)

	got, err := srv.GetSeries(as(stranger), &GetSeriesRequest{OrgID: orgID, SeriesID: res.SeriesID, IncludeInstances: true})
	require.NoError(t, err)
	require.Equal(t, "The Grind", got.Series.Name)
	require.Equal(t, "2024-01-01", got.Series.StartDate)
	require.Equal(t, "2024-01-31", got.Series.EndDate)
	require.Equal(t, "0530", got.Series.StartTime)
	require.Equal(t, "weekly", got.Series.Pattern)
	require.Len(t, got.Instances, 5)
	require.Equal(t, "2024-01-29", got.Instances[4].Date)

	inst, err := srv.GetInstance(as(stranger), &GetInstanceRequest{OrgID: orgID, InstanceID: got.Instances[0].ID})
	require.NoError(t, err)
	require.Equal(t, &res.SeriesID, inst.SeriesID)
	require.Equal(t, "0615", inst.EndTime)

	withoutInstances, err := srv.GetSeries(as(stranger), &GetSeriesRequest{OrgID: orgID, SeriesID: res.SeriesID})
	require.NoError(t, err)
	require.Nil(t, withoutInstances.Instances)
}

func TestExecute_Errors(t *testing.T) {
	srv, orgID := newServer(t)
	tests := []struct {
		name string
		ctx  context.Context
		req  *command.Envelope
		want codes.Code
	}{
		{"unauthenticated", context.Background(), envelope(t, command.KindCreateSeries, createSeries(orgID)), codes.Unauthenticated},
		{"not an admin", as(stranger), envelope(t, command.KindCreateSeries, createSeries(orgID)), codes.PermissionDenied},
		{"unknown org", as(admin), envelope(t, command.KindCreateSeries, createSeries(404)), codes.NotFound},
		{"org command", as(admin), envelope(t, command.KindAddLocation, map[string]any{"org_id": orgID, "name": "Park"}), codes.InvalidArgument},
		{"bad date", as(admin), envelope(t, command.KindCreateInstance, map[string]any{"org_id": orgID, "name": "Q", "date": "01/02/2024"}), codes.InvalidArgument},
		{"unknown series", as(admin), envelope(t, command.KindDeactivateSeries, map[string]any{"org_id": orgID, "series_id": 99}), codes.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := srv.Execute(tt.ctx, tt.req)
			require.Equal(t, tt.want, status.Code(err), "got %v", err)
		})
	}
}

func TestReads_OtherOrgIsNotFound(t *testing.T) {
	srv, orgID := newServer(t)
	res, err := srv.Execute(as(admin), envelope(t, command.KindCreateInstance, map[string]any{
		"org_id": orgID, "name": "Convergence", "date": "2024-02-03",
	}))
	require.NoError(t, err)

	_, err = srv.GetInstance(as(admin), &GetInstanceRequest{OrgID: orgID + 1, InstanceID: res.InstanceID})
	require.Equal(t, codes.NotFound, status.Code(err))
	_, err = srv.GetSeries(as(admin), &GetSeriesRequest{OrgID: orgID})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestExecute_WithoutPolicySkipsAdminCheck(t *testing.T) {
	srv, orgID := newServer(t)
	srv.policy = nil

	_, err := srv.Execute(context.Background(), envelope(t, command.KindCreateSeries, createSeries(orgID)))
	require.NoError(t, err)
}

func TestServiceDesc(t *testing.T) {
	require.Equal(t, "f3.catalog.v1.EventService", EventService_ServiceDesc.ServiceName)
	require.Len(t, EventService_ServiceDesc.Methods, 3)
}
