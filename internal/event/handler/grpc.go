// Package handler serves EventService: series and instance commands plus their reads.
package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"f3-catalog/backend/internal/command"
	"f3-catalog/backend/internal/event/domain"
	"f3-catalog/backend/internal/event/service"
	"f3-catalog/backend/internal/platform/rbac"
	"f3-catalog/backend/internal/platform/valueobject"
	"f3-catalog/backend/internal/server/interceptors"
	"f3-catalog/backend/internal/server/rpc"
)

// EventServiceServer is the server API of f3.catalog.v1.EventService.
type EventServiceServer interface {
	Execute(context.Context, *command.Envelope) (*service.Result, error)
	GetSeries(context.Context, *GetSeriesRequest) (*GetSeriesResponse, error)
	GetInstance(context.Context, *GetInstanceRequest) (*InstanceView, error)
}

// EventService_ServiceDesc is the grpc.ServiceDesc for EventService.
var EventService_ServiceDesc = rpc.ServiceDesc("EventService", (*EventServiceServer)(nil),
	rpc.Unary("Execute", EventServiceServer.Execute),
	rpc.Unary("GetSeries", EventServiceServer.GetSeries),
	rpc.Unary("GetInstance", EventServiceServer.GetInstance),
)

// RegisterEventServiceServer registers srv on s.
func RegisterEventServiceServer(s grpc.ServiceRegistrar, srv EventServiceServer) {
	s.RegisterService(&EventService_ServiceDesc, srv)
}

type GetSeriesRequest struct {
	OrgID            int64 `json:"org_id"`
	SeriesID         int64 `json:"series_id"`
	IncludeInstances bool  `json:"include_instances"`
}

type GetSeriesResponse struct {
	Series    SeriesView     `json:"series"`
	Instances []InstanceView `json:"instances,omitempty"`
}

type GetInstanceRequest struct {
	OrgID      int64 `json:"org_id"`
	InstanceID int64 `json:"instance_id"`
}

// SeriesView is the wire form of a series. Dates are YYYY-MM-DD, times HHMM.
type SeriesView struct {
	ID                  int64  `json:"id"`
	OrgID               int64  `json:"org_id"`
	Name                string `json:"name"`
	Description         string `json:"description,omitempty"`
	LocationID          *int64 `json:"location_id,omitempty"`
	EventTypeID         *int64 `json:"event_type_id,omitempty"`
	EventTagID          *int64 `json:"event_tag_id,omitempty"`
	Highlight           bool   `json:"highlight"`
	StartDate           string `json:"start_date"`
	EndDate             string `json:"end_date,omitempty"`
	StartTime           string `json:"start_time,omitempty"`
	EndTime             string `json:"end_time,omitempty"`
	DayOfWeek           int    `json:"day_of_week"`
	Pattern             string `json:"recurrence_pattern"`
	Interval            int    `json:"recurrence_interval"`
	IndexWithinInterval *int   `json:"index_within_interval,omitempty"`
	IsActive            bool   `json:"is_active"`
}

type InstanceView struct {
	ID          int64  `json:"id"`
	OrgID       int64  `json:"org_id"`
	SeriesID    *int64 `json:"series_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LocationID  *int64 `json:"location_id,omitempty"`
	EventTypeID *int64 `json:"event_type_id,omitempty"`
	EventTagID  *int64 `json:"event_tag_id,omitempty"`
	Highlight   bool   `json:"highlight"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// Server implements EventServiceServer. Admin checks run against the org that owns the series or
// instance; a nil policy disables them.
type Server struct {
	commands *service.CommandHandler
	admins   rbac.AdminDirectory
	policy   rbac.PolicyDecider
}

// NewServer returns a new EventService server. admins is usually the org repository.
func NewServer(commands *service.CommandHandler, admins rbac.AdminDirectory, policy rbac.PolicyDecider) *Server {
	return &Server{commands: commands, admins: admins, policy: policy}
}

// Execute decodes one series or instance command, checks the caller administers the owning org and
// runs it.
func (s *Server) Execute(ctx context.Context, req *command.Envelope) (*service.Result, error) {
	cmd, err := command.Decode(*req)
	if err != nil {
		return nil, rpc.Error(err)
	}
	if !cmd.Kind().IsEvent() {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be sent to OrgService", cmd.Kind())
	}
	interceptors.SetAuditTarget(ctx, cmd.TargetOrg(), string(cmd.Kind()))
	if s.policy != nil {
		if _, err := rbac.RequireOrgAdmin(ctx, s.admins, s.policy, cmd.TargetOrg(), string(cmd.Kind())); err != nil {
			return nil, err
		}
	}
	res, err := s.commands.Execute(ctx, cmd)
	if err != nil {
		return nil, rpc.Error(err)
	}
	return &res, nil
}

func (s *Server) GetSeries(ctx context.Context, req *GetSeriesRequest) (*GetSeriesResponse, error) {
	if req.OrgID <= 0 || req.SeriesID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "org_id and series_id required")
	}
	series, err := s.commands.GetSeries(ctx, req.OrgID, req.SeriesID)
	if err != nil {
		return nil, rpc.Error(err)
	}
	out := &GetSeriesResponse{Series: seriesView(series)}
	if !req.IncludeInstances {
		return out, nil
	}
	instances, err := s.commands.ListSeriesInstances(ctx, req.OrgID, req.SeriesID)
	if err != nil {
		return nil, rpc.Error(err)
	}
	out.Instances = make([]InstanceView, 0, len(instances))
	for _, inst := range instances {
		out.Instances = append(out.Instances, instanceView(inst))
	}
	return out, nil
}

func (s *Server) GetInstance(ctx context.Context, req *GetInstanceRequest) (*InstanceView, error) {
	if req.OrgID <= 0 || req.InstanceID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "org_id and instance_id required")
	}
	inst, err := s.commands.GetInstance(ctx, req.OrgID, req.InstanceID)
	if err != nil {
		return nil, rpc.Error(err)
	}
	v := instanceView(inst)
	return &v, nil
}

func seriesView(s *domain.Series) SeriesView {
	v := SeriesView{
		ID:                  s.ID,
		OrgID:               s.OrgID,
		Name:                s.Name,
		Description:         s.Description,
		LocationID:          s.LocationID,
		EventTypeID:         s.EventTypeID,
		EventTagID:          s.EventTagID,
		Highlight:           s.Highlight,
		StartDate:           s.StartDate.Format(domain.DateLayout),
		StartTime:           valueobject.FormatTimeOfDay(s.StartTime),
		EndTime:             valueobject.FormatTimeOfDay(s.EndTime),
		DayOfWeek:           s.DayOfWeek,
		Pattern:             string(s.Pattern),
		Interval:            s.Interval,
		IndexWithinInterval: s.IndexWithinInterval,
		IsActive:            s.IsActive,
	}
	if s.EndDate != nil {
		v.EndDate = s.EndDate.Format(domain.DateLayout)
	}
	return v
}

func instanceView(i *domain.Instance) InstanceView {
	return InstanceView{
		ID:          i.ID,
		OrgID:       i.OrgID,
		SeriesID:    i.SeriesID,
		Name:        i.Name,
		Description: i.Description,
		LocationID:  i.LocationID,
		EventTypeID: i.EventTypeID,
		EventTagID:  i.EventTagID,
		Highlight:   i.Highlight,
		Date:        i.Date.Format(domain.DateLayout),
		StartTime:   valueobject.FormatTimeOfDay(i.StartTime),
		EndTime:     valueobject.FormatTimeOfDay(i.EndTime),
		IsActive:    i.IsActive,
	}
}
