// Package service executes org commands against the Org aggregate: load, apply one mutator, bump the
// version, save. Applied change records are published after the save succeeds.
package service

import (
	"context"

	"f3-catalog/backend/internal/command"
	"f3-catalog/backend/internal/org/domain"
	"f3-catalog/backend/internal/org/repository"
	"f3-catalog/backend/internal/platform/domainerr"
	"f3-catalog/backend/internal/platform/logger"
	"f3-catalog/backend/internal/telemetry"
)

// Result reports what a command did. EntityID is the persisted id of the entity the command created or
// touched; it is zero for profile and admin commands.
type Result struct {
	OrgID    int64    `json:"org_id"`
	Version  int64    `json:"version"`
	EntityID int64    `json:"entity_id,omitempty"`
	Changes  int      `json:"changes"`
	Kinds    []string `json:"change_kinds,omitempty"`
}

// Changed reports whether the command produced any change record.
func (r Result) Changed() bool { return r.Changes > 0 }

type CommandHandler struct {
	repo    repository.Repository
	emitter *telemetry.ChangeEmitter
	log     *logger.Logger
	instr   *telemetry.Instruments
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithEmitter publishes applied change records after every successful save.
func WithEmitter(e *telemetry.ChangeEmitter) Option {
	return func(h *CommandHandler) { h.emitter = e }
}

func NewCommandHandler(repo repository.Repository, log *logger.Logger, opts ...Option) *CommandHandler {
	if log == nil {
		log = logger.Nop()
	}
	h := &CommandHandler{
		repo:  repo,
		log:   log,
		instr: telemetry.NewInstruments("f3-catalog/org"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// mutation applies one command to a loaded aggregate and returns the id of the entity it touched.
type mutation func(o *domain.Org) (entityID int64, kind domain.EntityKind, err error)

// Execute dispatches one org command on behalf of actorID.
func (h *CommandHandler) Execute(ctx context.Context, actorID int64, cmd command.Command) (res Result, err error) {
	ctx, end := h.instr.Start(ctx, string(cmd.Kind()), cmd.TargetOrg())
	defer func() { end(err) }()

	m, err := mutationFor(cmd)
	if err != nil {
		return Result{}, err
	}
	o, err := h.repo.Get(ctx, cmd.TargetOrg())
	if err != nil {
		return Result{}, err
	}
	if c, ok := cmd.(*command.UpdateRegionProfile); ok && o.Type != domain.OrgTypeRegion {
		return Result{}, domainerr.Invalid("org_id", "org %d is a %s, not a region", c.OrgID, o.Type)
	}
	id, kind, err := m(o)
	if err != nil {
		return Result{}, err
	}
	o.BumpVersion()
	applied := o.PendingChanges()
	if err := h.repo.Save(ctx, o); err != nil {
		return Result{}, err
	}
	applied = o.ResolveChanges(applied)
	if id != 0 {
		id = o.ResolveID(kind, id)
	}
	h.emitter.Emit(ctx, o.ID, actorID, applied)
	h.log.Debug("org command applied", "kind", cmd.Kind(), "org_id", o.ID, "version", o.Version, "changes", len(applied))

	res = Result{OrgID: o.ID, Version: o.Version, EntityID: id, Changes: len(applied)}
	for _, c := range applied {
		res.Kinds = append(res.Kinds, string(c.Kind()))
	}
	return res, nil
}

// mutationFor maps a command to its aggregate mutator. Event commands are rejected.
func mutationFor(cmd command.Command) (mutation, error) {
	switch c := cmd.(type) {
	case *command.UpdateRegionProfile:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			return 0, "", o.UpdateProfile(domain.ProfileFields{
				Name:        c.Name,
				Description: c.Description,
				Website:     c.Website,
				Email:       c.Email,
				Twitter:     c.Twitter,
				Facebook:    c.Facebook,
				Instagram:   c.Instagram,
				LogoURL:     c.LogoURL,
			})
		}, nil

	case *command.AddEventTag:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			t, err := o.AddEventTag(domain.EventTagInput{Name: c.Name, Color: c.Color, Description: c.Description})
			return t.ID, domain.KindEventTag, err
		}, nil
	case *command.UpdateEventTag:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			return c.EventTagID, domain.KindEventTag, o.UpdateEventTag(c.EventTagID, domain.EventTagFields{
				Name:        c.Name,
				Color:       c.Color,
				Description: c.Description,
			})
		}, nil
	case *command.SoftDeleteEventTag:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			return c.EventTagID, domain.KindEventTag, o.SoftDeleteEventTag(c.EventTagID)
		}, nil
	case *command.CloneGlobalEventTag:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			t, err := o.CloneGlobalEventTag(c.GlobalEventTagID)
			return t.ID, domain.KindEventTag, err
		}, nil

	case *command.AddEventType:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			et, err := o.AddEventType(domain.EventTypeInput{
				Name:        c.Name,
				Acronym:     c.Acronym,
				Category:    domain.EventCategory(c.Category),
				Description: c.Description,
			})
			return et.ID, domain.KindEventType, err
		}, nil
	case *command.UpdateEventType:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			fields := domain.EventTypeFields{Name: c.Name, Acronym: c.Acronym, Description: c.Description}
			if c.Category != nil {
				cat, err := domain.ParseEventCategory(*c.Category)
				if err != nil {
					return 0, "", err
				}
				fields.Category = &cat
			}
			return c.EventTypeID, domain.KindEventType, o.UpdateEventType(c.EventTypeID, fields)
		}, nil
	case *command.SoftDeleteEventType:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			return c.EventTypeID, domain.KindEventType, o.SoftDeleteEventType(c.EventTypeID)
		}, nil
	case *command.CloneGlobalEventType:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			et, err := o.CloneGlobalEventType(c.GlobalEventTypeID)
			return et.ID, domain.KindEventType, err
		}, nil

	case *command.AddLocation:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			l, err := o.AddLocation(domain.LocationInput{
				Name:           c.Name,
				Description:    c.Description,
				Latitude:       c.Latitude,
				Longitude:      c.Longitude,
				AddressStreet:  c.AddressStreet,
				AddressStreet2: c.AddressStreet2,
				AddressCity:    c.AddressCity,
				AddressState:   c.AddressState,
				AddressZip:     c.AddressZip,
				AddressCountry: c.AddressCountry,
				Email:          c.Email,
			})
			return l.ID, domain.KindLocation, err
		}, nil
	case *command.UpdateLocation:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			return c.LocationID, domain.KindLocation, o.UpdateLocation(c.LocationID, domain.LocationFields{
				Name:           c.Name,
				Description:    c.Description,
				Latitude:       c.Latitude,
				Longitude:      c.Longitude,
				AddressStreet:  c.AddressStreet,
				AddressStreet2: c.AddressStreet2,
				AddressCity:    c.AddressCity,
				AddressState:   c.AddressState,
				AddressZip:     c.AddressZip,
				AddressCountry: c.AddressCountry,
				Email:          c.Email,
			})
		}, nil
	case *command.SoftDeleteLocation:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			return c.LocationID, domain.KindLocation, o.SoftDeleteLocation(c.LocationID)
		}, nil

	case *command.AddPosition:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			scope, err := scopeOf(c.OrgType)
			if err != nil {
				return 0, "", err
			}
			p, err := o.AddPosition(domain.PositionInput{Name: c.Name, Description: c.Description, Scope: scope})
			return p.ID, domain.KindPosition, err
		}, nil
	case *command.UpdatePosition:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			fields := domain.PositionFields{Name: c.Name, Description: c.Description}
			if c.OrgType != nil {
				scope, err := scopeOf(*c.OrgType)
				if err != nil {
					return 0, "", err
				}
				fields.Scope = &scope
			}
			return c.PositionID, domain.KindPosition, o.UpdatePosition(c.PositionID, fields)
		}, nil
	case *command.SoftDeletePosition:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			return c.PositionID, domain.KindPosition, o.SoftDeletePosition(c.PositionID)
		}, nil
	case *command.ReplacePositionAssignments:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			return c.PositionID, domain.KindPosition, o.ReplacePositionAssignments(c.PositionID, c.UserIDs)
		}, nil
	case *command.AssignUserToPosition:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			return c.PositionID, domain.KindPosition, o.AssignUserToPosition(c.PositionID, c.UserID)
		}, nil
	case *command.UnassignUserFromPosition:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			return c.PositionID, domain.KindPosition, o.UnassignUserFromPosition(c.PositionID, c.UserID)
		}, nil

	case *command.AssignAdmin:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			return 0, "", o.AssignAdmin(c.UserID)
		}, nil
	case *command.RevokeAdmin:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			return 0, "", o.RevokeAdmin(c.UserID)
		}, nil
	case *command.ReplaceAdmins:
		return func(o *domain.Org) (int64, domain.EntityKind, error) {
			return 0, "", o.ReplaceAdmins(c.UserIDs)
		}, nil
	}
	return nil, domainerr.Invalid("kind", "%s is not an org command", cmd.Kind())
}

// scopeOf turns the wire org type ("" for every org type) into a position scope.
func scopeOf(orgType string) (domain.PositionScope, error) {
	if orgType == "" {
		return domain.WildcardScope, nil
	}
	t, err := domain.ParseOrgType(orgType)
	if err != nil {
		return "", err
	}
	return domain.ScopeOf(&t), nil
}
