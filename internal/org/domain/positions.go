package domain

import (
	"strings"

	"f3-catalog/backend/internal/platform/domainerr"
	"f3-catalog/backend/internal/platform/valueobject"
)

// PositionInput describes a new position. WildcardScope makes it visible from every org type.
type PositionInput struct {
	Name                 string
	Description          string
	Scope                PositionScope
	AllowGlobalDuplicate bool
}

// AddPosition creates an org-owned position.
func (o *Org) AddPosition(in PositionInput) (Position, error) {
	name, err := valueobject.NewName("name", in.Name)
	if err != nil {
		return Position{}, err
	}
	if err := validateScope(in.Scope); err != nil {
		return Position{}, err
	}
	if o.positionNameTaken(name.Key(), in.Scope, 0, in.AllowGlobalDuplicate) {
		return Position{}, domainerr.Invalid("name", "position %q already exists for this scope", name)
	}
	p := Position{
		ID:          o.nextID(KindPosition),
		OrgID:       o.orgID(),
		Name:        name.String(),
		Description: strings.TrimSpace(in.Description),
		Scope:       in.Scope,
		IsActive:    true,
	}
	o.positions[p.ID] = p
	o.record(PositionCreated{Position: p})
	return p, nil
}

// UpdatePosition applies the supplied, changed fields. A name or scope change re-runs the wildcard-aware
// uniqueness check against local and catalog positions.
func (o *Org) UpdatePosition(id int64, in PositionFields) error {
	cur, ok := o.positions[id]
	if !ok || !cur.IsActive {
		return domainerr.NotFound("position", id)
	}
	next := cur
	var diff PositionFields

	key := nameKey(cur.Name)
	if in.Name != nil {
		name, err := valueobject.NewName("name", *in.Name)
		if err != nil {
			return err
		}
		key = name.Key()
		next.Name = name.String()
	}
	if in.Scope != nil {
		if err := validateScope(*in.Scope); err != nil {
			return err
		}
		next.Scope = *in.Scope
	}
	if (key != nameKey(cur.Name) || next.Scope != cur.Scope) && o.positionNameTaken(key, next.Scope, id, false) {
		return domainerr.Invalid("name", "position %q already exists for this scope", next.Name)
	}
	if next.Name != cur.Name {
		s := next.Name
		diff.Name = &s
	}
	if next.Scope != cur.Scope {
		s := next.Scope
		diff.Scope = &s
	}
	if in.Description != nil {
		s := strings.TrimSpace(*in.Description)
		diff.Description = setIfChanged(&next.Description, &s)
	}

	if diff == (PositionFields{}) {
		return nil
	}
	o.positions[id] = next
	o.record(PositionUpdated{ID: id, Fields: diff})
	return nil
}

// SoftDeletePosition deactivates a position. Existing assignments are kept.
func (o *Org) SoftDeletePosition(id int64) error {
	p, ok := o.positions[id]
	if !ok || !p.IsActive {
		return domainerr.NotFound("position", id)
	}
	p.IsActive = false
	o.positions[id] = p
	o.record(PositionDeleted{ID: id})
	return nil
}

// AssignUserToPosition adds userID to the position's holders. Assigning a current holder is a no-op.
func (o *Org) AssignUserToPosition(positionID, userID int64) error {
	if err := o.requireAssignablePosition(positionID); err != nil {
		return err
	}
	if err := validateUserID(userID); err != nil {
		return err
	}
	o.assign(positionID, userID)
	return nil
}

// UnassignUserFromPosition removes userID from the position's holders. Removing a non-holder is a no-op.
func (o *Org) UnassignUserFromPosition(positionID, userID int64) error {
	if !o.positionKnown(positionID) {
		return domainerr.NotFound("position", positionID)
	}
	o.unassign(positionID, userID)
	return nil
}

// ReplacePositionAssignments makes userIDs the exact holder set, recording only the difference:
// unassignments first (ascending), then assignments in the given order.
func (o *Org) ReplacePositionAssignments(positionID int64, userIDs []int64) error {
	if err := o.requireAssignablePosition(positionID); err != nil {
		return err
	}
	want := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		if err := validateUserID(id); err != nil {
			return err
		}
		want[id] = struct{}{}
	}
	for _, id := range o.AssignedUsers(positionID) {
		if _, keep := want[id]; !keep {
			o.unassign(positionID, id)
		}
	}
	for _, id := range userIDs {
		o.assign(positionID, id)
	}
	return nil
}

func (o *Org) assign(positionID, userID int64) {
	users, ok := o.assignments[positionID]
	if !ok {
		users = make(map[int64]struct{})
		o.assignments[positionID] = users
	}
	if _, held := users[userID]; held {
		return
	}
	users[userID] = struct{}{}
	o.record(PositionAssigned{PositionID: positionID, UserID: userID})
}

func (o *Org) unassign(positionID, userID int64) {
	users := o.assignments[positionID]
	if _, held := users[userID]; !held {
		return
	}
	delete(users, userID)
	if len(users) == 0 {
		delete(o.assignments, positionID)
	}
	o.record(PositionUnassigned{PositionID: positionID, UserID: userID})
}

// requireAssignablePosition accepts active local positions and positions from the catalog snapshot
// (global or inherited from the parent org).
func (o *Org) requireAssignablePosition(id int64) error {
	if p, ok := o.positions[id]; ok {
		if !p.IsActive {
			return domainerr.NotFound("position", id)
		}
		return nil
	}
	if _, ok := o.global.Positions[id]; ok {
		return nil
	}
	return domainerr.NotFound("position", id)
}

func (o *Org) positionKnown(id int64) bool {
	if _, ok := o.positions[id]; ok {
		return true
	}
	_, ok := o.global.Positions[id]
	return ok
}

func (o *Org) positionNameTaken(key string, scope PositionScope, exclude int64, skipGlobal bool) bool {
	local := make(positionNameIndex)
	for id, p := range o.positions {
		if id != exclude && p.IsActive {
			local.add(nameKey(p.Name), p.Scope)
		}
	}
	if local.taken(key, scope) {
		return true
	}
	if skipGlobal {
		return false
	}
	return o.global.PositionNameTaken(key, scope)
}

func validateScope(s PositionScope) error {
	switch OrgType(s) {
	case OrgType(WildcardScope), OrgTypeRegion, OrgTypeAO, OrgTypeArea, OrgTypeSector:
		return nil
	}
	return domainerr.Invalid("org_type", "unknown position scope %q", string(s))
}

func validateUserID(id int64) error {
	if id <= 0 {
		return domainerr.Invalid("user_id", "must be positive")
	}
	return nil
}
