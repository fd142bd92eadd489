// Package domain holds the Org aggregate: an org, its owned catalogs (event types, event tags,
// positions, locations), its admins and position assignments. Every mutator validates fully before
// touching state and appends exactly one change record per effective change.
package domain

import (
	"slices"

	"f3-catalog/backend/internal/platform/valueobject"
)

// Org is the aggregate root. It is rebuilt from storage for every command and never cached.
type Org struct {
	ID       int64
	ParentID *int64
	Type     OrgType
	Name     string
	Profile  Profile
	Version  int64
	IsActive bool

	eventTypes  map[int64]EventType
	eventTags   map[int64]EventTag
	positions   map[int64]Position
	locations   map[int64]Location
	admins      []int64
	assignments map[int64]map[int64]struct{}

	global    GlobalCatalog
	hasGlobal bool

	changes       []Change
	seq           *IDSequence
	loadedVersion int64
	provisional   map[EntityKind]map[int64]struct{}
	aliases       map[EntityKind]map[int64]int64
}

// New returns an empty active aggregate that draws provisional ids from the process sequence.
func New(id int64, parentID *int64, typ OrgType, name string) *Org {
	return &Org{
		ID:          id,
		ParentID:    parentID,
		Type:        typ,
		Name:        name,
		IsActive:    true,
		eventTypes:  make(map[int64]EventType),
		eventTags:   make(map[int64]EventTag),
		positions:   make(map[int64]Position),
		locations:   make(map[int64]Location),
		assignments: make(map[int64]map[int64]struct{}),
		global:      NewGlobalCatalog(nil, nil, nil),
		seq:         ProcessSequence(),
		provisional: make(map[EntityKind]map[int64]struct{}),
		aliases:     make(map[EntityKind]map[int64]int64),
	}
}

// UseSequence swaps the provisional id source. Call it before hydration.
func (o *Org) UseSequence(seq *IDSequence) { o.seq = seq }

// HydrateEventType loads a persisted event type without recording a change.
func (o *Org) HydrateEventType(et EventType) {
	o.eventTypes[et.ID] = et
	o.seq.Advance(KindEventType, et.ID)
}

// HydrateEventTag loads a persisted event tag without recording a change.
func (o *Org) HydrateEventTag(tag EventTag) {
	o.eventTags[tag.ID] = tag
	o.seq.Advance(KindEventTag, tag.ID)
}

// HydratePosition loads a persisted position without recording a change.
func (o *Org) HydratePosition(p Position) {
	o.positions[p.ID] = p
	o.seq.Advance(KindPosition, p.ID)
}

// HydrateLocation loads a persisted location without recording a change. Blank legacy names are kept.
func (o *Org) HydrateLocation(l Location) {
	o.locations[l.ID] = l
	o.seq.Advance(KindLocation, l.ID)
}

// HydrateAdmin loads a persisted admin; duplicates are ignored.
func (o *Org) HydrateAdmin(userID int64) {
	if !slices.Contains(o.admins, userID) {
		o.admins = append(o.admins, userID)
	}
}

// HydrateAssignment loads a persisted position assignment.
func (o *Org) HydrateAssignment(positionID, userID int64) {
	users, ok := o.assignments[positionID]
	if !ok {
		users = make(map[int64]struct{})
		o.assignments[positionID] = users
	}
	users[userID] = struct{}{}
}

// SetGlobalCatalog installs the snapshot consulted by uniqueness checks. Without it checks are local only.
func (o *Org) SetGlobalCatalog(c GlobalCatalog) {
	o.global = c
	o.hasGlobal = true
	for id := range c.Positions {
		o.seq.Advance(KindPosition, id)
	}
	for id := range c.EventTypes {
		o.seq.Advance(KindEventType, id)
	}
	for id := range c.EventTags {
		o.seq.Advance(KindEventTag, id)
	}
}

// GlobalCatalog returns the installed snapshot and whether one was set.
func (o *Org) GlobalCatalog() (GlobalCatalog, bool) { return o.global, o.hasGlobal }

func (o *Org) EventType(id int64) (EventType, bool) {
	et, ok := o.eventTypes[id]
	return et, ok
}

func (o *Org) EventTag(id int64) (EventTag, bool) {
	tag, ok := o.eventTags[id]
	return tag, ok
}

func (o *Org) Position(id int64) (Position, bool) {
	p, ok := o.positions[id]
	return p, ok
}

func (o *Org) Location(id int64) (Location, bool) {
	l, ok := o.locations[id]
	return l, ok
}

// EventTypes returns owned event types (active and inactive) ordered by id.
func (o *Org) EventTypes() []EventType { return sortedValues(o.eventTypes) }

// EventTags returns owned event tags ordered by id.
func (o *Org) EventTags() []EventTag { return sortedValues(o.eventTags) }

// Positions returns owned positions ordered by id.
func (o *Org) Positions() []Position { return sortedValues(o.positions) }

// Locations returns owned locations ordered by id.
func (o *Org) Locations() []Location { return sortedValues(o.locations) }

// Admins returns admin user ids in assignment order.
func (o *Org) Admins() []int64 { return slices.Clone(o.admins) }

// IsAdmin reports whether userID administers this org.
func (o *Org) IsAdmin(userID int64) bool { return slices.Contains(o.admins, userID) }

// AssignedUsers returns the users holding positionID, ascending.
func (o *Org) AssignedUsers(positionID int64) []int64 {
	users := make([]int64, 0, len(o.assignments[positionID]))
	for id := range o.assignments[positionID] {
		users = append(users, id)
	}
	slices.Sort(users)
	return users
}

// AssignedPositions returns the position ids that have at least one assignment, ascending.
func (o *Org) AssignedPositions() []int64 {
	ids := make([]int64, 0, len(o.assignments))
	for id, users := range o.assignments {
		if len(users) > 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// PendingChanges returns a copy of the change records not yet saved.
func (o *Org) PendingChanges() []Change { return slices.Clone(o.changes) }

// DrainChanges returns the pending change records in creation order and clears the queue.
func (o *Org) DrainChanges() []Change {
	out := o.changes
	o.changes = nil
	return out
}

// BumpVersion increments the version once per command.
func (o *Org) BumpVersion() { o.Version++ }

// MarkPersisted records the current version as the one stored. Repositories call it after a load
// and after a successful save.
func (o *Org) MarkPersisted() { o.loadedVersion = o.Version }

// PersistedVersion is the version the store held when this aggregate was loaded or last saved.
func (o *Org) PersistedVersion() int64 { return o.loadedVersion }

// Rebind moves a provisional entity to its store-assigned id. If another provisional entity of the same
// kind already sits on to, that entity is first moved to a fresh id, which is returned as moved.
// Callers apply RebindChanges for the move before the rebind.
func (o *Org) Rebind(kind EntityKind, from, to int64) (moved Relocation, ok bool) {
	if from == to {
		o.forgetProvisional(kind, from)
		return Relocation{}, false
	}
	o.seq.Advance(kind, to)
	if o.aliases[kind] == nil {
		o.aliases[kind] = make(map[int64]int64)
	}
	if o.isProvisional(kind, to) {
		fresh := o.seq.Next(kind)
		o.move(kind, to, fresh)
		o.markProvisional(kind, fresh)
		o.forgetProvisional(kind, to)
		o.alias(kind, to, fresh)
		moved, ok = Relocation{From: to, To: fresh}, true
	}
	o.move(kind, from, to)
	o.forgetProvisional(kind, from)
	o.alias(kind, from, to)
	return moved, ok
}

// alias points from, and every id already resolving to from, at to.
func (o *Org) alias(kind EntityKind, from, to int64) {
	for k, v := range o.aliases[kind] {
		if v == from {
			o.aliases[kind][k] = to
		}
	}
	o.aliases[kind][from] = to
}

// Relocation is a provisional id that had to move out of the way during Rebind.
type Relocation struct{ From, To int64 }

// ResolveID maps an id handed out before save to the id it was persisted under.
func (o *Org) ResolveID(kind EntityKind, id int64) int64 {
	if to, ok := o.aliases[kind][id]; ok {
		return to
	}
	return id
}

func (o *Org) move(kind EntityKind, from, to int64) {
	switch kind {
	case KindEventType:
		if et, ok := o.eventTypes[from]; ok {
			delete(o.eventTypes, from)
			et.ID = to
			o.eventTypes[to] = et
		}
	case KindEventTag:
		if tag, ok := o.eventTags[from]; ok {
			delete(o.eventTags, from)
			tag.ID = to
			o.eventTags[to] = tag
		}
	case KindPosition:
		if p, ok := o.positions[from]; ok {
			delete(o.positions, from)
			p.ID = to
			o.positions[to] = p
		}
		if users, ok := o.assignments[from]; ok {
			delete(o.assignments, from)
			o.assignments[to] = users
		}
	case KindLocation:
		if l, ok := o.locations[from]; ok {
			delete(o.locations, from)
			l.ID = to
			o.locations[to] = l
		}
	}
}

func (o *Org) nextID(kind EntityKind) int64 {
	id := o.seq.Next(kind)
	o.markProvisional(kind, id)
	return id
}

func (o *Org) markProvisional(kind EntityKind, id int64) {
	if o.provisional[kind] == nil {
		o.provisional[kind] = make(map[int64]struct{})
	}
	o.provisional[kind][id] = struct{}{}
}

func (o *Org) forgetProvisional(kind EntityKind, id int64) { delete(o.provisional[kind], id) }

func (o *Org) isProvisional(kind EntityKind, id int64) bool {
	_, ok := o.provisional[kind][id]
	return ok
}

func (o *Org) record(c Change) { o.changes = append(o.changes, c) }

func (o *Org) orgID() *int64 {
	id := o.ID
	return &id
}

func nameKey(s string) string    { return valueobject.NameKey(s) }
func acronymKey(s string) string { return valueobject.AcronymKey(s) }

type identified interface {
	EventType | EventTag | Position | Location
}

func sortedValues[T identified](m map[int64]T) []T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

// setIfChanged copies next into *dst and returns a pointer for the diff when the value changed.
func setIfChanged[T comparable](dst *T, next *T) *T {
	if next == nil || *dst == *next {
		return nil
	}
	*dst = *next
	v := *next
	return &v
}
