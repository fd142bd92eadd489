package domain

// ChangeKind identifies a change record variant.
type ChangeKind string

const (
	ChangeProfileUpdated     ChangeKind = "org.profile_updated"
	ChangeEventTypeCreated   ChangeKind = "event_type.created"
	ChangeEventTypeUpdated   ChangeKind = "event_type.updated"
	ChangeEventTypeDeleted   ChangeKind = "event_type.deleted"
	ChangeEventTagCreated    ChangeKind = "event_tag.created"
	ChangeEventTagUpdated    ChangeKind = "event_tag.updated"
	ChangeEventTagDeleted    ChangeKind = "event_tag.deleted"
	ChangeLocationCreated    ChangeKind = "location.created"
	ChangeLocationUpdated    ChangeKind = "location.updated"
	ChangeLocationDeleted    ChangeKind = "location.deleted"
	ChangePositionCreated    ChangeKind = "position.created"
	ChangePositionUpdated    ChangeKind = "position.updated"
	ChangePositionDeleted    ChangeKind = "position.deleted"
	ChangePositionAssigned   ChangeKind = "position.assigned"
	ChangePositionUnassigned ChangeKind = "position.unassigned"
	ChangeAdminAssigned      ChangeKind = "admin.assigned"
	ChangeAdminRevoked       ChangeKind = "admin.revoked"
)

// Change is one pending state change of an Org. The set of variants is closed: only types in this
// file implement it, and Repository.Save switches over all of them.
type Change interface {
	Kind() ChangeKind
	isChange()
}

// ProfileFields carries the supplied, changed profile fields.
type ProfileFields struct {
	Name        *string
	Description *string
	Website     *string
	Email       *string
	Twitter     *string
	Facebook    *string
	Instagram   *string
	LogoURL     *string
}

// EventTypeFields carries the supplied, changed event type fields.
type EventTypeFields struct {
	Name        *string
	Acronym     *string
	Category    *EventCategory
	Description *string
}

// EventTagFields carries the supplied, changed event tag fields.
type EventTagFields struct {
	Name        *string
	Color       *string
	Description *string
}

// LocationFields carries the supplied, changed location fields.
type LocationFields struct {
	Name           *string
	Description    *string
	Latitude       *float64
	Longitude      *float64
	AddressStreet  *string
	AddressStreet2 *string
	AddressCity    *string
	AddressState   *string
	AddressZip     *string
	AddressCountry *string
	Email          *string
}

// PositionFields carries the supplied, changed position fields.
type PositionFields struct {
	Name        *string
	Description *string
	Scope       *PositionScope
}

type ProfileUpdated struct{ Fields ProfileFields }

type EventTypeCreated struct{ EventType EventType }
type EventTypeUpdated struct {
	ID     int64
	Fields EventTypeFields
}
type EventTypeDeleted struct{ ID int64 }

type EventTagCreated struct{ EventTag EventTag }
type EventTagUpdated struct {
	ID     int64
	Fields EventTagFields
}
type EventTagDeleted struct{ ID int64 }

type LocationCreated struct{ Location Location }
type LocationUpdated struct {
	ID     int64
	Fields LocationFields
}
type LocationDeleted struct{ ID int64 }

type PositionCreated struct{ Position Position }
type PositionUpdated struct {
	ID     int64
	Fields PositionFields
}
type PositionDeleted struct{ ID int64 }

type PositionAssigned struct{ PositionID, UserID int64 }
type PositionUnassigned struct{ PositionID, UserID int64 }

type AdminAssigned struct{ UserID int64 }
type AdminRevoked struct{ UserID int64 }

func (ProfileUpdated) Kind() ChangeKind     { return ChangeProfileUpdated }
func (EventTypeCreated) Kind() ChangeKind   { return ChangeEventTypeCreated }
func (EventTypeUpdated) Kind() ChangeKind   { return ChangeEventTypeUpdated }
func (EventTypeDeleted) Kind() ChangeKind   { return ChangeEventTypeDeleted }
func (EventTagCreated) Kind() ChangeKind    { return ChangeEventTagCreated }
func (EventTagUpdated) Kind() ChangeKind    { return ChangeEventTagUpdated }
func (EventTagDeleted) Kind() ChangeKind    { return ChangeEventTagDeleted }
func (LocationCreated) Kind() ChangeKind    { return ChangeLocationCreated }
func (LocationUpdated) Kind() ChangeKind    { return ChangeLocationUpdated }
func (LocationDeleted) Kind() ChangeKind    { return ChangeLocationDeleted }
func (PositionCreated) Kind() ChangeKind    { return ChangePositionCreated }
func (PositionUpdated) Kind() ChangeKind    { return ChangePositionUpdated }
func (PositionDeleted) Kind() ChangeKind    { return ChangePositionDeleted }
func (PositionAssigned) Kind() ChangeKind   { return ChangePositionAssigned }
func (PositionUnassigned) Kind() ChangeKind { return ChangePositionUnassigned }
func (AdminAssigned) Kind() ChangeKind      { return ChangeAdminAssigned }
func (AdminRevoked) Kind() ChangeKind       { return ChangeAdminRevoked }

func (ProfileUpdated) isChange()     {}
func (EventTypeCreated) isChange()   {}
func (EventTypeUpdated) isChange()   {}
func (EventTypeDeleted) isChange()   {}
func (EventTagCreated) isChange()    {}
func (EventTagUpdated) isChange()    {}
func (EventTagDeleted) isChange()    {}
func (LocationCreated) isChange()    {}
func (LocationUpdated) isChange()    {}
func (LocationDeleted) isChange()    {}
func (PositionCreated) isChange()    {}
func (PositionUpdated) isChange()    {}
func (PositionDeleted) isChange()    {}
func (PositionAssigned) isChange()   {}
func (PositionUnassigned) isChange() {}
func (AdminAssigned) isChange()      {}
func (AdminRevoked) isChange()       {}

// RebindChanges rewrites references to the provisional id from in changes to the persisted id to.
// Save calls it on the not-yet-applied tail of the batch after each insert and after each Relocation.
func RebindChanges(changes []Change, kind EntityKind, from, to int64) {
	for i, c := range changes {
		switch v := c.(type) {
		case EventTypeCreated:
			if kind == KindEventType && v.EventType.ID == from {
				v.EventType.ID = to
				changes[i] = v
			}
		case EventTagCreated:
			if kind == KindEventTag && v.EventTag.ID == from {
				v.EventTag.ID = to
				changes[i] = v
			}
		case LocationCreated:
			if kind == KindLocation && v.Location.ID == from {
				v.Location.ID = to
				changes[i] = v
			}
		case PositionCreated:
			if kind == KindPosition && v.Position.ID == from {
				v.Position.ID = to
				changes[i] = v
			}
		case EventTypeUpdated:
			if kind == KindEventType && v.ID == from {
				v.ID = to
				changes[i] = v
			}
		case EventTypeDeleted:
			if kind == KindEventType && v.ID == from {
				v.ID = to
				changes[i] = v
			}
		case EventTagUpdated:
			if kind == KindEventTag && v.ID == from {
				v.ID = to
				changes[i] = v
			}
		case EventTagDeleted:
			if kind == KindEventTag && v.ID == from {
				v.ID = to
				changes[i] = v
			}
		case LocationUpdated:
			if kind == KindLocation && v.ID == from {
				v.ID = to
				changes[i] = v
			}
		case LocationDeleted:
			if kind == KindLocation && v.ID == from {
				v.ID = to
				changes[i] = v
			}
		case PositionUpdated:
			if kind == KindPosition && v.ID == from {
				v.ID = to
				changes[i] = v
			}
		case PositionDeleted:
			if kind == KindPosition && v.ID == from {
				v.ID = to
				changes[i] = v
			}
		case PositionAssigned:
			if kind == KindPosition && v.PositionID == from {
				v.PositionID = to
				changes[i] = v
			}
		case PositionUnassigned:
			if kind == KindPosition && v.PositionID == from {
				v.PositionID = to
				changes[i] = v
			}
		}
	}
}

// ResolveChanges returns a copy of changes with every entity id mapped through ResolveID. Use it on
// records captured before Save to report the persisted ids.
func (o *Org) ResolveChanges(changes []Change) []Change {
	out := make([]Change, len(changes))
	for i, c := range changes {
		switch v := c.(type) {
		case EventTypeCreated:
			v.EventType.ID = o.ResolveID(KindEventType, v.EventType.ID)
			c = v
		case EventTypeUpdated:
			v.ID = o.ResolveID(KindEventType, v.ID)
			c = v
		case EventTypeDeleted:
			v.ID = o.ResolveID(KindEventType, v.ID)
			c = v
		case EventTagCreated:
			v.EventTag.ID = o.ResolveID(KindEventTag, v.EventTag.ID)
			c = v
		case EventTagUpdated:
			v.ID = o.ResolveID(KindEventTag, v.ID)
			c = v
		case EventTagDeleted:
			v.ID = o.ResolveID(KindEventTag, v.ID)
			c = v
		case LocationCreated:
			v.Location.ID = o.ResolveID(KindLocation, v.Location.ID)
			c = v
		case LocationUpdated:
			v.ID = o.ResolveID(KindLocation, v.ID)
			c = v
		case LocationDeleted:
			v.ID = o.ResolveID(KindLocation, v.ID)
			c = v
		case PositionCreated:
			v.Position.ID = o.ResolveID(KindPosition, v.Position.ID)
			c = v
		case PositionUpdated:
			v.ID = o.ResolveID(KindPosition, v.ID)
			c = v
		case PositionDeleted:
			v.ID = o.ResolveID(KindPosition, v.ID)
			c = v
		case PositionAssigned:
			v.PositionID = o.ResolveID(KindPosition, v.PositionID)
			c = v
		case PositionUnassigned:
			v.PositionID = o.ResolveID(KindPosition, v.PositionID)
			c = v
		}
		out[i] = c
	}
	return out
}
